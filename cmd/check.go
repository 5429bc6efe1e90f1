package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/nsxbet/sqlguard/pkg/analyzer"
	"github.com/nsxbet/sqlguard/pkg/config"
	"github.com/nsxbet/sqlguard/pkg/logger"
	"github.com/nsxbet/sqlguard/pkg/types"
	"github.com/nsxbet/sqlguard/pkg/validator"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [files...]",
	Short: "Check SQL files against the safety rules",
	Long: `Check the SQL statements in the given files against the configured
safety rules. Reads standard input when no files are given.

Each file is split into statements and every statement is validated
the same way the library validates runtime SQL. The exit code is 1
when at least one statement would be blocked under the effective
violation strategy.`,
	Args: cobra.ArbitraryArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	// Flags for check command
	checkCmd.Flags().StringP("engine", "e", "mysql", "database engine (mysql, postgres, tidb, mariadb, oceanbase)")
	checkCmd.Flags().StringP("format", "o", "text", "output format (text, json)")
	checkCmd.Flags().StringP("strategy", "s", "", "violation strategy override (block, warn, log)")

	// Bind flags to viper
	_ = viper.BindPFlag("engine", checkCmd.Flags().Lookup("engine"))
	_ = viper.BindPFlag("format", checkCmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("strategy", checkCmd.Flags().Lookup("strategy"))
}

// fileReport collects the findings for one input, statements in file order.
type fileReport struct {
	File       string             `json:"file"`
	Statements []*statementReport `json:"statements"`
}

type statementReport struct {
	Index   int                     `json:"index"`
	SQL     string                  `json:"sql"`
	Result  *types.ValidationResult `json:"result"`
	Blocked bool                    `json:"blocked"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	logLevel := slog.LevelWarn
	if viper.GetBool("debug") {
		logLevel = slog.LevelDebug
	} else if viper.GetBool("verbose") {
		logLevel = slog.LevelInfo
	}
	log := logger.New(logLevel, os.Stderr)

	engine, err := parseEngine(viper.GetString("engine"))
	if err != nil {
		return err
	}

	cfg, err := loadSafetyConfig()
	if err != nil {
		return err
	}

	strategy := cfg.Strategy
	if s := viper.GetString("strategy"); s != "" {
		strategy, err = types.ParseViolationStrategy(strings.ToUpper(s))
		if err != nil {
			return err
		}
	}

	root, err := validator.New(
		validator.WithConfig(cfg),
		validator.WithEngine(engine),
		validator.WithLogger(log),
	)
	if err != nil {
		return err
	}

	files := args
	if len(files) == 0 {
		files = []string{"-"}
	}

	reports := make([]*fileReport, len(files))
	g, ctx := errgroup.WithContext(cmd.Context())
	for i, file := range files {
		g.Go(func() error {
			content, err := readInput(file)
			if err != nil {
				return err
			}
			report := &fileReport{File: file}
			worker := root.ForWorker()
			for n, sql := range analyzer.SplitStatements(engine, content) {
				result, err := worker.Validate(ctx, &types.Statement{SQL: sql})
				if err != nil {
					return errors.Wrapf(err, "%s: statement %d", file, n+1)
				}
				report.Statements = append(report.Statements, &statementReport{
					Index:   n + 1,
					SQL:     sql,
					Result:  result,
					Blocked: strategy == types.ViolationStrategy_BLOCK && !result.Passed(),
				})
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	switch format := viper.GetString("format"); format {
	case "json":
		err = printJSON(reports)
	case "text":
		err = printText(reports, viper.GetBool("verbose"))
	default:
		err = errors.Errorf("unsupported output format: %s", format)
	}
	if err != nil {
		return err
	}

	for _, report := range reports {
		for _, stmt := range report.Statements {
			if stmt.Blocked {
				os.Exit(1)
			}
		}
	}
	return nil
}

func parseEngine(name string) (types.Engine, error) {
	switch strings.ToLower(name) {
	case "mysql":
		return types.Engine_MYSQL, nil
	case "postgres", "postgresql":
		return types.Engine_POSTGRES, nil
	case "tidb":
		return types.Engine_TIDB, nil
	case "mariadb":
		return types.Engine_MARIADB, nil
	case "oceanbase":
		return types.Engine_OCEANBASE, nil
	default:
		return types.Engine_ENGINE_UNSPECIFIED, errors.Errorf("unsupported database engine: %s", name)
	}
}

func loadSafetyConfig() (*config.SafetyConfig, error) {
	if path := viper.GetString("config"); path != "" {
		return config.Load(path)
	}
	return config.Default(), nil
}

func readInput(file string) (string, error) {
	if file == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", errors.Wrap(err, "failed to read standard input")
		}
		return string(data), nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read SQL file: %s", file)
	}
	return string(data), nil
}

func printJSON(reports []*fileReport) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(map[string]interface{}{
		"files": reports,
	})
}

var levelColors = map[types.RiskLevel]*color.Color{
	types.RiskLevel_SAFE:     color.New(color.FgGreen),
	types.RiskLevel_LOW:      color.New(color.FgCyan),
	types.RiskLevel_MEDIUM:   color.New(color.FgYellow),
	types.RiskLevel_HIGH:     color.New(color.FgRed),
	types.RiskLevel_CRITICAL: color.New(color.FgRed, color.Bold),
}

func printText(reports []*fileReport, verbose bool) error {
	total, flagged, blocked := 0, 0, 0
	for _, report := range reports {
		for _, stmt := range report.Statements {
			total++
			if stmt.Result.Passed() {
				if verbose {
					fmt.Printf("%s %s:%d %s\n", levelColors[types.RiskLevel_SAFE].Sprint("PASS"), report.File, stmt.Index, firstLine(stmt.SQL))
				}
				continue
			}
			flagged++
			if stmt.Blocked {
				blocked++
			}
			fmt.Printf("%s %s:%d %s\n", levelColors[stmt.Result.Level].Sprint(stmt.Result.Level.String()), report.File, stmt.Index, firstLine(stmt.SQL))
			for _, v := range stmt.Result.Violations {
				fmt.Printf("  %s %s (%s)\n", levelColors[v.Level].Sprintf("[%s]", v.Level), v.Message, v.Rule)
				if v.Suggestion != "" {
					fmt.Printf("      %s\n", v.Suggestion)
				}
			}
			fmt.Println()
		}
	}
	fmt.Printf("checked %d statement(s): %d flagged, %d would be blocked\n", total, flagged, blocked)
	return nil
}

func firstLine(sql string) string {
	if i := strings.IndexByte(sql, '\n'); i >= 0 {
		return sql[:i] + " ..."
	}
	return sql
}
