package safety

import (
	"context"
	"fmt"
	"strings"

	"github.com/nsxbet/sqlguard/pkg/checker"
	"github.com/nsxbet/sqlguard/pkg/types"
)

var defaultDangerousFunctions = []string{
	"load_file",
	"sys_exec",
	"sys_eval",
	"sleep",
	"benchmark",
	"pg_sleep",
	"waitfor",
	"xp_cmdshell",
	"dbms_pipe.receive_message",
}

// DangerousFunctionChecker flags calls to functions used for file reads,
// command execution and time-based blind injection probes. Function
// names come from the syntax tree when the statement parses and from the
// lexical scan when it does not.
type DangerousFunctionChecker struct{}

// Check implements checker.Checker.
func (*DangerousFunctionChecker) Check(ctx context.Context, checkCtx checker.Context) ([]*types.Violation, error) {
	facts := checkCtx.Facts
	if facts == nil {
		return nil, nil
	}
	denied := make(map[string]bool)
	for _, name := range payloadStringsOr(checkCtx, "functions", defaultDangerousFunctions) {
		// Names keep their qualifier, dbms_pipe.receive_message is one entry.
		denied[strings.ToLower(strings.TrimSpace(name))] = true
	}
	var violations []*types.Violation
	seen := make(map[string]bool)
	for _, name := range facts.CalledFunctions() {
		if !denied[name] || seen[name] {
			continue
		}
		seen[name] = true
		violations = append(violations, newViolation(checkCtx,
			checker.StatementDangerousFunction,
			types.RiskLevel_CRITICAL,
			fmt.Sprintf("Call to dangerous function %q is not allowed.", name),
			"Remove the call; these functions have no place in application queries.",
		))
	}
	return violations, nil
}
