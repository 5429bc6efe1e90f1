package safety

import (
	"context"
	"fmt"

	"github.com/nsxbet/sqlguard/pkg/checker"
	"github.com/nsxbet/sqlguard/pkg/types"
)

// FileWriteChecker flags SELECT ... INTO OUTFILE and INTO DUMPFILE.
// Both write files on the database server with the server's privileges,
// which is a data exfiltration and webshell-drop primitive. Registered
// for the MySQL family only.
type FileWriteChecker struct{}

// Check implements checker.Checker.
func (*FileWriteChecker) Check(ctx context.Context, checkCtx checker.Context) ([]*types.Violation, error) {
	facts := checkCtx.Facts
	if facts == nil || facts.Lexical == nil || facts.Lexical.IntoFile == nil {
		return nil, nil
	}
	into := facts.Lexical.IntoFile
	message := fmt.Sprintf("Statement writes a server-side file via INTO %s.", into.Kind)
	if into.Target != "" {
		message = fmt.Sprintf("Statement writes server-side file %q via INTO %s.", into.Target, into.Kind)
	}
	return []*types.Violation{newViolation(checkCtx,
		checker.StatementFileWrite,
		types.RiskLevel_CRITICAL,
		message,
		"Export data through the application layer instead of writing files on the database host.",
	)}, nil
}
