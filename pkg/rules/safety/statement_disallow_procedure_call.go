package safety

import (
	"context"
	"fmt"
	"strings"

	"github.com/nsxbet/sqlguard/pkg/checker"
	"github.com/nsxbet/sqlguard/pkg/types"
)

var procedureKeywords = map[string]bool{
	"CALL":    true,
	"EXECUTE": true,
	"EXEC":    true,
}

// ProcedureCallChecker flags stored procedure invocations. Procedures
// run with definer privileges and sidestep statement-level review, so
// calling them from generic query paths is opaque to every other rule.
type ProcedureCallChecker struct{}

// Check implements checker.Checker.
func (*ProcedureCallChecker) Check(ctx context.Context, checkCtx checker.Context) ([]*types.Violation, error) {
	facts := checkCtx.Facts
	if facts == nil || facts.Lexical == nil {
		return nil, nil
	}
	if !procedureKeywords[facts.Lexical.FirstKeyword] {
		return nil, nil
	}
	message := "Stored procedure call is not allowed."
	if name := strings.ToLower(facts.Lexical.SecondKeyword); name != "" {
		message = fmt.Sprintf("Stored procedure call %q is not allowed.", name)
	}
	return []*types.Violation{newViolation(checkCtx,
		checker.StatementProcedureCall,
		types.RiskLevel_HIGH,
		message,
		"Inline the logic as plain statements so each one can be reviewed.",
	)}, nil
}
