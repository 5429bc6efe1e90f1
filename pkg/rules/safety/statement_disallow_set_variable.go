package safety

import (
	"context"
	"fmt"
	"regexp"

	"github.com/nsxbet/sqlguard/pkg/checker"
	"github.com/nsxbet/sqlguard/pkg/types"
)

var setVariablePattern = regexp.MustCompile(`(?i)^\s*SET\s+(?:GLOBAL\s+|SESSION\s+|LOCAL\s+)?([@A-Za-z_][@A-Za-z0-9_.]*)`)

// SetVariableChecker flags top-level SET statements. Changing session or
// global variables from a query path alters behavior for every later
// statement on the pooled connection.
type SetVariableChecker struct{}

// Check implements checker.Checker.
func (*SetVariableChecker) Check(ctx context.Context, checkCtx checker.Context) ([]*types.Violation, error) {
	facts := checkCtx.Facts
	if facts == nil || facts.Lexical == nil {
		return nil, nil
	}
	if facts.Lexical.FirstKeyword != "SET" {
		return nil, nil
	}
	message := "SET statement is not allowed."
	if m := setVariablePattern.FindStringSubmatch(facts.Lexical.Masked); m != nil {
		message = fmt.Sprintf("SET statement changes variable %q.", m[1])
	}
	return []*types.Violation{newViolation(checkCtx,
		checker.StatementSetVariable,
		types.RiskLevel_MEDIUM,
		message,
		"Configure the connection in the datasource settings instead of per-statement SET.",
	)}, nil
}
