package safety

import (
	"context"
	"fmt"

	"github.com/nsxbet/sqlguard/pkg/checker"
	"github.com/nsxbet/sqlguard/pkg/types"
)

// MultiStatementChecker flags SQL that contains more than one statement.
// Stacked statements are the classic injection payload shape and most
// drivers do not expect them on a single execute call. The count comes
// from the lexical scan, so a semicolon inside a string literal or one
// trailing semicolon never counts.
type MultiStatementChecker struct{}

// Check implements checker.Checker.
func (*MultiStatementChecker) Check(ctx context.Context, checkCtx checker.Context) ([]*types.Violation, error) {
	facts := checkCtx.Facts
	if facts == nil || facts.Lexical == nil {
		return nil, nil
	}
	count := facts.Lexical.StatementCount
	if count <= 1 {
		return nil, nil
	}
	return []*types.Violation{newViolation(checkCtx,
		checker.StatementMultiStatement,
		types.RiskLevel_CRITICAL,
		fmt.Sprintf("SQL contains %d statements; only one is allowed per execution.", count),
		"Execute each statement separately.",
	)}, nil
}
