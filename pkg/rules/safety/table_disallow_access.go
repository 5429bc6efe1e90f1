package safety

import (
	"context"
	"fmt"

	"github.com/nsxbet/sqlguard/pkg/checker"
	"github.com/nsxbet/sqlguard/pkg/types"
)

// TableAccessChecker flags any reference to a denied table, read or
// write, subqueries included. Patterns support a trailing wildcard so
// sys_* covers sys_user but not sys_user_detail.
type TableAccessChecker struct{}

// Check implements checker.Checker.
func (*TableAccessChecker) Check(ctx context.Context, checkCtx checker.Context) ([]*types.Violation, error) {
	facts := checkCtx.Facts
	if facts == nil || facts.Structural == nil {
		return nil, nil
	}
	denied := payloadStringsOr(checkCtx, "tables", nil)
	if len(denied) == 0 {
		return nil, nil
	}
	var violations []*types.Violation
	for _, table := range facts.Structural.Tables {
		if !MatchAnyTablePattern(denied, table) {
			continue
		}
		violations = append(violations, newViolation(checkCtx,
			checker.TableAccessDenied,
			types.RiskLevel_CRITICAL,
			fmt.Sprintf("Access to table %q is denied.", table),
			"Remove the table from the query or lift the restriction for this datasource.",
		))
	}
	return violations, nil
}
