package safety

import (
	"context"
	"fmt"

	"github.com/nsxbet/sqlguard/pkg/checker"
	"github.com/nsxbet/sqlguard/pkg/types"
)

// WhereRequireChecker flags SELECT, UPDATE and DELETE statements that
// carry no WHERE clause at all. An always-true WHERE still counts as
// present here; that is the dummy-condition checker's finding.
type WhereRequireChecker struct{}

// Check implements checker.Checker.
func (*WhereRequireChecker) Check(ctx context.Context, checkCtx checker.Context) ([]*types.Violation, error) {
	facts := checkCtx.Facts
	if facts == nil || facts.Structural == nil {
		return nil, nil
	}
	if !isDML(facts.Command) {
		return nil, nil
	}
	if facts.Structural.HasWhere {
		return nil, nil
	}
	return []*types.Violation{newViolation(checkCtx,
		checker.StatementNoWhere,
		types.RiskLevel_CRITICAL,
		fmt.Sprintf("%s statement has no WHERE clause.", facts.Command),
		"Add a WHERE clause that narrows the affected rows.",
	)}, nil
}
