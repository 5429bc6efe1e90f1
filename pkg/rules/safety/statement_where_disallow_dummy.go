package safety

import (
	"context"
	"fmt"

	"github.com/nsxbet/sqlguard/pkg/analyzer"
	"github.com/nsxbet/sqlguard/pkg/checker"
	"github.com/nsxbet/sqlguard/pkg/types"
)

var defaultDummyPatterns = []string{"1=1", "true", "'a'='a'"}

// DummyWhereChecker flags WHERE clauses that are always true, either by
// matching a configured pattern or by comparing a literal with itself.
// It only fires when a WHERE clause exists.
type DummyWhereChecker struct{}

// Check implements checker.Checker.
func (*DummyWhereChecker) Check(ctx context.Context, checkCtx checker.Context) ([]*types.Violation, error) {
	facts := checkCtx.Facts
	if facts == nil || facts.Structural == nil || !facts.Structural.HasWhere {
		return nil, nil
	}
	if !isDML(facts.Command) {
		return nil, nil
	}
	patterns := payloadStringsOr(checkCtx, "patterns", defaultDummyPatterns)
	if !analyzer.IsDummyCondition(facts.Structural.WhereText, patterns) {
		return nil, nil
	}
	return []*types.Violation{newViolation(checkCtx,
		checker.StatementDummyWhere,
		types.RiskLevel_HIGH,
		fmt.Sprintf("WHERE clause %q is always true.", facts.Structural.WhereText),
		"Replace the tautology with a condition that actually filters rows.",
	)}, nil
}
