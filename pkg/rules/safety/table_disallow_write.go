package safety

import (
	"context"
	"fmt"

	"github.com/nsxbet/sqlguard/pkg/checker"
	"github.com/nsxbet/sqlguard/pkg/types"
)

// TableWriteChecker flags INSERT, UPDATE and DELETE against read-only
// tables. Reading them is fine; only write targets are matched.
type TableWriteChecker struct{}

// Check implements checker.Checker.
func (*TableWriteChecker) Check(ctx context.Context, checkCtx checker.Context) ([]*types.Violation, error) {
	facts := checkCtx.Facts
	if facts == nil || facts.Structural == nil {
		return nil, nil
	}
	readonly := payloadStringsOr(checkCtx, "tables", nil)
	if len(readonly) == 0 {
		return nil, nil
	}
	var violations []*types.Violation
	for _, table := range facts.Structural.WriteTables {
		if !MatchAnyTablePattern(readonly, table) {
			continue
		}
		violations = append(violations, newViolation(checkCtx,
			checker.TableReadOnlyWrite,
			types.RiskLevel_HIGH,
			fmt.Sprintf("Table %q is read-only; writes are not allowed.", table),
			"Route the write through the owning service, this datasource only reads the table.",
		))
	}
	return violations, nil
}
