package safety

import (
	"context"

	"github.com/nsxbet/sqlguard/pkg/analyzer"
	"github.com/nsxbet/sqlguard/pkg/checker"
	"github.com/nsxbet/sqlguard/pkg/types"
)

// NoConditionPaginationChecker flags physically paginated queries that
// have no usable WHERE clause. Paging through an unfiltered table walks
// the whole table one page at a time; deep pages get slower and slower.
type NoConditionPaginationChecker struct{}

// Check implements checker.Checker.
func (*NoConditionPaginationChecker) Check(ctx context.Context, checkCtx checker.Context) ([]*types.Violation, error) {
	facts := checkCtx.Facts
	if facts == nil || facts.Structural == nil {
		return nil, nil
	}
	if facts.Command != types.SQLCommandType_SELECT {
		return nil, nil
	}
	physical := facts.Structural.HasLimit
	if !physical && checkCtx.Statement != nil && checkCtx.Statement.Pagination != nil && checkCtx.HasPaginationPlugin {
		physical = true
	}
	if !physical {
		return nil, nil
	}
	if facts.Structural.HasWhere {
		patterns := payloadStringsOr(checkCtx, "patterns", defaultDummyPatterns)
		if !analyzer.IsDummyCondition(facts.Structural.WhereText, patterns) {
			return nil, nil
		}
	}
	return []*types.Violation{newViolation(checkCtx,
		checker.StatementUnboundedPagination,
		types.RiskLevel_CRITICAL,
		"Paginated query has no effective WHERE clause and will scan the whole table page by page.",
		"Add a filtering condition before paginating, for example a time range or a key bound.",
	)}, nil
}
