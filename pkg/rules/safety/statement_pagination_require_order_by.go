package safety

import (
	"context"

	"github.com/nsxbet/sqlguard/pkg/checker"
	"github.com/nsxbet/sqlguard/pkg/types"
)

// RequireOrderByChecker flags paginated queries without an ORDER BY.
// Without a deterministic order the pages can overlap or skip rows
// between requests. With minPageSize set, small pages are tolerated.
type RequireOrderByChecker struct{}

// Check implements checker.Checker.
func (*RequireOrderByChecker) Check(ctx context.Context, checkCtx checker.Context) ([]*types.Violation, error) {
	facts := checkCtx.Facts
	if facts == nil || facts.Structural == nil {
		return nil, nil
	}
	if facts.Command != types.SQLCommandType_SELECT {
		return nil, nil
	}
	paginated := facts.Structural.HasLimit ||
		(checkCtx.Statement != nil && checkCtx.Statement.Pagination != nil)
	if !paginated || facts.Structural.HasOrderBy {
		return nil, nil
	}
	pageSize := int64(-1)
	if checkCtx.Statement != nil && checkCtx.Statement.Pagination != nil {
		pageSize = checkCtx.Statement.Pagination.Limit
	} else if facts.Structural.HasLimit {
		pageSize = facts.Structural.LimitCount
	}
	minPageSize := int64(payloadIntOr(checkCtx, "minPageSize", 0))
	if minPageSize > 0 && (pageSize < 0 || pageSize < minPageSize) {
		return nil, nil
	}
	return []*types.Violation{newViolation(checkCtx,
		checker.StatementMissingOrderBy,
		types.RiskLevel_LOW,
		"Paginated query has no ORDER BY, so page boundaries are not deterministic.",
		"Order by a unique column, for example the primary key, to keep pages stable.",
	)}, nil
}
