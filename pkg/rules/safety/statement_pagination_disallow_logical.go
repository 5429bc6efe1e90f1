package safety

import (
	"context"

	"github.com/nsxbet/sqlguard/pkg/checker"
	"github.com/nsxbet/sqlguard/pkg/types"
)

// LogicalPaginationChecker flags queries paginated only by an out-of-band
// pagination request. Without a LIMIT in the SQL and without a plugin that
// rewrites the query, the driver fetches the full result set and discards
// rows client side.
type LogicalPaginationChecker struct{}

// Check implements checker.Checker.
func (*LogicalPaginationChecker) Check(ctx context.Context, checkCtx checker.Context) ([]*types.Violation, error) {
	facts := checkCtx.Facts
	if facts == nil || facts.Structural == nil {
		return nil, nil
	}
	if facts.Command != types.SQLCommandType_SELECT {
		return nil, nil
	}
	if checkCtx.Statement == nil || checkCtx.Statement.Pagination == nil {
		return nil, nil
	}
	if facts.Structural.HasLimit || checkCtx.HasPaginationPlugin {
		return nil, nil
	}
	return []*types.Violation{newViolation(checkCtx,
		checker.StatementLogicalPagination,
		types.RiskLevel_CRITICAL,
		"Pagination is requested but the query has no LIMIT, so the full result set is fetched and paged in memory.",
		"Add LIMIT and OFFSET to the SQL, or register a pagination plugin that rewrites the query.",
	)}, nil
}
