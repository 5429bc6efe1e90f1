package safety

import (
	"context"
	"fmt"

	"github.com/nsxbet/sqlguard/pkg/checker"
	"github.com/nsxbet/sqlguard/pkg/types"
)

const defaultMaxPageSize = 1000

// LargePageSizeChecker flags page sizes beyond a threshold. Oversized
// pages defeat the point of paginating and spike memory on both the
// database and the client.
type LargePageSizeChecker struct{}

// Check implements checker.Checker.
func (*LargePageSizeChecker) Check(ctx context.Context, checkCtx checker.Context) ([]*types.Violation, error) {
	facts := checkCtx.Facts
	if facts == nil || facts.Structural == nil {
		return nil, nil
	}
	if facts.Command != types.SQLCommandType_SELECT {
		return nil, nil
	}
	limit := int64(-1)
	if checkCtx.Statement != nil && checkCtx.Statement.Pagination != nil {
		limit = checkCtx.Statement.Pagination.Limit
	} else if facts.Structural.HasLimit {
		limit = facts.Structural.LimitCount
	}
	maxLimit := int64(payloadIntOr(checkCtx, "maxLimit", defaultMaxPageSize))
	if limit <= maxLimit {
		return nil, nil
	}
	return []*types.Violation{newViolation(checkCtx,
		checker.StatementPageSizeLimit,
		types.RiskLevel_MEDIUM,
		fmt.Sprintf("Page size %d exceeds the allowed maximum of %d.", limit, maxLimit),
		"Fetch smaller pages and iterate, or stream the result instead.",
	)}, nil
}
