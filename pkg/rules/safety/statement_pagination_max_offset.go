package safety

import (
	"context"
	"fmt"

	"github.com/nsxbet/sqlguard/pkg/checker"
	"github.com/nsxbet/sqlguard/pkg/types"
)

const defaultMaxOffset = 10000

// DeepPaginationChecker flags pagination offsets beyond a threshold.
// OFFSET n makes the engine read and discard n rows, so deep pages cost
// as much as reading the whole prefix of the result set.
type DeepPaginationChecker struct{}

// Check implements checker.Checker.
func (*DeepPaginationChecker) Check(ctx context.Context, checkCtx checker.Context) ([]*types.Violation, error) {
	facts := checkCtx.Facts
	if facts == nil || facts.Structural == nil {
		return nil, nil
	}
	if facts.Command != types.SQLCommandType_SELECT {
		return nil, nil
	}
	offset := int64(-1)
	if checkCtx.Statement != nil && checkCtx.Statement.Pagination != nil {
		offset = checkCtx.Statement.Pagination.Offset
	} else if facts.Structural.HasLimit {
		offset = facts.Structural.LimitOffset
	}
	maxOffset := int64(payloadIntOr(checkCtx, "maxOffset", defaultMaxOffset))
	if offset <= maxOffset {
		return nil, nil
	}
	return []*types.Violation{newViolation(checkCtx,
		checker.StatementPaginationOffsetLimit,
		types.RiskLevel_MEDIUM,
		fmt.Sprintf("Pagination offset %d exceeds the allowed maximum of %d.", offset, maxOffset),
		"Use keyset pagination (WHERE id > last_seen) instead of large offsets.",
	)}, nil
}
