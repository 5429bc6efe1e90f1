package safety

import (
	"context"
	"fmt"

	"github.com/nsxbet/sqlguard/pkg/checker"
	"github.com/nsxbet/sqlguard/pkg/types"
)

var defaultBlacklistFields = []string{"deleted", "del_flag", "status", "is_deleted", "enabled", "type"}

// BlacklistFieldsChecker flags statements whose WHERE clause filters only
// on low-selectivity columns such as soft-delete flags. It fires when every
// field referenced in the WHERE clause matches the blacklist; a single
// selective column is enough to pass.
type BlacklistFieldsChecker struct{}

// Check implements checker.Checker.
func (*BlacklistFieldsChecker) Check(ctx context.Context, checkCtx checker.Context) ([]*types.Violation, error) {
	facts := checkCtx.Facts
	if facts == nil || facts.Structural == nil || !facts.Structural.HasWhere {
		return nil, nil
	}
	if !isDML(facts.Command) {
		return nil, nil
	}
	fields := facts.Structural.WhereFields
	if len(fields) == 0 {
		return nil, nil
	}
	blacklist := payloadStringsOr(checkCtx, "fields", defaultBlacklistFields)
	if !allFieldsMatch(fields, blacklist) {
		return nil, nil
	}
	return []*types.Violation{newViolation(checkCtx,
		checker.StatementBlacklistOnlyWhere,
		types.RiskLevel_HIGH,
		fmt.Sprintf("WHERE clause filters only on low-selectivity fields: %s.", joinFields(fields)),
		"Add at least one selective condition, for example a key or indexed column.",
	)}, nil
}
