package safety

import (
	"context"
	"fmt"
	"strings"

	"github.com/nsxbet/sqlguard/pkg/checker"
	"github.com/nsxbet/sqlguard/pkg/types"
)

var ddlKeywords = map[string]bool{
	"CREATE":   true,
	"ALTER":    true,
	"DROP":     true,
	"TRUNCATE": true,
}

// DDLChecker flags schema-changing statements issued through a runtime
// datasource. Individual operations can be allowed via allowedOperations.
type DDLChecker struct{}

// Check implements checker.Checker.
func (*DDLChecker) Check(ctx context.Context, checkCtx checker.Context) ([]*types.Violation, error) {
	facts := checkCtx.Facts
	if facts == nil || facts.Lexical == nil {
		return nil, nil
	}
	op := facts.Lexical.FirstKeyword
	if !ddlKeywords[op] {
		return nil, nil
	}
	for _, allowed := range payloadStringsOr(checkCtx, "allowedOperations", nil) {
		if strings.EqualFold(allowed, op) {
			return nil, nil
		}
	}
	return []*types.Violation{newViolation(checkCtx,
		checker.StatementDisallowedDDL,
		types.RiskLevel_CRITICAL,
		fmt.Sprintf("DDL operation %s is not allowed at runtime.", op),
		"Run schema changes through the migration pipeline, not the application datasource.",
	)}, nil
}
