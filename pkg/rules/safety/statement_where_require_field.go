package safety

import (
	"context"
	"fmt"

	"github.com/nsxbet/sqlguard/pkg/checker"
	"github.com/nsxbet/sqlguard/pkg/types"
)

// RequireFieldChecker enforces per-table mandatory WHERE fields, for
// example tenant_id on multi-tenant tables. A table passes when its WHERE
// clause references at least one of the fields configured for it.
type RequireFieldChecker struct{}

// Check implements checker.Checker.
func (*RequireFieldChecker) Check(ctx context.Context, checkCtx checker.Context) ([]*types.Violation, error) {
	facts := checkCtx.Facts
	if facts == nil || facts.Structural == nil {
		return nil, nil
	}
	if !isDML(facts.Command) {
		return nil, nil
	}
	byTable, _, err := checker.PayloadStringListMap(rulePayload(checkCtx), "byTable")
	if err != nil {
		byTable = nil
	}
	global := payloadStringsOr(checkCtx, "global", nil)
	enforceUnknown := payloadBoolOr(checkCtx, "enforceForUnknownTables", false)

	present := make(map[string]bool, len(facts.Structural.WhereFields))
	for _, field := range facts.Structural.WhereFields {
		present[field] = true
	}

	var violations []*types.Violation
	for _, table := range facts.Structural.Tables {
		required, known := requiredFieldsFor(table, byTable)
		if !known {
			if len(global) == 0 || !enforceUnknown {
				continue
			}
			required = global
		}
		if len(required) == 0 {
			continue
		}
		if anyFieldPresent(present, required) {
			continue
		}
		violations = append(violations, newViolation(checkCtx,
			checker.StatementMissingRequiredField,
			types.RiskLevel_MEDIUM,
			fmt.Sprintf("Table %q requires one of the WHERE fields: %s.", table, joinFields(required)),
			"Filter on one of the required fields so the query stays scoped.",
		))
	}
	return violations, nil
}

func requiredFieldsFor(table string, byTable map[string][]string) ([]string, bool) {
	for pattern, fields := range byTable {
		if MatchTablePattern(pattern, table) {
			return fields, true
		}
	}
	return nil, false
}

func anyFieldPresent(present map[string]bool, required []string) bool {
	for _, field := range required {
		if present[normalizeName(field)] {
			return true
		}
	}
	return false
}
