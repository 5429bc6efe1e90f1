package safety

import (
	"context"
	"fmt"

	"github.com/nsxbet/sqlguard/pkg/analyzer"
	"github.com/nsxbet/sqlguard/pkg/checker"
	"github.com/nsxbet/sqlguard/pkg/types"
)

// RequirePaginationChecker flags SELECT statements that page nothing at
// all: no LIMIT in the SQL and no pagination request on the side. The
// risk is tiered by how well the WHERE clause bounds the result set.
// Queries pinned to a unique key are exempt; they return at most one row.
type RequirePaginationChecker struct{}

// Check implements checker.Checker.
func (*RequirePaginationChecker) Check(ctx context.Context, checkCtx checker.Context) ([]*types.Violation, error) {
	facts := checkCtx.Facts
	if facts == nil || facts.Structural == nil {
		return nil, nil
	}
	if facts.Command != types.SQLCommandType_SELECT {
		return nil, nil
	}
	if facts.Structural.HasLimit {
		return nil, nil
	}
	if checkCtx.Statement != nil && checkCtx.Statement.Pagination != nil {
		return nil, nil
	}

	structural := facts.Structural
	uniqueKeys := append([]string{"id"}, payloadStringsOr(checkCtx, "uniqueKeyFields", nil)...)
	if structural.HasWhere {
		for _, key := range uniqueKeys {
			if hasEqualityOn(structural.WhereText, key) {
				return nil, nil
			}
		}
	}

	dummy := structural.HasWhere &&
		analyzer.IsDummyCondition(structural.WhereText, payloadStringsOr(checkCtx, "patterns", defaultDummyPatterns))
	if !structural.HasWhere || dummy {
		return []*types.Violation{newViolation(checkCtx,
			checker.StatementMissingPagination,
			types.RiskLevel_CRITICAL,
			"Unpaginated SELECT has no effective WHERE clause and can return the whole table.",
			"Add a LIMIT clause or pass a pagination request with the statement.",
		)}, nil
	}

	blacklist := payloadStringsOr(checkCtx, "blacklistFields", defaultBlacklistFields)
	if len(structural.WhereFields) > 0 && allFieldsMatch(structural.WhereFields, blacklist) {
		return []*types.Violation{newViolation(checkCtx,
			checker.StatementMissingPagination,
			types.RiskLevel_HIGH,
			fmt.Sprintf("Unpaginated SELECT filters only on low-selectivity fields: %s.", joinFields(structural.WhereFields)),
			"Add a LIMIT clause; the current conditions do not bound the result size.",
		)}, nil
	}

	if payloadBoolOr(checkCtx, "enforceForAllQueries", false) {
		return []*types.Violation{newViolation(checkCtx,
			checker.StatementMissingPagination,
			types.RiskLevel_MEDIUM,
			"SELECT has no LIMIT clause and no pagination request.",
			"Add a LIMIT clause to cap the result size.",
		)}, nil
	}
	return nil, nil
}

func allFieldsMatch(fields, patterns []string) bool {
	for _, field := range fields {
		if !MatchAnyTablePattern(patterns, field) {
			return false
		}
	}
	return true
}
