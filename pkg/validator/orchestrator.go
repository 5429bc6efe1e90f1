package validator

import (
	"context"
	"fmt"

	"github.com/nsxbet/sqlguard/pkg/analyzer"
	"github.com/nsxbet/sqlguard/pkg/checker"
	"github.com/nsxbet/sqlguard/pkg/config"
	"github.com/nsxbet/sqlguard/pkg/logger"
	"github.com/nsxbet/sqlguard/pkg/rules/safety"
	"github.com/nsxbet/sqlguard/pkg/types"
)

// ruleTiers fixes the evaluation order, most severe first. Order is a
// property of the engine, not of the config file.
var ruleTiers = [][]checker.Type{
	{
		checker.SafetyRuleRequireWhere,
		checker.SafetyRuleDisallowLogicalPagination,
		checker.SafetyRuleRequirePaginationWhere,
		checker.SafetyRuleDisallowMultiStatement,
		checker.SafetyRuleDisallowComment,
		checker.SafetyRuleDisallowFileWrite,
		checker.SafetyRuleDisallowDDL,
		checker.SafetyRuleDisallowTableAccess,
		checker.SafetyRuleDisallowSetOperation,
		checker.SafetyRuleDisallowDangerousFunction,
		checker.SafetyRuleDisallowInjectionPattern,
	},
	{
		checker.SafetyRuleDisallowDummyWhere,
		checker.SafetyRuleDisallowBlacklistOnlyWhere,
		checker.SafetyRuleDisallowTableWrite,
		checker.SafetyRuleDisallowProcedureCall,
		checker.SafetyRuleDisallowMetadata,
	},
	{
		checker.SafetyRuleRequireWhereField,
		checker.SafetyRuleMaxPaginationOffset,
		checker.SafetyRuleMaxPageSize,
		checker.SafetyRuleDisallowSetVariable,
		checker.SafetyRuleRequirePagination,
	},
	{
		checker.SafetyRuleRequireOrderBy,
	},
}

// run evaluates every enabled rule for the statement. Rule failures
// become diagnostic violations instead of aborting the pass, so one
// broken rule cannot disable the rest of the protection.
func (v *Validator) run(ctx context.Context, cfg *config.SafetyConfig, stmt *types.Statement) *types.ValidationResult {
	result := types.NewValidationResult()
	facts := analyzer.Analyze(v.engine, stmt)

	rules := make(map[string]*types.SafetyRule)
	for _, rule := range cfg.RulesForEngine(v.engine) {
		rules[rule.Type] = rule
	}

	skip := make(map[checker.Type]bool)
	for _, tier := range ruleTiers {
		for _, checkType := range tier {
			if skip[checkType] {
				continue
			}
			rule := rules[string(checkType)]
			if rule == nil || !rule.Enabled {
				continue
			}
			if !checker.Registered(v.engine, checkType) {
				continue
			}
			if exemptFromRule(rule, stmt, facts) {
				continue
			}

			violations, err := checker.Run(ctx, v.engine, checkType, checker.Context{
				Statement:           stmt,
				Facts:               facts,
				Rule:                rule,
				Engine:              v.engine,
				HasPaginationPlugin: v.paginationPlugin,
			})
			if err != nil {
				v.logger.Error("safety rule failed", "rule", checkType, logger.Error(err))
				result.Add(diagnosticViolation(checkType, err))
				continue
			}
			for _, violation := range violations {
				result.Add(violation)
			}
			if len(violations) > 0 && checkType == checker.SafetyRuleRequirePaginationWhere {
				// An unconditioned LIMIT already covers the missing
				// pagination finding.
				skip[checker.SafetyRuleRequirePagination] = true
			}
		}
	}

	result.RecomputeLevel()
	return result
}

// exemptFromRule applies the rule's exemption lists before it runs. A
// statement is exempt by ID, or when it references at least one table
// and every referenced table is on the rule's exempt list.
func exemptFromRule(rule *types.SafetyRule, stmt *types.Statement, facts *analyzer.Facts) bool {
	if stmt != nil && stmt.StatementID != "" {
		for _, pattern := range rule.ExemptStatements {
			if safety.MatchStatementPattern(pattern, stmt.StatementID) {
				return true
			}
		}
	}
	if len(rule.ExemptTables) > 0 && facts.Structural != nil && len(facts.Structural.Tables) > 0 {
		for _, table := range facts.Structural.Tables {
			if !safety.MatchAnyTablePattern(rule.ExemptTables, table) {
				return false
			}
		}
		return true
	}
	return false
}

func diagnosticViolation(checkType checker.Type, err error) *types.Violation {
	code := checker.Internal
	if _, ok := err.(*checker.PanicError); ok {
		code = checker.CheckPanic
	}
	return &types.Violation{
		Rule:       string(checkType),
		Code:       code.Int32(),
		Level:      types.RiskLevel_LOW,
		Message:    fmt.Sprintf("Safety rule %s failed and was skipped for this statement.", checkType),
		Suggestion: "Review the rule's configuration and the validator logs.",
	}
}
