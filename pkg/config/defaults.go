package config

import (
	"github.com/nsxbet/sqlguard/pkg/checker"
	"github.com/nsxbet/sqlguard/pkg/types"
)

// Defaults applied when the deduplication block is omitted.
const (
	DefaultCacheSize = 1000
	DefaultTTLMs     = 100
)

// Default returns the full rule set with built-in levels and payloads.
// The injection heuristic ships disabled; the table deny rules ship
// enabled but dormant until a tables list is configured.
func Default() *SafetyConfig {
	return &SafetyConfig{
		Enabled:  true,
		Strategy: types.ViolationStrategy_BLOCK,
		Deduplication: DeduplicationConfig{
			CacheSize: DefaultCacheSize,
			TTLMs:     DefaultTTLMs,
		},
		Rules: defaultRules(),
	}
}

// defaultRules lists every known rule type. Levels stay unset so each
// checker applies its own default; a config entry with a level is an
// override.
func defaultRules() []*types.SafetyRule {
	return []*types.SafetyRule{
		defaultRule(checker.SafetyRuleRequireWhere, true),
		defaultRule(checker.SafetyRuleDisallowDummyWhere, true),
		defaultRule(checker.SafetyRuleDisallowBlacklistOnlyWhere, true),
		defaultRule(checker.SafetyRuleRequireWhereField, true),

		defaultRule(checker.SafetyRuleDisallowLogicalPagination, true),
		defaultRule(checker.SafetyRuleRequirePaginationWhere, true),
		defaultRule(checker.SafetyRuleMaxPaginationOffset, true),
		defaultRule(checker.SafetyRuleMaxPageSize, true),
		defaultRule(checker.SafetyRuleRequirePagination, true),
		defaultRule(checker.SafetyRuleRequireOrderBy, true),

		defaultRule(checker.SafetyRuleDisallowMultiStatement, true),
		defaultRule(checker.SafetyRuleDisallowComment, true),
		defaultRule(checker.SafetyRuleDisallowFileWrite, true),
		defaultRule(checker.SafetyRuleDisallowDDL, true),
		defaultRule(checker.SafetyRuleDisallowSetOperation, true),
		defaultRule(checker.SafetyRuleDisallowProcedureCall, true),
		defaultRule(checker.SafetyRuleDisallowDangerousFunction, true),
		defaultRule(checker.SafetyRuleDisallowMetadata, true),
		defaultRule(checker.SafetyRuleDisallowSetVariable, true),
		defaultRule(checker.SafetyRuleDisallowInjectionPattern, false),

		defaultRule(checker.SafetyRuleDisallowTableAccess, true),
		defaultRule(checker.SafetyRuleDisallowTableWrite, true),
	}
}

func defaultRule(checkType checker.Type, enabled bool) *types.SafetyRule {
	return &types.SafetyRule{Type: string(checkType), Enabled: enabled}
}

// knownRuleTypes indexes the rule types Validate accepts.
var knownRuleTypes = func() map[string]bool {
	known := make(map[string]bool)
	for _, rule := range defaultRules() {
		known[rule.Type] = true
	}
	return known
}()
