package safety

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nsxbet/sqlguard/pkg/checker"
	"github.com/nsxbet/sqlguard/pkg/types"
)

func TestWhereRequireChecker(t *testing.T) {
	rule := enabledRule(checker.SafetyRuleRequireWhere, nil)
	tests := []struct {
		name string
		sql  string
		want int
	}{
		{"delete without where", "DELETE FROM orders", 1},
		{"update without where", "UPDATE orders SET status = 1", 1},
		{"select without where", "SELECT * FROM orders", 1},
		{"select with limit but no where", "SELECT * FROM orders LIMIT 100", 1},
		{"delete with where", "DELETE FROM orders WHERE id = 5", 0},
		{"always true where still counts as present", "SELECT * FROM orders WHERE 1=1", 0},
		{"insert is not checked", "INSERT INTO orders (id) VALUES (1)", 0},
		{"parse failure skips", "SELEC * FROM orders", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := runCheck(t, &WhereRequireChecker{}, mysqlCheckContext(tt.sql, rule))
			require.Len(t, violations, tt.want)
			if tt.want > 0 {
				require.Equal(t, checker.StatementNoWhere.Int32(), violations[0].Code)
				require.Equal(t, types.RiskLevel_CRITICAL, violations[0].Level)
			}
		})
	}
}

func TestWhereRequireCheckerNamesCommand(t *testing.T) {
	violations := runCheck(t, &WhereRequireChecker{}, mysqlCheckContext("DELETE FROM orders", enabledRule(checker.SafetyRuleRequireWhere, nil)))
	require.Len(t, violations, 1)
	require.Contains(t, violations[0].Message, "DELETE")
}

func TestDummyWhereChecker(t *testing.T) {
	rule := enabledRule(checker.SafetyRuleDisallowDummyWhere, nil)
	tests := []struct {
		name string
		sql  string
		want int
	}{
		{"one equals one", "SELECT * FROM orders WHERE 1=1", 1},
		{"one equals one spaced", "DELETE FROM orders WHERE 1 = 1", 1},
		{"quoted tautology", "SELECT * FROM orders WHERE 'a'='a'", 1},
		{"tautology behind or", "UPDATE orders SET x = 1 WHERE id = 5 OR 2=2", 1},
		{"tautology behind and", "SELECT * FROM orders WHERE id = 5 AND 2=2", 0},
		{"real condition", "SELECT * FROM orders WHERE deleted = 0", 0},
		{"no where at all", "SELECT * FROM orders", 0},
		{"parse failure skips", "SELEC * FROM orders WHERE 1=1", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := runCheck(t, &DummyWhereChecker{}, mysqlCheckContext(tt.sql, rule))
			require.Len(t, violations, tt.want)
			if tt.want > 0 {
				require.Equal(t, checker.StatementDummyWhere.Int32(), violations[0].Code)
				require.Equal(t, types.RiskLevel_HIGH, violations[0].Level)
			}
		})
	}
}

func TestDummyWhereCheckerCustomPatterns(t *testing.T) {
	rule := enabledRule(checker.SafetyRuleDisallowDummyWhere, map[string]interface{}{
		"patterns": []string{"status > -1"},
	})
	violations := runCheck(t, &DummyWhereChecker{}, mysqlCheckContext("SELECT * FROM orders WHERE status > -1", rule))
	require.Len(t, violations, 1)

	// The same clause passes under the default patterns.
	violations = runCheck(t, &DummyWhereChecker{}, mysqlCheckContext("SELECT * FROM orders WHERE status > -1", enabledRule(checker.SafetyRuleDisallowDummyWhere, nil)))
	require.Empty(t, violations)
}

func TestBlacklistFieldsChecker(t *testing.T) {
	rule := enabledRule(checker.SafetyRuleDisallowBlacklistOnlyWhere, nil)
	tests := []struct {
		name string
		sql  string
		want int
	}{
		{"only soft delete flag", "SELECT * FROM orders WHERE deleted = 0", 1},
		{"only blacklisted fields", "SELECT * FROM orders WHERE is_deleted = 0 AND status = 1", 1},
		{"selective field saves it", "SELECT * FROM orders WHERE deleted = 0 AND tenant_id = 7", 0},
		{"no where", "DELETE FROM orders", 0},
		{"where without column refs", "SELECT * FROM orders WHERE 1=1", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := runCheck(t, &BlacklistFieldsChecker{}, mysqlCheckContext(tt.sql, rule))
			require.Len(t, violations, tt.want)
			if tt.want > 0 {
				require.Equal(t, checker.StatementBlacklistOnlyWhere.Int32(), violations[0].Code)
				require.Equal(t, types.RiskLevel_HIGH, violations[0].Level)
			}
		})
	}
}

func TestBlacklistFieldsCheckerListsFields(t *testing.T) {
	rule := enabledRule(checker.SafetyRuleDisallowBlacklistOnlyWhere, nil)
	violations := runCheck(t, &BlacklistFieldsChecker{}, mysqlCheckContext(
		"SELECT * FROM orders WHERE is_deleted = 0 AND status = 1", rule))
	require.Len(t, violations, 1)
	require.Contains(t, violations[0].Message, "is_deleted, status")
}

func TestRequireFieldChecker(t *testing.T) {
	rule := enabledRule(checker.SafetyRuleRequireWhereField, map[string]interface{}{
		"byTable": map[string][]string{
			"orders":   {"tenant_id"},
			"events_*": {"tenant_id", "shard_id"},
		},
	})
	tests := []struct {
		name string
		sql  string
		want int
	}{
		{"mapped table missing field", "SELECT * FROM orders WHERE id = 5", 1},
		{"mapped table has field", "SELECT * FROM orders WHERE tenant_id = 3 AND id = 5", 0},
		{"wildcard table any of two", "SELECT * FROM events_hot WHERE shard_id = 2", 0},
		{"wildcard table missing both", "SELECT * FROM events_hot WHERE id = 9", 1},
		{"unmapped table skipped", "SELECT * FROM users WHERE id = 5", 0},
		{"insert is not checked", "INSERT INTO orders (id) VALUES (1)", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := runCheck(t, &RequireFieldChecker{}, mysqlCheckContext(tt.sql, rule))
			require.Len(t, violations, tt.want)
			if tt.want > 0 {
				require.Equal(t, checker.StatementMissingRequiredField.Int32(), violations[0].Code)
				require.Equal(t, types.RiskLevel_MEDIUM, violations[0].Level)
			}
		})
	}
}

func TestRequireFieldCheckerUnknownTables(t *testing.T) {
	rule := enabledRule(checker.SafetyRuleRequireWhereField, map[string]interface{}{
		"global":                  []string{"tenant_id"},
		"enforceForUnknownTables": true,
	})
	violations := runCheck(t, &RequireFieldChecker{}, mysqlCheckContext("SELECT * FROM users WHERE id = 5", rule))
	require.Len(t, violations, 1)
	require.Contains(t, violations[0].Message, "tenant_id")

	violations = runCheck(t, &RequireFieldChecker{}, mysqlCheckContext("SELECT * FROM users WHERE tenant_id = 5", rule))
	require.Empty(t, violations)
}
