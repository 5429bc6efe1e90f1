package safety

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nsxbet/sqlguard/pkg/checker"
	"github.com/nsxbet/sqlguard/pkg/types"
)

func TestMultiStatementChecker(t *testing.T) {
	rule := enabledRule(checker.SafetyRuleDisallowMultiStatement, nil)
	tests := []struct {
		name string
		sql  string
		want int
	}{
		{"two statements", "SELECT 1; DELETE FROM orders", 1},
		{"trailing semicolon only", "SELECT 1;", 0},
		{"semicolon inside literal", "SELECT * FROM logs WHERE line = 'a;b'", 0},
		{"single statement", "SELECT * FROM orders WHERE id = 1", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := runCheck(t, &MultiStatementChecker{}, mysqlCheckContext(tt.sql, rule))
			require.Len(t, violations, tt.want)
			if tt.want > 0 {
				require.Equal(t, checker.StatementMultiStatement.Int32(), violations[0].Code)
				require.Equal(t, types.RiskLevel_CRITICAL, violations[0].Level)
			}
		})
	}
}

func TestCommentChecker(t *testing.T) {
	rule := enabledRule(checker.SafetyRuleDisallowComment, nil)
	tests := []struct {
		name string
		sql  string
		want int
	}{
		{"line comment", "SELECT * FROM orders WHERE id = 1 -- debug", 1},
		{"block comment", "SELECT /* fast path */ * FROM orders WHERE id = 1", 1},
		{"hash comment", "SELECT * FROM orders WHERE id = 1 # note", 1},
		{"hint comment", "SELECT /*+ MAX_EXECUTION_TIME(1000) */ * FROM orders WHERE id = 1", 1},
		{"comment text inside literal", "SELECT * FROM logs WHERE line = '--x'", 0},
		{"clean statement", "SELECT * FROM orders WHERE id = 1", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := runCheck(t, &CommentChecker{}, mysqlCheckContext(tt.sql, rule))
			require.Len(t, violations, tt.want)
			if tt.want > 0 {
				require.Equal(t, checker.StatementHasComment.Int32(), violations[0].Code)
				require.Equal(t, types.RiskLevel_CRITICAL, violations[0].Level)
			}
		})
	}
}

func TestCommentCheckerAllowHints(t *testing.T) {
	rule := enabledRule(checker.SafetyRuleDisallowComment, map[string]interface{}{
		"allowHintComments": true,
	})
	violations := runCheck(t, &CommentChecker{}, mysqlCheckContext(
		"SELECT /*+ MAX_EXECUTION_TIME(1000) */ * FROM orders WHERE id = 1", rule))
	require.Empty(t, violations)

	violations = runCheck(t, &CommentChecker{}, mysqlCheckContext(
		"SELECT /* plain */ * FROM orders WHERE id = 1", rule))
	require.Len(t, violations, 1)
}

func TestFileWriteChecker(t *testing.T) {
	rule := enabledRule(checker.SafetyRuleDisallowFileWrite, nil)

	violations := runCheck(t, &FileWriteChecker{}, mysqlCheckContext(
		"SELECT * FROM users INTO OUTFILE '/tmp/users.csv'", rule))
	require.Len(t, violations, 1)
	require.Equal(t, checker.StatementFileWrite.Int32(), violations[0].Code)
	require.Equal(t, types.RiskLevel_CRITICAL, violations[0].Level)
	require.Contains(t, violations[0].Message, "/tmp/users.csv")
	require.Contains(t, violations[0].Message, "OUTFILE")

	violations = runCheck(t, &FileWriteChecker{}, mysqlCheckContext(
		"SELECT password FROM users LIMIT 1 INTO DUMPFILE '/tmp/raw'", rule))
	require.Len(t, violations, 1)
	require.Contains(t, violations[0].Message, "DUMPFILE")

	violations = runCheck(t, &FileWriteChecker{}, mysqlCheckContext(
		"SELECT * FROM logs WHERE line = 'INTO OUTFILE'", rule))
	require.Empty(t, violations)
}

func TestDDLChecker(t *testing.T) {
	rule := enabledRule(checker.SafetyRuleDisallowDDL, nil)
	tests := []struct {
		name string
		sql  string
		want int
	}{
		{"drop table", "DROP TABLE users", 1},
		{"truncate", "TRUNCATE TABLE logs", 1},
		{"create table", "CREATE TABLE t (id INT)", 1},
		{"alter table", "ALTER TABLE t ADD COLUMN c INT", 1},
		{"select passes", "SELECT * FROM orders WHERE id = 1", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := runCheck(t, &DDLChecker{}, mysqlCheckContext(tt.sql, rule))
			require.Len(t, violations, tt.want)
			if tt.want > 0 {
				require.Equal(t, checker.StatementDisallowedDDL.Int32(), violations[0].Code)
				require.Equal(t, types.RiskLevel_CRITICAL, violations[0].Level)
			}
		})
	}
}

func TestDDLCheckerAllowedOperations(t *testing.T) {
	rule := enabledRule(checker.SafetyRuleDisallowDDL, map[string]interface{}{
		"allowedOperations": []string{"truncate"},
	})
	violations := runCheck(t, &DDLChecker{}, mysqlCheckContext("TRUNCATE TABLE logs", rule))
	require.Empty(t, violations)

	violations = runCheck(t, &DDLChecker{}, mysqlCheckContext("DROP TABLE logs", rule))
	require.Len(t, violations, 1)
}

func TestSetOperationChecker(t *testing.T) {
	rule := enabledRule(checker.SafetyRuleDisallowSetOperation, nil)

	violations := runCheck(t, &SetOperationChecker{}, mysqlCheckContext(
		"SELECT id FROM a UNION SELECT id FROM b", rule))
	require.Len(t, violations, 1)
	require.Equal(t, checker.StatementDisallowedSetOperation.Int32(), violations[0].Code)
	require.Contains(t, violations[0].Message, "UNION")

	violations = runCheck(t, &SetOperationChecker{}, mysqlCheckContext(
		"SELECT id FROM a UNION ALL SELECT id FROM b", rule))
	require.Len(t, violations, 1)
	require.Contains(t, violations[0].Message, "UNION ALL")

	violations = runCheck(t, &SetOperationChecker{}, mysqlCheckContext(
		"SELECT * FROM reunions WHERE name = 'UNION'", rule))
	require.Empty(t, violations)
}

func TestSetOperationCheckerAllowed(t *testing.T) {
	rule := enabledRule(checker.SafetyRuleDisallowSetOperation, map[string]interface{}{
		"allowedOperations": []string{"UNION ALL"},
	})
	violations := runCheck(t, &SetOperationChecker{}, mysqlCheckContext(
		"SELECT id FROM a UNION ALL SELECT id FROM b", rule))
	require.Empty(t, violations)

	violations = runCheck(t, &SetOperationChecker{}, mysqlCheckContext(
		"SELECT id FROM a UNION SELECT id FROM b", rule))
	require.Len(t, violations, 1)
}

func TestProcedureCallChecker(t *testing.T) {
	rule := enabledRule(checker.SafetyRuleDisallowProcedureCall, nil)

	violations := runCheck(t, &ProcedureCallChecker{}, mysqlCheckContext("CALL sync_users(1)", rule))
	require.Len(t, violations, 1)
	require.Equal(t, checker.StatementProcedureCall.Int32(), violations[0].Code)
	require.Equal(t, types.RiskLevel_HIGH, violations[0].Level)
	require.Contains(t, violations[0].Message, "sync_users")

	violations = runCheck(t, &ProcedureCallChecker{}, mysqlCheckContext("SELECT * FROM calls WHERE id = 1", rule))
	require.Empty(t, violations)
}

func TestDangerousFunctionChecker(t *testing.T) {
	rule := enabledRule(checker.SafetyRuleDisallowDangerousFunction, nil)
	tests := []struct {
		name string
		sql  string
		want int
	}{
		{"sleep", "SELECT sleep(5)", 1},
		{"benchmark in where", "SELECT * FROM t WHERE id = benchmark(1000000, md5('x'))", 1},
		{"load_file", "SELECT load_file('/etc/passwd')", 1},
		{"harmless functions", "SELECT count(*), max(id) FROM orders WHERE tenant_id = 1", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := runCheck(t, &DangerousFunctionChecker{}, mysqlCheckContext(tt.sql, rule))
			require.Len(t, violations, tt.want)
			if tt.want > 0 {
				require.Equal(t, checker.StatementDangerousFunction.Int32(), violations[0].Code)
				require.Equal(t, types.RiskLevel_CRITICAL, violations[0].Level)
			}
		})
	}
}

func TestDangerousFunctionCheckerSurvivesParseFailure(t *testing.T) {
	rule := enabledRule(checker.SafetyRuleDisallowDangerousFunction, nil)
	violations := runCheck(t, &DangerousFunctionChecker{}, mysqlCheckContext(
		"SELEC sleep(5) FRO dual", rule))
	require.Len(t, violations, 1)
	require.Contains(t, violations[0].Message, "sleep")
}

func TestDangerousFunctionCheckerCustomList(t *testing.T) {
	rule := enabledRule(checker.SafetyRuleDisallowDangerousFunction, map[string]interface{}{
		"functions": []string{"uuid"},
	})
	violations := runCheck(t, &DangerousFunctionChecker{}, mysqlCheckContext("SELECT uuid()", rule))
	require.Len(t, violations, 1)

	violations = runCheck(t, &DangerousFunctionChecker{}, mysqlCheckContext("SELECT sleep(5)", rule))
	require.Empty(t, violations)
}

func TestMetadataChecker(t *testing.T) {
	rule := enabledRule(checker.SafetyRuleDisallowMetadata, nil)
	tests := []struct {
		name string
		sql  string
		want int
	}{
		{"show tables", "SHOW TABLES", 1},
		{"describe", "DESCRIBE users", 1},
		{"desc", "DESC users", 1},
		{"use database", "USE analytics", 1},
		{"select passes", "SELECT * FROM orders WHERE id = 1", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := runCheck(t, &MetadataChecker{}, mysqlCheckContext(tt.sql, rule))
			require.Len(t, violations, tt.want)
			if tt.want > 0 {
				require.Equal(t, checker.StatementMetadataAccess.Int32(), violations[0].Code)
				require.Equal(t, types.RiskLevel_HIGH, violations[0].Level)
			}
		})
	}
}

func TestMetadataCheckerAllowedStatements(t *testing.T) {
	rule := enabledRule(checker.SafetyRuleDisallowMetadata, map[string]interface{}{
		"allowedStatements": []string{"SHOW"},
	})
	violations := runCheck(t, &MetadataChecker{}, mysqlCheckContext("SHOW TABLES", rule))
	require.Empty(t, violations)

	violations = runCheck(t, &MetadataChecker{}, mysqlCheckContext("USE analytics", rule))
	require.Len(t, violations, 1)
}

func TestSetVariableChecker(t *testing.T) {
	rule := enabledRule(checker.SafetyRuleDisallowSetVariable, nil)

	violations := runCheck(t, &SetVariableChecker{}, mysqlCheckContext("SET @batch_size = 100", rule))
	require.Len(t, violations, 1)
	require.Equal(t, checker.StatementSetVariable.Int32(), violations[0].Code)
	require.Equal(t, types.RiskLevel_MEDIUM, violations[0].Level)
	require.Contains(t, violations[0].Message, "@batch_size")

	violations = runCheck(t, &SetVariableChecker{}, mysqlCheckContext(
		"SET GLOBAL max_connections = 500", rule))
	require.Len(t, violations, 1)
	require.Contains(t, violations[0].Message, "max_connections")

	violations = runCheck(t, &SetVariableChecker{}, mysqlCheckContext(
		"UPDATE settings SET value = 1 WHERE id = 3", rule))
	require.Empty(t, violations)
}

func TestInjectionPatternChecker(t *testing.T) {
	rule := enabledRule(checker.SafetyRuleDisallowInjectionPattern, nil)

	// The literal decodes to: ' OR 1=1 -- -
	violations := runCheck(t, &InjectionPatternChecker{}, mysqlCheckContext(
		"SELECT * FROM users WHERE name = ''' OR 1=1 -- -'", rule))
	require.Len(t, violations, 1)
	require.Equal(t, checker.StatementInjectionPattern.Int32(), violations[0].Code)
	require.Equal(t, types.RiskLevel_CRITICAL, violations[0].Level)

	violations = runCheck(t, &InjectionPatternChecker{}, mysqlCheckContext(
		"SELECT * FROM users WHERE name = 'alice'", rule))
	require.Empty(t, violations)
}
