package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nsxbet/sqlguard/pkg/types"
)

func TestAnalyzeMySQLSelect(t *testing.T) {
	stmt := &types.Statement{
		SQL: "SELECT id, name FROM users WHERE tenant_id = 10 AND status = 'active' ORDER BY id LIMIT 20, 10",
	}
	facts := Analyze(types.Engine_MYSQL, stmt)

	require.False(t, facts.ParseFailed)
	require.NotNil(t, facts.Structural)
	require.Equal(t, types.SQLCommandType_SELECT, facts.Command)

	s := facts.Structural
	require.True(t, s.HasWhere)
	require.Equal(t, "tenant_id = 10 AND status = 'active'", s.WhereText)
	require.Equal(t, []string{"tenant_id", "status"}, s.WhereFields)
	require.Equal(t, []string{"users"}, s.Tables)
	require.True(t, s.HasLimit)
	require.Equal(t, int64(10), s.LimitCount)
	require.Equal(t, int64(20), s.LimitOffset)
	require.True(t, s.HasOrderBy)
	require.Equal(t, 1, s.StatementCount)
}

func TestAnalyzeMySQLLimitOffsetForms(t *testing.T) {
	tests := []struct {
		sql    string
		count  int64
		offset int64
	}{
		{"SELECT * FROM t LIMIT 100", 100, 0},
		{"SELECT * FROM t LIMIT 10 OFFSET 30", 10, 30},
		{"SELECT * FROM t LIMIT 30, 10", 10, 30},
	}
	for _, test := range tests {
		facts := Analyze(types.Engine_MYSQL, &types.Statement{SQL: test.sql})
		require.NotNil(t, facts.Structural, "sql: %q", test.sql)
		require.True(t, facts.Structural.HasLimit, "sql: %q", test.sql)
		require.Equal(t, test.count, facts.Structural.LimitCount, "sql: %q", test.sql)
		require.Equal(t, test.offset, facts.Structural.LimitOffset, "sql: %q", test.sql)
	}
}

func TestAnalyzeMySQLWriteTargets(t *testing.T) {
	facts := Analyze(types.Engine_MYSQL, &types.Statement{SQL: "DELETE FROM orders WHERE created_at < '2020-01-01'"})
	require.Equal(t, types.SQLCommandType_DELETE, facts.Command)
	require.Equal(t, []string{"orders"}, facts.Structural.WriteTables)
	require.True(t, facts.Structural.HasWhere)

	facts = Analyze(types.Engine_MYSQL, &types.Statement{SQL: "UPDATE users SET status = 'gone' WHERE id = 5"})
	require.Equal(t, types.SQLCommandType_UPDATE, facts.Command)
	require.Equal(t, []string{"users"}, facts.Structural.WriteTables)
	require.Equal(t, []string{"id"}, facts.Structural.WhereFields)

	facts = Analyze(types.Engine_MYSQL, &types.Statement{SQL: "INSERT INTO audit_log (action) VALUES ('x')"})
	require.Equal(t, types.SQLCommandType_INSERT, facts.Command)
	require.Equal(t, []string{"audit_log"}, facts.Structural.WriteTables)
}

func TestAnalyzeMySQLSubqueryIsolation(t *testing.T) {
	stmt := &types.Statement{
		SQL: "SELECT * FROM t1 WHERE id IN (SELECT ref_id FROM t2 WHERE deleted = 0 LIMIT 5)",
	}
	facts := Analyze(types.Engine_MYSQL, stmt)

	s := facts.Structural
	require.NotNil(t, s)
	require.Equal(t, []string{"t1", "t2"}, s.Tables)
	require.Equal(t, []string{"id"}, s.WhereFields)
	require.False(t, s.HasLimit)
	require.True(t, s.HasWhere)
}

func TestAnalyzeMySQLFunctions(t *testing.T) {
	facts := Analyze(types.Engine_MYSQL, &types.Statement{SQL: "SELECT SLEEP(5) FROM t"})
	require.Contains(t, facts.CalledFunctions(), "sleep")
}

func TestAnalyzeMySQLNoWhere(t *testing.T) {
	facts := Analyze(types.Engine_MYSQL, &types.Statement{SQL: "SELECT * FROM t LIMIT 100"})
	s := facts.Structural
	require.NotNil(t, s)
	require.False(t, s.HasWhere)
	require.True(t, s.HasLimit)
	require.Equal(t, int64(100), s.LimitCount)
	require.False(t, s.HasOrderBy)
}

func TestAnalyzeParseFailure(t *testing.T) {
	facts := Analyze(types.Engine_MYSQL, &types.Statement{SQL: "SELEC * FROM t"})
	require.True(t, facts.ParseFailed)
	require.NotEmpty(t, facts.ParseError)
	require.Nil(t, facts.Structural)
	require.NotNil(t, facts.Lexical)
	require.Equal(t, types.SQLCommandType_UNKNOWN, facts.Command)
}

func TestAnalyzeDeclaredCommandWins(t *testing.T) {
	facts := Analyze(types.Engine_MYSQL, &types.Statement{SQL: "SELECT 1", Command: types.SQLCommandType_UPDATE})
	require.Equal(t, types.SQLCommandType_UPDATE, facts.Command)
}

func TestAnalyzeMultiStatement(t *testing.T) {
	facts := Analyze(types.Engine_MYSQL, &types.Statement{SQL: "SELECT 1; SELECT 2"})
	require.Equal(t, 2, facts.Lexical.StatementCount)
	require.NotNil(t, facts.Structural)
	require.Equal(t, 2, facts.Structural.StatementCount)
}

func TestAnalyzePostgresSelect(t *testing.T) {
	stmt := &types.Statement{
		SQL: "SELECT id FROM accounts WHERE balance > 0 ORDER BY id LIMIT 50 OFFSET 100",
	}
	facts := Analyze(types.Engine_POSTGRES, stmt)

	require.False(t, facts.ParseFailed)
	require.Equal(t, types.SQLCommandType_SELECT, facts.Command)

	s := facts.Structural
	require.NotNil(t, s)
	require.True(t, s.HasWhere)
	require.Equal(t, "balance > 0", s.WhereText)
	require.Equal(t, []string{"balance"}, s.WhereFields)
	require.Equal(t, []string{"accounts"}, s.Tables)
	require.True(t, s.HasLimit)
	require.Equal(t, int64(50), s.LimitCount)
	require.Equal(t, int64(100), s.LimitOffset)
	require.True(t, s.HasOrderBy)
}

func TestAnalyzePostgresWriteTargets(t *testing.T) {
	facts := Analyze(types.Engine_POSTGRES, &types.Statement{SQL: "UPDATE accounts SET balance = 0 WHERE id = 7"})
	require.Equal(t, types.SQLCommandType_UPDATE, facts.Command)
	require.Equal(t, []string{"accounts"}, facts.Structural.WriteTables)
	require.True(t, facts.Structural.HasWhere)
	require.Equal(t, []string{"id"}, facts.Structural.WhereFields)

	facts = Analyze(types.Engine_POSTGRES, &types.Statement{SQL: "DELETE FROM sessions"})
	require.Equal(t, types.SQLCommandType_DELETE, facts.Command)
	require.Equal(t, []string{"sessions"}, facts.Structural.WriteTables)
	require.False(t, facts.Structural.HasWhere)

	facts = Analyze(types.Engine_POSTGRES, &types.Statement{SQL: "INSERT INTO audit_log (action) VALUES ('x')"})
	require.Equal(t, types.SQLCommandType_INSERT, facts.Command)
	require.Equal(t, []string{"audit_log"}, facts.Structural.WriteTables)
}

func TestAnalyzePostgresFunctions(t *testing.T) {
	facts := Analyze(types.Engine_POSTGRES, &types.Statement{SQL: "SELECT pg_sleep(10)"})
	require.Contains(t, facts.CalledFunctions(), "pg_sleep")
}

func TestAnalyzePostgresParseFailure(t *testing.T) {
	facts := Analyze(types.Engine_POSTGRES, &types.Statement{SQL: "SELEC 1"})
	require.True(t, facts.ParseFailed)
	require.Nil(t, facts.Structural)
	require.NotNil(t, facts.Lexical)
}

func TestAnalyzeUnknownFirstKeyword(t *testing.T) {
	facts := Analyze(types.Engine_MYSQL, &types.Statement{SQL: "SHOW TABLES"})
	require.Equal(t, types.SQLCommandType_UNKNOWN, facts.Command)
	require.Equal(t, "SHOW", facts.Lexical.FirstKeyword)
}
