package analyzer

import (
	"strconv"
	"strings"

	"github.com/antlr4-go/antlr/v4"
	parser "github.com/bytebase/parser/postgresql"

	"github.com/nsxbet/sqlguard/pkg/pgparser"
	"github.com/nsxbet/sqlguard/pkg/types"
)

// analyzePostgresStructural parses the text as one batch and walks the
// tree. Clause facts come from the first statement outside any
// parenthesized subexpression, names from everywhere.
func analyzePostgresStructural(sql string) (*StructuralFacts, types.SQLCommandType, error) {
	result, err := pgparser.ParsePostgreSQL(sql)
	if err != nil {
		return nil, types.SQLCommandType_COMMAND_UNSPECIFIED, err
	}

	facts := &StructuralFacts{}
	listener := &pgFactsListener{
		facts:     facts,
		tableSeen: make(map[string]bool),
		writeSeen: make(map[string]bool),
		fieldSeen: make(map[string]bool),
		funcSeen:  make(map[string]bool),
	}
	antlr.ParseTreeWalkerDefault.Walk(listener, result.Tree)
	return facts, listener.command, nil
}

type pgFactsListener struct {
	*parser.BasePostgreSQLParserListener

	facts   *StructuralFacts
	command types.SQLCommandType

	stmtIndex  int
	parenDepth int
	whereDepth int
	sawLimit   bool
	sawOffset  bool

	tableSeen map[string]bool
	writeSeen map[string]bool
	fieldSeen map[string]bool
	funcSeen  map[string]bool
}

func (l *pgFactsListener) primary() bool {
	return l.stmtIndex <= 1
}

func (l *pgFactsListener) setCommand(command types.SQLCommandType) {
	if l.primary() && l.parenDepth == 0 && l.command == types.SQLCommandType_COMMAND_UNSPECIFIED {
		l.command = command
	}
}

func (l *pgFactsListener) EnterStmt(*parser.StmtContext) {
	l.stmtIndex++
	l.facts.StatementCount++
}

func (l *pgFactsListener) EnterSelect_with_parens(*parser.Select_with_parensContext) {
	l.parenDepth++
}

func (l *pgFactsListener) ExitSelect_with_parens(*parser.Select_with_parensContext) {
	l.parenDepth--
}

func (l *pgFactsListener) EnterSelectstmt(*parser.SelectstmtContext) {
	l.setCommand(types.SQLCommandType_SELECT)
}

func (l *pgFactsListener) EnterWhere_clause(ctx *parser.Where_clauseContext) {
	l.enterWhere(ctx)
}

func (l *pgFactsListener) ExitWhere_clause(*parser.Where_clauseContext) {
	l.exitWhere()
}

func (l *pgFactsListener) EnterWhere_or_current_clause(ctx *parser.Where_or_current_clauseContext) {
	l.enterWhere(ctx)
}

func (l *pgFactsListener) ExitWhere_or_current_clause(*parser.Where_or_current_clauseContext) {
	l.exitWhere()
}

func (l *pgFactsListener) enterWhere(ctx antlr.ParserRuleContext) {
	if !l.primary() || l.parenDepth != 0 {
		return
	}
	l.whereDepth++
	if !l.facts.HasWhere {
		l.facts.HasWhere = true
		l.facts.WhereText = whereBody(ctx)
	}
}

func (l *pgFactsListener) exitWhere() {
	if l.primary() && l.parenDepth == 0 && l.whereDepth > 0 {
		l.whereDepth--
	}
}

func (l *pgFactsListener) EnterColumnref(ctx *parser.ColumnrefContext) {
	if !l.primary() || l.parenDepth != 0 || l.whereDepth == 0 || ctx.Colid() == nil {
		return
	}
	parts := []string{pgparser.NormalizePostgreSQLColid(ctx.Colid())}
	if ctx.Indirection() != nil {
		parts = append(parts, pgparser.NormalizePostgreSQLIndirection(ctx.Indirection())...)
	}
	l.addWhereField(parts[len(parts)-1])
}

func (l *pgFactsListener) EnterSort_clause(*parser.Sort_clauseContext) {
	if l.primary() && l.parenDepth == 0 {
		l.facts.HasOrderBy = true
	}
}

func (l *pgFactsListener) EnterLimit_clause(ctx *parser.Limit_clauseContext) {
	if !l.primary() || l.parenDepth != 0 || l.sawLimit {
		return
	}
	l.sawLimit = true
	l.facts.HasLimit = true
	l.facts.LimitCount = -1
	if v := ctx.Select_limit_value(); v != nil && v.A_expr() != nil {
		if n, err := strconv.ParseInt(v.GetText(), 10, 64); err == nil {
			l.facts.LimitCount = n
		}
	} else if v := ctx.Select_fetch_first_value(); v != nil {
		if n, err := strconv.ParseInt(v.GetText(), 10, 64); err == nil {
			l.facts.LimitCount = n
		}
	}
	// LIMIT count, offset is accepted for compatibility.
	if v := ctx.Select_offset_value(); v != nil && !l.sawOffset {
		l.sawOffset = true
		l.facts.LimitOffset = -1
		if n, err := strconv.ParseInt(v.GetText(), 10, 64); err == nil {
			l.facts.LimitOffset = n
		}
	}
}

func (l *pgFactsListener) EnterOffset_clause(ctx *parser.Offset_clauseContext) {
	if !l.primary() || l.parenDepth != 0 || l.sawOffset {
		return
	}
	l.sawOffset = true
	// OFFSET without LIMIT still pages through the table.
	l.facts.HasLimit = true
	if !l.sawLimit {
		l.facts.LimitCount = -1
	}
	l.facts.LimitOffset = -1
	if v := ctx.Select_offset_value(); v != nil {
		if n, err := strconv.ParseInt(v.GetText(), 10, 64); err == nil {
			l.facts.LimitOffset = n
		}
	} else if v := ctx.Select_fetch_first_value(); v != nil {
		if n, err := strconv.ParseInt(v.GetText(), 10, 64); err == nil {
			l.facts.LimitOffset = n
		}
	}
}

func (l *pgFactsListener) EnterUpdatestmt(ctx *parser.UpdatestmtContext) {
	l.setCommand(types.SQLCommandType_UPDATE)
	l.addRelationTarget(ctx.Relation_expr_opt_alias())
}

func (l *pgFactsListener) EnterDeletestmt(ctx *parser.DeletestmtContext) {
	l.setCommand(types.SQLCommandType_DELETE)
	l.addRelationTarget(ctx.Relation_expr_opt_alias())
}

func (l *pgFactsListener) EnterInsertstmt(ctx *parser.InsertstmtContext) {
	l.setCommand(types.SQLCommandType_INSERT)
	if ctx.Insert_target() == nil || ctx.Insert_target().Qualified_name() == nil {
		return
	}
	parts := pgparser.NormalizePostgreSQLQualifiedName(ctx.Insert_target().Qualified_name())
	if len(parts) > 0 {
		l.addWriteTable(parts[len(parts)-1])
	}
}

func (l *pgFactsListener) addRelationTarget(ctx parser.IRelation_expr_opt_aliasContext) {
	if ctx == nil || ctx.Relation_expr() == nil || ctx.Relation_expr().Qualified_name() == nil {
		return
	}
	parts := pgparser.NormalizePostgreSQLQualifiedName(ctx.Relation_expr().Qualified_name())
	if len(parts) > 0 {
		l.addWriteTable(parts[len(parts)-1])
	}
}

func (l *pgFactsListener) EnterQualified_name(ctx *parser.Qualified_nameContext) {
	parts := pgparser.NormalizePostgreSQLQualifiedName(ctx)
	if len(parts) > 0 {
		l.addTable(parts[len(parts)-1])
	}
}

func (l *pgFactsListener) EnterFunc_application(ctx *parser.Func_applicationContext) {
	if ctx.Func_name() == nil {
		return
	}
	parts := pgparser.NormalizePostgreSQLFuncName(ctx.Func_name())
	if len(parts) == 0 {
		return
	}
	l.addFunction(strings.ToLower(strings.Join(parts, ".")))
}

func (l *pgFactsListener) addTable(name string) {
	name = strings.ToLower(name)
	if name == "" || l.tableSeen[name] {
		return
	}
	l.tableSeen[name] = true
	l.facts.Tables = append(l.facts.Tables, name)
}

func (l *pgFactsListener) addWriteTable(name string) {
	name = strings.ToLower(name)
	if name == "" || l.writeSeen[name] {
		return
	}
	l.writeSeen[name] = true
	l.facts.WriteTables = append(l.facts.WriteTables, name)
}

func (l *pgFactsListener) addWhereField(name string) {
	name = strings.ToLower(name)
	if name == "" || l.fieldSeen[name] {
		return
	}
	l.fieldSeen[name] = true
	l.facts.WhereFields = append(l.facts.WhereFields, name)
}

func (l *pgFactsListener) addFunction(name string) {
	if name == "" || l.funcSeen[name] {
		return
	}
	l.funcSeen[name] = true
	l.facts.FunctionNames = append(l.facts.FunctionNames, name)
}
