package analyzer

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/antlr4-go/antlr/v4"
	parser "github.com/gedhean/mysql-parser"

	"github.com/nsxbet/sqlguard/pkg/mysqlparser"
	"github.com/nsxbet/sqlguard/pkg/types"
)

const (
	nodeTypeSelectStatement         = "SelectStatement"
	nodeTypeSelectStatementWithInto = "SelectStatementWithInto"
	nodeTypeInsertStatement         = "InsertStatement"
	nodeTypeUpdateStatement         = "UpdateStatement"
	nodeTypeDeleteStatement         = "DeleteStatement"
	nodeTypeWhereClause             = "WhereClause"
	nodeTypeColumnRef               = "ColumnRef"
	nodeTypeTableRef                = "TableRef"
	nodeTypeLimitClause             = "LimitClause"
	nodeTypeOrderClause             = "OrderClause"
	nodeTypeFunctionCall            = "FunctionCall"
	nodeTypeSubquery                = "Subquery"
)

func nodeType(ctx antlr.ParserRuleContext) string {
	t := reflect.TypeOf(ctx)
	if t == nil {
		return ""
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return strings.TrimSuffix(t.Name(), "Context")
}

// analyzeMySQLStructural parses the text and walks every statement.
// Clause facts come from the first statement, table and function names
// from all of them.
func analyzeMySQLStructural(sql string) (*StructuralFacts, types.SQLCommandType, error) {
	results, err := mysqlparser.ParseMySQL(sql)
	if err != nil {
		return nil, types.SQLCommandType_COMMAND_UNSPECIFIED, err
	}

	facts := &StructuralFacts{}
	listener := &mysqlFactsListener{
		facts:     facts,
		tableSeen: make(map[string]bool),
		writeSeen: make(map[string]bool),
		fieldSeen: make(map[string]bool),
		funcSeen:  make(map[string]bool),
	}
	for i, res := range results {
		if res.Tree == nil {
			continue
		}
		facts.StatementCount++
		listener.primary = i == 0
		antlr.ParseTreeWalkerDefault.Walk(listener, res.Tree)
	}
	return facts, listener.command, nil
}

type mysqlFactsListener struct {
	*parser.BaseMySQLParserListener

	facts   *StructuralFacts
	command types.SQLCommandType

	// primary marks the first statement of a batch. Clause facts are
	// only taken from it.
	primary       bool
	subqueryDepth int
	whereDepth    int

	tableSeen map[string]bool
	writeSeen map[string]bool
	fieldSeen map[string]bool
	funcSeen  map[string]bool
}

func (l *mysqlFactsListener) EnterEveryRule(ctx antlr.ParserRuleContext) {
	switch nodeType(ctx) {
	case nodeTypeSubquery:
		l.subqueryDepth++
	case nodeTypeSelectStatement, nodeTypeSelectStatementWithInto:
		l.setCommand(types.SQLCommandType_SELECT)
	case nodeTypeInsertStatement:
		l.setCommand(types.SQLCommandType_INSERT)
		l.collectInsertTarget(ctx)
	case nodeTypeUpdateStatement:
		l.setCommand(types.SQLCommandType_UPDATE)
		l.collectUpdateTargets(ctx)
	case nodeTypeDeleteStatement:
		l.setCommand(types.SQLCommandType_DELETE)
		l.collectDeleteTargets(ctx)
	case nodeTypeWhereClause:
		if l.primary && l.subqueryDepth == 0 {
			l.whereDepth++
			if !l.facts.HasWhere {
				l.facts.HasWhere = true
				l.facts.WhereText = whereBody(ctx)
			}
		}
	case nodeTypeColumnRef:
		if l.primary && l.subqueryDepth == 0 && l.whereDepth > 0 {
			l.addWhereField(mysqlparser.NormalizeTableName(ctx.GetText()))
		}
	case nodeTypeTableRef:
		l.addTable(mysqlparser.NormalizeTableName(ctx.GetText()))
	case nodeTypeLimitClause:
		if l.primary && l.subqueryDepth == 0 && !l.facts.HasLimit {
			l.collectLimit(ctx)
		}
	case nodeTypeOrderClause:
		if l.primary && l.subqueryDepth == 0 {
			l.facts.HasOrderBy = true
		}
	case nodeTypeFunctionCall:
		l.collectFunction(ctx)
	}
}

func (l *mysqlFactsListener) ExitEveryRule(ctx antlr.ParserRuleContext) {
	switch nodeType(ctx) {
	case nodeTypeSubquery:
		l.subqueryDepth--
	case nodeTypeWhereClause:
		if l.primary && l.subqueryDepth == 0 && l.whereDepth > 0 {
			l.whereDepth--
		}
	}
}

func (l *mysqlFactsListener) setCommand(command types.SQLCommandType) {
	if l.primary && l.subqueryDepth == 0 && l.command == types.SQLCommandType_COMMAND_UNSPECIFIED {
		l.command = command
	}
}

func (l *mysqlFactsListener) addTable(name string) {
	name = strings.ToLower(name)
	if name == "" || l.tableSeen[name] {
		return
	}
	l.tableSeen[name] = true
	l.facts.Tables = append(l.facts.Tables, name)
}

func (l *mysqlFactsListener) addWriteTable(name string) {
	name = strings.ToLower(name)
	if name == "" || l.writeSeen[name] {
		return
	}
	l.writeSeen[name] = true
	l.facts.WriteTables = append(l.facts.WriteTables, name)
}

func (l *mysqlFactsListener) addWhereField(name string) {
	name = strings.ToLower(name)
	if name == "" || l.fieldSeen[name] {
		return
	}
	l.fieldSeen[name] = true
	l.facts.WhereFields = append(l.facts.WhereFields, name)
}

func (l *mysqlFactsListener) addFunction(name string) {
	if name == "" || l.funcSeen[name] {
		return
	}
	l.funcSeen[name] = true
	l.facts.FunctionNames = append(l.facts.FunctionNames, name)
}

func (l *mysqlFactsListener) collectInsertTarget(ctx antlr.ParserRuleContext) {
	insertCtx, ok := ctx.(*parser.InsertStatementContext)
	if !ok || insertCtx.TableRef() == nil {
		return
	}
	l.addWriteTable(mysqlparser.NormalizeTableName(insertCtx.TableRef().GetText()))
}

func (l *mysqlFactsListener) collectUpdateTargets(ctx antlr.ParserRuleContext) {
	updateCtx, ok := ctx.(*parser.UpdateStatementContext)
	if !ok || updateCtx.TableReferenceList() == nil {
		return
	}
	for _, ref := range updateCtx.TableReferenceList().AllTableReference() {
		factor := ref.TableFactor()
		if factor == nil || factor.SingleTable() == nil || factor.SingleTable().TableRef() == nil {
			continue
		}
		l.addWriteTable(mysqlparser.NormalizeTableName(factor.SingleTable().TableRef().GetText()))
	}
}

func (l *mysqlFactsListener) collectDeleteTargets(ctx antlr.ParserRuleContext) {
	deleteCtx, ok := ctx.(*parser.DeleteStatementContext)
	if !ok {
		return
	}
	if deleteCtx.TableRef() != nil {
		l.addWriteTable(mysqlparser.NormalizeTableName(deleteCtx.TableRef().GetText()))
		return
	}
	// Multi-table form names its targets before FROM.
	if deleteCtx.TableAliasRefList() == nil {
		return
	}
	for _, ref := range deleteCtx.TableAliasRefList().AllTableRefWithWildcard() {
		text := strings.TrimSuffix(ref.GetText(), ".*")
		l.addWriteTable(mysqlparser.NormalizeTableName(text))
	}
}

func (l *mysqlFactsListener) collectLimit(ctx antlr.ParserRuleContext) {
	limitCtx, ok := ctx.(*parser.LimitClauseContext)
	if !ok || limitCtx.LIMIT_SYMBOL() == nil {
		return
	}
	l.facts.HasLimit = true
	l.facts.LimitCount = -1
	l.facts.LimitOffset = -1
	opts := limitCtx.LimitOptions()
	if opts == nil {
		return
	}
	var values []int64
	for _, opt := range opts.AllLimitOption() {
		v, err := strconv.ParseInt(opt.GetText(), 10, 64)
		if err != nil {
			// Placeholder or expression, keep the values unknown.
			return
		}
		values = append(values, v)
	}
	switch len(values) {
	case 1:
		l.facts.LimitCount, l.facts.LimitOffset = values[0], 0
	case 2:
		if opts.OFFSET_SYMBOL() != nil {
			// LIMIT count OFFSET offset
			l.facts.LimitCount, l.facts.LimitOffset = values[0], values[1]
		} else {
			// LIMIT offset, count
			l.facts.LimitOffset, l.facts.LimitCount = values[0], values[1]
		}
	}
}

func (l *mysqlFactsListener) collectFunction(ctx antlr.ParserRuleContext) {
	funcCtx, ok := ctx.(*parser.FunctionCallContext)
	if !ok {
		return
	}
	if funcCtx.PureIdentifier() != nil {
		l.addFunction(strings.ToLower(mysqlparser.NormalizeMySQLPureIdentifier(funcCtx.PureIdentifier())))
		return
	}
	l.addFunction(normalizeCallName(funcCtx.GetText()))
}

// normalizeCallName lowercases a possibly qualified call name, the
// argument list and quoting stripped.
func normalizeCallName(text string) string {
	if idx := strings.Index(text, "("); idx >= 0 {
		text = text[:idx]
	}
	parts := strings.Split(text, ".")
	for i, p := range parts {
		parts[i] = mysqlparser.NormalizeIdentifierText(strings.TrimSpace(p))
	}
	return strings.ToLower(strings.Join(parts, "."))
}

// whereBody returns the clause text with original spacing, the WHERE
// keyword stripped.
func whereBody(ctx antlr.ParserRuleContext) string {
	text := ctx.(interface{ GetParser() antlr.Parser }).GetParser().GetTokenStream().GetTextFromRuleContext(ctx)
	trimmed := strings.TrimSpace(text)
	if len(trimmed) >= 5 && strings.EqualFold(trimmed[:5], "WHERE") {
		trimmed = strings.TrimSpace(trimmed[5:])
	}
	return trimmed
}
