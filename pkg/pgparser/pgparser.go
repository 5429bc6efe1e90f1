// Package pgparser wraps the ANTLR PostgreSQL parser and provides
// identifier normalization helpers for statement analysis.
package pgparser

import (
	"fmt"
	"strings"

	"github.com/antlr4-go/antlr/v4"
	parser "github.com/bytebase/parser/postgresql"

	"github.com/nsxbet/sqlguard/pkg/types"
)

// ParseResult contains the parsed SQL statement tree and tokens.
type ParseResult struct {
	Tree   antlr.Tree
	Tokens *antlr.CommonTokenStream
}

// SyntaxError represents a SQL syntax error with position information.
type SyntaxError struct {
	Message  string
	Position *types.Position
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	if e.Position != nil {
		return fmt.Sprintf("syntax error at line %d, column %d: %s",
			e.Position.Line, e.Position.Column, e.Message)
	}
	return fmt.Sprintf("syntax error: %s", e.Message)
}

// syntaxErrorListener collects the first syntax error during parsing.
type syntaxErrorListener struct {
	*antlr.DefaultErrorListener
	err *SyntaxError
}

func (l *syntaxErrorListener) SyntaxError(
	_ antlr.Recognizer,
	_ interface{},
	line, column int,
	msg string,
	_ antlr.RecognitionException,
) {
	if l.err == nil {
		l.err = &SyntaxError{
			Message: msg,
			Position: &types.Position{
				Line:   int32(line),
				Column: int32(column),
			},
		}
	}
}

// ParsePostgreSQL parses a PostgreSQL SQL text and returns the parse tree.
func ParsePostgreSQL(sql string) (*ParseResult, error) {
	inputStream := antlr.NewInputStream(sql)
	lexer := parser.NewPostgreSQLLexer(inputStream)

	lexerErrorListener := &syntaxErrorListener{}
	lexer.RemoveErrorListeners()
	lexer.AddErrorListener(lexerErrorListener)

	stream := antlr.NewCommonTokenStream(lexer, antlr.TokenDefaultChannel)

	p := parser.NewPostgreSQLParser(stream)
	p.BuildParseTrees = true

	parserErrorListener := &syntaxErrorListener{}
	p.RemoveErrorListeners()
	p.AddErrorListener(parserErrorListener)

	tree := p.Root()

	if lexerErrorListener.err != nil {
		return nil, lexerErrorListener.err
	}
	if parserErrorListener.err != nil {
		return nil, parserErrorListener.err
	}
	if tree == nil {
		return nil, &SyntaxError{
			Message: "failed to parse SQL statement",
		}
	}

	return &ParseResult{
		Tree:   tree,
		Tokens: stream,
	}, nil
}

// NormalizePostgreSQLQualifiedName normalizes a qualified name (schema.table).
// Returns a slice of name parts (e.g., ["schema", "table"]).
func NormalizePostgreSQLQualifiedName(ctx parser.IQualified_nameContext) []string {
	if ctx == nil {
		return []string{}
	}

	res := []string{NormalizePostgreSQLColid(ctx.Colid())}

	if ctx.Indirection() != nil {
		res = append(res, NormalizePostgreSQLIndirection(ctx.Indirection())...)
	}
	return res
}

// NormalizePostgreSQLIndirection normalizes the trailing parts of a
// dotted name.
func NormalizePostgreSQLIndirection(ctx parser.IIndirectionContext) []string {
	if ctx == nil {
		return []string{}
	}

	var res []string
	for _, child := range ctx.AllIndirection_el() {
		res = append(res, normalizePostgreSQLIndirectionEl(child))
	}
	return res
}

func normalizePostgreSQLIndirectionEl(ctx parser.IIndirection_elContext) string {
	if ctx == nil {
		return ""
	}

	if ctx.DOT() != nil {
		if ctx.STAR() != nil {
			return "*"
		}
		return normalizePostgreSQLAttrName(ctx.Attr_name())
	}
	return ctx.GetText()
}

func normalizePostgreSQLAttrName(ctx parser.IAttr_nameContext) string {
	return normalizePostgreSQLCollabel(ctx.Collabel())
}

func normalizePostgreSQLCollabel(ctx parser.ICollabelContext) string {
	if ctx == nil {
		return ""
	}
	if ctx.Identifier() != nil {
		return normalizePostgreSQLIdentifier(ctx.Identifier())
	}
	return strings.ToLower(ctx.GetText())
}

// NormalizePostgreSQLColid normalizes a column identifier.
func NormalizePostgreSQLColid(ctx parser.IColidContext) string {
	if ctx == nil {
		return ""
	}

	if ctx.Identifier() != nil {
		return normalizePostgreSQLIdentifier(ctx.Identifier())
	}

	// Unquoted identifiers fold to lowercase in PostgreSQL.
	return strings.ToLower(ctx.GetText())
}

func normalizePostgreSQLIdentifier(ctx parser.IIdentifierContext) string {
	if ctx == nil {
		return ""
	}

	if ctx.QuotedIdentifier() != nil {
		return normalizePostgreSQLQuotedIdentifier(ctx.QuotedIdentifier().GetText())
	}

	if ctx.UnicodeQuotedIdentifier() != nil {
		return normalizePostgreSQLUnicodeQuotedIdentifier(ctx.UnicodeQuotedIdentifier().GetText())
	}

	return strings.ToLower(ctx.GetText())
}

// normalizePostgreSQLQuotedIdentifier removes quotes and unescapes doubled quotes.
func normalizePostgreSQLQuotedIdentifier(s string) string {
	if len(s) < 2 {
		return s
	}
	quoted := s[1 : len(s)-1]
	return strings.ReplaceAll(quoted, `""`, `"`)
}

// normalizePostgreSQLUnicodeQuotedIdentifier handles U&"..." identifiers.
func normalizePostgreSQLUnicodeQuotedIdentifier(s string) string {
	if len(s) > 3 && s[0] == 'U' && s[1] == '&' && s[2] == '"' {
		return normalizePostgreSQLQuotedIdentifier(s[2:])
	}
	return s
}

// NormalizePostgreSQLFuncName normalizes a function name.
// Returns a slice of name parts.
func NormalizePostgreSQLFuncName(ctx parser.IFunc_nameContext) []string {
	if ctx == nil {
		return []string{}
	}

	var result []string

	if ctx.Type_function_name() != nil {
		result = append(result, normalizePostgreSQLTypeFunctionName(ctx.Type_function_name()))
	}

	if ctx.Colid() != nil {
		result = append(result, NormalizePostgreSQLColid(ctx.Colid()))

		if ctx.Indirection() != nil {
			parts := NormalizePostgreSQLIndirection(ctx.Indirection())
			result = append(result, parts...)
		}
	}

	if ctx.Builtin_function_name() != nil {
		result = append(result, strings.ToLower(ctx.Builtin_function_name().GetText()))
	}

	// Fallback for keyword functions such as LEFT and RIGHT.
	if len(result) == 0 && ctx.GetText() != "" {
		result = append(result, strings.ToLower(ctx.GetText()))
	}

	return result
}

func normalizePostgreSQLTypeFunctionName(ctx parser.IType_function_nameContext) string {
	if ctx == nil {
		return ""
	}

	text := ctx.GetText()

	// Quoted identifier keeps its case.
	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		return text[1 : len(text)-1]
	}

	return strings.ToLower(text)
}
