package mysqlparser

import (
	"strings"

	parser "github.com/gedhean/mysql-parser"
)

// NormalizeMySQLPureIdentifier returns the plain identifier text with
// backtick or double quote delimiters removed.
func NormalizeMySQLPureIdentifier(ctx parser.IPureIdentifierContext) string {
	if ctx == nil {
		return ""
	}
	return NormalizeIdentifierText(ctx.GetText())
}

// NormalizeIdentifierText strips backtick or double quote delimiters from
// an identifier and unescapes doubled delimiters.
func NormalizeIdentifierText(text string) string {
	if len(text) >= 2 {
		switch {
		case text[0] == '`' && text[len(text)-1] == '`':
			return strings.ReplaceAll(text[1:len(text)-1], "``", "`")
		case text[0] == '"' && text[len(text)-1] == '"':
			return strings.ReplaceAll(text[1:len(text)-1], `""`, `"`)
		}
	}
	return text
}

// NormalizeTableName reduces a possibly qualified table reference such as
// `db`.`tbl` to the bare table name with delimiters removed. Qualifier dots
// inside quoted identifiers are ignored.
func NormalizeTableName(text string) string {
	last := text
	var quote byte
	start := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '`' || c == '"':
			quote = c
		case c == '.':
			start = i + 1
		}
	}
	last = text[start:]
	return NormalizeIdentifierText(last)
}
