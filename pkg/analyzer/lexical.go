package analyzer

import (
	"regexp"
	"strings"

	"github.com/nsxbet/sqlguard/pkg/types"
)

var (
	wordPattern     = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_$]*`)
	setOpPattern    = regexp.MustCompile(`(?i)\b(?:UNION(?:\s+ALL)?|INTERSECT|EXCEPT|MINUS)\b`)
	funcCallPattern = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_$]*)\s*\(`)
	intoFilePattern = regexp.MustCompile(`(?i)\bINTO\s+(OUTFILE|DUMPFILE)\b`)
)

// Keywords that look like function calls when followed by a
// parenthesis.
var funcCallStopwords = map[string]bool{
	"select": true, "from": true, "where": true, "and": true,
	"or": true, "not": true, "in": true, "on": true, "as": true,
	"by": true, "values": true, "value": true, "join": true,
	"using": true, "exists": true, "into": true, "when": true,
	"then": true, "else": true, "case": true, "all": true,
	"any": true, "some": true, "union": true, "distinct": true,
	"between": true, "like": true, "is": true, "key": true,
	"primary": true, "references": true, "check": true,
	"over": true, "partition": true, "row": true, "rows": true,
}

// scanLexical masks string literals and comments with spaces, byte
// positions preserved, and derives the token-level facts from the
// masked text. It never fails.
func scanLexical(engine types.Engine, sql string) *LexicalFacts {
	facts := &LexicalFacts{}
	src := []byte(sql)
	masked := make([]byte, len(src))
	copy(masked, src)

	// The MySQL dialect family allows backslash escapes in literals,
	// backtick quoting and hash comments. An unspecified engine is
	// scanned the permissive way.
	mysql := engine.IsMySQLFamily() || engine == types.Engine_ENGINE_UNSPECIFIED

	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == '\'':
			i = maskQuotedRegion(src, masked, i, '\'', mysql)
		case c == '"':
			i = maskQuotedRegion(src, masked, i, '"', mysql)
		case c == '`' && mysql:
			i = maskQuotedRegion(src, masked, i, '`', false)
		case c == '#' && mysql:
			start := i
			for i < len(src) && src[i] != '\n' {
				i++
			}
			recordComment(facts, masked, src, CommentHash, start, i)
		case c == '-' && i+1 < len(src) && src[i+1] == '-':
			start := i
			for i < len(src) && src[i] != '\n' {
				i++
			}
			recordComment(facts, masked, src, CommentLine, start, i)
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			start := i
			kind := CommentBlock
			if i+2 < len(src) && src[i+2] == '+' {
				kind = CommentHint
			}
			i += 2
			for i < len(src) {
				if src[i] == '*' && i+1 < len(src) && src[i+1] == '/' {
					i += 2
					break
				}
				i++
			}
			recordComment(facts, masked, src, kind, start, i)
		default:
			i++
		}
	}

	facts.Masked = string(masked)
	deriveMaskedFacts(facts, sql, mysql)
	return facts
}

// maskQuotedRegion masks the content of a quoted region starting at
// src[start], keeping the delimiters, and returns the index past the
// closing quote. Doubled quotes and, when backslash is set, backslash
// escapes stay inside the region.
func maskQuotedRegion(src, masked []byte, start int, quote byte, backslash bool) int {
	i := start + 1
	for i < len(src) {
		c := src[i]
		if backslash && c == '\\' && i+1 < len(src) {
			masked[i] = ' '
			masked[i+1] = ' '
			i += 2
			continue
		}
		if c == quote {
			if i+1 < len(src) && src[i+1] == quote {
				masked[i] = ' '
				masked[i+1] = ' '
				i += 2
				continue
			}
			return i + 1
		}
		masked[i] = ' '
		i++
	}
	return i
}

func recordComment(facts *LexicalFacts, masked, src []byte, kind CommentKind, start, end int) {
	facts.Comments = append(facts.Comments, CommentFact{
		Kind:   kind,
		Offset: start,
		Text:   string(src[start:end]),
	})
	for j := start; j < end; j++ {
		masked[j] = ' '
	}
}

func deriveMaskedFacts(facts *LexicalFacts, raw string, mysql bool) {
	masked := facts.Masked

	for _, seg := range strings.Split(masked, ";") {
		if strings.TrimSpace(seg) != "" {
			facts.StatementCount++
		}
	}

	words := wordPattern.FindAllString(masked, 2)
	if len(words) > 0 {
		facts.FirstKeyword = strings.ToUpper(words[0])
	}
	if len(words) > 1 {
		facts.SecondKeyword = strings.ToUpper(words[1])
	}

	for _, op := range setOpPattern.FindAllString(masked, -1) {
		facts.SetOperations = append(facts.SetOperations, strings.Join(strings.Fields(strings.ToUpper(op)), " "))
	}

	seen := make(map[string]bool)
	for _, m := range funcCallPattern.FindAllStringSubmatch(masked, -1) {
		name := strings.ToLower(m[1])
		if funcCallStopwords[name] || seen[name] {
			continue
		}
		seen[name] = true
		facts.FunctionCalls = append(facts.FunctionCalls, name)
	}

	if loc := intoFilePattern.FindStringSubmatchIndex(masked); loc != nil {
		facts.IntoFile = &IntoFileFact{
			Kind:   strings.ToUpper(masked[loc[2]:loc[3]]),
			Target: quotedLiteralAt(raw, loc[1], mysql),
		}
	}
}

// quotedLiteralAt reads a quoted string literal from the raw text at
// or after pos, with escapes resolved. It returns "" when the next
// token is not a literal.
func quotedLiteralAt(src string, pos int, backslash bool) string {
	for pos < len(src) && (src[pos] == ' ' || src[pos] == '\t' || src[pos] == '\n' || src[pos] == '\r') {
		pos++
	}
	if pos >= len(src) || (src[pos] != '\'' && src[pos] != '"') {
		return ""
	}
	body, _ := readQuotedBody(src, pos, backslash)
	return body
}

// readQuotedBody reads the quoted region opening at src[pos] and
// returns the unescaped body with the index past the closing quote.
func readQuotedBody(src string, pos int, backslash bool) (string, int) {
	quote := src[pos]
	pos++
	var b strings.Builder
	for pos < len(src) {
		c := src[pos]
		if backslash && c == '\\' && pos+1 < len(src) {
			b.WriteByte(src[pos+1])
			pos += 2
			continue
		}
		if c == quote {
			if pos+1 < len(src) && src[pos+1] == quote {
				b.WriteByte(quote)
				pos += 2
				continue
			}
			pos++
			break
		}
		b.WriteByte(c)
		pos++
	}
	return b.String(), pos
}

// SplitStatements cuts a script into individual statements at the
// semicolons outside string literals and comments. Statement text keeps
// its comments; segments that hold nothing but whitespace or comments
// are dropped.
func SplitStatements(engine types.Engine, sql string) []string {
	masked := scanLexical(engine, sql).Masked
	var stmts []string
	start := 0
	flush := func(end int) {
		if strings.TrimSpace(masked[start:end]) != "" {
			stmts = append(stmts, strings.TrimSpace(sql[start:end]))
		}
		start = end + 1
	}
	for i := 0; i < len(masked); i++ {
		if masked[i] == ';' {
			flush(i)
		}
	}
	if start < len(masked) {
		flush(len(masked))
	}
	return stmts
}

// ExtractStringLiterals returns the contents of the string literals in
// source order, escapes resolved, comments skipped. In the MySQL family
// double quoted text is a literal, elsewhere it is an identifier.
func ExtractStringLiterals(engine types.Engine, sql string) []string {
	mysql := engine.IsMySQLFamily() || engine == types.Engine_ENGINE_UNSPECIFIED
	var literals []string
	i := 0
	for i < len(sql) {
		c := sql[i]
		switch {
		case c == '\'' || (c == '"' && mysql):
			var body string
			body, i = readQuotedBody(sql, i, mysql)
			literals = append(literals, body)
		case c == '"' || (c == '`' && mysql):
			_, i = readQuotedBody(sql, i, false)
		case c == '#' && mysql:
			for i < len(sql) && sql[i] != '\n' {
				i++
			}
		case c == '-' && i+1 < len(sql) && sql[i+1] == '-':
			for i < len(sql) && sql[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(sql) && sql[i+1] == '*':
			i += 2
			for i < len(sql) {
				if sql[i] == '*' && i+1 < len(sql) && sql[i+1] == '/' {
					i += 2
					break
				}
				i++
			}
		default:
			i++
		}
	}
	return literals
}
