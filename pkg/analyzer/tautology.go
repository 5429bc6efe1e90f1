package analyzer

import (
	"strings"
	"unicode"
)

// NormalizeConditionText lowercases a condition and removes all
// whitespace. Dummy patterns are matched against this form.
func NormalizeConditionText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// IsDummyCondition reports whether a WHERE clause body is always true,
// either because its normalized text contains one of the normalized
// patterns, or because the condition reduces to a tautology: an OR
// needs one always-true branch, an AND needs all of them, and an
// atomic comparison is always true when both sides of = or <=> read
// the same.
func IsDummyCondition(condition string, patterns []string) bool {
	norm := NormalizeConditionText(condition)
	if norm == "" {
		return false
	}
	for _, p := range patterns {
		pn := NormalizeConditionText(p)
		if pn != "" && strings.Contains(norm, pn) {
			return true
		}
	}
	return isAlwaysTrue(condition)
}

func isAlwaysTrue(expr string) bool {
	expr = stripOuterParens(expr)
	if expr == "" {
		return false
	}
	if parts := splitTopLevel(expr, "or"); len(parts) > 1 {
		for _, part := range parts {
			if isAlwaysTrue(part) {
				return true
			}
		}
		return false
	}
	if parts := splitTopLevel(expr, "and"); len(parts) > 1 {
		for _, part := range parts {
			if !isAlwaysTrue(part) {
				return false
			}
		}
		return true
	}
	return selfEqualComparison(expr)
}

// stripOuterParens removes balanced outer parentheses, quote-aware.
func stripOuterParens(expr string) string {
	expr = strings.TrimSpace(expr)
	for len(expr) >= 2 && expr[0] == '(' && expr[len(expr)-1] == ')' {
		depth := 0
		var quote byte
		wraps := true
		for i := 0; wraps && i < len(expr); i++ {
			c := expr[i]
			switch {
			case quote != 0:
				if c == quote {
					quote = 0
				}
			case c == '\'' || c == '"' || c == '`':
				quote = c
			case c == '(':
				depth++
			case c == ')':
				depth--
				if depth == 0 && i < len(expr)-1 {
					wraps = false
				}
			}
		}
		if !wraps || depth != 0 {
			break
		}
		expr = strings.TrimSpace(expr[1 : len(expr)-1])
	}
	return expr
}

// splitTopLevel splits on a keyword occurring at word boundaries
// outside quotes and parentheses.
func splitTopLevel(expr, keyword string) []string {
	n := len(keyword)
	var parts []string
	depth := 0
	var quote byte
	start := 0
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"' || c == '`':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
		case depth == 0 && i+n <= len(expr) && strings.EqualFold(expr[i:i+n], keyword):
			if (i == 0 || !isWordByte(expr[i-1])) && (i+n == len(expr) || !isWordByte(expr[i+n])) {
				parts = append(parts, expr[start:i])
				start = i + n
				i += n - 1
			}
		}
	}
	return append(parts, expr[start:])
}

// selfEqualComparison reports whether the expression is a single
// comparison whose sides read the same once normalized, such as 1=1,
// 'a' = 'a' or col <=> col.
func selfEqualComparison(expr string) bool {
	depth := 0
	var quote byte
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"' || c == '`':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
		case depth != 0:
		case c == '<':
			if i+2 < len(expr) && expr[i+1] == '=' && expr[i+2] == '>' {
				return equalNormalized(expr[:i], expr[i+3:])
			}
		case c == '=':
			if i > 0 && (expr[i-1] == '<' || expr[i-1] == '>' || expr[i-1] == '!' || expr[i-1] == '=') {
				continue
			}
			if i+1 < len(expr) && expr[i+1] == '=' {
				i++
				continue
			}
			return equalNormalized(expr[:i], expr[i+1:])
		}
	}
	return false
}

func equalNormalized(lhs, rhs string) bool {
	l := NormalizeConditionText(lhs)
	return l != "" && l == NormalizeConditionText(rhs)
}

func isWordByte(c byte) bool {
	return c == '_' || c == '$' || c == '.' || c == '@' ||
		('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
