package safety

import (
	"strings"

	"github.com/nsxbet/sqlguard/pkg/mysqlparser"
)

// MatchTablePattern reports whether a table or field name matches a
// pattern. A trailing `*` matches names that extend the prefix by one
// word: `sys_*` matches `sys_user` but neither `system` nor
// `sys_user_detail`. A bare pattern matches exactly. Comparison is
// case-insensitive; quoting and schema qualifiers are stripped from
// the name first.
func MatchTablePattern(pattern, name string) bool {
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	name = normalizeName(name)
	if pattern == "" || name == "" {
		return false
	}
	if !strings.HasSuffix(pattern, "*") {
		return pattern == name
	}
	prefix := strings.TrimSuffix(pattern, "*")
	if !strings.HasPrefix(name, prefix) {
		return false
	}
	rest := name[len(prefix):]
	return rest != "" && !strings.Contains(rest, "_")
}

// MatchAnyTablePattern reports whether the name matches at least one
// of the patterns.
func MatchAnyTablePattern(patterns []string, name string) bool {
	for _, p := range patterns {
		if MatchTablePattern(p, name) {
			return true
		}
	}
	return false
}

// MatchStatementPattern reports whether a statement ID matches an
// exemption entry, either exactly or by trailing wildcard prefix.
// Statement IDs are case-sensitive.
func MatchStatementPattern(pattern, id string) bool {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" || id == "" {
		return false
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(id, strings.TrimSuffix(pattern, "*"))
	}
	return pattern == id
}

func normalizeName(name string) string {
	return strings.ToLower(mysqlparser.NormalizeTableName(strings.TrimSpace(name)))
}
