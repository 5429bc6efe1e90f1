package safety

import (
	"regexp"
	"strings"

	"github.com/nsxbet/sqlguard/pkg/checker"
	"github.com/nsxbet/sqlguard/pkg/types"
)

// newViolation builds a violation for the rule driving checkCtx. A level
// configured on the rule overrides the checker default.
func newViolation(checkCtx checker.Context, code checker.Code, level types.RiskLevel, message, suggestion string) *types.Violation {
	ruleType := ""
	if checkCtx.Rule != nil {
		ruleType = checkCtx.Rule.Type
		if checkCtx.Rule.Level != types.RiskLevel_SAFE {
			level = checkCtx.Rule.Level
		}
	}
	return &types.Violation{
		Rule:       ruleType,
		Code:       code.Int32(),
		Level:      level,
		Message:    message,
		Suggestion: suggestion,
	}
}

func rulePayload(checkCtx checker.Context) map[string]interface{} {
	if checkCtx.Rule == nil {
		return nil
	}
	return checkCtx.Rule.Payload
}

// payloadStringsOr returns the payload list for key, or def when the
// key is absent or malformed.
func payloadStringsOr(checkCtx checker.Context, key string, def []string) []string {
	list, ok, err := checker.PayloadStringList(rulePayload(checkCtx), key)
	if err != nil || !ok {
		return def
	}
	return list
}

func payloadIntOr(checkCtx checker.Context, key string, def int) int {
	v, ok, err := checker.PayloadInt(rulePayload(checkCtx), key)
	if err != nil || !ok {
		return def
	}
	return v
}

func payloadBoolOr(checkCtx checker.Context, key string, def bool) bool {
	v, ok, err := checker.PayloadBool(rulePayload(checkCtx), key)
	if err != nil || !ok {
		return def
	}
	return v
}

// isDML reports whether the command filters rows, which is where WHERE
// clause rules apply.
func isDML(command types.SQLCommandType) bool {
	switch command {
	case types.SQLCommandType_SELECT, types.SQLCommandType_UPDATE, types.SQLCommandType_DELETE:
		return true
	}
	return false
}

// hasEqualityOn reports whether the WHERE clause text contains an
// equality comparison on the named field.
func hasEqualityOn(whereText, field string) bool {
	if field == "" {
		return false
	}
	re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(field) + `\s*=[^=]`)
	if err != nil {
		return false
	}
	return re.MatchString(whereText + " ")
}

func joinFields(fields []string) string {
	return strings.Join(fields, ", ")
}
