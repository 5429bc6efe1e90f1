package safety

import (
	"context"
	"fmt"
	"strings"

	"github.com/nsxbet/sqlguard/pkg/analyzer"
	"github.com/nsxbet/sqlguard/pkg/checker"
	"github.com/nsxbet/sqlguard/pkg/types"
)

// CommentChecker flags SQL containing comments. Comments in runtime SQL
// usually mean copy-pasted console queries or an injection attempt that
// comments out the rest of the statement. Optimizer hints can be allowed
// through with allowHintComments.
type CommentChecker struct{}

// Check implements checker.Checker.
func (*CommentChecker) Check(ctx context.Context, checkCtx checker.Context) ([]*types.Violation, error) {
	facts := checkCtx.Facts
	if facts == nil || facts.Lexical == nil {
		return nil, nil
	}
	allowHints := payloadBoolOr(checkCtx, "allowHintComments", false)
	var kinds []string
	for _, c := range facts.Lexical.Comments {
		if allowHints && c.Kind == analyzer.CommentHint {
			continue
		}
		kinds = append(kinds, string(c.Kind))
	}
	if len(kinds) == 0 {
		return nil, nil
	}
	return []*types.Violation{newViolation(checkCtx,
		checker.StatementHasComment,
		types.RiskLevel_CRITICAL,
		fmt.Sprintf("SQL contains %d comment(s): %s.", len(kinds), strings.Join(kinds, ", ")),
		"Strip comments from SQL before executing it.",
	)}, nil
}
