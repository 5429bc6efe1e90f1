package safety

import (
	"context"
	"fmt"
	"strings"

	"github.com/nsxbet/sqlguard/pkg/checker"
	"github.com/nsxbet/sqlguard/pkg/types"
)

// SetOperationChecker flags UNION, INTERSECT, EXCEPT and MINUS. UNION is
// the standard vehicle for pulling foreign data into an injected query.
// One violation is reported per distinct disallowed operation.
type SetOperationChecker struct{}

// Check implements checker.Checker.
func (*SetOperationChecker) Check(ctx context.Context, checkCtx checker.Context) ([]*types.Violation, error) {
	facts := checkCtx.Facts
	if facts == nil || facts.Lexical == nil {
		return nil, nil
	}
	allowed := make(map[string]bool)
	for _, op := range payloadStringsOr(checkCtx, "allowedOperations", nil) {
		allowed[strings.ToUpper(strings.TrimSpace(op))] = true
	}
	var violations []*types.Violation
	seen := make(map[string]bool)
	for _, op := range facts.Lexical.SetOperations {
		if allowed[op] || seen[op] {
			continue
		}
		seen[op] = true
		violations = append(violations, newViolation(checkCtx,
			checker.StatementDisallowedSetOperation,
			types.RiskLevel_CRITICAL,
			fmt.Sprintf("Set operation %s is not allowed.", op),
			"Split the query or allow the operation explicitly for this rule.",
		))
	}
	return violations, nil
}
