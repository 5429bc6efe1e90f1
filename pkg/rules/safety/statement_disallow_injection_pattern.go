package safety

import (
	"context"
	"fmt"

	libinjection "github.com/corazawaf/libinjection-go"

	"github.com/nsxbet/sqlguard/pkg/analyzer"
	"github.com/nsxbet/sqlguard/pkg/checker"
	"github.com/nsxbet/sqlguard/pkg/types"
)

// InjectionPatternChecker runs libinjection over the string literal
// fragments of the statement. A literal that fingerprints as SQL means a
// parameter was concatenated in rather than bound. The heuristic has
// false positives on prose-like literals, so the rule ships disabled.
type InjectionPatternChecker struct{}

// Check implements checker.Checker.
func (*InjectionPatternChecker) Check(ctx context.Context, checkCtx checker.Context) ([]*types.Violation, error) {
	if checkCtx.Statement == nil {
		return nil, nil
	}
	engine := checkCtx.Engine
	if checkCtx.Facts != nil {
		engine = checkCtx.Facts.Engine
	}
	for _, literal := range analyzer.ExtractStringLiterals(engine, checkCtx.Statement.SQL) {
		isSQLi, fingerprint := libinjection.IsSQLi(literal)
		if !isSQLi {
			continue
		}
		return []*types.Violation{newViolation(checkCtx,
			checker.StatementInjectionPattern,
			types.RiskLevel_CRITICAL,
			fmt.Sprintf("String literal %q matches SQL injection fingerprint %s.", literal, string(fingerprint)),
			"Bind the value as a parameter instead of concatenating it into the SQL.",
		)}, nil
	}
	return nil, nil
}
