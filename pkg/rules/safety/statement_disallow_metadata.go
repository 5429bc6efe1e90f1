package safety

import (
	"context"
	"fmt"
	"strings"

	"github.com/nsxbet/sqlguard/pkg/checker"
	"github.com/nsxbet/sqlguard/pkg/types"
)

var metadataKeywords = map[string]bool{
	"SHOW":     true,
	"DESCRIBE": true,
	"DESC":     true,
	"USE":      true,
}

// MetadataChecker flags schema inspection statements. SHOW and DESCRIBE
// leak table layout to whoever controls the query text, and USE silently
// repoints the connection at another database. Registered for the MySQL
// family only.
type MetadataChecker struct{}

// Check implements checker.Checker.
func (*MetadataChecker) Check(ctx context.Context, checkCtx checker.Context) ([]*types.Violation, error) {
	facts := checkCtx.Facts
	if facts == nil || facts.Lexical == nil {
		return nil, nil
	}
	op := facts.Lexical.FirstKeyword
	if !metadataKeywords[op] {
		return nil, nil
	}
	for _, allowed := range payloadStringsOr(checkCtx, "allowedStatements", nil) {
		if strings.EqualFold(allowed, op) {
			return nil, nil
		}
	}
	return []*types.Violation{newViolation(checkCtx,
		checker.StatementMetadataAccess,
		types.RiskLevel_HIGH,
		fmt.Sprintf("Metadata statement %s is not allowed.", op),
		"Query application tables only; read schema metadata through migrations or tooling.",
	)}, nil
}
