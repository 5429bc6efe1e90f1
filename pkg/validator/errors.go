package validator

import (
	"fmt"

	"github.com/nsxbet/sqlguard/pkg/types"
)

// BlockedError reports that the BLOCK strategy rejected a statement.
// It carries the full result so the caller can translate the findings
// into whatever failure its database driver expects.
type BlockedError struct {
	Result *types.ValidationResult
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("sql blocked: %s", e.Result)
}
