package validator

import "github.com/nsxbet/sqlguard/pkg/types"

// ResultSlot hands the last validation result to a post-execution
// audit step on the same worker. Single writer, single reader: the
// validator puts the result in before the statement executes, the
// audit step takes it out afterwards. Take always clears the slot so
// a result never leaks into the next statement.
type ResultSlot struct {
	result *types.ValidationResult
}

// Put stores the result for the statement about to execute, replacing
// any leftover value.
func (s *ResultSlot) Put(result *types.ValidationResult) {
	s.result = result
}

// Take returns the stored result and clears the slot. It returns nil
// when nothing was put since the last Take.
func (s *ResultSlot) Take() *types.ValidationResult {
	result := s.result
	s.result = nil
	return result
}
