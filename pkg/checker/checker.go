// Package checker provides the rule checker framework: the registry that
// maps (engine, rule type) pairs to checker implementations, the context
// handed to each checker, and helpers for decoding rule payloads.
package checker

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/nsxbet/sqlguard/pkg/analyzer"
	"github.com/nsxbet/sqlguard/pkg/types"
)

// Type is the type of a safety rule checker.
type Type string

const (
	// SafetyRuleRequireWhere requires a WHERE clause on SELECT, UPDATE and DELETE statements.
	SafetyRuleRequireWhere Type = "statement.where.require"
	// SafetyRuleDisallowDummyWhere disallows always-true WHERE clauses such as 1=1.
	SafetyRuleDisallowDummyWhere Type = "statement.where.disallow-dummy"
	// SafetyRuleDisallowBlacklistOnlyWhere disallows WHERE clauses that filter only on low-selectivity fields.
	SafetyRuleDisallowBlacklistOnlyWhere Type = "statement.where.disallow-blacklist-only"
	// SafetyRuleRequireWhereField requires specific fields to appear in the WHERE clause.
	SafetyRuleRequireWhereField Type = "statement.where.require-field"

	// SafetyRuleDisallowLogicalPagination disallows pagination performed in application memory.
	SafetyRuleDisallowLogicalPagination Type = "statement.pagination.disallow-logical"
	// SafetyRuleRequirePaginationWhere disallows paginated queries without an effective WHERE clause.
	SafetyRuleRequirePaginationWhere Type = "statement.pagination.require-where"
	// SafetyRuleMaxPaginationOffset enforces the maximum pagination offset.
	SafetyRuleMaxPaginationOffset Type = "statement.pagination.max-offset"
	// SafetyRuleMaxPageSize enforces the maximum page size.
	SafetyRuleMaxPageSize Type = "statement.pagination.max-limit"
	// SafetyRuleRequirePagination requires unbounded result sets to be paginated.
	SafetyRuleRequirePagination Type = "statement.pagination.require"
	// SafetyRuleRequireOrderBy requires a deterministic ORDER BY on paginated queries.
	SafetyRuleRequireOrderBy Type = "statement.pagination.require-order-by"

	// SafetyRuleDisallowMultiStatement disallows multiple statements in one call.
	SafetyRuleDisallowMultiStatement Type = "statement.disallow-multi"
	// SafetyRuleDisallowComment disallows SQL comments inside statements.
	SafetyRuleDisallowComment Type = "statement.disallow-comment"
	// SafetyRuleDisallowFileWrite disallows INTO OUTFILE and INTO DUMPFILE clauses.
	SafetyRuleDisallowFileWrite Type = "statement.disallow-file-write"
	// SafetyRuleDisallowDDL disallows DDL operations outside the allowlist.
	SafetyRuleDisallowDDL Type = "statement.disallow-ddl"
	// SafetyRuleDisallowSetOperation disallows set operations such as UNION outside the allowlist.
	SafetyRuleDisallowSetOperation Type = "statement.disallow-set-operation"
	// SafetyRuleDisallowProcedureCall disallows stored procedure invocations.
	SafetyRuleDisallowProcedureCall Type = "statement.disallow-procedure-call"
	// SafetyRuleDisallowDangerousFunction disallows calls to dangerous functions.
	SafetyRuleDisallowDangerousFunction Type = "statement.disallow-dangerous-function"
	// SafetyRuleDisallowMetadata disallows metadata statements such as SHOW and DESCRIBE.
	SafetyRuleDisallowMetadata Type = "statement.disallow-metadata"
	// SafetyRuleDisallowSetVariable disallows SET variable statements.
	SafetyRuleDisallowSetVariable Type = "statement.disallow-set-variable"
	// SafetyRuleDisallowInjectionPattern flags statements matching known injection fingerprints.
	SafetyRuleDisallowInjectionPattern Type = "statement.disallow-injection-pattern"

	// SafetyRuleDisallowTableAccess disallows any access to denied tables.
	SafetyRuleDisallowTableAccess Type = "table.disallow-access"
	// SafetyRuleDisallowTableWrite disallows writes to read-only tables.
	SafetyRuleDisallowTableWrite Type = "table.disallow-write"
)

// Context is the per-rule context handed to a checker. All fields are
// read-only for the checker.
type Context struct {
	// Statement is the validation request.
	Statement *types.Statement
	// Facts is the analysis of Statement.SQL. Never nil; structural facts
	// inside it are nil when parsing failed.
	Facts *analyzer.Facts
	// Rule is the configured rule block driving this checker.
	Rule *types.SafetyRule
	// Engine is the engine the statement targets.
	Engine types.Engine
	// HasPaginationPlugin reports whether a pagination abstraction is
	// registered, so a missing LIMIT may still be paginated downstream.
	HasPaginationPlugin bool
}

// Checker is the interface implemented by every safety rule checker.
// Implementations must be stateless and safe for concurrent use.
type Checker interface {
	Check(ctx context.Context, checkCtx Context) ([]*types.Violation, error)
}

var (
	checkerMu sync.RWMutex
	checkers  = make(map[types.Engine]map[Type]Checker)
)

// Register makes a checker available for the given engine and rule type.
// If Register is called twice with the same pair or if checker is nil,
// it panics.
func Register(engine types.Engine, checkType Type, c Checker) {
	checkerMu.Lock()
	defer checkerMu.Unlock()
	if c == nil {
		panic("checker: Register checker is nil")
	}
	engineCheckers, ok := checkers[engine]
	if !ok {
		checkers[engine] = map[Type]Checker{
			checkType: c,
		}
	} else {
		if _, dup := engineCheckers[checkType]; dup {
			panic(fmt.Sprintf("checker: Register called twice for checker %v for %v", checkType, engine))
		}
		engineCheckers[checkType] = c
	}
}

// Registered reports whether a checker exists for the given engine and type.
func Registered(engine types.Engine, checkType Type) bool {
	checkerMu.RLock()
	defer checkerMu.RUnlock()
	engineCheckers, ok := checkers[engine]
	if !ok {
		return false
	}
	_, ok = engineCheckers[checkType]
	return ok
}

// PanicError reports that a checker panicked. The validator converts it
// into a low-risk diagnostic violation instead of failing the whole call.
type PanicError struct {
	CheckType Type
	Value     any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("checker %v panicked: %v", e.CheckType, e.Value)
}

// Run executes the checker registered for the given engine and rule type.
// A panic inside the checker is recovered and returned as a *PanicError.
func Run(ctx context.Context, engine types.Engine, checkType Type, checkCtx Context) (violations []*types.Violation, err error) {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			violations = nil
			err = &PanicError{CheckType: checkType, Value: panicErr}
		}
	}()

	checkerMu.RLock()
	engineCheckers, ok := checkers[engine]
	var c Checker
	if ok {
		c, ok = engineCheckers[checkType]
	}
	checkerMu.RUnlock()
	if !ok {
		return nil, errors.Errorf("checker: unknown checker %v for %v", checkType, engine)
	}

	return c.Check(ctx, checkCtx)
}
