// Package pkg provides SQL safety validation for Go applications.
//
// sqlguard checks SQL statements against configurable safety rules
// immediately before they are sent to a database: destructive
// statements without a WHERE clause, always-true conditions, unbounded
// pagination, multi-statement and comment smuggling, access to
// protected tables. It validates runtime DML, not migrations.
//
// # Package Structure
//
// The pkg directory contains several specialized packages:
//
//   - validator: High-level API for validating statements (recommended starting point)
//   - checker: Low-level rule execution engine and registration system
//   - types: Core type definitions and data structures
//   - config: Safety rule configuration loading and management
//   - analyzer: Statement analysis shared by all rules (structural and token-level facts)
//   - rules/safety: The built-in safety rule implementations
//   - mysqlparser: ANTLR-based MySQL SQL parser
//   - pgparser: ANTLR-based PostgreSQL SQL parser
//   - logger: Logging construction helpers
//
// # Getting Started
//
// For most use cases, start with the validator package:
//
//	import (
//	    "github.com/nsxbet/sqlguard/pkg/types"
//	    "github.com/nsxbet/sqlguard/pkg/validator"
//	)
//
//	func main() {
//	    v, err := validator.New(validator.WithEngine(types.Engine_MYSQL))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    result, err := v.Validate(context.Background(), &types.Statement{SQL: sql})
//	    // Process result...
//	}
//
// # Rule Categories
//
// The built-in rules are organized by what they inspect:
//
// Condition Rules: WHERE clause presence and quality
//   - Required WHERE on SELECT, UPDATE and DELETE
//   - Always-true condition detection
//   - Low-selectivity blacklist fields
//   - Required indexed fields per table
//
// Pagination Rules: Result set and write set bounds
//   - Logical pagination cost (large offsets)
//   - Page size and offset limits
//   - Required pagination on unbounded SELECTs
//   - ORDER BY with LIMIT
//
// Statement Rules: Statement shape and dangerous constructs
//   - Multi-statement and comment smuggling
//   - SELECT INTO OUTFILE and DUMPFILE
//   - DDL, set operations, procedure calls
//   - Dangerous functions, metadata access, variable assignment
//   - Injection artifact heuristics
//
// Table Rules: Protected table policies
//   - Access deny lists with trailing wildcards
//   - Read-only tables
//
// # Configuration
//
// Rules can be configured via YAML/JSON files or programmatically:
//
//	cfg, err := config.Load("safety.yaml")
//	v, err := validator.New(validator.WithConfig(cfg))
//
// Strategies decide what a violation does: BLOCK returns an error from
// Enforce, WARN and LOG only write to the validator's logger.
//
// # Thread Safety
//
// A validator is bound to one worker goroutine. Derive one validator
// per worker with ForWorker; the copies share configuration (including
// hot reloads via ReloadConfig) but own their deduplication cache and
// result slot.
//
// # Error Handling
//
// Validation distinguishes between:
//   - Safety findings (returned as Violations in ValidationResult)
//   - System errors (returned as error from Validate/Enforce)
//
// Individual rule failures are logged and surface as a low-risk
// diagnostic violation, so one broken rule never hides the findings of
// the others and never lets a statement bypass validation silently.
//
// # Performance
//
// Validation is synchronous and CPU-only; no rule performs I/O. A call
// completes in microseconds and identical statements within the
// deduplication window reuse the previous result. Context cancellation
// is honored between rules.
//
// # Documentation
//
// Complete documentation and examples:
//   - Package documentation: https://pkg.go.dev/github.com/nsxbet/sqlguard/pkg
//   - Examples: examples/library-usage/
package pkg
