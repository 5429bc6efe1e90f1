package checker

// Code is the violation code for a safety finding.
type Code int

// Violation codes. Codes are stable across releases; new codes are
// appended within their band.
const (
	Ok Code = 0

	// 1 ~ 99 general error.
	Internal    Code = 1
	Unsupported Code = 2
	SyntaxError Code = 3
	CheckPanic  Code = 4

	// 101 ~ 199 WHERE clause findings.
	StatementNoWhere              Code = 101
	StatementDummyWhere           Code = 102
	StatementBlacklistOnlyWhere   Code = 103
	StatementMissingRequiredField Code = 104

	// 201 ~ 299 pagination findings.
	StatementLogicalPagination     Code = 201
	StatementUnboundedPagination   Code = 202
	StatementPaginationOffsetLimit Code = 203
	StatementPageSizeLimit         Code = 204
	StatementMissingPagination     Code = 205
	StatementMissingOrderBy        Code = 206

	// 301 ~ 399 lexical findings.
	StatementMultiStatement   Code = 301
	StatementHasComment       Code = 302
	StatementFileWrite        Code = 303
	StatementInjectionPattern Code = 304

	// 401 ~ 499 operation findings.
	StatementDisallowedDDL          Code = 401
	StatementDisallowedSetOperation Code = 402
	StatementProcedureCall          Code = 403
	StatementDangerousFunction      Code = 404
	StatementMetadataAccess         Code = 405
	StatementSetVariable            Code = 406

	// 501 ~ 599 table findings.
	TableAccessDenied  Code = 501
	TableReadOnlyWrite Code = 502
)

// Int32 returns the int32 type of code.
func (c Code) Int32() int32 {
	return int32(c)
}
