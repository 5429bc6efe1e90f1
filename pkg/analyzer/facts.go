package analyzer

import (
	"github.com/nsxbet/sqlguard/pkg/types"
)

// Facts is everything the checkers need to know about one statement.
// Structural facts come from the engine parser and are nil when the
// statement does not parse. Lexical facts come from a token scan of the
// raw text and are always present.
type Facts struct {
	Engine  types.Engine
	Command types.SQLCommandType

	// ParseFailed is set when the engine parser rejected the text.
	// Checkers that need the syntax tree skip the statement in that
	// case, checkers that work on the raw text keep running.
	ParseFailed bool
	ParseError  string

	Structural *StructuralFacts
	Lexical    *LexicalFacts
}

// StructuralFacts are extracted from the syntax tree of the first
// statement. Table and function names are collected from every
// statement and every subquery.
type StructuralFacts struct {
	// HasWhere reports whether the top-level statement carries a WHERE
	// clause. WhereText is the clause body with original spacing, the
	// WHERE keyword stripped.
	HasWhere  bool
	WhereText string

	// WhereFields are the column names referenced by the top-level
	// WHERE clause, qualifiers stripped, in reference order.
	WhereFields []string

	// Tables are all referenced table names including subqueries,
	// qualifiers stripped. WriteTables are the targets of INSERT,
	// UPDATE and DELETE.
	Tables      []string
	WriteTables []string

	// HasLimit is set when the top-level statement has a physical
	// limit. LimitCount and LimitOffset are -1 when the value is not a
	// plain integer literal.
	HasLimit    bool
	LimitCount  int64
	LimitOffset int64

	HasOrderBy bool

	// FunctionNames are the called function names in lowercase,
	// dotted-qualified where the call is qualified.
	FunctionNames []string

	StatementCount int
}

// LexicalFacts are derived from a raw token scan and survive parse
// failures.
type LexicalFacts struct {
	// Masked is the input with string literals and comments replaced
	// by spaces, byte positions preserved.
	Masked string

	// StatementCount is the number of non-empty semicolon separated
	// segments of the masked text.
	StatementCount int

	FirstKeyword  string
	SecondKeyword string

	Comments []CommentFact

	// SetOperations are the UNION, INTERSECT, EXCEPT and MINUS
	// keywords found outside literals and comments, uppercased, with
	// UNION ALL collapsed to one entry.
	SetOperations []string

	// FunctionCalls are identifiers immediately followed by an opening
	// parenthesis, lowercased.
	FunctionCalls []string

	// IntoFile is set when the text contains INTO OUTFILE or INTO
	// DUMPFILE outside literals and comments.
	IntoFile *IntoFileFact
}

// CommentKind classifies a SQL comment.
type CommentKind string

const (
	CommentLine  CommentKind = "LINE"
	CommentHash  CommentKind = "HASH"
	CommentBlock CommentKind = "BLOCK"
	CommentHint  CommentKind = "HINT"
)

// CommentFact records one comment with its byte offset in the input.
type CommentFact struct {
	Kind   CommentKind
	Offset int
	Text   string
}

// IntoFileFact records a server-side file write clause.
type IntoFileFact struct {
	// Kind is OUTFILE or DUMPFILE.
	Kind   string
	Target string
}

// CalledFunctions returns the structural function names when the
// statement parsed, the lexical fallback otherwise.
func (f *Facts) CalledFunctions() []string {
	if f.Structural != nil && len(f.Structural.FunctionNames) > 0 {
		return f.Structural.FunctionNames
	}
	if f.Lexical != nil {
		return f.Lexical.FunctionCalls
	}
	return nil
}

// HasComments reports whether any comment of the given kinds is
// present. With no kinds it reports any comment at all.
func (f *LexicalFacts) HasComments(kinds ...CommentKind) bool {
	if len(kinds) == 0 {
		return len(f.Comments) > 0
	}
	for _, c := range f.Comments {
		for _, k := range kinds {
			if c.Kind == k {
				return true
			}
		}
	}
	return false
}
