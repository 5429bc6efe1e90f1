// Package analyzer turns one SQL statement into the facts the safety
// checkers consume. Analysis never fails: when the engine parser
// rejects the text the structural facts are absent and the lexical
// facts still carry the token-level view.
package analyzer

import (
	"github.com/pkg/errors"

	"github.com/nsxbet/sqlguard/pkg/types"
)

// Analyze extracts the facts for one statement. The command declared
// by the caller wins over the inferred one when both are known.
func Analyze(engine types.Engine, stmt *types.Statement) *Facts {
	if stmt == nil {
		stmt = &types.Statement{}
	}
	facts := &Facts{
		Engine:  engine,
		Lexical: scanLexical(engine, stmt.SQL),
	}

	structural, command, err := analyzeStructural(engine, stmt.SQL)
	if err != nil {
		facts.ParseFailed = true
		facts.ParseError = err.Error()
	} else {
		facts.Structural = structural
	}

	facts.Command = inferCommand(stmt.Command, command, facts.Lexical)
	return facts
}

func analyzeStructural(engine types.Engine, sql string) (facts *StructuralFacts, command types.SQLCommandType, err error) {
	defer func() {
		if r := recover(); r != nil {
			facts = nil
			command = types.SQLCommandType_COMMAND_UNSPECIFIED
			err = errors.Errorf("analyzer panic: %v", r)
		}
	}()

	switch {
	case engine.IsMySQLFamily(), engine == types.Engine_ENGINE_UNSPECIFIED:
		return analyzeMySQLStructural(sql)
	case engine == types.Engine_POSTGRES:
		return analyzePostgresStructural(sql)
	}
	return nil, types.SQLCommandType_COMMAND_UNSPECIFIED, errors.Errorf("unsupported engine %s", engine)
}

func inferCommand(declared, structural types.SQLCommandType, lexical *LexicalFacts) types.SQLCommandType {
	if declared != types.SQLCommandType_COMMAND_UNSPECIFIED && declared != types.SQLCommandType_UNKNOWN {
		return declared
	}
	if structural != types.SQLCommandType_COMMAND_UNSPECIFIED {
		return structural
	}
	if lexical != nil {
		switch lexical.FirstKeyword {
		case "SELECT":
			return types.SQLCommandType_SELECT
		case "INSERT", "REPLACE":
			return types.SQLCommandType_INSERT
		case "UPDATE":
			return types.SQLCommandType_UPDATE
		case "DELETE":
			return types.SQLCommandType_DELETE
		}
	}
	return types.SQLCommandType_UNKNOWN
}
