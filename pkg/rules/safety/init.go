// Package safety implements the built-in safety rule checkers. Each
// checker inspects the analyzed facts of one statement and reports
// violations; the validator decides ordering, suppression and the final
// risk level. Importing the package registers every checker.
package safety

import (
	"github.com/nsxbet/sqlguard/pkg/checker"
	"github.com/nsxbet/sqlguard/pkg/types"
)

var allEngines = []types.Engine{
	types.Engine_MYSQL,
	types.Engine_TIDB,
	types.Engine_MARIADB,
	types.Engine_OCEANBASE,
	types.Engine_POSTGRES,
}

var mysqlFamily = []types.Engine{
	types.Engine_MYSQL,
	types.Engine_TIDB,
	types.Engine_MARIADB,
	types.Engine_OCEANBASE,
}

func init() {
	generic := map[checker.Type]checker.Checker{
		checker.SafetyRuleRequireWhere:               &WhereRequireChecker{},
		checker.SafetyRuleDisallowDummyWhere:         &DummyWhereChecker{},
		checker.SafetyRuleDisallowBlacklistOnlyWhere: &BlacklistFieldsChecker{},
		checker.SafetyRuleRequireWhereField:          &RequireFieldChecker{},

		checker.SafetyRuleDisallowLogicalPagination: &LogicalPaginationChecker{},
		checker.SafetyRuleRequirePaginationWhere:    &NoConditionPaginationChecker{},
		checker.SafetyRuleMaxPaginationOffset:       &DeepPaginationChecker{},
		checker.SafetyRuleMaxPageSize:               &LargePageSizeChecker{},
		checker.SafetyRuleRequirePagination:         &RequirePaginationChecker{},
		checker.SafetyRuleRequireOrderBy:            &RequireOrderByChecker{},

		checker.SafetyRuleDisallowMultiStatement:    &MultiStatementChecker{},
		checker.SafetyRuleDisallowComment:           &CommentChecker{},
		checker.SafetyRuleDisallowDDL:               &DDLChecker{},
		checker.SafetyRuleDisallowSetOperation:      &SetOperationChecker{},
		checker.SafetyRuleDisallowProcedureCall:     &ProcedureCallChecker{},
		checker.SafetyRuleDisallowDangerousFunction: &DangerousFunctionChecker{},
		checker.SafetyRuleDisallowSetVariable:       &SetVariableChecker{},
		checker.SafetyRuleDisallowInjectionPattern:  &InjectionPatternChecker{},

		checker.SafetyRuleDisallowTableAccess: &TableAccessChecker{},
		checker.SafetyRuleDisallowTableWrite:  &TableWriteChecker{},
	}
	for checkType, c := range generic {
		for _, engine := range allEngines {
			checker.Register(engine, checkType, c)
		}
	}

	// INTO OUTFILE and SHOW/DESCRIBE/USE are MySQL family syntax.
	mysqlOnly := map[checker.Type]checker.Checker{
		checker.SafetyRuleDisallowFileWrite: &FileWriteChecker{},
		checker.SafetyRuleDisallowMetadata:  &MetadataChecker{},
	}
	for checkType, c := range mysqlOnly {
		for _, engine := range mysqlFamily {
			checker.Register(engine, checkType, c)
		}
	}
}
