package types

import (
	"encoding/json"
	"fmt"
)

// Engine represents the database engine type
type Engine int32

const (
	Engine_ENGINE_UNSPECIFIED Engine = 0
	Engine_MYSQL              Engine = 1
	Engine_POSTGRES           Engine = 2
	Engine_TIDB               Engine = 3
	Engine_MARIADB            Engine = 4
	Engine_OCEANBASE          Engine = 5
)

func (e Engine) String() string {
	switch e {
	case Engine_ENGINE_UNSPECIFIED:
		return "ENGINE_UNSPECIFIED"
	case Engine_MYSQL:
		return "MYSQL"
	case Engine_POSTGRES:
		return "POSTGRES"
	case Engine_TIDB:
		return "TIDB"
	case Engine_MARIADB:
		return "MARIADB"
	case Engine_OCEANBASE:
		return "OCEANBASE"
	default:
		return "UNKNOWN"
	}
}

// IsMySQLFamily reports whether the engine shares the MySQL grammar.
func (e Engine) IsMySQLFamily() bool {
	switch e {
	case Engine_MYSQL, Engine_TIDB, Engine_MARIADB, Engine_OCEANBASE:
		return true
	default:
		return false
	}
}

func parseEngineString(s string) Engine {
	switch s {
	case "MYSQL":
		return Engine_MYSQL
	case "POSTGRES", "POSTGRESQL":
		return Engine_POSTGRES
	case "TIDB":
		return Engine_TIDB
	case "MARIADB":
		return Engine_MARIADB
	case "OCEANBASE":
		return Engine_OCEANBASE
	default:
		return Engine_ENGINE_UNSPECIFIED
	}
}

// UnmarshalYAML implements yaml.Unmarshaler for Engine
func (e *Engine) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	*e = parseEngineString(s)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for Engine
func (e *Engine) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*e = parseEngineString(s)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Engine
func (e Engine) MarshalYAML() (interface{}, error) {
	return e.String(), nil
}

// MarshalJSON implements json.Marshaler for Engine
func (e Engine) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.String())
}

// RiskLevel represents the ordered severity of a violation.
// Higher values are more severe.
type RiskLevel int32

const (
	RiskLevel_SAFE     RiskLevel = 0
	RiskLevel_LOW      RiskLevel = 1
	RiskLevel_MEDIUM   RiskLevel = 2
	RiskLevel_HIGH     RiskLevel = 3
	RiskLevel_CRITICAL RiskLevel = 4
)

func (l RiskLevel) String() string {
	switch l {
	case RiskLevel_SAFE:
		return "SAFE"
	case RiskLevel_LOW:
		return "LOW"
	case RiskLevel_MEDIUM:
		return "MEDIUM"
	case RiskLevel_HIGH:
		return "HIGH"
	case RiskLevel_CRITICAL:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ParseRiskLevel parses a risk level name. It accepts the values produced
// by RiskLevel.String.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch s {
	case "SAFE":
		return RiskLevel_SAFE, nil
	case "LOW":
		return RiskLevel_LOW, nil
	case "MEDIUM":
		return RiskLevel_MEDIUM, nil
	case "HIGH":
		return RiskLevel_HIGH, nil
	case "CRITICAL":
		return RiskLevel_CRITICAL, nil
	default:
		return RiskLevel_SAFE, fmt.Errorf("unknown risk level: %q", s)
	}
}

// UnmarshalYAML implements yaml.Unmarshaler for RiskLevel
func (l *RiskLevel) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	level, err := ParseRiskLevel(s)
	if err != nil {
		return err
	}
	*l = level
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for RiskLevel
func (l *RiskLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	level, err := ParseRiskLevel(s)
	if err != nil {
		return err
	}
	*l = level
	return nil
}

// MarshalYAML implements yaml.Marshaler for RiskLevel
func (l RiskLevel) MarshalYAML() (interface{}, error) {
	return l.String(), nil
}

// MarshalJSON implements json.Marshaler for RiskLevel
func (l RiskLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// SQLCommandType classifies a statement by its top-level command.
type SQLCommandType int32

const (
	SQLCommandType_COMMAND_UNSPECIFIED SQLCommandType = 0
	SQLCommandType_SELECT              SQLCommandType = 1
	SQLCommandType_INSERT              SQLCommandType = 2
	SQLCommandType_UPDATE              SQLCommandType = 3
	SQLCommandType_DELETE              SQLCommandType = 4
	SQLCommandType_UNKNOWN             SQLCommandType = 5
)

func (t SQLCommandType) String() string {
	switch t {
	case SQLCommandType_COMMAND_UNSPECIFIED:
		return "COMMAND_UNSPECIFIED"
	case SQLCommandType_SELECT:
		return "SELECT"
	case SQLCommandType_INSERT:
		return "INSERT"
	case SQLCommandType_UPDATE:
		return "UPDATE"
	case SQLCommandType_DELETE:
		return "DELETE"
	case SQLCommandType_UNKNOWN:
		return "UNKNOWN"
	default:
		return "UNKNOWN"
	}
}

// UnmarshalYAML implements yaml.Unmarshaler for SQLCommandType
func (t *SQLCommandType) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	*t = parseCommandString(s)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for SQLCommandType
func (t *SQLCommandType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = parseCommandString(s)
	return nil
}

func parseCommandString(s string) SQLCommandType {
	switch s {
	case "SELECT":
		return SQLCommandType_SELECT
	case "INSERT":
		return SQLCommandType_INSERT
	case "UPDATE":
		return SQLCommandType_UPDATE
	case "DELETE":
		return SQLCommandType_DELETE
	case "UNKNOWN":
		return SQLCommandType_UNKNOWN
	default:
		return SQLCommandType_COMMAND_UNSPECIFIED
	}
}

// ViolationStrategy is the global policy applied to a non-passing result.
type ViolationStrategy int32

const (
	ViolationStrategy_STRATEGY_UNSPECIFIED ViolationStrategy = 0
	// ViolationStrategy_BLOCK raises a typed error for any non-passing result.
	ViolationStrategy_BLOCK ViolationStrategy = 1
	// ViolationStrategy_WARN logs violations at warning level and returns normally.
	ViolationStrategy_WARN ViolationStrategy = 2
	// ViolationStrategy_LOG logs violations at info level and returns normally.
	ViolationStrategy_LOG ViolationStrategy = 3
)

func (s ViolationStrategy) String() string {
	switch s {
	case ViolationStrategy_BLOCK:
		return "BLOCK"
	case ViolationStrategy_WARN:
		return "WARN"
	case ViolationStrategy_LOG:
		return "LOG"
	default:
		return "STRATEGY_UNSPECIFIED"
	}
}

// ParseViolationStrategy parses a strategy name.
func ParseViolationStrategy(s string) (ViolationStrategy, error) {
	switch s {
	case "BLOCK":
		return ViolationStrategy_BLOCK, nil
	case "WARN":
		return ViolationStrategy_WARN, nil
	case "LOG":
		return ViolationStrategy_LOG, nil
	default:
		return ViolationStrategy_STRATEGY_UNSPECIFIED, fmt.Errorf("unknown violation strategy: %q", s)
	}
}

// UnmarshalYAML implements yaml.Unmarshaler for ViolationStrategy
func (s *ViolationStrategy) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	strategy, err := ParseViolationStrategy(raw)
	if err != nil {
		return err
	}
	*s = strategy
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for ViolationStrategy
func (s *ViolationStrategy) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	strategy, err := ParseViolationStrategy(raw)
	if err != nil {
		return err
	}
	*s = strategy
	return nil
}

// MarshalYAML implements yaml.Marshaler for ViolationStrategy
func (s ViolationStrategy) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// MarshalJSON implements json.Marshaler for ViolationStrategy
func (s ViolationStrategy) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// PaginationRequest is an out-of-band pagination descriptor supplied by a
// pagination abstraction, independent of whether the SQL text contains a
// LIMIT clause.
type PaginationRequest struct {
	Offset int64 `json:"offset" yaml:"offset"`
	Limit  int64 `json:"limit"  yaml:"limit"`
}

// Statement is one validation request. The SQL field carries the final
// literal statement text with all parameters already substituted by the
// caller. A Statement is immutable for the duration of the call.
type Statement struct {
	SQL         string             `json:"sql"                   yaml:"sql"`
	Command     SQLCommandType     `json:"command,omitempty"     yaml:"command,omitempty"`
	StatementID string             `json:"statementId,omitempty" yaml:"statementId,omitempty"`
	Datasource  string             `json:"datasource,omitempty"  yaml:"datasource,omitempty"`
	Pagination  *PaginationRequest `json:"pagination,omitempty"  yaml:"pagination,omitempty"`
}

// SafetyRule is one configured rule block
type SafetyRule struct {
	Type             string                 `json:"type"                       yaml:"type"`
	Enabled          bool                   `json:"enabled"                    yaml:"enabled"`
	Level            RiskLevel              `json:"level,omitempty"            yaml:"level,omitempty"`
	Payload          map[string]interface{} `json:"payload,omitempty"          yaml:"payload,omitempty"`
	ExemptStatements []string               `json:"exemptStatements,omitempty" yaml:"exemptStatements,omitempty"`
	ExemptTables     []string               `json:"exemptTables,omitempty"     yaml:"exemptTables,omitempty"`
	Engine           Engine                 `json:"engine,omitempty"           yaml:"engine,omitempty"`
	Comment          string                 `json:"comment,omitempty"          yaml:"comment,omitempty"`
}

// UnmarshalYAML implements yaml.Unmarshaler for SafetyRule. A rule listed in
// a config file is enabled unless it says otherwise.
func (r *SafetyRule) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plain SafetyRule
	raw := plain{Enabled: true}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	*r = SafetyRule(raw)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for SafetyRule.
func (r *SafetyRule) UnmarshalJSON(data []byte) error {
	type plain SafetyRule
	raw := plain{Enabled: true}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = SafetyRule(raw)
	return nil
}

// Violation is one finding produced by a rule checker. Messages are stable,
// pattern-matchable strings carrying the offending field/table/operation
// name; callers and tests match on substrings.
type Violation struct {
	Rule       string    `json:"rule"`
	Code       int32     `json:"code"`
	Level      RiskLevel `json:"level"`
	Message    string    `json:"message"`
	Suggestion string    `json:"suggestion,omitempty"`
}

// ValidationResult is the accumulated outcome of one validation call.
// Violations keep insertion order. Level is always the maximum across the
// accumulated violations and RiskLevel_SAFE while the list is empty.
type ValidationResult struct {
	Violations []*Violation `json:"violations"`
	Level      RiskLevel    `json:"level"`
}

// NewValidationResult returns an empty, passing result.
func NewValidationResult() *ValidationResult {
	return &ValidationResult{Level: RiskLevel_SAFE}
}

// Passed reports whether no violations were recorded.
func (r *ValidationResult) Passed() bool {
	return len(r.Violations) == 0
}

// Add appends a violation and raises the aggregate level if needed.
func (r *ValidationResult) Add(v *Violation) {
	if v == nil {
		return
	}
	r.Violations = append(r.Violations, v)
	if v.Level > r.Level {
		r.Level = v.Level
	}
}

// RecomputeLevel recalculates the aggregate level from the violation list.
func (r *ValidationResult) RecomputeLevel() {
	level := RiskLevel_SAFE
	for _, v := range r.Violations {
		if v.Level > level {
			level = v.Level
		}
	}
	r.Level = level
}

// CountByLevel returns the number of violations at the given level.
func (r *ValidationResult) CountByLevel(level RiskLevel) int {
	n := 0
	for _, v := range r.Violations {
		if v.Level == level {
			n++
		}
	}
	return n
}

func (r *ValidationResult) String() string {
	if r.Passed() {
		return "passed"
	}
	return fmt.Sprintf("%d violation(s), max risk %s", len(r.Violations), r.Level)
}

// Position represents a position in the source text
type Position struct {
	Line   int32 `json:"line"`
	Column int32 `json:"column"`
}
