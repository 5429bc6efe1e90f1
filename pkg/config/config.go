package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nsxbet/sqlguard/pkg/checker"
	"github.com/nsxbet/sqlguard/pkg/types"
)

// DeduplicationConfig bounds the per-worker result cache.
type DeduplicationConfig struct {
	CacheSize int   `yaml:"cacheSize" json:"cacheSize"`
	TTLMs     int64 `yaml:"ttlMs" json:"ttlMs"`
}

// SafetyConfig is the validated rule configuration. The validator
// treats it as immutable once constructed; hot reloads swap in a whole
// new value instead of mutating this one.
type SafetyConfig struct {
	Enabled       bool                    `yaml:"enabled" json:"enabled"`
	Strategy      types.ViolationStrategy `yaml:"strategy" json:"strategy"`
	Deduplication DeduplicationConfig     `yaml:"deduplication" json:"deduplication"`
	Rules         []*types.SafetyRule     `yaml:"rules" json:"rules"`
}

// UnmarshalYAML implements yaml.Unmarshaler for SafetyConfig. A config
// that does not mention "enabled" is enabled.
func (c *SafetyConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plain SafetyConfig
	raw := plain{Enabled: true}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	*c = SafetyConfig(raw)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for SafetyConfig.
func (c *SafetyConfig) UnmarshalJSON(data []byte) error {
	type plain SafetyConfig
	raw := plain{Enabled: true}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = SafetyConfig(raw)
	return nil
}

// Load reads a configuration file, applies defaults for everything it
// omits and validates the result.
func Load(path string) (*SafetyConfig, error) {
	slog.Debug("Loading safety config", "path", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	slog.Debug("Loaded safety config", "path", path, "rules", len(cfg.Rules))
	return cfg, nil
}

// Parse decodes configuration bytes, YAML first with a JSON fallback,
// fills defaults for omitted rules and settings, and validates. Empty
// input yields the default configuration.
func Parse(data []byte) (*SafetyConfig, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Default(), nil
	}
	var cfg SafetyConfig
	if yamlErr := yaml.Unmarshal(data, &cfg); yamlErr != nil {
		cfg = SafetyConfig{}
		if jsonErr := json.Unmarshal(data, &cfg); jsonErr != nil {
			return nil, errors.Wrap(yamlErr, "config is neither valid YAML nor JSON")
		}
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills omitted settings and appends the default rule
// entries for rule types the config does not mention. Rules the config
// does mention are taken as given.
func (c *SafetyConfig) applyDefaults() {
	if c.Strategy == types.ViolationStrategy_STRATEGY_UNSPECIFIED {
		c.Strategy = types.ViolationStrategy_BLOCK
	}
	if c.Deduplication.CacheSize == 0 {
		c.Deduplication.CacheSize = DefaultCacheSize
	}
	if c.Deduplication.TTLMs == 0 {
		c.Deduplication.TTLMs = DefaultTTLMs
	}
	seen := make(map[string]bool, len(c.Rules))
	for _, rule := range c.Rules {
		if rule != nil {
			seen[rule.Type] = true
		}
	}
	for _, rule := range defaultRules() {
		if !seen[rule.Type] {
			c.Rules = append(c.Rules, rule)
		}
	}
}

// Validate rejects configurations the engine could misbehave on.
// validator.New refuses to construct with an invalid config.
func (c *SafetyConfig) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Strategy < types.ViolationStrategy_BLOCK || c.Strategy > types.ViolationStrategy_LOG {
		return errors.Errorf("invalid violation strategy %d", c.Strategy)
	}
	if c.Deduplication.CacheSize <= 0 {
		return errors.Errorf("deduplication cache size must be positive, got %d", c.Deduplication.CacheSize)
	}
	if c.Deduplication.TTLMs < 0 {
		return errors.Errorf("deduplication TTL must not be negative, got %d", c.Deduplication.TTLMs)
	}
	seen := make(map[string]bool, len(c.Rules))
	for _, rule := range c.Rules {
		if rule == nil {
			return errors.New("config contains a nil rule")
		}
		if !knownRuleTypes[rule.Type] {
			return errors.Errorf("unknown rule type %q", rule.Type)
		}
		if seen[rule.Type] {
			return errors.Errorf("rule type %q configured twice", rule.Type)
		}
		seen[rule.Type] = true
		if rule.Level < types.RiskLevel_SAFE || rule.Level > types.RiskLevel_CRITICAL {
			return errors.Errorf("rule %s: invalid risk level %d", rule.Type, rule.Level)
		}
		if err := validateRule(rule); err != nil {
			return errors.Wrapf(err, "rule %s", rule.Type)
		}
	}
	return nil
}

// TTL returns the deduplication window as a duration.
func (c *SafetyConfig) TTL() time.Duration {
	return time.Duration(c.Deduplication.TTLMs) * time.Millisecond
}

// RulesForEngine returns the rules that apply to the given engine. A
// rule with no engine set applies everywhere.
func (c *SafetyConfig) RulesForEngine(engine types.Engine) []*types.SafetyRule {
	var rules []*types.SafetyRule
	for _, rule := range c.Rules {
		if rule.Engine == types.Engine_ENGINE_UNSPECIFIED || rule.Engine == engine {
			rules = append(rules, rule)
		}
	}
	return rules
}

// wildcardPayloadKeys names the payload lists holding table or field
// patterns, which must be well-formed wildcards.
var wildcardPayloadKeys = map[string][]string{
	string(checker.SafetyRuleDisallowBlacklistOnlyWhere): {"fields"},
	string(checker.SafetyRuleRequireWhereField):          {"global"},
	string(checker.SafetyRuleRequirePagination):          {"blacklistFields"},
	string(checker.SafetyRuleDisallowTableAccess):        {"tables"},
	string(checker.SafetyRuleDisallowTableWrite):         {"tables"},
}

// requiredListKeys names payload lists that must not be explicitly
// empty on an enabled rule. An absent key leaves the rule dormant, an
// empty one is a misconfiguration.
var requiredListKeys = map[string]string{
	string(checker.SafetyRuleDisallowTableAccess): "tables",
	string(checker.SafetyRuleDisallowTableWrite):  "tables",
}

func validateRule(rule *types.SafetyRule) error {
	for _, pattern := range rule.ExemptStatements {
		if err := validateWildcard(pattern); err != nil {
			return errors.Wrap(err, "exemptStatements")
		}
	}
	for _, pattern := range rule.ExemptTables {
		if err := validateWildcard(pattern); err != nil {
			return errors.Wrap(err, "exemptTables")
		}
	}
	for _, key := range wildcardPayloadKeys[rule.Type] {
		list, ok, err := checker.PayloadStringList(rule.Payload, key)
		if err != nil {
			return errors.Wrapf(err, "payload %s", key)
		}
		if !ok {
			continue
		}
		if len(list) == 0 && rule.Enabled && requiredListKeys[rule.Type] == key {
			return errors.Errorf("payload %s must not be empty on an enabled rule", key)
		}
		for _, pattern := range list {
			if err := validateWildcard(pattern); err != nil {
				return errors.Wrapf(err, "payload %s", key)
			}
		}
	}
	if rule.Type == string(checker.SafetyRuleRequireWhereField) {
		byTable, _, err := checker.PayloadStringListMap(rule.Payload, "byTable")
		if err != nil {
			return errors.Wrap(err, "payload byTable")
		}
		for pattern := range byTable {
			if err := validateWildcard(pattern); err != nil {
				return errors.Wrap(err, "payload byTable")
			}
		}
	}
	return nil
}

func validateWildcard(pattern string) error {
	if strings.TrimSpace(pattern) == "" {
		return errors.New("empty pattern")
	}
	if i := strings.IndexByte(pattern, '*'); i >= 0 && i != len(pattern)-1 {
		return errors.Errorf("pattern %q: * is only valid as a trailing wildcard", pattern)
	}
	return nil
}
