// Package validator is the façade of the SQL safety engine. It runs
// the configured rules against one statement at a time, synchronously
// on the caller's worker, immediately before the statement is sent to
// the database. No rule performs I/O; a call completes in microseconds.
package validator

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/nsxbet/sqlguard/pkg/config"
	"github.com/nsxbet/sqlguard/pkg/logger"
	"github.com/nsxbet/sqlguard/pkg/types"
)

// Validator validates SQL statements against a safety rule config.
// One validator per worker goroutine; ForWorker derives copies that
// share the config but own their cache and slot.
type Validator struct {
	cfg              *atomic.Pointer[config.SafetyConfig]
	logger           *slog.Logger
	engine           types.Engine
	paginationPlugin bool
	noDedup          bool
	slot             *ResultSlot
	cache            *dedupCache
}

// New builds a validator. Without options it validates MySQL
// statements against config.Default().
func New(opts ...Option) (*Validator, error) {
	v := &Validator{
		cfg:    new(atomic.Pointer[config.SafetyConfig]),
		logger: logger.Default(),
		engine: types.Engine_MYSQL,
	}
	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}
	if v.cfg.Load() == nil {
		v.cfg.Store(config.Default())
	}
	cfg := v.cfg.Load()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid safety config")
	}
	if !v.noDedup {
		cache, err := newDedupCache(cfg.Deduplication.CacheSize, cfg.TTL())
		if err != nil {
			return nil, err
		}
		v.cache = cache
	}
	return v, nil
}

// ForWorker returns a validator owned by one worker goroutine. The
// copy shares the configuration (including hot reloads) and the
// logger, owns a fresh deduplication cache, and gets its own result
// slot when the parent carries one.
func (v *Validator) ForWorker() *Validator {
	w := *v
	if v.slot != nil {
		w.slot = &ResultSlot{}
	}
	if v.cache != nil {
		cfg := v.cfg.Load()
		if cache, err := newDedupCache(cfg.Deduplication.CacheSize, cfg.TTL()); err == nil {
			w.cache = cache
		}
	}
	return &w
}

// Slot returns the attached result slot, nil when none is configured.
func (v *Validator) Slot() *ResultSlot {
	return v.slot
}

// Validate runs the configured rules against one statement. Identical
// statements on the same worker within the deduplication window reuse
// the previous result without rerunning analysis or rules. The result
// is put into the result slot, when one is attached, before returning.
func (v *Validator) Validate(ctx context.Context, stmt *types.Statement) (*types.ValidationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if stmt == nil {
		return nil, errors.New("statement is nil")
	}
	cfg := v.cfg.Load()
	if !cfg.Enabled {
		result := types.NewValidationResult()
		v.publish(result)
		return result, nil
	}
	if v.cache != nil {
		if cached, ok := v.cache.get(stmt); ok {
			v.publish(cached)
			return cached, nil
		}
	}
	result := v.run(ctx, cfg, stmt)
	if v.cache != nil {
		v.cache.put(stmt, result)
	}
	v.publish(result)
	return result, nil
}

// Enforce validates and applies a violation strategy to a non-passed
// result: BLOCK returns a *BlockedError regardless of the risk level,
// WARN and LOG only log. An unspecified strategy falls back to the
// configured one.
func (v *Validator) Enforce(ctx context.Context, stmt *types.Statement, strategy types.ViolationStrategy) (*types.ValidationResult, error) {
	result, err := v.Validate(ctx, stmt)
	if err != nil {
		return nil, err
	}
	if result.Passed() {
		return result, nil
	}
	if strategy == types.ViolationStrategy_STRATEGY_UNSPECIFIED {
		strategy = v.cfg.Load().Strategy
	}
	switch strategy {
	case types.ViolationStrategy_BLOCK:
		return result, &BlockedError{Result: result}
	case types.ViolationStrategy_WARN:
		v.logger.Warn("unsafe SQL allowed",
			"statementID", stmt.StatementID,
			"risk", result.Level,
			"violations", len(result.Violations))
	default:
		v.logger.Info("unsafe SQL observed",
			"statementID", stmt.StatementID,
			"risk", result.Level,
			"violations", len(result.Violations))
	}
	return result, nil
}

// ReloadConfig swaps in a new configuration atomically. Readers see
// either the old or the new config, never a partial one. Worker caches
// may serve results computed under the old config for at most one TTL
// window.
func (v *Validator) ReloadConfig(cfg *config.SafetyConfig) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid safety config")
	}
	v.cfg.Store(cfg)
	return nil
}

func (v *Validator) publish(result *types.ValidationResult) {
	if v.slot != nil {
		v.slot.Put(result)
	}
}
