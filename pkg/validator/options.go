package validator

import (
	"log/slog"

	"github.com/pkg/errors"

	"github.com/nsxbet/sqlguard/pkg/config"
	"github.com/nsxbet/sqlguard/pkg/types"
)

// Option configures a Validator during construction.
type Option func(*Validator) error

// WithConfig uses the given configuration instead of the defaults. The
// validator treats it as immutable.
func WithConfig(cfg *config.SafetyConfig) Option {
	return func(v *Validator) error {
		if cfg == nil {
			return errors.New("config is nil")
		}
		v.cfg.Store(cfg)
		return nil
	}
}

// WithConfigFile loads the configuration from a YAML or JSON file.
func WithConfigFile(path string) Option {
	return func(v *Validator) error {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		v.cfg.Store(cfg)
		return nil
	}
}

// WithLogger replaces the default stderr logger.
func WithLogger(l *slog.Logger) Option {
	return func(v *Validator) error {
		if l == nil {
			return errors.New("logger is nil")
		}
		v.logger = l
		return nil
	}
}

// WithEngine sets the SQL dialect statements are analyzed with. The
// default is MySQL.
func WithEngine(engine types.Engine) Option {
	return func(v *Validator) error {
		v.engine = engine
		return nil
	}
}

// WithPaginationPlugin marks a pagination-rewriting plugin as
// registered, so an out-of-band pagination descriptor counts as
// physical pagination.
func WithPaginationPlugin() Option {
	return func(v *Validator) error {
		v.paginationPlugin = true
		return nil
	}
}

// WithResultSlot attaches the slot the validator fills before every
// return, for the post-execution audit step on the same worker.
func WithResultSlot(slot *ResultSlot) Option {
	return func(v *Validator) error {
		v.slot = slot
		return nil
	}
}

// WithoutDeduplication disables the result cache; every call runs the
// full rule set.
func WithoutDeduplication() Option {
	return func(v *Validator) error {
		v.noDedup = true
		return nil
	}
}
