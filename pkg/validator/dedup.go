package validator

import (
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/nsxbet/sqlguard/pkg/types"
)

// dedupCache remembers recent validation results. It wraps the
// non-thread-safe LRU core on purpose: every worker owns its cache,
// so the hot path takes no locks. Eviction only costs a redundant
// validation, never suppresses one.
type dedupCache struct {
	lru *simplelru.LRU[string, dedupEntry]
	ttl time.Duration
	now func() time.Time
}

type dedupEntry struct {
	at     time.Time
	result *types.ValidationResult
}

func newDedupCache(size int, ttl time.Duration) (*dedupCache, error) {
	lru, err := simplelru.NewLRU[string, dedupEntry](size, nil)
	if err != nil {
		return nil, err
	}
	return &dedupCache{lru: lru, ttl: ttl, now: time.Now}, nil
}

func dedupKey(stmt *types.Statement) string {
	return strings.ToLower(strings.TrimSpace(stmt.SQL)) + "\x00" + stmt.StatementID + "\x00" + stmt.Datasource
}

func (c *dedupCache) get(stmt *types.Statement) (*types.ValidationResult, bool) {
	entry, ok := c.lru.Get(dedupKey(stmt))
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.at) > c.ttl {
		return nil, false
	}
	return entry.result, true
}

func (c *dedupCache) put(stmt *types.Statement, result *types.ValidationResult) {
	c.lru.Add(dedupKey(stmt), dedupEntry{at: c.now(), result: result})
}
