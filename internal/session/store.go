// ABOUTME: Concurrent TTL map of SessionContext keyed by user id.
// ABOUTME: Abandoned conversations expire and are swept by the cache janitor.
package session

import (
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	DefaultContextTTL      = 6 * time.Hour
	DefaultCleanupInterval = 10 * time.Minute
)

// ContextStore holds live conversation contexts.
type ContextStore struct {
	cache *cache.Cache
}

// NewContextStore creates a store whose entries expire after ttl of
// inactivity. A cleanup interval <= 0 disables the background janitor;
// expired entries are then only hidden, not freed.
func NewContextStore(ttl, cleanup time.Duration) *ContextStore {
	if ttl <= 0 {
		ttl = DefaultContextTTL
	}
	return &ContextStore{cache: cache.New(ttl, cleanup)}
}

func key(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// Get returns the live context for userID.
func (s *ContextStore) Get(userID int64) (*SessionContext, bool) {
	v, ok := s.cache.Get(key(userID))
	if !ok {
		return nil, false
	}
	return v.(*SessionContext), true
}

// Put stores c and restarts its expiry.
func (s *ContextStore) Put(c *SessionContext) {
	s.cache.Set(key(c.UserID), c, cache.DefaultExpiration)
}

func (s *ContextStore) Delete(userID int64) {
	s.cache.Delete(key(userID))
}

// Len counts stored contexts, including expired ones not yet swept.
func (s *ContextStore) Len() int {
	return s.cache.ItemCount()
}

// OnEvicted registers fn for expired or deleted contexts, replacing any
// earlier callback.
func (s *ContextStore) OnEvicted(fn func(userID int64)) {
	s.cache.OnEvicted(func(k string, _ interface{}) {
		id, err := strconv.ParseInt(k, 10, 64)
		if err == nil {
			fn(id)
		}
	})
}

// Sweep removes expired contexts immediately.
func (s *ContextStore) Sweep() {
	s.cache.DeleteExpired()
}
