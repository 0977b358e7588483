// Package session keeps per-visitor state in memory: the backend token, the
// signed-in user and the four module views. Nothing here is persisted.
package session

import (
	"time"

	"github.com/google/uuid"

	"bizai/internal/cache"
	"bizai/internal/core"
)

// CookieName is the session cookie.
const CookieName = "bizai_session"

// Session is one visitor.
type Session struct {
	ID        string
	Token     string
	User      core.User
	Views     core.Views
	CreatedAt time.Time
}

// Authenticated reports whether the visitor holds a backend token.
func (s Session) Authenticated() bool { return s.Token != "" }

// SignOut drops the credentials and keeps the views.
func (s *Session) SignOut() {
	s.Token = ""
	s.User = core.User{}
}

// Store is an LRU+TTL session store. Every mutation goes through the cache
// lock, so concurrent requests of one visitor never lose each other's writes
// to different modules.
type Store struct {
	cache *cache.LRUCache[Session]
	now   func() time.Time
}

// NewStore creates a store holding at most maxEntries sessions for ttl each.
func NewStore(maxEntries int, ttl time.Duration) *Store {
	return &Store{
		cache: cache.NewLRUCache[Session](maxEntries, ttl),
		now:   time.Now,
	}
}

// Cleaner exposes the underlying cache for periodic expiry sweeps.
func (s *Store) Cleaner() cache.Cleaner { return s.cache }

// Create starts a new empty session.
func (s *Store) Create() Session {
	sess := Session{ID: uuid.NewString(), CreatedAt: s.now().UTC()}
	s.cache.Set(sess.ID, sess)
	return sess
}

// Get returns the session for id.
func (s *Store) Get(id string) (Session, bool) {
	if id == "" {
		return Session{}, false
	}
	return s.cache.Get(id)
}

// GetOrCreate returns the session for id or a fresh one. created reports
// whether a new cookie must be issued.
func (s *Store) GetOrCreate(id string) (sess Session, created bool) {
	if existing, ok := s.Get(id); ok {
		return existing, false
	}
	return s.Create(), true
}

// Update applies fn to the stored session atomically. A session that expired
// in the meantime is not resurrected; ok is false then.
func (s *Store) Update(id string, fn func(*Session)) (Session, bool) {
	var ok bool
	sess := s.cache.Update(id, func(cur Session, found bool) (Session, bool) {
		if !found {
			return cur, false
		}
		fn(&cur)
		ok = true
		return cur, true
	})
	return sess, ok
}

// Delete removes a session.
func (s *Store) Delete(id string) { s.cache.Delete(id) }

// Len returns the number of live sessions.
func (s *Store) Len() int { return s.cache.Size() }
