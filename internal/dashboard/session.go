package dashboard

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/pulseboard/internal/dataset"
	"github.com/KaramelBytes/pulseboard/internal/monitoring"
)

// CookieName is the session cookie.
const CookieName = "pulseboard_session"

// Session is one browser's state. Values handed out by the Store are copies;
// the dataset itself is immutable and safe to share.
type Session struct {
	ID      string
	Dataset *dataset.Dataset
	Sample  bool
	seen    time.Time
}

// View returns the dataset the page should render: an empty placeholder in
// sample-schema mode, otherwise the uploaded dataset (nil when none).
func (s Session) View() *dataset.Dataset {
	if s.Sample {
		return dataset.Empty("sample")
	}
	return s.Dataset
}

// Store keeps sessions in memory and evicts them after ttl of inactivity.
type Store struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]*Session
}

// NewStore creates a store. A ttl <= 0 never evicts.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Acquire returns the session named by the request cookie, creating one (and
// setting the cookie) when it is missing or expired.
func (s *Store) Acquire(w http.ResponseWriter, r *http.Request) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if c, err := r.Cookie(CookieName); err == nil {
		if sess, ok := s.sessions[c.Value]; ok && !s.expired(sess, now) {
			sess.seen = now
			return *sess
		}
	}
	sess := &Session{ID: uuid.NewString(), seen: now}
	s.sessions[sess.ID] = sess
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	monitoring.Debugf("dashboard: new session %s", sess.ID)
	return *sess
}

// Update applies fn to the stored session with the given id.
func (s *Store) Update(id string, fn func(*Session)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return false
	}
	fn(sess)
	sess.seen = s.now()
	return true
}

// Sweep drops expired sessions and reports how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) expired(sess *Session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.seen) > s.ttl
}
