package dashboard

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const sessionCookie = "wt_session"

var activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "dashboard_sessions_active",
	Help: "Dashboard sessions currently held in memory.",
})

// Session is one browser's view state. Callers hold mu while touching Draft
// or driving the pager.
type Session struct {
	ID string

	mu       sync.Mutex
	Pager    *Pager
	Draft    Draft
	lastSeen time.Time
}

func (s *Session) Lock() { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// Store keeps sessions in memory until they have been idle for ttl.
type Store struct {
	newPager func() *Pager
	ttl      time.Duration
	now      func() time.Time
	log      *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewStore(newPager func() *Pager, ttl time.Duration) *Store {
	return &Store{
		newPager: newPager,
		ttl:      ttl,
		now:      time.Now,
		log:      zap.L().With(zap.String("component", "dashboard.sessions")),
		sessions: make(map[string]*Session),
	}
}

func (st *Store) WithLogger(l *zap.Logger) *Store {
	if l != nil {
		st.log = l.With(zap.String("component", "dashboard.sessions"))
	}
	return st
}

// Get returns the session named by the request cookie, creating one (and
// setting the cookie) when it is absent or expired.
func (st *Store) Get(w http.ResponseWriter, r *http.Request) *Session {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if s := st.lookup(c.Value); s != nil {
			return s
		}
	}

	s := &Session{ID: uuid.NewString(), Pager: st.newPager(), lastSeen: st.now()}
	st.mu.Lock()
	st.sessions[s.ID] = s
	n := len(st.sessions)
	st.mu.Unlock()
	activeSessions.Set(float64(n))

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    s.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return s
}

func (st *Store) lookup(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil
	}
	now := st.now()
	if st.ttl > 0 && now.Sub(s.lastSeen) > st.ttl {
		delete(st.sessions, id)
		activeSessions.Set(float64(len(st.sessions)))
		return nil
	}
	s.lastSeen = now
	return s
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep drops sessions idle for longer than ttl and returns how many went.
func (st *Store) Sweep() int {
	if st.ttl <= 0 {
		return 0
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	removed := 0
	for id, s := range st.sessions {
		if now.Sub(s.lastSeen) > st.ttl {
			delete(st.sessions, id)
			removed++
		}
	}
	activeSessions.Set(float64(len(st.sessions)))
	return removed
}

// Run sweeps every interval until ctx is done.
func (st *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := st.Sweep(); n > 0 {
				st.log.Debug("sessions expired", zap.Int("removed", n), zap.Int("active", st.Len()))
			}
		}
	}
}
