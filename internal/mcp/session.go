package mcp

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"uikb/internal/slogutil"
	"uikb/internal/streaming"
)

// SessionState is the lifecycle position of a session.
type SessionState int

const (
	SessionInitializing SessionState = iota
	SessionActive
	SessionClosed
)

func (s SessionState) String() string {
	switch s {
	case SessionInitializing:
		return "initializing"
	case SessionActive:
		return "active"
	case SessionClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session is one client conversation, identified by the Mcp-Session-Id header.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu              sync.Mutex
	state           SessionState
	initialized     bool
	lastSeen        time.Time
	client          ClientInfo
	protocolVersion string
	stream          *streaming.Stream
}

// State returns the session state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Initialized reports whether initialize has been answered on this session.
func (s *Session) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// Client returns the client info captured at initialize.
func (s *Session) Client() ClientInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client
}

// ProtocolVersion returns the negotiated protocol version.
func (s *Session) ProtocolVersion() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.protocolVersion
}

// LastSeen returns the time of the most recent request.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Stream returns the session's outbound event stream.
func (s *Session) Stream() *streaming.Stream {
	return s.stream
}

// Touch records activity on the session.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// initialize records the handshake and moves the session to active.
func (s *Session) initialize(client ClientInfo, protocolVersion string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialized = true
	s.client = client
	s.protocolVersion = protocolVersion
	if s.state == SessionInitializing {
		s.state = SessionActive
	}
}

func (s *Session) close() {
	s.mu.Lock()
	s.state = SessionClosed
	s.mu.Unlock()
	s.stream.Close()
}

// DefaultRetiredLimit is how many closed session ids a store remembers.
const DefaultRetiredLimit = 1024

// SessionStoreOptions configures a SessionStore.
type SessionStoreOptions struct {
	Stream streaming.Config
	Logger *slog.Logger
	// NewID generates session ids. Defaults to random UUIDs.
	NewID func() string
	// RetiredLimit bounds the remembered closed ids. Zero means
	// DefaultRetiredLimit.
	RetiredLimit int
}

// SessionStats summarises the live sessions without exposing their ids.
type SessionStats struct {
	Live      int    `json:"live"`
	Streaming int    `json:"streaming"`         // sessions with an attached event stream
	MaxIdle   string `json:"maxIdle,omitempty"` // longest time since a live session's last request
}

// SessionStore owns the live sessions. Create, lookup and delete are
// mutually exclusive. The most recently closed ids are remembered and never
// handed out again; older ones rely on random ids not repeating.
type SessionStore struct {
	mu           sync.RWMutex
	sessions     map[string]*Session
	retired      map[string]struct{}
	retiredOrder []string
	retiredLimit int

	streamConfig streaming.Config
	newID        func() string
	logger       *slog.Logger
}

// NewSessionStore creates an empty store.
func NewSessionStore(opts SessionStoreOptions) *SessionStore {
	logger := opts.Logger
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	limit := opts.RetiredLimit
	if limit <= 0 {
		limit = DefaultRetiredLimit
	}
	return &SessionStore{
		sessions:     make(map[string]*Session),
		retired:      make(map[string]struct{}),
		retiredLimit: limit,
		streamConfig: opts.Stream,
		newID:        newID,
		logger:       logger,
	}
}

// Create registers a new session under a fresh id.
func (st *SessionStore) Create() *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	id := st.newID()
	for st.taken(id) {
		id = st.newID()
	}

	now := time.Now()
	sess := &Session{
		ID:        id,
		CreatedAt: now,
		state:     SessionInitializing,
		lastSeen:  now,
		stream:    streaming.NewStream(context.Background(), id, st.streamConfig),
	}
	st.sessions[id] = sess

	st.logger.Info("Session created", "session", id, "live", len(st.sessions))
	return sess
}

func (st *SessionStore) taken(id string) bool {
	if _, ok := st.sessions[id]; ok {
		return true
	}
	_, ok := st.retired[id]
	return ok
}

// Get returns the live session for id.
func (st *SessionStore) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	st.mu.RLock()
	defer st.mu.RUnlock()
	sess, ok := st.sessions[id]
	return sess, ok
}

// Delete closes and removes the session. It reports whether id was live.
func (st *SessionStore) Delete(id string) bool {
	st.mu.Lock()
	sess, ok := st.sessions[id]
	if ok {
		delete(st.sessions, id)
		st.retire(id)
	}
	live := len(st.sessions)
	st.mu.Unlock()

	if !ok {
		return false
	}
	sess.close()
	st.logger.Info("Session closed", "session", id, "live", live)
	return true
}

// retire remembers id, forgetting the oldest entry past the limit.
func (st *SessionStore) retire(id string) {
	st.retired[id] = struct{}{}
	st.retiredOrder = append(st.retiredOrder, id)
	if len(st.retiredOrder) > st.retiredLimit {
		delete(st.retired, st.retiredOrder[0])
		st.retiredOrder[0] = ""
		st.retiredOrder = st.retiredOrder[1:]
	}
}

// Retired reports whether id belonged to a recently closed session.
func (st *SessionStore) Retired(id string) bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	_, ok := st.retired[id]
	return ok
}

// Len returns the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Stats reports live session counts and the longest idle time.
func (st *SessionStore) Stats() SessionStats {
	now := time.Now()
	var stats SessionStats
	var maxIdle time.Duration
	for _, sess := range st.live() {
		stats.Live++
		if sess.stream.Attached() {
			stats.Streaming++
		}
		if idle := now.Sub(sess.LastSeen()); idle > maxIdle {
			maxIdle = idle
		}
	}
	if stats.Live > 0 {
		stats.MaxIdle = maxIdle.Truncate(time.Second).String()
	}
	return stats
}

func (st *SessionStore) live() []*Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]*Session, 0, len(st.sessions))
	for _, sess := range st.sessions {
		out = append(out, sess)
	}
	return out
}

// Broadcast queues msg on every live session stream and returns how many
// sessions accepted it.
func (st *SessionStore) Broadcast(msg interface{}) int {
	delivered := 0
	for _, sess := range st.live() {
		if err := sess.stream.Send(msg); err != nil {
			st.logger.Warn("Dropping broadcast for session",
				"session", sess.ID,
				"error", err.Error(),
			)
			continue
		}
		delivered++
	}
	return delivered
}

// CloseAll closes every live session.
func (st *SessionStore) CloseAll() {
	for _, sess := range st.live() {
		st.Delete(sess.ID)
	}
}
