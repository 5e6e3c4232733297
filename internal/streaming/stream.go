// Package streaming provides the per-session outbound event queue that a
// client drains over server-sent events.
package streaming

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"
)

// EventType represents the type of streaming event.
type EventType string

// EventMessage carries a server-initiated JSON-RPC message.
const EventMessage EventType = "message"

var (
	// ErrClosed is returned when sending on a closed stream.
	ErrClosed = errors.New("stream closed")
	// ErrBufferFull is returned when the queue has no free slot.
	ErrBufferFull = errors.New("stream buffer full")
	// ErrAttached is returned when a second reader attaches to a stream.
	ErrAttached = errors.New("stream already has a reader")
)

// Event represents a single streaming event.
type Event struct {
	Type EventType
	ID   int
	Data json.RawMessage
}

// Config configures stream behavior.
type Config struct {
	MaxBuffer       int           // Max queued events (default: 100)
	HeartbeatPeriod time.Duration // Heartbeat interval while attached (default: 15s)
}

// DefaultConfig returns default streaming configuration.
func DefaultConfig() Config {
	return Config{
		MaxBuffer:       100,
		HeartbeatPeriod: 15 * time.Second,
	}
}

// Stream is an outbound queue bound to one session. Messages queue while no
// reader is attached and are delivered in order once one is.
type Stream struct {
	ID        string
	StartedAt time.Time
	ctx       context.Context
	cancel    context.CancelFunc

	events          chan Event
	heartbeatPeriod time.Duration

	mu       sync.Mutex
	sequence int
	closed   bool
	attached bool
}

// NewStream creates a stream for the session id. The stream is closed when
// ctx is cancelled or Close is called.
func NewStream(ctx context.Context, id string, config Config) *Stream {
	if config.MaxBuffer <= 0 {
		config.MaxBuffer = 100
	}
	if config.HeartbeatPeriod <= 0 {
		config.HeartbeatPeriod = 15 * time.Second
	}

	ctx, cancel := context.WithCancel(ctx)

	s := &Stream{
		ID:              id,
		StartedAt:       time.Now(),
		ctx:             ctx,
		cancel:          cancel,
		events:          make(chan Event, config.MaxBuffer),
		heartbeatPeriod: config.HeartbeatPeriod,
	}

	go func() {
		<-ctx.Done()
		s.Close()
	}()

	return s
}

// Events returns the event channel for consumers.
func (s *Stream) Events() <-chan Event {
	return s.events
}

// Done is closed when the stream is closed.
func (s *Stream) Done() <-chan struct{} {
	return s.ctx.Done()
}

// HeartbeatPeriod returns the configured heartbeat interval.
func (s *Stream) HeartbeatPeriod() time.Duration {
	return s.heartbeatPeriod
}

// Pending returns the number of queued events.
func (s *Stream) Pending() int {
	return len(s.events)
}

// Send marshals msg and queues it. Send never blocks.
func (s *Stream) Send(msg interface{}) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	s.sequence++
	select {
	case s.events <- Event{Type: EventMessage, ID: s.sequence, Data: data}:
		return nil
	default:
		s.sequence--
		return ErrBufferFull
	}
}

// Attach marks the stream as having a reader. The returned function detaches.
func (s *Stream) Attach() (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if s.attached {
		return nil, ErrAttached
	}
	s.attached = true

	return func() {
		s.mu.Lock()
		s.attached = false
		s.mu.Unlock()
	}, nil
}

// Attached reports whether a reader is attached.
func (s *Stream) Attached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attached
}

// Close closes the stream. It is safe to call more than once.
func (s *Stream) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.events)
	s.mu.Unlock()

	s.cancel()
}

// IsClosed returns true if the stream is closed.
func (s *Stream) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
