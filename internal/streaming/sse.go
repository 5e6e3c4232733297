package streaming

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Serve writes the stream to w as server-sent events until ctx is done or
// the stream is closed. The stream opens with a ": connected" comment.
// Messages become "message" events and heartbeats SSE comments. Only one
// Serve may run per stream at a time.
func Serve(ctx context.Context, w http.ResponseWriter, s *Stream) error {
	detach, err := s.Attach()
	if err != nil {
		return err
	}
	defer detach()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	// Compressing writers hold headers until the first body byte, so the
	// stream opens with a comment to get headers to the client right away.
	if _, err := io.WriteString(w, ": connected\n\n"); err != nil {
		return err
	}
	flush(w)

	ticker := time.NewTicker(s.HeartbeatPeriod())
	defer ticker.Stop()

	heartbeat := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-s.Events():
			if !ok {
				return nil
			}
			if err := WriteEvent(w, event); err != nil {
				return err
			}
		case <-ticker.C:
			heartbeat++
			if _, err := fmt.Fprintf(w, ": heartbeat %d\n\n", heartbeat); err != nil {
				return err
			}
			flush(w)
		}
	}
}

// WriteEvent writes a single SSE event and flushes it.
func WriteEvent(w io.Writer, event Event) error {
	if _, err := fmt.Fprintf(w, "event: %s\nid: %d\ndata: %s\n\n", event.Type, event.ID, event.Data); err != nil {
		return err
	}
	flush(w)
	return nil
}

func flush(w io.Writer) {
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}
