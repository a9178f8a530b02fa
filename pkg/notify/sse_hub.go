package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/arsipku/arsipd/pkg/arsipdb/arsipmodel"
	"github.com/arsipku/arsipd/pkg/arsipdb/stor"
	"github.com/arsipku/arsipd/pkg/clog"
	"github.com/hashicorp/go-uuid"
)

// SSEHub keeps the server sent event connections of logged in users and
// doubles as a Dispatcher that pushes to them.
type SSEHub struct {
	// connections maps a user id to that user's open streams by connection id.
	connections map[int]map[string]chan Message
	mu          sync.RWMutex
	users       stor.UserStor
	keepAlive   time.Duration
}

func NewSSEHub(users stor.UserStor) *SSEHub {
	return &SSEHub{
		connections: make(map[int]map[string]chan Message),
		users:       users,
		keepAlive:   30 * time.Second,
	}
}

func (h *SSEHub) Register(userID int) (string, chan Message) {
	ch := make(chan Message, 64)
	connectionID, err := uuid.GenerateUUID()
	if err != nil {
		connectionID = fmt.Sprintf("sse-%d-%d", userID, time.Now().UnixNano())
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.connections[userID] == nil {
		h.connections[userID] = make(map[string]chan Message)
	}
	h.connections[userID][connectionID] = ch

	return connectionID, ch
}

func (h *SSEHub) Unregister(userID int, connectionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.connections[userID]
	if !ok {
		return
	}

	if ch, exists := conns[connectionID]; exists {
		close(ch)
		delete(conns, connectionID)
	}

	if len(conns) == 0 {
		delete(h.connections, userID)
	}
}

func (h *SSEHub) ConnectionCount(userID int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[userID])
}

// Send delivers msg to every stream of userID. A stream whose buffer is
// full misses the message.
func (h *SSEHub) Send(userID int, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.connections[userID] {
		select {
		case ch <- msg:
		default:
			clog.UsingCtx("notify").Warnf("SSE stream for user %d is full, dropping %s", userID, msg.Category)
		}
	}
}

func (h *SSEHub) NotifyRole(_ context.Context, role arsipmodel.Role, unitID *int, msg Message) error {
	users, err := h.users.GetUsersByRole(role, unitID)
	if err != nil {
		return err
	}

	for _, u := range users {
		h.Send(u.ID, msg)
	}

	return nil
}

func (h *SSEHub) NotifyUser(_ context.Context, userID int, msg Message) error {
	h.Send(userID, msg)
	return nil
}

// ServeStream streams userID's notifications until the request ends.
func (h *SSEHub) ServeStream(w http.ResponseWriter, r *http.Request, userID int) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	connectionID, ch := h.Register(userID)
	defer h.Unregister(userID, connectionID)

	_, _ = fmt.Fprintf(w, "event: connected\ndata: {\"user_id\":%d}\n\n", userID)
	flusher.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case msg, ok := <-ch:
			if !ok {
				return
			}

			data, err := json.Marshal(msg)
			if err != nil {
				clog.UsingCtx("notify").Errorf("Error marshalling SSE message: %s", err)
				continue
			}

			_, _ = fmt.Fprintf(w, "event: notification\ndata: %s\n\n", data)
			flusher.Flush()

		case <-ticker.C:
			_, _ = fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		}
	}
}
