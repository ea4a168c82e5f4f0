package devserver

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.trai.ch/lokal/internal/core/ports"
)

var _ ports.ReloadNotifier = (*Hub)(nil)

// heartbeat keeps idle event streams open through proxies.
const heartbeat = 30 * time.Second

// Hub fans reload tokens out to connected Server-Sent Events clients.
type Hub struct {
	mu        sync.Mutex
	nextID    int
	clients   map[int]chan string
	closed    bool
	lastToken string
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[int]chan string)}
}

// Reload broadcasts a token to every client. Clients that are not keeping up miss it.
func (h *Hub) Reload(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed || token == "" || token == h.lastToken {
		return
	}
	h.lastToken = token
	for _, ch := range h.clients {
		select {
		case ch <- token:
		default:
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.clients {
		close(ch)
		delete(h.clients, id)
	}
}

// ServeHTTP implements the event stream endpoint.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "stream unsupported", http.StatusInternalServerError)
		return
	}

	id, ch, ok := h.register()
	if !ok {
		http.Error(w, "live reload shutting down", http.StatusServiceUnavailable)
		return
	}
	defer h.remove(id)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	_, _ = fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	hb := time.NewTicker(heartbeat)
	defer hb.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-hb.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case token, open := <-ch:
			if !open {
				return
			}
			if _, err := fmt.Fprintf(w, "event: reload\ndata: %s\n\n", token); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (h *Hub) register() (int, chan string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return 0, nil, false
	}
	id := h.nextID
	h.nextID++
	ch := make(chan string, 4)
	h.clients[id] = ch
	return id, ch, true
}

func (h *Hub) remove(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.clients[id]; ok {
		close(ch)
		delete(h.clients, id)
	}
}
