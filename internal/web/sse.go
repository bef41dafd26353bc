package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/arashv/shogun-dojo/internal/duel"
)

// SSEHub fans the engine's announcement stream out to connected clients
// over Server-Sent Events.
type SSEHub struct {
	log *logrus.Entry

	mu      sync.Mutex
	clients map[chan sseMessage]struct{}
}

type sseMessage struct {
	event string
	data  []byte
}

// NewSSEHub creates an empty hub. Call Run to start fan-out.
func NewSSEHub() *SSEHub {
	return &SSEHub{
		log:     logrus.WithField("component", "sse"),
		clients: make(map[chan sseMessage]struct{}),
	}
}

// Run consumes engine events and broadcasts them until the channel closes.
func (h *SSEHub) Run(events <-chan duel.Event) {
	h.log.Info("sse hub started")
	for event := range events {
		name, ok := eventName(event)
		if !ok {
			continue
		}
		data, err := json.Marshal(event)
		if err != nil {
			h.log.WithError(err).Warn("failed to marshal event")
			continue
		}
		h.broadcast(sseMessage{event: name, data: data})
	}
	h.log.Info("sse hub stopped")
}

func eventName(event duel.Event) (string, bool) {
	switch event.(type) {
	case duel.DuelStarted:
		return "duel_started", true
	case duel.ChoiceSealed:
		return "choice_sealed", true
	case duel.MoveTimedOut:
		return "move_timed_out", true
	case duel.DuelResolved:
		return "duel_resolved", true
	case duel.DuelCancelled:
		return "duel_cancelled", true
	default:
		return "", false
	}
}

func (h *SSEHub) broadcast(msg sseMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		select {
		case client <- msg:
		default:
			// Slow consumers drop messages instead of stalling the hub.
		}
	}
}

func (h *SSEHub) subscribe() chan sseMessage {
	ch := make(chan sseMessage, 16)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *SSEHub) unsubscribe(ch chan sseMessage) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
}

// HandleConnection serves one SSE connection until the client disconnects.
func (h *SSEHub) HandleConnection(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := h.subscribe()
	defer h.unsubscribe(ch)

	fmt.Fprint(w, "event: connected\ndata: {}\n\n")
	flusher.Flush()

	keepalive := time.NewTicker(25 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepalive.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case msg := <-ch:
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.event, msg.data)
			flusher.Flush()
		}
	}
}
