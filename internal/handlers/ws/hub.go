package ws

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/KirkDiggler/trickroom/internal/events"
)

// Hub routes game events to the connections bound to each participant
type Hub struct {
	mu sync.RWMutex

	// sessions maps session code to participant ID to their current connection
	sessions map[string]map[string]*client
	logger   *zap.Logger
}

// NewHub creates an empty hub
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		sessions: make(map[string]map[string]*client),
		logger:   logger,
	}
}

// bind makes c the connection for a participant, replacing any earlier one
func (h *Hub) bind(c *client, sessionCode, participantID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c.sessionCode != "" {
		h.unbindLocked(c)
	}

	participants, ok := h.sessions[sessionCode]
	if !ok {
		participants = make(map[string]*client)
		h.sessions[sessionCode] = participants
	}
	participants[participantID] = c
	c.sessionCode = sessionCode
	c.participantID = participantID
}

// unbind removes c and reports whether it was still the participant's current connection
func (h *Hub) unbind(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.unbindLocked(c)
}

func (h *Hub) unbindLocked(c *client) bool {
	participants, ok := h.sessions[c.sessionCode]
	if !ok || participants[c.participantID] != c {
		return false
	}

	delete(participants, c.participantID)
	if len(participants) == 0 {
		delete(h.sessions, c.sessionCode)
	}
	return true
}

// Connections returns how many participants have a live connection in a session
func (h *Hub) Connections(sessionCode string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionCode])
}

// Notify implements events.Notifier. Events go to their recipients, or to
// everyone in the session when no recipients are named. A connection whose
// buffer is full misses the event.
func (h *Hub) Notify(ctx context.Context, evs []events.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ev := range evs {
		participants := h.sessions[ev.SessionCode]
		if len(participants) == 0 {
			continue
		}

		data, err := json.Marshal(outboundFrame{Type: string(ev.Kind), Data: ev.Payload})
		if err != nil {
			h.logger.Error("failed to encode event",
				zap.String("session", ev.SessionCode),
				zap.String("kind", string(ev.Kind)),
				zap.Error(err))
			continue
		}

		if len(ev.Recipients) == 0 {
			for id, c := range participants {
				h.deliver(c, id, ev, data)
			}
			continue
		}
		for _, id := range ev.Recipients {
			if c, ok := participants[id]; ok {
				h.deliver(c, id, ev, data)
			}
		}
	}
}

func (h *Hub) deliver(c *client, participantID string, ev events.Event, data []byte) {
	if !c.enqueue(data) {
		h.logger.Warn("dropped event for slow connection",
			zap.String("session", ev.SessionCode),
			zap.String("participant", participantID),
			zap.String("kind", string(ev.Kind)))
	}
}
