package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Heartbeat timings in seconds.
const (
	PingInterval = 30
	PongWait     = 60
)

// Publisher publishes board events to Redis for cross-instance fan-out.
type Publisher interface {
	PublishOrgEvent(orgID uuid.UUID, event string, payload []byte) error
}

// Subscriber subscribes to an organization's channel and invokes the
// handler for incoming events.
type Subscriber interface {
	SubscribeOrg(orgID uuid.UUID, handler func(event string, payload []byte)) (cancel func(), err error)
}

// Hub maintains organization_id -> set of connections for the live
// lunch board. Events go through Redis pub/sub when available so every
// server instance delivers them exactly once to its local clients.
type Hub struct {
	rooms  map[uuid.UUID]map[string]*Client
	subs   map[uuid.UUID]func()
	mu     sync.RWMutex
	logger *zap.Logger
	pub    Publisher
	sub    Subscriber
}

// NewHub creates a board hub. pub and sub may be nil; events then stay
// local to this instance.
func NewHub(logger *zap.Logger, pub Publisher, sub Subscriber) *Hub {
	return &Hub{
		rooms:  make(map[uuid.UUID]map[string]*Client),
		subs:   make(map[uuid.UUID]func()),
		logger: logger,
		pub:    pub,
		sub:    sub,
	}
}

// Register adds a client to its organization rooms, starting the Redis
// subscription for each room gaining its first client.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	for _, orgID := range c.OrgIDs {
		if h.rooms[orgID] == nil {
			h.rooms[orgID] = make(map[string]*Client)
			if h.sub != nil {
				orgID := orgID
				cancel, err := h.sub.SubscribeOrg(orgID, func(event string, payload []byte) {
					h.broadcastLocal(orgID, event, payload)
				})
				if err == nil {
					h.subs[orgID] = cancel
				} else {
					h.logger.Warn("board subscribe", zap.Error(err), zap.String("org_id", orgID.String()))
				}
			}
		}
		h.rooms[orgID][c.ID] = c
	}
	h.mu.Unlock()
	h.logger.Debug("board client joined", zap.String("client_id", c.ID), zap.Int("orgs", len(c.OrgIDs)))
}

// Unregister removes a client, cancelling the Redis subscription of any
// room left empty.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	for _, orgID := range c.OrgIDs {
		if room, ok := h.rooms[orgID]; ok {
			delete(room, c.ID)
			if len(room) == 0 {
				delete(h.rooms, orgID)
				if cancel, ok := h.subs[orgID]; ok {
					cancel()
					delete(h.subs, orgID)
				}
			}
		}
	}
	h.mu.Unlock()
	h.logger.Debug("board client left", zap.String("client_id", c.ID))
}

// Publish sends an event to every watcher of the organization. With
// Redis wired, the event goes through the channel only and the
// subscription callback performs the single local delivery; without it,
// delivery is local.
func (h *Hub) Publish(orgID uuid.UUID, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if h.pub != nil {
		err := h.pub.PublishOrgEvent(orgID, event, data)
		if err == nil {
			return
		}
		h.logger.Warn("board publish", zap.Error(err), zap.String("org_id", orgID.String()))
	}
	h.broadcastLocal(orgID, event, data)
}

func (h *Hub) broadcastLocal(orgID uuid.UUID, event string, payload []byte) {
	msg := WSMessage{Event: event, Data: payload}
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.rooms[orgID]))
	for _, c := range h.rooms[orgID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	for _, c := range clients {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

// WatcherCount returns how many clients watch an organization's board.
func (h *Hub) WatcherCount(orgID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[orgID])
}

// OptInChanged implements the opt-in event sink: one board event per
// organization per status change.
func (h *Hub) OptInChanged(orgID, userID uuid.UUID, date string, optedIn bool) {
	h.Publish(orgID, "opt_in_changed", map[string]any{
		"user_id":  userID,
		"date":     date,
		"opted_in": optedIn,
	})
}
