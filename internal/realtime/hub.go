package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat (seconds).
	PingInterval = 30
	PongWait     = 60

	// GroupMod is the single shared moderator group.
	GroupMod = "mod"
)

// SpeakerGroup names the raw-question group for a speaker slug.
func SpeakerGroup(slug string) string { return "speaker:" + slug }

// SelectedGroup names the approved-subset group for a speaker slug.
func SelectedGroup(slug string) string { return "selected:" + slug }

// GroupForJoin maps a join declaration to its group. Guest and selected
// roles require a speaker; anything else is rejected.
func GroupForJoin(role, speaker string) (string, bool) {
	switch {
	case role == "mod":
		return GroupMod, true
	case role == "guest" && speaker != "":
		return SpeakerGroup(speaker), true
	case role == "selected" && speaker != "":
		return SelectedGroup(speaker), true
	}
	return "", false
}

// Broadcaster delivers an event to all members of a group. Delivery is
// best-effort and never reports failure to the caller.
type Broadcaster interface {
	Emit(group, event string, payload interface{})
}

// Publisher publishes group events to other instances (cross-instance fanout).
type Publisher interface {
	PublishGroupEvent(group, event string, payload []byte) error
}

// Subscriber subscribes to a group's channel and invokes handler for
// incoming events.
type Subscriber interface {
	SubscribeGroup(group string, handler func(event string, payload []byte)) (cancel func(), err error)
}

// Hub maintains group -> set of connections and broadcasts messages.
// A client belongs to at most one group; a later join replaces the prior
// membership. With a Publisher/Subscriber attached, events fan out across
// instances via per-group channels; without one the hub is local-only.
type Hub struct {
	groups map[string]map[string]*Client
	member map[string]string // clientID -> group
	subs   map[string]func() // cancel per-group subscription
	mu     sync.RWMutex
	logger *zap.Logger
	pub    Publisher
	sub    Subscriber
}

// NewHub creates a hub. pub and sub may be nil for local-only fanout.
func NewHub(logger *zap.Logger, pub Publisher, sub Subscriber) *Hub {
	return &Hub{
		groups: make(map[string]map[string]*Client),
		member: make(map[string]string),
		subs:   make(map[string]func()),
		logger: logger,
		pub:    pub,
		sub:    sub,
	}
}

// Join adds a client to a group, leaving any prior group first. Starts the
// group's subscription when the first local member arrives.
func (h *Hub) Join(c *Client, group string) {
	h.mu.Lock()
	h.removeLocked(c)
	if h.groups[group] == nil {
		h.groups[group] = make(map[string]*Client)
		if h.sub != nil {
			cancel, err := h.sub.SubscribeGroup(group, func(event string, payload []byte) {
				h.Broadcast(group, event, json.RawMessage(payload))
			})
			if err == nil {
				h.subs[group] = cancel
			} else {
				h.logger.Warn("group subscribe failed", zap.String("group", group), zap.Error(err))
			}
		}
	}
	h.groups[group][c.ID] = c
	h.member[c.ID] = group
	h.mu.Unlock()
	h.logger.Debug("client joined group", zap.String("client_id", c.ID), zap.String("group", group))
}

// Leave removes a client from its group, if any. Cancels the group's
// subscription when the last local member leaves.
func (h *Hub) Leave(c *Client) {
	h.mu.Lock()
	h.removeLocked(c)
	h.mu.Unlock()
	h.logger.Debug("client left", zap.String("client_id", c.ID))
}

// removeLocked drops c's current membership. Caller holds the mutex.
func (h *Hub) removeLocked(c *Client) {
	group, ok := h.member[c.ID]
	if !ok {
		return
	}
	delete(h.member, c.ID)
	if m, ok := h.groups[group]; ok {
		delete(m, c.ID)
		if len(m) == 0 {
			delete(h.groups, group)
			if cancel, ok := h.subs[group]; ok {
				cancel()
				delete(h.subs, group)
			}
		}
	}
}

// Broadcast sends a message to all local members of a group.
func (h *Hub) Broadcast(group, event string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		data, _ = json.Marshal(payload)
	}
	msg := WSMessage{Event: event, Data: data}

	// Snapshot the members so Join/Leave cannot mutate the map mid-iteration.
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.groups[group]))
	for _, c := range h.groups[group] {
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

// Emit delivers an event to a group across all instances. With a Publisher
// attached it publishes only; each instance's subscriber (including this
// one) performs the local broadcast, so members never see duplicates.
// Without a Publisher it broadcasts locally.
func (h *Hub) Emit(group, event string, payload interface{}) {
	if h.pub != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return
		}
		_ = h.pub.PublishGroupEvent(group, event, data)
		return
	}
	h.Broadcast(group, event, payload)
}

// GroupCount returns the number of local members of a group.
func (h *Hub) GroupCount(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}
