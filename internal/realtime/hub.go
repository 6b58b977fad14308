package realtime

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// NotificationMarker is the slice of the notification service the hub needs
// to honor notification:read events.
type NotificationMarker interface {
	MarkAsRead(notificationID string) error
}

// frame is a routed outbound message. exclude skips one client (the sender of
// a relayed event); userID restricts delivery to one user's channel.
type frame struct {
	payload []byte
	exclude *Client
	userID  string
}

type joinRequest struct {
	client *Client
	userID string
}

// Hub owns the live connection registry: the set of connected clients and a
// per-user channel index. All mutation happens on the Run goroutine, so
// concurrent connects, joins and disconnects cannot corrupt membership.
//
// Delivery is best-effort. A client whose send buffer is full is evicted, and
// a disconnected client simply misses whatever was published while it was
// away; nothing is replayed.
type Hub struct {
	clients  map[*Client]struct{}
	channels map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	joins      chan joinRequest
	frames     chan frame

	notifications NotificationMarker
	log           *slog.Logger
}

// NewHub builds a hub. The caller is expected to construct exactly one at
// startup, start Run on its own goroutine and inject the hub into whichever
// components publish.
func NewHub(notifications NotificationMarker, log *slog.Logger) *Hub {
	return &Hub{
		clients:       make(map[*Client]struct{}),
		channels:      make(map[string]map[*Client]struct{}),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		joins:         make(chan joinRequest),
		frames:        make(chan frame, 64),
		notifications: notifications,
		log:           log,
	}
}

// Run processes registry mutations and outbound frames until the channels are
// abandoned. Must run on its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}

		case client := <-h.unregister:
			h.drop(client)

		case req := <-h.joins:
			req.client.userID = req.userID
			members, ok := h.channels[req.userID]
			if !ok {
				members = make(map[*Client]struct{})
				h.channels[req.userID] = members
			}
			members[req.client] = struct{}{}
			h.log.Info("client joined channel", "userId", req.userID)

		case f := <-h.frames:
			h.deliver(f)
		}
	}
}

func (h *Hub) drop(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	if members, ok := h.channels[client.userID]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.channels, client.userID)
		}
	}
	close(client.send)
}

func (h *Hub) deliver(f frame) {
	if f.userID != "" {
		for client := range h.channels[f.userID] {
			h.send(client, f.payload)
		}
		return
	}
	for client := range h.clients {
		if client == f.exclude {
			continue
		}
		h.send(client, f.payload)
	}
}

// send queues the payload; a client that cannot keep up is evicted rather
// than allowed to block the hub.
func (h *Hub) send(client *Client, payload []byte) {
	select {
	case client.send <- payload:
	default:
		h.drop(client)
	}
}

// Publish broadcasts an event to every connected client.
func (h *Hub) Publish(event string, data any) {
	h.enqueue(frame{payload: h.encode(event, data)})
}

// PublishToUser sends an event to every connection joined to the user's
// private channel.
func (h *Hub) PublishToUser(userID, event string, data any) {
	h.enqueue(frame{payload: h.encode(event, data), userID: userID})
}

// relayExcept rebroadcasts an already-encoded payload to everyone but the
// originating client.
func (h *Hub) relayExcept(sender *Client, event string, data json.RawMessage) {
	h.enqueue(frame{payload: h.encodeRaw(event, data), exclude: sender})
}

func (h *Hub) enqueue(f frame) {
	if f.payload == nil {
		return
	}
	h.frames <- f
}

func (h *Hub) encode(event string, data any) []byte {
	raw, err := json.Marshal(data)
	if err != nil {
		h.log.Error("failed to encode event payload", "event", event, "error", err)
		return nil
	}
	return h.encodeRaw(event, raw)
}

func (h *Hub) encodeRaw(event string, data json.RawMessage) []byte {
	payload, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		h.log.Error("failed to encode event envelope", "event", event, "error", err)
		return nil
	}
	return payload
}

// handleEvent dispatches one inbound client message. Task events are relayed
// verbatim to all other clients; the hub does not check the payload against
// stored task state.
func (h *Hub) handleEvent(client *Client, env Envelope) {
	switch env.Event {
	case EventJoin:
		var userID string
		if err := json.Unmarshal(env.Data, &userID); err != nil || userID == "" {
			h.log.Warn("ignoring malformed join", "error", err)
			return
		}
		h.joins <- joinRequest{client: client, userID: userID}

	case EventTaskCreated:
		h.relayExcept(client, EventTaskCreated, env.Data)
		var task taskAssignment
		if err := json.Unmarshal(env.Data, &task); err == nil && task.AssignedToID != nil {
			h.notifyAssignment(task)
		}

	case EventTaskUpdated:
		var payload taskUpdatePayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			h.log.Warn("ignoring malformed task:updated", "error", err)
			return
		}
		h.relayExcept(client, EventTaskUpdated, payload.Task)
		var task taskAssignment
		if err := json.Unmarshal(payload.Task, &task); err == nil &&
			task.AssignedToID != nil && !sameAssignee(task.AssignedToID, payload.PreviousAssignedToID) {
			h.notifyAssignment(task)
		}

	case EventTaskDeleted:
		h.relayExcept(client, EventTaskDeleted, env.Data)

	case EventTaskStatusChanged:
		h.relayExcept(client, EventTaskStatusChanged, env.Data)

	case EventNotificationRead:
		var notificationID string
		if err := json.Unmarshal(env.Data, &notificationID); err != nil || notificationID == "" {
			h.log.Warn("ignoring malformed notification:read", "error", err)
			return
		}
		if err := h.notifications.MarkAsRead(notificationID); err != nil {
			h.log.Error("failed to mark notification read", "notificationId", notificationID, "error", err)
		}

	default:
		h.log.Warn("ignoring unknown event", "event", env.Event)
	}
}

// notifyAssignment emits the notification:new side channel to the assignee.
func (h *Hub) notifyAssignment(task taskAssignment) {
	h.PublishToUser(*task.AssignedToID, EventNotificationNew, assignmentNotice{
		Message: fmt.Sprintf("You have been assigned to task: %q", task.Title),
		TaskID:  task.ID,
	})
}

func sameAssignee(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
