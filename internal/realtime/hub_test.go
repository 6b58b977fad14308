package realtime

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMarker struct {
	mu     sync.Mutex
	marked []string
	err    error
}

func (f *fakeMarker) MarkAsRead(notificationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marked = append(f.marked, notificationID)
	return f.err
}

func (f *fakeMarker) markedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.marked...)
}

func newTestHub(t *testing.T) (*Hub, *fakeMarker) {
	t.Helper()
	marker := &fakeMarker{}
	hub := NewHub(marker, slog.New(slog.DiscardHandler))
	go hub.Run()
	return hub, marker
}

// newTestClient registers an in-process client without a websocket conn.
func newTestClient(t *testing.T, hub *Hub) *Client {
	t.Helper()
	client := &Client{hub: hub, send: make(chan []byte, 16)}
	hub.register <- client
	return client
}

func join(t *testing.T, hub *Hub, client *Client, userID string) {
	t.Helper()
	data, err := json.Marshal(userID)
	require.NoError(t, err)
	hub.handleEvent(client, Envelope{Event: EventJoin, Data: data})
}

func recv(t *testing.T, client *Client) Envelope {
	t.Helper()
	select {
	case payload := <-client.send:
		var env Envelope
		require.NoError(t, json.Unmarshal(payload, &env))
		return env
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return Envelope{}
	}
}

func assertSilent(t *testing.T, client *Client) {
	t.Helper()
	select {
	case payload := <-client.send:
		t.Fatalf("unexpected message: %s", payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublishToUser_OnlyChannelMembersReceive(t *testing.T) {
	hub, _ := newTestHub(t)
	alice := newTestClient(t, hub)
	bob := newTestClient(t, hub)
	join(t, hub, alice, "alice")
	join(t, hub, bob, "bob")

	hub.PublishToUser("bob", EventNotificationNew, map[string]string{"message": "hi"})

	env := recv(t, bob)
	assert.Equal(t, EventNotificationNew, env.Event)
	assertSilent(t, alice)
}

func TestPublishToUser_MultipleConnectionsSameUser(t *testing.T) {
	hub, _ := newTestHub(t)
	first := newTestClient(t, hub)
	second := newTestClient(t, hub)
	join(t, hub, first, "alice")
	join(t, hub, second, "alice")

	hub.PublishToUser("alice", EventNotificationNew, "ping")

	assert.Equal(t, EventNotificationNew, recv(t, first).Event)
	assert.Equal(t, EventNotificationNew, recv(t, second).Event)
}

func TestTaskEvents_RelayedToAllButSender(t *testing.T) {
	hub, _ := newTestHub(t)
	sender := newTestClient(t, hub)
	other := newTestClient(t, hub)
	join(t, hub, sender, "alice")
	join(t, hub, other, "bob")

	payload := json.RawMessage(`{"id":"task-1","title":"Ship it"}`)
	hub.handleEvent(sender, Envelope{Event: EventTaskDeleted, Data: payload})

	env := recv(t, other)
	assert.Equal(t, EventTaskDeleted, env.Event)
	assert.JSONEq(t, string(payload), string(env.Data))
	assertSilent(t, sender)
}

func TestTaskCreated_AssignmentSideChannel(t *testing.T) {
	hub, _ := newTestHub(t)
	sender := newTestClient(t, hub)
	assignee := newTestClient(t, hub)
	join(t, hub, sender, "alice")
	join(t, hub, assignee, "bob")

	payload := json.RawMessage(`{"id":"task-1","title":"Ship it","assignedToId":"bob"}`)
	hub.handleEvent(sender, Envelope{Event: EventTaskCreated, Data: payload})

	// The assignee sees the relay plus the targeted notification.
	events := map[string]Envelope{}
	for i := 0; i < 2; i++ {
		env := recv(t, assignee)
		events[env.Event] = env
	}
	require.Contains(t, events, EventTaskCreated)
	require.Contains(t, events, EventNotificationNew)

	var notice assignmentNotice
	require.NoError(t, json.Unmarshal(events[EventNotificationNew].Data, &notice))
	assert.Equal(t, "task-1", notice.TaskID)
	assert.Contains(t, notice.Message, "Ship it")

	assertSilent(t, sender)
}

func TestTaskCreated_Unassigned_NoSideChannel(t *testing.T) {
	hub, _ := newTestHub(t)
	sender := newTestClient(t, hub)
	other := newTestClient(t, hub)
	join(t, hub, sender, "alice")
	join(t, hub, other, "bob")

	payload := json.RawMessage(`{"id":"task-1","title":"Ship it","assignedToId":null}`)
	hub.handleEvent(sender, Envelope{Event: EventTaskCreated, Data: payload})

	assert.Equal(t, EventTaskCreated, recv(t, other).Event)
	assertSilent(t, other)
}

func TestTaskUpdated_NotifiesOnlyOnAssigneeChange(t *testing.T) {
	hub, _ := newTestHub(t)
	sender := newTestClient(t, hub)
	assignee := newTestClient(t, hub)
	join(t, hub, sender, "alice")
	join(t, hub, assignee, "bob")

	// Assignee unchanged: relay only.
	unchanged := json.RawMessage(`{"task":{"id":"task-1","title":"Ship it","assignedToId":"bob"},"previousAssignedToId":"bob"}`)
	hub.handleEvent(sender, Envelope{Event: EventTaskUpdated, Data: unchanged})
	env := recv(t, assignee)
	assert.Equal(t, EventTaskUpdated, env.Event)
	assert.JSONEq(t, `{"id":"task-1","title":"Ship it","assignedToId":"bob"}`, string(env.Data))
	assertSilent(t, assignee)

	// Assignee changed: relay plus notification:new to the new assignee.
	changed := json.RawMessage(`{"task":{"id":"task-1","title":"Ship it","assignedToId":"bob"},"previousAssignedToId":"carol"}`)
	hub.handleEvent(sender, Envelope{Event: EventTaskUpdated, Data: changed})
	events := map[string]struct{}{}
	for i := 0; i < 2; i++ {
		events[recv(t, assignee).Event] = struct{}{}
	}
	assert.Contains(t, events, EventTaskUpdated)
	assert.Contains(t, events, EventNotificationNew)
}

func TestNotificationRead_MarksWithoutBroadcast(t *testing.T) {
	hub, marker := newTestHub(t)
	sender := newTestClient(t, hub)
	other := newTestClient(t, hub)
	join(t, hub, sender, "alice")
	join(t, hub, other, "bob")

	data, err := json.Marshal("notification-1")
	require.NoError(t, err)
	hub.handleEvent(sender, Envelope{Event: EventNotificationRead, Data: data})

	assert.Equal(t, []string{"notification-1"}, marker.markedIDs())
	assertSilent(t, other)
	assertSilent(t, sender)
}

func TestDisconnect_RemovesChannelMembership(t *testing.T) {
	hub, _ := newTestHub(t)
	client := newTestClient(t, hub)
	join(t, hub, client, "alice")

	hub.unregister <- client

	// Delivery to the departed channel is a no-op; a fresh client is
	// unaffected.
	hub.PublishToUser("alice", EventNotificationNew, "ping")
	replacement := newTestClient(t, hub)
	join(t, hub, replacement, "alice")
	hub.PublishToUser("alice", EventNotificationNew, "pong")

	env := recv(t, replacement)
	var body string
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, "pong", body)
}

func TestSlowClientEvicted(t *testing.T) {
	hub, _ := newTestHub(t)
	slow := &Client{hub: hub, send: make(chan []byte, 1)}
	hub.register <- slow
	join(t, hub, slow, "alice")

	// Second message overflows the buffer and evicts the client; the hub
	// must keep serving others.
	hub.PublishToUser("alice", EventNotificationNew, "one")
	hub.PublishToUser("alice", EventNotificationNew, "two")

	healthy := newTestClient(t, hub)
	join(t, hub, healthy, "bob")
	hub.PublishToUser("bob", EventNotificationNew, "still alive")
	assert.Equal(t, EventNotificationNew, recv(t, healthy).Event)
}

func TestConcurrentJoinsAndPublishes(t *testing.T) {
	hub, _ := newTestHub(t)

	var wg sync.WaitGroup
	clients := make([]*Client, 20)
	for i := range clients {
		clients[i] = newTestClient(t, hub)
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			join(t, hub, clients[i], fmt.Sprintf("user-%d", i))
		}(i)
	}
	wg.Wait()

	for i := range clients {
		hub.PublishToUser(fmt.Sprintf("user-%d", i), EventNotificationNew, i)
	}
	for i := range clients {
		assert.Equal(t, EventNotificationNew, recv(t, clients[i]).Event)
	}
}
