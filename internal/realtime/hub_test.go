package realtime

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vintry/contentops-backend/internal/platform/logger"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(func() { log.Sync() })
	return log
}

func recvMessage(t *testing.T, ch <-chan SSEMessage, timeout time.Duration) SSEMessage {
	t.Helper()
	select {
	case m := <-ch:
		return m
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for SSE message")
		return SSEMessage{}
	}
}

func TestSSEHubReconnectKeepsOrdering(t *testing.T) {
	log := mustTestLogger(t)
	hub := NewSSEHub(log)

	userID := uuid.New()
	channel := UserChannel(userID)

	first := hub.NewSSEClient(userID)
	hub.AddChannel(first, channel)

	hub.Broadcast(SSEMessage{
		Channel: channel,
		Event:   SSEEventJobStatusChanged,
		Data:    map[string]any{"status": "running"},
	})
	got := recvMessage(t, first.Outbound, time.Second)
	if got.Event != SSEEventJobStatusChanged {
		t.Fatalf("event = %q, want %q", got.Event, SSEEventJobStatusChanged)
	}

	// Client drops, then reconnects with a fresh outbound channel.
	hub.CloseClient(first)

	second := hub.NewSSEClient(userID)
	hub.AddChannel(second, channel)

	for i := 0; i < 3; i++ {
		hub.Broadcast(SSEMessage{
			Channel: channel,
			Event:   SSEEventCalendarAnalyzed,
			Data:    map[string]any{"seq": i},
		})
	}
	for i := 0; i < 3; i++ {
		m := recvMessage(t, second.Outbound, time.Second)
		if m.Event != SSEEventCalendarAnalyzed {
			t.Fatalf("message %d: event = %q, want %q", i, m.Event, SSEEventCalendarAnalyzed)
		}
		data, ok := m.Data.(map[string]any)
		if !ok {
			t.Fatalf("message %d: unexpected data type %T", i, m.Data)
		}
		if seq, _ := data["seq"].(int); seq != i {
			t.Fatalf("message %d arrived out of order: seq = %v", i, data["seq"])
		}
	}

	// The closed client must not receive anything after removal.
	select {
	case m, ok := <-first.Outbound:
		if ok {
			t.Fatalf("closed client received %+v", m)
		}
	default:
	}
}

func TestSSEHubBroadcastReachesEverySubscriber(t *testing.T) {
	log := mustTestLogger(t)
	hub := NewSSEHub(log)

	userID := uuid.New()
	channel := UserChannel(userID)

	a := hub.NewSSEClient(userID)
	b := hub.NewSSEClient(userID)
	hub.AddChannel(a, channel)
	hub.AddChannel(b, channel)

	hub.Broadcast(SSEMessage{
		Channel: channel,
		Event:   SSEEventCalendarFailed,
		Data:    map[string]any{"calendar_id": uuid.New().String()},
	})

	for i, c := range []*SSEClient{a, b} {
		m := recvMessage(t, c.Outbound, time.Second)
		if m.Event != SSEEventCalendarFailed {
			t.Fatalf("client %d: event = %q, want %q", i, m.Event, SSEEventCalendarFailed)
		}
	}
}

func TestSSEHubChannelIsolation(t *testing.T) {
	log := mustTestLogger(t)
	hub := NewSSEHub(log)

	alice := hub.NewSSEClient(uuid.New())
	bob := hub.NewSSEClient(uuid.New())
	hub.AddChannel(alice, UserChannel(alice.UserID))
	hub.AddChannel(bob, UserChannel(bob.UserID))

	hub.Broadcast(SSEMessage{
		Channel: UserChannel(alice.UserID),
		Event:   SSEEventUserAvatarChanged,
		Data:    map[string]any{"avatar_url": "https://cdn.example.com/a.png"},
	})

	m := recvMessage(t, alice.Outbound, time.Second)
	if m.Event != SSEEventUserAvatarChanged {
		t.Fatalf("event = %q, want %q", m.Event, SSEEventUserAvatarChanged)
	}

	select {
	case leaked := <-bob.Outbound:
		t.Fatalf("bob received a message for alice's channel: %+v", leaked)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSSEHubSlowConsumerDropsInsteadOfBlocking(t *testing.T) {
	log := mustTestLogger(t)
	hub := NewSSEHub(log)

	userID := uuid.New()
	channel := UserChannel(userID)
	client := hub.NewSSEClient(userID)
	hub.AddChannel(client, channel)

	// Fill the buffer past capacity. Broadcast must not block.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			hub.Broadcast(SSEMessage{
				Channel: channel,
				Event:   SSEEventJobStatusChanged,
				Data:    map[string]any{"seq": fmt.Sprintf("%d", i)},
			})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked on a slow consumer")
	}

	if got := len(client.Outbound); got != cap(client.Outbound) {
		t.Fatalf("outbound buffer holds %d messages, want full buffer of %d", got, cap(client.Outbound))
	}
}
