package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/avolkov/taskboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func receiveOne(t *testing.T, ch <-chan models.Message) models.Message {
	t.Helper()
	select {
	case msg, ok := <-ch:
		require.True(t, ok, "channel closed before a message arrived")
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return models.Message{}
	}
}

func requireClosed(t *testing.T, ch <-chan models.Message) {
	t.Helper()
	select {
	case _, ok := <-ch:
		require.False(t, ok, "expected channel to be closed")
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}

func TestHub_PublishReachesTopicSubscribers(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()

	ch1, cancel1 := hub.Subscribe(context.Background(), "dm:alice:bob")
	defer cancel1()
	ch2, cancel2 := hub.Subscribe(context.Background(), "dm:alice:bob")
	defer cancel2()
	other, cancelOther := hub.Subscribe(context.Background(), "dm:alice:carol")
	defer cancelOther()

	msg := models.Message{ID: "m1", SenderID: "alice", RecipientID: "bob", Content: "hi"}
	hub.Publish("dm:alice:bob", msg)

	assert.Equal(t, "m1", receiveOne(t, ch1).ID)
	assert.Equal(t, "m1", receiveOne(t, ch2).ID)

	select {
	case got := <-other:
		t.Errorf("unrelated topic received %+v", got)
	default:
	}
}

func TestHub_CancelClosesChannel(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()

	ch, cancel := hub.Subscribe(context.Background(), "dm:alice:bob")
	cancel()
	requireClosed(t, ch)

	// Idempotent: a second cancel must not panic.
	cancel()

	// Publishing after cancel must not reach the closed channel.
	hub.Publish("dm:alice:bob", models.Message{ID: "m1"})
}

func TestHub_ContextCancelReleasesSubscription(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, _ := hub.Subscribe(ctx, "dm:alice:bob")

	cancel()
	requireClosed(t, ch)
}

func TestHub_SlowSubscriberIsDropped(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()

	ch, _ := hub.Subscribe(context.Background(), "dm:alice:bob")

	// Fill the buffer without draining, then push one more.
	for i := 0; i <= subscriberBuffer; i++ {
		hub.Publish("dm:alice:bob", models.Message{ID: "m"})
	}

	// The subscriber was dropped, so its channel closes once drained.
	for i := 0; i < subscriberBuffer; i++ {
		receiveOne(t, ch)
	}
	requireClosed(t, ch)
}

func TestHub_CloseDropsEverything(t *testing.T) {
	hub := NewHub(zap.NewNop())

	ch, _ := hub.Subscribe(context.Background(), "dm:alice:bob")
	hub.Close()
	requireClosed(t, ch)

	late, cancel := hub.Subscribe(context.Background(), "dm:alice:bob")
	defer cancel()
	requireClosed(t, late)
}
