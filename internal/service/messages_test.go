package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avolkov/taskboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockMessageRepo struct {
	InsertMessageFunc  func(ctx context.Context, msg models.Message) error
	ListDirectedFunc   func(ctx context.Context, senderID, recipientID string) ([]models.Message, error)
	ListVisibleToFunc  func(ctx context.Context, userID string) ([]models.Message, error)
	MarkReadFunc       func(ctx context.Context, recipientID string, ids []string) (int64, error)
	InboxSummariesFunc func(ctx context.Context, userID string) ([]models.ConversationSummary, error)
}

func (m *mockMessageRepo) InsertMessage(ctx context.Context, msg models.Message) error {
	return m.InsertMessageFunc(ctx, msg)
}
func (m *mockMessageRepo) ListDirected(ctx context.Context, senderID, recipientID string) ([]models.Message, error) {
	return m.ListDirectedFunc(ctx, senderID, recipientID)
}
func (m *mockMessageRepo) ListVisibleTo(ctx context.Context, userID string) ([]models.Message, error) {
	return m.ListVisibleToFunc(ctx, userID)
}
func (m *mockMessageRepo) MarkRead(ctx context.Context, recipientID string, ids []string) (int64, error) {
	return m.MarkReadFunc(ctx, recipientID, ids)
}
func (m *mockMessageRepo) InboxSummaries(ctx context.Context, userID string) ([]models.ConversationSummary, error) {
	return m.InboxSummariesFunc(ctx, userID)
}

type recordingHub struct {
	topics []string
	msgs   []models.Message
}

func (h *recordingHub) Publish(topic string, msg models.Message) {
	h.topics = append(h.topics, topic)
	h.msgs = append(h.msgs, msg)
}

func tmsg(id, sender, recipient string, sec int, read bool) models.Message {
	return models.Message{
		ID:          id,
		SenderID:    sender,
		RecipientID: recipient,
		Read:        read,
		CreatedAt:   time.Date(2025, 6, 1, 12, 0, sec, 0, time.UTC),
	}
}

func TestSend_Validation(t *testing.T) {
	svc := NewMessageService(&mockMessageRepo{}, &recordingHub{}, zap.NewNop())

	_, err := svc.Send(context.Background(), "A", "", "hi")
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = svc.Send(context.Background(), "A", "B", "   ")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestSend_StoresAndPublishes(t *testing.T) {
	var stored models.Message
	repo := &mockMessageRepo{
		InsertMessageFunc: func(_ context.Context, msg models.Message) error {
			stored = msg
			return nil
		},
	}
	hub := &recordingHub{}
	svc := NewMessageService(repo, hub, zap.NewNop())

	msg, err := svc.Send(context.Background(), "bob", "alice", "hello")
	require.NoError(t, err)

	assert.NotEmpty(t, msg.ID)
	assert.False(t, msg.Read)
	assert.Equal(t, stored.ID, msg.ID)
	require.Len(t, hub.topics, 1)
	assert.Equal(t, "dm:alice:bob", hub.topics[0])
	assert.Equal(t, msg.ID, hub.msgs[0].ID)
}

func TestSend_InsertError(t *testing.T) {
	wantErr := errors.New("insert failed")
	repo := &mockMessageRepo{
		InsertMessageFunc: func(context.Context, models.Message) error { return wantErr },
	}
	hub := &recordingHub{}
	svc := NewMessageService(repo, hub, zap.NewNop())

	_, err := svc.Send(context.Background(), "A", "B", "hello")
	assert.ErrorIs(t, err, wantErr)
	assert.Empty(t, hub.topics, "nothing published on a failed insert")
}

func TestConversation_TargetedMergesBothDirections(t *testing.T) {
	repo := &mockMessageRepo{
		ListDirectedFunc: func(_ context.Context, sender, recipient string) ([]models.Message, error) {
			switch {
			case sender == "A" && recipient == "B":
				return []models.Message{tmsg("m1", "A", "B", 1, true), tmsg("m4", "A", "B", 4, true)}, nil
			case sender == "B" && recipient == "A":
				return []models.Message{tmsg("m2", "B", "A", 2, true), tmsg("m3", "B", "A", 3, true)}, nil
			}
			t.Fatalf("unexpected directed query %s->%s", sender, recipient)
			return nil, nil
		},
	}
	svc := NewMessageService(repo, &recordingHub{}, zap.NewNop())

	// Viewer order must not matter.
	for _, viewer := range []struct{ viewer, other string }{{"A", "B"}, {"B", "A"}} {
		thread, err := svc.Conversation(context.Background(), viewer.viewer, viewer.other)
		require.NoError(t, err)
		require.Len(t, thread, 4)
		for i, want := range []string{"m1", "m2", "m3", "m4"} {
			assert.Equal(t, want, thread[i].ID)
		}
	}
}

func TestConversation_SelfPairSingleQuery(t *testing.T) {
	calls := 0
	repo := &mockMessageRepo{
		ListDirectedFunc: func(_ context.Context, sender, recipient string) ([]models.Message, error) {
			calls++
			assert.Equal(t, "A", sender)
			assert.Equal(t, "A", recipient)
			return []models.Message{tmsg("m1", "A", "A", 1, true)}, nil
		},
	}
	svc := NewMessageService(repo, &recordingHub{}, zap.NewNop())

	thread, err := svc.Conversation(context.Background(), "A", "A")
	require.NoError(t, err)
	assert.Len(t, thread, 1)
	assert.Equal(t, 1, calls)
}

func TestConversation_NaiveFallback(t *testing.T) {
	repo := &mockMessageRepo{
		ListVisibleToFunc: func(_ context.Context, userID string) ([]models.Message, error) {
			assert.Equal(t, "A", userID)
			return []models.Message{
				tmsg("m2", "B", "A", 2, true),
				tmsg("m3", "A", "C", 3, true),
				tmsg("m1", "A", "B", 1, true),
			}, nil
		},
	}
	svc := NewMessageService(repo, &recordingHub{}, zap.NewNop(), WithNaiveProjection())

	thread, err := svc.Conversation(context.Background(), "A", "B")
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, "m1", thread[0].ID)
	assert.Equal(t, "m2", thread[1].ID)
}

func TestConversation_MarksUnreadForViewerOnly(t *testing.T) {
	marked := make(chan int64, 1)
	var gotIDs []string
	repo := &mockMessageRepo{
		ListDirectedFunc: func(_ context.Context, sender, recipient string) ([]models.Message, error) {
			if sender == "A" {
				// Unread message the viewer sent: must not be marked.
				return []models.Message{tmsg("m1", "A", "B", 1, false)}, nil
			}
			return []models.Message{
				tmsg("m2", "B", "A", 2, false),
				tmsg("m3", "B", "A", 3, true),
			}, nil
		},
		MarkReadFunc: func(_ context.Context, recipientID string, ids []string) (int64, error) {
			assert.Equal(t, "A", recipientID)
			gotIDs = ids
			return int64(len(ids)), nil
		},
	}
	svc := NewMessageService(repo, &recordingHub{}, zap.NewNop(), withReadObserver(marked))

	_, err := svc.Conversation(context.Background(), "A", "B")
	require.NoError(t, err)

	select {
	case n := <-marked:
		assert.Equal(t, int64(1), n)
		assert.Equal(t, []string{"m2"}, gotIDs)
	case <-time.After(time.Second):
		t.Fatal("read-marking never ran")
	}
}

func TestConversation_MarkReadFailureIsSwallowed(t *testing.T) {
	marked := make(chan int64, 1)
	repo := &mockMessageRepo{
		ListDirectedFunc: func(_ context.Context, sender, recipient string) ([]models.Message, error) {
			if sender == "B" {
				return []models.Message{tmsg("m1", "B", "A", 1, false)}, nil
			}
			return nil, nil
		},
		MarkReadFunc: func(context.Context, string, []string) (int64, error) {
			return 0, errors.New("db down")
		},
	}
	svc := NewMessageService(repo, &recordingHub{}, zap.NewNop(), withReadObserver(marked))

	thread, err := svc.Conversation(context.Background(), "A", "B")
	require.NoError(t, err, "read-marking failure must not surface")
	assert.Len(t, thread, 1)

	select {
	case n := <-marked:
		assert.Equal(t, int64(-1), n)
	case <-time.After(time.Second):
		t.Fatal("read-marking never ran")
	}
}

func TestConversation_EmptyOther(t *testing.T) {
	svc := NewMessageService(&mockMessageRepo{}, &recordingHub{}, zap.NewNop())
	_, err := svc.Conversation(context.Background(), "A", "")
	assert.ErrorIs(t, err, ErrInvalid)
}
