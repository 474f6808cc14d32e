package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avolkov/taskboard/internal/middleware"
	"github.com/avolkov/taskboard/internal/models"
	"github.com/avolkov/taskboard/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockMessageService struct {
	SendFunc         func(ctx context.Context, senderID, recipientID, content string) (*models.Message, error)
	ConversationFunc func(ctx context.Context, viewerID, otherID string) ([]models.Message, error)
	InboxFunc        func(ctx context.Context, viewerID string) ([]models.ConversationSummary, error)
}

func (m *mockMessageService) Send(ctx context.Context, senderID, recipientID, content string) (*models.Message, error) {
	return m.SendFunc(ctx, senderID, recipientID, content)
}
func (m *mockMessageService) Conversation(ctx context.Context, viewerID, otherID string) ([]models.Message, error) {
	return m.ConversationFunc(ctx, viewerID, otherID)
}
func (m *mockMessageService) Inbox(ctx context.Context, viewerID string) ([]models.ConversationSummary, error) {
	return m.InboxFunc(ctx, viewerID)
}

type staticSubscriber struct {
	topic string
	msgs  []models.Message
}

func (s *staticSubscriber) Subscribe(_ context.Context, topic string) (<-chan models.Message, func()) {
	s.topic = topic
	ch := make(chan models.Message, len(s.msgs))
	for _, msg := range s.msgs {
		ch <- msg
	}
	close(ch)
	return ch, func() {}
}

func TestMessagesSend(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		send       func(ctx context.Context, senderID, recipientID, content string) (*models.Message, error)
		wantStatus int
	}{
		{
			name: "created",
			body: `{"recipient_id":"bob","content":"hello"}`,
			send: func(_ context.Context, senderID, recipientID, content string) (*models.Message, error) {
				return &models.Message{ID: "m1", SenderID: senderID, RecipientID: recipientID, Content: content, CreatedAt: time.Now()}, nil
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "malformed json",
			body:       `{`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "empty content rejected",
			body: `{"recipient_id":"bob","content":"  "}`,
			send: func(context.Context, string, string, string) (*models.Message, error) {
				return nil, service.ErrInvalid
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "unknown recipient",
			body: `{"recipient_id":"ghost","content":"hello"}`,
			send: func(context.Context, string, string, string) (*models.Message, error) {
				return nil, service.ErrNotFound
			},
			wantStatus: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := &MessageHandler{MessageService: &mockMessageService{SendFunc: tt.send}}

			req := httptest.NewRequest(http.MethodPost, "/api/messages", bytes.NewBufferString(tt.body))
			req = req.WithContext(middleware.WithUserID(req.Context(), "alice"))
			rec := httptest.NewRecorder()
			handler.Send(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestMessagesConversation(t *testing.T) {
	handler := &MessageHandler{MessageService: &mockMessageService{
		ConversationFunc: func(_ context.Context, viewerID, otherID string) ([]models.Message, error) {
			assert.Equal(t, "alice", viewerID)
			assert.Equal(t, "bob", otherID)
			return []models.Message{
				{ID: "m1", SenderID: "alice", RecipientID: "bob", Content: "hi"},
				{ID: "m2", SenderID: "bob", RecipientID: "alice", Content: "hey"},
			}, nil
		},
	}}

	req := httptest.NewRequest(http.MethodGet, "/api/messages?with=bob", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), "alice"))
	rec := httptest.NewRecorder()
	handler.Conversation(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var thread []models.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &thread))
	require.Len(t, thread, 2)
	assert.Equal(t, "m1", thread[0].ID)
}

func TestMessagesConversation_EmptyThreadIsArray(t *testing.T) {
	handler := &MessageHandler{MessageService: &mockMessageService{
		ConversationFunc: func(context.Context, string, string) ([]models.Message, error) {
			return nil, nil
		},
	}}

	req := httptest.NewRequest(http.MethodGet, "/api/messages?with=bob", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), "alice"))
	rec := httptest.NewRecorder()
	handler.Conversation(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestMessagesInbox(t *testing.T) {
	handler := &MessageHandler{MessageService: &mockMessageService{
		InboxFunc: func(_ context.Context, viewerID string) ([]models.ConversationSummary, error) {
			assert.Equal(t, "alice", viewerID)
			return []models.ConversationSummary{
				{CounterpartID: "bob", LastMessage: models.Message{ID: "m9"}, UnreadCount: 3},
			}, nil
		},
	}}

	req := httptest.NewRequest(http.MethodGet, "/api/messages/inbox", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), "alice"))
	rec := httptest.NewRecorder()
	handler.Inbox(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var summaries []models.ConversationSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, 3, summaries[0].UnreadCount)
}

func TestMessagesStream_WritesEventsForThreadTopic(t *testing.T) {
	sub := &staticSubscriber{msgs: []models.Message{
		{ID: "m1", SenderID: "bob", RecipientID: "alice", Content: "hi"},
		{ID: "m2", SenderID: "alice", RecipientID: "bob", Content: "hey"},
	}}
	handler := &MessageHandler{Subscriber: sub}

	req := httptest.NewRequest(http.MethodGet, "/api/messages/stream?with=bob", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), "alice"))
	rec := httptest.NewRecorder()
	handler.Stream(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	// Both participants resolve to the same canonical topic.
	assert.Equal(t, service.NewPair("alice", "bob").Key(), sub.topic)

	body := rec.Body.String()
	assert.Contains(t, body, "event: message\n")
	assert.Contains(t, body, `"m1"`)
	assert.Contains(t, body, `"m2"`)
}

func TestMessagesStream_RequiresCounterpart(t *testing.T) {
	handler := &MessageHandler{Subscriber: &staticSubscriber{}}

	req := httptest.NewRequest(http.MethodGet, "/api/messages/stream", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), "alice"))
	rec := httptest.NewRecorder()
	handler.Stream(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
