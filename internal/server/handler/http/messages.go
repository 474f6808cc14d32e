package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/avolkov/taskboard/internal/middleware"
	"github.com/avolkov/taskboard/internal/models"
	"github.com/avolkov/taskboard/internal/service"
)

// MessageService defines the interface for messaging operations required
// by the HTTP handlers.
type MessageService interface {
	// Send stores a message and returns it with its server-assigned
	// timestamp.
	Send(ctx context.Context, senderID, recipientID, content string) (*models.Message, error)
	// Conversation returns the thread between the viewer and another
	// participant, ordered by creation time.
	Conversation(ctx context.Context, viewerID, otherID string) ([]models.Message, error)
	// Inbox returns the viewer's conversation summaries.
	Inbox(ctx context.Context, viewerID string) ([]models.ConversationSummary, error)
}

// Subscriber provides live message subscriptions by topic.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string) (<-chan models.Message, func())
}

// MessageHandler handles HTTP requests for direct messaging, including
// the server-sent-events stream.
type MessageHandler struct {
	MessageService MessageService
	Subscriber     Subscriber
}

// SendRequest represents the JSON payload for sending a message.
type SendRequest struct {
	RecipientID string `json:"recipient_id"`
	Content     string `json:"content"`
}

// Send handles POST /api/messages.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	senderID := middleware.GetUserIDFromContext(r.Context())
	msg, err := h.MessageService.Send(r.Context(), senderID, req.RecipientID, req.Content)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// Conversation handles GET /api/messages?with=<user>. Viewing a thread
// marks its unread messages read in the background.
func (h *MessageHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	otherID := r.URL.Query().Get("with")
	viewerID := middleware.GetUserIDFromContext(r.Context())

	thread, err := h.MessageService.Conversation(r.Context(), viewerID, otherID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if thread == nil {
		thread = []models.Message{}
	}
	writeJSON(w, http.StatusOK, thread)
}

// Inbox handles GET /api/messages/inbox.
func (h *MessageHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserIDFromContext(r.Context())
	summaries, err := h.MessageService.Inbox(r.Context(), viewerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if summaries == nil {
		summaries = []models.ConversationSummary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

// Stream handles GET /api/messages/stream?with=<user> as a server-sent
// events stream of new messages in the thread. The subscription is
// released when the client disconnects; each event carries the message's
// created_at so clients can re-sort instead of trusting delivery order.
func (h *MessageHandler) Stream(w http.ResponseWriter, r *http.Request) {
	otherID := r.URL.Query().Get("with")
	if otherID == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	viewerID := middleware.GetUserIDFromContext(r.Context())
	topic := service.NewPair(viewerID, otherID).Key()

	events, cancel := h.Subscriber.Subscribe(r.Context(), topic)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for msg := range events {
		payload, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "event: message\ndata: %s\n\n", payload)
		flusher.Flush()
	}
}
