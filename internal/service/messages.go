package service

import (
	"context"
	"strings"
	"time"

	"github.com/avolkov/taskboard/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MessageRepository defines the persistence operations needed by the
// MessageService.
type MessageRepository interface {
	// InsertMessage stores a new message.
	InsertMessage(ctx context.Context, msg models.Message) error
	// ListDirected returns the messages sent from one user to another,
	// ordered by creation time ascending.
	ListDirected(ctx context.Context, senderID, recipientID string) ([]models.Message, error)
	// ListVisibleTo returns every message the user participates in.
	ListVisibleTo(ctx context.Context, userID string) ([]models.Message, error)
	// MarkRead flags the given messages read for the recipient, skipping
	// rows already read, and returns the number of rows transitioned.
	MarkRead(ctx context.Context, recipientID string, ids []string) (int64, error)
	// InboxSummaries returns the latest message and unread count per
	// counterpart for the user.
	InboxSummaries(ctx context.Context, userID string) ([]models.ConversationSummary, error)
}

// Publisher delivers a committed message to live subscribers of a topic.
type Publisher interface {
	Publish(topic string, msg models.Message)
}

// MessageService implements direct messaging: sending, conversation
// projection and inbox summaries.
type MessageService struct {
	repo MessageRepository
	hub  Publisher
	log  *zap.Logger

	// naive switches the projection to the fetch-all-then-filter
	// strategy. Off by default; only useful against stores without
	// compound filtering.
	naive bool

	// markReadTimeout bounds the background read-marking write.
	markReadTimeout time.Duration

	// markedRead, when set, receives the number of rows transitioned by
	// each background read-marking. Tests use it to observe completion.
	markedRead chan<- int64
}

// MessageOption configures a MessageService.
type MessageOption func(*MessageService)

// WithNaiveProjection selects the fetch-all-then-filter conversation
// strategy. It is correct but does not scale past small datasets; the
// targeted two-query strategy is the default.
func WithNaiveProjection() MessageOption {
	return func(s *MessageService) { s.naive = true }
}

// withReadObserver registers a channel receiving the row count of every
// completed background read-marking.
func withReadObserver(ch chan<- int64) MessageOption {
	return func(s *MessageService) { s.markedRead = ch }
}

// NewMessageService constructs a MessageService with the provided
// repository, realtime publisher and logger.
func NewMessageService(repo MessageRepository, hub Publisher, log *zap.Logger, opts ...MessageOption) *MessageService {
	s := &MessageService{
		repo:            repo,
		hub:             hub,
		log:             log,
		markReadTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send validates and stores a message from sender to recipient, then
// publishes it to the pair's realtime topic. The creation timestamp is
// server-assigned.
func (s *MessageService) Send(ctx context.Context, senderID, recipientID, content string) (*models.Message, error) {
	if recipientID == "" || strings.TrimSpace(content) == "" {
		return nil, ErrInvalid
	}

	msg := models.Message{
		ID:          uuid.NewString(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.InsertMessage(ctx, msg); err != nil {
		return nil, err
	}

	s.hub.Publish(NewPair(senderID, recipientID).Key(), msg)
	return &msg, nil
}

// Conversation returns the thread between the viewer and the other
// participant, ordered by creation time ascending. Projection(a,b) and
// Projection(b,a) yield the same sequence.
//
// As a side effect, messages addressed to the viewer that are still
// unread are marked read in the background. The write is fire-and-forget:
// a failure is logged, never surfaced and never retried.
func (s *MessageService) Conversation(ctx context.Context, viewerID, otherID string) ([]models.Message, error) {
	if otherID == "" {
		return nil, ErrInvalid
	}

	thread, err := s.project(ctx, viewerID, otherID)
	if err != nil {
		return nil, err
	}

	var unread []string
	for _, m := range thread {
		if m.RecipientID == viewerID && !m.Read {
			unread = append(unread, m.ID)
		}
	}
	if len(unread) > 0 {
		go s.markRead(viewerID, unread)
	}

	return thread, nil
}

// project assembles the thread using the configured strategy.
func (s *MessageService) project(ctx context.Context, viewerID, otherID string) ([]models.Message, error) {
	pair := NewPair(viewerID, otherID)

	if s.naive {
		all, err := s.repo.ListVisibleTo(ctx, viewerID)
		if err != nil {
			return nil, err
		}
		return ProjectPair(all, pair), nil
	}

	sent, err := s.repo.ListDirected(ctx, pair.A, pair.B)
	if err != nil {
		return nil, err
	}
	if pair.Self() {
		// A degenerate single-party thread is one directed query.
		return sent, nil
	}
	received, err := s.repo.ListDirected(ctx, pair.B, pair.A)
	if err != nil {
		return nil, err
	}
	return MergeByCreated(sent, received), nil
}

func (s *MessageService) markRead(viewerID string, ids []string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.markReadTimeout)
	defer cancel()

	n, err := s.repo.MarkRead(ctx, viewerID, ids)
	if err != nil {
		s.log.Error("failed to mark messages read",
			zap.String("viewer", viewerID),
			zap.Int("count", len(ids)),
			zap.Error(err))
		n = -1
	}
	if s.markedRead != nil {
		s.markedRead <- n
	}
}

// Inbox returns the viewer's conversation summaries, newest first.
func (s *MessageService) Inbox(ctx context.Context, viewerID string) ([]models.ConversationSummary, error) {
	return s.repo.InboxSummaries(ctx, viewerID)
}
