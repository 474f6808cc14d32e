package repository

import (
	"context"
	"fmt"

	"github.com/avolkov/taskboard/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const messageColumns = `id, sender_id, recipient_id, content, read, read_at, created_at`

// PostgresMessageRepository implements message persistence against a
// PostgreSQL database.
type PostgresMessageRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sqlx.DB
}

// NewPostgresMessageRepository creates a new PostgresMessageRepository
// using the provided *sqlx.DB.
func NewPostgresMessageRepository(db *sqlx.DB) *PostgresMessageRepository {
	return &PostgresMessageRepository{DB: db}
}

// InsertMessage stores a new message row.
func (r *PostgresMessageRepository) InsertMessage(ctx context.Context, msg models.Message) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO messages (id, sender_id, recipient_id, content, read, created_at)
		VALUES ($1, $2, $3, $4, false, $5)
	`, msg.ID, msg.SenderID, msg.RecipientID, msg.Content, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("InsertMessage: %w", err)
	}
	return nil
}

func (r *PostgresMessageRepository) listMessages(ctx context.Context, query string, args ...any) ([]models.Message, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Content, &m.Read, &m.ReadAt, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// ListDirected fetches the messages sent from one user to another,
// ordered by server-assigned creation time ascending. This is one half of
// the targeted conversation strategy; the service merges the two halves.
func (r *PostgresMessageRepository) ListDirected(ctx context.Context, senderID, recipientID string) ([]models.Message, error) {
	msgs, err := r.listMessages(ctx, `
		SELECT `+messageColumns+` FROM messages
		WHERE sender_id = $1 AND recipient_id = $2
		ORDER BY created_at ASC, id ASC
	`, senderID, recipientID)
	if err != nil {
		return nil, fmt.Errorf("ListDirected: %w", err)
	}
	return msgs, nil
}

// ListVisibleTo fetches every message the user participates in, ordered by
// creation time. Only the naive conversation fallback uses this; it does
// not scale past small datasets.
func (r *PostgresMessageRepository) ListVisibleTo(ctx context.Context, userID string) ([]models.Message, error) {
	msgs, err := r.listMessages(ctx, `
		SELECT `+messageColumns+` FROM messages
		WHERE sender_id = $1 OR recipient_id = $1
		ORDER BY created_at ASC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("ListVisibleTo: %w", err)
	}
	return msgs, nil
}

// MarkRead sets the read flag on the given messages, but only for rows
// addressed to recipientID that are still unread. The read = false guard
// makes the operation idempotent: a second call never moves read_at.
// Returns the number of rows actually transitioned.
func (r *PostgresMessageRepository) MarkRead(ctx context.Context, recipientID string, ids []string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE messages SET read = true, read_at = now()
		WHERE recipient_id = $1 AND id = ANY($2) AND read = false
	`, recipientID, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("MarkRead: %w", err)
	}
	rows, _ := res.RowsAffected()
	return rows, nil
}

// InboxSummaries returns, for each counterpart the user has exchanged
// messages with, the latest message of that thread plus the count of
// unread messages from the counterpart. Newest threads first.
func (r *PostgresMessageRepository) InboxSummaries(ctx context.Context, userID string) ([]models.ConversationSummary, error) {
	rows, err := r.DB.QueryContext(ctx, `
		WITH threads AS (
			SELECT *,
			       CASE WHEN sender_id = $1 THEN recipient_id ELSE sender_id END AS counterpart_id
			FROM messages
			WHERE sender_id = $1 OR recipient_id = $1
		), latest AS (
			SELECT DISTINCT ON (counterpart_id)
			       counterpart_id, id, sender_id, recipient_id, content, read, read_at, created_at,
			       (SELECT COUNT(*) FROM messages m
			         WHERE m.recipient_id = $1
			           AND m.sender_id = threads.counterpart_id
			           AND m.read = false) AS unread_count
			FROM threads
			ORDER BY counterpart_id, created_at DESC, id DESC
		)
		SELECT * FROM latest ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("InboxSummaries: %w", err)
	}
	defer rows.Close()

	var summaries []models.ConversationSummary
	for rows.Next() {
		var s models.ConversationSummary
		m := &s.LastMessage
		if err := rows.Scan(&s.CounterpartID, &m.ID, &m.SenderID, &m.RecipientID,
			&m.Content, &m.Read, &m.ReadAt, &m.CreatedAt, &s.UnreadCount); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
