package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avolkov/taskboard/internal/models"
	"github.com/jmoiron/sqlx"
)

const attachmentColumns = `id, todo_id, file_name, object_key, size, content_type, created_at`

// PostgresAttachmentRepository implements attachment metadata persistence
// against a PostgreSQL database. The attachment bytes themselves live in
// the object store.
type PostgresAttachmentRepository struct {
	// DB is the database handle for executing queries.
	DB *sqlx.DB
}

// NewPostgresAttachmentRepository creates a new PostgresAttachmentRepository
// using the provided *sqlx.DB.
func NewPostgresAttachmentRepository(db *sqlx.DB) *PostgresAttachmentRepository {
	return &PostgresAttachmentRepository{DB: db}
}

// InsertAttachment stores a new attachment metadata row.
func (r *PostgresAttachmentRepository) InsertAttachment(ctx context.Context, a models.Attachment) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO todo_attachments (id, todo_id, file_name, object_key, size, content_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, a.ID, a.TodoID, a.FileName, a.ObjectKey, a.Size, a.ContentType, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("InsertAttachment: %w", err)
	}
	return nil
}

func (r *PostgresAttachmentRepository) listAttachments(ctx context.Context, query string, args ...any) ([]models.Attachment, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attachments []models.Attachment
	for rows.Next() {
		var a models.Attachment
		if err := rows.Scan(&a.ID, &a.TodoID, &a.FileName, &a.ObjectKey, &a.Size, &a.ContentType, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}

// ListByTodo fetches all attachment rows of a todo, oldest first.
func (r *PostgresAttachmentRepository) ListByTodo(ctx context.Context, todoID string) ([]models.Attachment, error) {
	attachments, err := r.listAttachments(ctx, `
		SELECT `+attachmentColumns+` FROM todo_attachments
		WHERE todo_id = $1 ORDER BY created_at ASC
	`, todoID)
	if err != nil {
		return nil, fmt.Errorf("ListByTodo: %w", err)
	}
	return attachments, nil
}

// GetAttachmentByID fetches a single attachment row. Returns ErrNotFound
// when absent.
func (r *PostgresAttachmentRepository) GetAttachmentByID(ctx context.Context, id string) (*models.Attachment, error) {
	var a models.Attachment
	err := r.DB.QueryRowContext(ctx, `
		SELECT `+attachmentColumns+` FROM todo_attachments WHERE id = $1
	`, id).Scan(&a.ID, &a.TodoID, &a.FileName, &a.ObjectKey, &a.Size, &a.ContentType, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetAttachmentByID: %w", err)
	}
	return &a, nil
}

// DeleteAttachment removes an attachment row. Returns ErrNotFound when no
// row matched.
func (r *PostgresAttachmentRepository) DeleteAttachment(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM todo_attachments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("DeleteAttachment: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}
