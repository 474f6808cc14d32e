package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/avolkov/taskboard/internal/models"
	"github.com/avolkov/taskboard/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxAttachmentSize caps a single upload at 10 MiB.
const maxAttachmentSize = 10 << 20

// AttachmentRepository defines the persistence operations needed by the
// AttachmentService.
type AttachmentRepository interface {
	InsertAttachment(ctx context.Context, a models.Attachment) error
	GetAttachmentByID(ctx context.Context, id string) (*models.Attachment, error)
	ListByTodo(ctx context.Context, todoID string) ([]models.Attachment, error)
	DeleteAttachment(ctx context.Context, id string) error
}

// ObjectStore stores and removes attachment bytes.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, size int64, body io.Reader) error
	Delete(ctx context.Context, key string) error
}

// TodoGetter resolves a todo for the ownership check on uploads.
type TodoGetter interface {
	GetTodoByID(ctx context.Context, id string) (*models.Todo, error)
}

// AttachmentService stores attachment bytes in the object store and their
// metadata rows in the database.
type AttachmentService struct {
	repo  AttachmentRepository
	todos TodoGetter
	store ObjectStore
	log   *zap.Logger
}

// NewAttachmentService constructs an AttachmentService with the provided
// repository, todo resolver and object store.
func NewAttachmentService(repo AttachmentRepository, todos TodoGetter, store ObjectStore, log *zap.Logger) *AttachmentService {
	return &AttachmentService{repo: repo, todos: todos, store: store, log: log}
}

// Upload stores the file bytes under a fresh object key, then inserts the
// metadata row. The two writes are not atomic: when the row insert fails
// after a successful upload, the object is removed best-effort so no
// orphan survives silently, and the error is returned.
func (s *AttachmentService) Upload(ctx context.Context, ownerID, todoID, fileName, contentType string, size int64, body io.Reader) (*models.Attachment, error) {
	if fileName == "" || size <= 0 || size > maxAttachmentSize {
		return nil, ErrInvalid
	}

	todo, err := s.todos.GetTodoByID(ctx, todoID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if todo.OwnerID != ownerID {
		return nil, ErrForbidden
	}

	attachment := models.Attachment{
		ID:          uuid.NewString(),
		TodoID:      todoID,
		FileName:    fileName,
		ObjectKey:   fmt.Sprintf("attachments/%s/%s", todoID, uuid.NewString()),
		Size:        size,
		ContentType: contentType,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.Put(ctx, attachment.ObjectKey, contentType, size, body); err != nil {
		return nil, fmt.Errorf("store attachment: %w", err)
	}

	if err := s.repo.InsertAttachment(ctx, attachment); err != nil {
		if delErr := s.store.Delete(ctx, attachment.ObjectKey); delErr != nil {
			s.log.Error("failed to remove orphaned attachment object",
				zap.String("key", attachment.ObjectKey),
				zap.Error(delErr))
		}
		return nil, err
	}
	return &attachment, nil
}

// Delete removes the attachment row, then its bytes best-effort. A failed
// object delete is logged and swallowed; the row is already gone.
func (s *AttachmentService) Delete(ctx context.Context, ownerID, attachmentID string) error {
	attachment, err := s.repo.GetAttachmentByID(ctx, attachmentID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	todo, err := s.todos.GetTodoByID(ctx, attachment.TodoID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if todo.OwnerID != ownerID {
		return ErrForbidden
	}

	if err := s.repo.DeleteAttachment(ctx, attachmentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := s.store.Delete(ctx, attachment.ObjectKey); err != nil {
		s.log.Error("failed to remove attachment object",
			zap.String("key", attachment.ObjectKey),
			zap.Error(err))
	}
	return nil
}
