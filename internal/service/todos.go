package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/avolkov/taskboard/internal/models"
	"github.com/avolkov/taskboard/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// TodoRepository defines the persistence operations needed by the
// TodoService.
type TodoRepository interface {
	CreateTodo(ctx context.Context, todo models.Todo) error
	GetTodoByID(ctx context.Context, id string) (*models.Todo, error)
	ListTodosByOwner(ctx context.Context, ownerID string) ([]models.Todo, error)
	UpdateTodo(ctx context.Context, ownerID, id string, patch models.TodoPatch) (*models.Todo, error)
	SoftDeleteTodo(ctx context.Context, ownerID, id string) error
}

// AttachmentLister provides the attachment rows a todo delete has to
// clean up after.
type AttachmentLister interface {
	ListByTodo(ctx context.Context, todoID string) ([]models.Attachment, error)
}

// ObjectDeleter removes stored attachment bytes.
type ObjectDeleter interface {
	Delete(ctx context.Context, key string) error
}

// CreateTodoInput carries the fields of a new todo.
type CreateTodoInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Public      bool     `json:"public"`
	Tags        []string `json:"tags"`
}

// TodoService implements todo CRUD with owner scoping and cascading
// attachment cleanup.
type TodoService struct {
	repo        TodoRepository
	attachments AttachmentLister
	store       ObjectDeleter
	log         *zap.Logger
}

// NewTodoService constructs a TodoService with the provided repository,
// attachment lister and object store.
func NewTodoService(repo TodoRepository, attachments AttachmentLister, store ObjectDeleter, log *zap.Logger) *TodoService {
	return &TodoService{repo: repo, attachments: attachments, store: store, log: log}
}

// Create stores a new todo owned by ownerID. The title is required.
func (s *TodoService) Create(ctx context.Context, ownerID string, input CreateTodoInput) (*models.Todo, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrInvalid
	}

	now := time.Now().UTC()
	todo := models.Todo{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       input.Title,
		Description: input.Description,
		Public:      input.Public,
		Tags:        normalizeTags(input.Tags),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateTodo(ctx, todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// ListMine returns all todos owned by the viewer, newest first.
func (s *TodoService) ListMine(ctx context.Context, viewerID string) ([]models.Todo, error) {
	return s.repo.ListTodosByOwner(ctx, viewerID)
}

// Get returns a single todo with its attachments. Non-owners may only
// read todos whose visibility flag is set.
func (s *TodoService) Get(ctx context.Context, viewerID, id string) (*models.Todo, error) {
	todo, err := s.repo.GetTodoByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if todo.OwnerID != viewerID && !todo.Public {
		return nil, ErrForbidden
	}

	attachments, err := s.attachments.ListByTodo(ctx, todo.ID)
	if err != nil {
		return nil, err
	}
	todo.Attachments = attachments
	return todo, nil
}

// Update applies a partial update to the owner's todo.
func (s *TodoService) Update(ctx context.Context, ownerID, id string, patch models.TodoPatch) (*models.Todo, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, ErrInvalid
	}
	if patch.Tags != nil {
		tags := normalizeTags(*patch.Tags)
		patch.Tags = &tags
	}

	todo, err := s.repo.UpdateTodo(ctx, ownerID, id, patch)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return todo, nil
}

// Delete soft-deletes the owner's todo, then removes its attachment bytes
// from the object store best-effort. The row delete and the object
// deletes are not atomic: object-store failures are logged and swallowed,
// and the retention cleaner plus the attachment rows' foreign-key cascade
// handle what remains.
func (s *TodoService) Delete(ctx context.Context, ownerID, id string) error {
	attachments, err := s.attachments.ListByTodo(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.SoftDeleteTodo(ctx, ownerID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	var cleanupErr error
	for _, a := range attachments {
		if err := s.store.Delete(ctx, a.ObjectKey); err != nil {
			cleanupErr = multierr.Append(cleanupErr, err)
		}
	}
	if cleanupErr != nil {
		s.log.Error("failed to remove attachment objects for deleted todo",
			zap.String("todo", id),
			zap.Error(cleanupErr))
	}
	return nil
}

// normalizeTags deduplicates and trims the tag set, dropping empties. Tag
// order is not meaningful; the set is stored as given after cleanup.
func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	cleaned := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		cleaned = append(cleaned, t)
	}
	return cleaned
}
