package service

import (
	"context"
	"strings"

	"github.com/avolkov/taskboard/internal/models"
)

// Feed page bounds. The upstream fetch is capped; the text and tag
// filters below never paginate further.
const (
	DefaultFeedLimit = 20
	MaxFeedLimit     = 50
)

// FeedRepository defines the persistence operations needed by the
// FeedService.
type FeedRepository interface {
	// ListPublic returns one page of live public todos, newest first.
	ListPublic(ctx context.Context, limit, offset uint64) ([]models.Todo, error)
}

// FeedService serves the public todo feed.
type FeedService struct {
	repo FeedRepository
}

// NewFeedService constructs a FeedService with the provided repository.
func NewFeedService(repo FeedRepository) *FeedService {
	return &FeedService{repo: repo}
}

// Page fetches one bounded page of public todos. A zero limit falls back
// to DefaultFeedLimit; anything above MaxFeedLimit is clamped.
func (s *FeedService) Page(ctx context.Context, limit, offset uint64) ([]models.Todo, error) {
	if limit == 0 {
		limit = DefaultFeedLimit
	}
	if limit > MaxFeedLimit {
		limit = MaxFeedLimit
	}
	return s.repo.ListPublic(ctx, limit, offset)
}

// Filter applies a free-text search and an optional single-tag filter to
// an already-fetched page of todos. It is a pure function: no side
// effects, no error states beyond an empty result.
//
// The search is a case-insensitive substring match against title OR
// description; the tag filter requires exact set membership. Both compose
// with AND. Empty term and empty tag are each an identity.
func Filter(todos []models.Todo, term, tag string) []models.Todo {
	if term == "" && tag == "" {
		return todos
	}

	needle := strings.ToLower(term)
	filtered := make([]models.Todo, 0, len(todos))
	for _, todo := range todos {
		if needle != "" &&
			!strings.Contains(strings.ToLower(todo.Title), needle) &&
			!strings.Contains(strings.ToLower(todo.Description), needle) {
			continue
		}
		if tag != "" && !hasTag(todo.Tags, tag) {
			continue
		}
		filtered = append(filtered, todo)
	}
	return filtered
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
