package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/avolkov/taskboard/internal/models"
	"github.com/avolkov/taskboard/internal/service"
)

// FeedService defines the interface for public feed operations required
// by the HTTP handlers.
type FeedService interface {
	// Page returns one bounded page of public todos, newest first.
	Page(ctx context.Context, limit, offset uint64) ([]models.Todo, error)
}

// FeedHandler handles HTTP requests for the public todo feed.
type FeedHandler struct {
	FeedService FeedService
}

// Get handles GET /api/feed?limit=&offset=&q=&tag=.
//
// Pagination applies to the upstream fetch only; the q and tag filters
// are applied to the fetched page afterwards, mirroring how the feed
// behaves for a client filtering on every keystroke.
func (h *FeedHandler) Get(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, _ := strconv.ParseUint(query.Get("limit"), 10, 64)
	offset, _ := strconv.ParseUint(query.Get("offset"), 10, 64)

	todos, err := h.FeedService.Page(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	filtered := service.Filter(todos, query.Get("q"), query.Get("tag"))
	if filtered == nil {
		filtered = []models.Todo{}
	}
	writeJSON(w, http.StatusOK, filtered)
}
