package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/avolkov/taskboard/internal/middleware"
	"github.com/avolkov/taskboard/internal/models"
	"github.com/avolkov/taskboard/internal/service"
	"github.com/go-chi/chi/v5"
)

// TodoService defines the interface for todo operations required by the
// HTTP handlers.
type TodoService interface {
	Create(ctx context.Context, ownerID string, input service.CreateTodoInput) (*models.Todo, error)
	ListMine(ctx context.Context, viewerID string) ([]models.Todo, error)
	Get(ctx context.Context, viewerID, id string) (*models.Todo, error)
	Update(ctx context.Context, ownerID, id string, patch models.TodoPatch) (*models.Todo, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// TodoHandler handles HTTP requests for the owner-scoped todo CRUD.
type TodoHandler struct {
	TodoService TodoService
}

// List handles GET /api/todos, returning the viewer's todos newest first.
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserIDFromContext(r.Context())
	todos, err := h.TodoService.ListMine(r.Context(), viewerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if todos == nil {
		todos = []models.Todo{}
	}
	writeJSON(w, http.StatusOK, todos)
}

// Create handles POST /api/todos.
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateTodoInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	ownerID := middleware.GetUserIDFromContext(r.Context())
	todo, err := h.TodoService.Create(r.Context(), ownerID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, todo)
}

// Get handles GET /api/todos/{id}. Non-owners only see public todos.
func (h *TodoHandler) Get(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserIDFromContext(r.Context())
	todo, err := h.TodoService.Get(r.Context(), viewerID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

// Update handles PUT /api/todos/{id}. Only fields present in the body are
// changed.
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch models.TodoPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	ownerID := middleware.GetUserIDFromContext(r.Context())
	todo, err := h.TodoService.Update(r.Context(), ownerID, chi.URLParam(r, "id"), patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

// Delete handles DELETE /api/todos/{id}.
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetUserIDFromContext(r.Context())
	if err := h.TodoService.Delete(r.Context(), ownerID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
