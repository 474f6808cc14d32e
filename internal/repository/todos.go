package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/avolkov/taskboard/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const todoColumns = `id, owner_id, title, description, completed, public, tags, created_at, updated_at`

// PostgresTodoRepository implements todo persistence against a PostgreSQL
// database. Deletes are soft; every read filters deleted rows out.
type PostgresTodoRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sqlx.DB
}

// NewPostgresTodoRepository creates a new PostgresTodoRepository using the
// provided *sqlx.DB.
func NewPostgresTodoRepository(db *sqlx.DB) *PostgresTodoRepository {
	return &PostgresTodoRepository{DB: db}
}

func scanTodo(row interface{ Scan(...any) error }) (*models.Todo, error) {
	var todo models.Todo
	err := row.Scan(
		&todo.ID, &todo.OwnerID, &todo.Title, &todo.Description,
		&todo.Completed, &todo.Public, pq.Array(&todo.Tags),
		&todo.CreatedAt, &todo.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

// CreateTodo inserts a new todo row.
func (r *PostgresTodoRepository) CreateTodo(ctx context.Context, todo models.Todo) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO todos (id, owner_id, title, description, completed, public, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, todo.ID, todo.OwnerID, todo.Title, todo.Description, todo.Completed,
		todo.Public, pq.Array(todo.Tags), todo.CreatedAt, todo.UpdatedAt)
	if err != nil {
		return fmt.Errorf("CreateTodo: %w", err)
	}
	return nil
}

// GetTodoByID fetches a single live todo regardless of owner; visibility
// rules are enforced by the service layer. Returns ErrNotFound when the
// row is absent or soft-deleted.
func (r *PostgresTodoRepository) GetTodoByID(ctx context.Context, id string) (*models.Todo, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+todoColumns+` FROM todos
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	todo, err := scanTodo(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetTodoByID: %w", err)
	}
	return todo, nil
}

// ListTodosByOwner fetches all live todos belonging to the specified user,
// newest first.
func (r *PostgresTodoRepository) ListTodosByOwner(ctx context.Context, ownerID string) ([]models.Todo, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+todoColumns+` FROM todos
		WHERE owner_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("ListTodosByOwner: %w", err)
	}
	defer rows.Close()

	var todos []models.Todo
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		todos = append(todos, *todo)
	}
	return todos, rows.Err()
}

// ListPublic fetches one bounded page of live public todos, newest first.
func (r *PostgresTodoRepository) ListPublic(ctx context.Context, limit, offset uint64) ([]models.Todo, error) {
	query, args, err := squirrel.Select(todoColumns).
		From("todos").
		Where(squirrel.Eq{"public": true}).
		Where("deleted_at IS NULL").
		OrderBy("created_at DESC").
		Limit(limit).
		Offset(offset).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ListPublic build: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListPublic: %w", err)
	}
	defer rows.Close()

	var todos []models.Todo
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		todos = append(todos, *todo)
	}
	return todos, rows.Err()
}

// UpdateTodo applies the non-nil fields of patch to the owner's todo and
// returns the updated row. Returns ErrNotFound when no live row matches
// the (id, owner) pair.
func (r *PostgresTodoRepository) UpdateTodo(ctx context.Context, ownerID, id string, patch models.TodoPatch) (*models.Todo, error) {
	builder := squirrel.Update("todos").
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id, "owner_id": ownerID}).
		Where("deleted_at IS NULL").
		Suffix("RETURNING " + todoColumns).
		PlaceholderFormat(squirrel.Dollar)

	if patch.Title != nil {
		builder = builder.Set("title", *patch.Title)
	}
	if patch.Description != nil {
		builder = builder.Set("description", *patch.Description)
	}
	if patch.Completed != nil {
		builder = builder.Set("completed", *patch.Completed)
	}
	if patch.Public != nil {
		builder = builder.Set("public", *patch.Public)
	}
	if patch.Tags != nil {
		builder = builder.Set("tags", pq.Array(*patch.Tags))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("UpdateTodo build: %w", err)
	}

	todo, err := scanTodo(r.DB.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("UpdateTodo: %w", err)
	}
	return todo, nil
}

// SoftDeleteTodo marks the owner's todo deleted. The retention cleaner
// removes the row permanently later. Returns ErrNotFound when no live row
// matches the (id, owner) pair.
func (r *PostgresTodoRepository) SoftDeleteTodo(ctx context.Context, ownerID, id string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE todos SET deleted_at = now()
		WHERE id = $1 AND owner_id = $2 AND deleted_at IS NULL
	`, id, ownerID)
	if err != nil {
		return fmt.Errorf("SoftDeleteTodo: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}
