package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"taskloop/api/models"
)

type TodoStore struct {
	db *sql.DB
}

// NewTodoStore creates a new TodoStore instance.
func NewTodoStore(db *sql.DB) *TodoStore {
	return &TodoStore{db: db}
}

// ListByOwner returns all todos owned by the given user, ordered by id so
// clients render a stable list.
func (s *TodoStore) ListByOwner(ctx context.Context, userID int) ([]models.Todo, error) {
	query := `
		SELECT id, title, completed, user_id, created_at, updated_at
		FROM todos
		WHERE user_id = $1
		ORDER BY id;
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := []models.Todo{}
	for rows.Next() {
		var todo models.Todo
		if err := rows.Scan(
			&todo.ID,
			&todo.Title,
			&todo.Completed,
			&todo.UserID,
			&todo.CreatedAt,
			&todo.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan todo row: %w", err)
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error while listing todos: %w", err)
	}

	return todos, nil
}

// Create inserts a new todo owned by the given user. Completed defaults to
// false in the schema.
func (s *TodoStore) Create(ctx context.Context, userID int, title string) (*models.Todo, error) {
	todo := &models.Todo{}
	query := `
		INSERT INTO todos (title, user_id)
		VALUES ($1, $2)
		RETURNING id, title, completed, user_id, created_at, updated_at;
	`
	err := s.db.QueryRowContext(ctx, query, title, userID).Scan(
		&todo.ID,
		&todo.Title,
		&todo.Completed,
		&todo.UserID,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	return todo, nil
}

// GetByID fetches a todo regardless of owner. Returns models.ErrTodoNotFound
// when no row exists; callers decide how ownership mismatches are surfaced.
func (s *TodoStore) GetByID(ctx context.Context, id int) (*models.Todo, error) {
	todo := &models.Todo{}
	query := `
		SELECT id, title, completed, user_id, created_at, updated_at
		FROM todos
		WHERE id = $1;
	`
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&todo.ID,
		&todo.Title,
		&todo.Completed,
		&todo.UserID,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to get todo by id: %w", err)
	}

	return todo, nil
}

// Update applies a partial update: nil title or completed leaves the stored
// value unchanged.
func (s *TodoStore) Update(ctx context.Context, id int, title *string, completed *bool) (*models.Todo, error) {
	todo := &models.Todo{}
	query := `
		UPDATE todos
		SET title = COALESCE($2, title),
		    completed = COALESCE($3, completed),
		    updated_at = now()
		WHERE id = $1
		RETURNING id, title, completed, user_id, created_at, updated_at;
	`
	err := s.db.QueryRowContext(ctx, query, id, title, completed).Scan(
		&todo.ID,
		&todo.Title,
		&todo.Completed,
		&todo.UserID,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}

	return todo, nil
}

// Delete removes a todo by id. Returns models.ErrTodoNotFound when no row
// was deleted.
func (s *TodoStore) Delete(ctx context.Context, id int) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return models.ErrTodoNotFound
	}

	return nil
}
