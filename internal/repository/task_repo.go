package repository

import (
	"context"
	"errors"

	"tasktracker/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, owner_id, title, COALESCE(description, ''), completed, due_date, created_at`

// ListByOwner returns the owner's tasks newest-first. status narrows the
// result to pending or completed tasks; anything else means all.
func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID int64, status string) ([]*domain.Task, error) {
	q := `SELECT ` + taskColumns + ` FROM tasks WHERE owner_id = $1`
	switch status {
	case domain.StatusCompleted:
		q += ` AND completed = TRUE`
	case domain.StatusPending:
		q += ` AND completed = FALSE`
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []*domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO tasks (owner_id, title, description, due_date)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, completed, created_at`,
		t.OwnerID, t.Title, t.Description, t.DueDate,
	).Scan(&t.ID, &t.Completed, &t.CreatedAt)
}

// GetOwned loads a task only if it belongs to ownerID. A task owned by
// someone else is indistinguishable from a missing one.
func (r *TaskRepository) GetOwned(ctx context.Context, id, ownerID int64) (*domain.Task, error) {
	t, err := scanTask(r.db.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// Update writes the merged task row, again scoped by owner.
func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE tasks
		 SET title = $1, description = $2, due_date = $3, completed = $4
		 WHERE id = $5 AND owner_id = $6`,
		t.Title, t.Description, t.DueDate, t.Completed, t.ID, t.OwnerID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleCompleted flips the completion flag in one statement; the owner
// check lives in the WHERE clause so there is no read-then-write window.
func (r *TaskRepository) ToggleCompleted(ctx context.Context, id, ownerID int64) (*domain.Task, error) {
	t, err := scanTask(r.db.QueryRow(ctx,
		`UPDATE tasks SET completed = NOT completed
		 WHERE id = $1 AND owner_id = $2
		 RETURNING `+taskColumns,
		id, ownerID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id, ownerID int64) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM tasks WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	if err := row.Scan(
		&t.ID,
		&t.OwnerID,
		&t.Title,
		&t.Description,
		&t.Completed,
		&t.DueDate,
		&t.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}
