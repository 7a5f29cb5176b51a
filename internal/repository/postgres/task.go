package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Kerhoff/weddingplanner/internal/models"
	"github.com/Kerhoff/weddingplanner/internal/repository"
)

const taskColumns = `id, plan_id, title, description, due_date, is_completed, category, remark, position, reminded_at, created_at, updated_at`

type taskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) repository.TaskRepository {
	return &taskRepository{db: db}
}

func scanTask(row rowScanner) (*models.Task, error) {
	t := &models.Task{}
	var dueDate, remindedAt sql.NullTime
	var remark sql.NullString
	err := row.Scan(
		&t.ID, &t.PlanID, &t.Title, &t.Description, &dueDate, &t.IsCompleted,
		&t.Category, &remark, &t.Position, &remindedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if dueDate.Valid {
		t.DueDate = &dueDate.Time
	}
	if remindedAt.Valid {
		t.RemindedAt = &remindedAt.Time
	}
	if remark.Valid {
		t.Remark = &remark.String
	}
	return t, nil
}

// Create appends the task to the end of its plan.
func (r *taskRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	query := `INSERT INTO tasks (id, plan_id, title, description, due_date, is_completed, category, remark, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
			(SELECT COALESCE(MAX(position) + 1, 0) FROM tasks WHERE plan_id = $2), $9, $10)
		RETURNING position, created_at, updated_at`
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	if task.Category == "" {
		task.Category = models.CategoryOthers
	}
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	err := r.db.QueryRowContext(ctx, query,
		task.ID, task.PlanID, task.Title, task.Description, task.DueDate, task.IsCompleted,
		task.Category, task.Remark, task.CreatedAt, task.UpdatedAt,
	).Scan(&task.Position, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

func (r *taskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) (*models.Task, error) {
	query := `UPDATE tasks
		SET title = $2, description = $3, due_date = $4, is_completed = $5, category = $6, remark = $7,
			reminded_at = $8, updated_at = $9
		WHERE id = $1
		RETURNING updated_at`
	task.UpdatedAt = time.Now()
	err := r.db.QueryRowContext(ctx, query,
		task.ID, task.Title, task.Description, task.DueDate, task.IsCompleted,
		task.Category, task.Remark, task.RemindedAt, task.UpdatedAt,
	).Scan(&task.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

func (r *taskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return requireAffected(result)
}

func (r *taskRepository) ListDueForReminder(ctx context.Context, before time.Time, limit int) ([]*models.TaskReminder, error) {
	query := `SELECT ` + prefixed("t", taskColumns) + `, p.wedding_id, u.id, u.telegram_chat_id
		FROM tasks t
		JOIN plans p ON p.id = t.plan_id
		JOIN wedding_users wu ON wu.wedding_id = p.wedding_id
		JOIN users u ON u.id = wu.user_id
		WHERE t.is_completed = FALSE
			AND t.reminded_at IS NULL
			AND t.due_date IS NOT NULL
			AND t.due_date <= $1
			AND u.telegram_chat_id IS NOT NULL
		ORDER BY t.due_date ASC, t.position ASC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, before, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query due tasks: %w", err)
	}
	defer rows.Close()

	var reminders []*models.TaskReminder
	for rows.Next() {
		t := &models.Task{}
		rem := &models.TaskReminder{Task: t}
		var dueDate, remindedAt sql.NullTime
		var remark sql.NullString
		if err := rows.Scan(
			&t.ID, &t.PlanID, &t.Title, &t.Description, &dueDate, &t.IsCompleted,
			&t.Category, &remark, &t.Position, &remindedAt, &t.CreatedAt, &t.UpdatedAt,
			&rem.WeddingID, &rem.UserID, &rem.ChatID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan due task: %w", err)
		}
		if dueDate.Valid {
			t.DueDate = &dueDate.Time
		}
		if remark.Valid {
			t.Remark = &remark.String
		}
		reminders = append(reminders, rem)
	}
	return reminders, rows.Err()
}

func (r *taskRepository) MarkReminded(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	values := make([]string, len(ids))
	for i, id := range ids {
		values[i] = id.String()
	}
	query := `UPDATE tasks SET reminded_at = $2 WHERE id = ANY($1::uuid[])`
	if _, err := r.db.ExecContext(ctx, query, pq.Array(values), at); err != nil {
		return fmt.Errorf("failed to mark tasks reminded: %w", err)
	}
	return nil
}

// ListOpenForUser returns the user's open tasks across their weddings,
// soonest due first.
func (r *taskRepository) ListOpenForUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Task, error) {
	query := `SELECT ` + prefixed("t", taskColumns) + `
		FROM tasks t
		JOIN plans p ON p.id = t.plan_id
		JOIN wedding_users wu ON wu.wedding_id = p.wedding_id
		WHERE wu.user_id = $1 AND t.is_completed = FALSE
		ORDER BY t.due_date ASC NULLS LAST, t.position ASC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query open tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) WeddingIDForTask(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	query := `SELECT p.wedding_id FROM tasks t JOIN plans p ON p.id = t.plan_id WHERE t.id = $1`
	var weddingID uuid.UUID
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&weddingID); err != nil {
		if err == sql.ErrNoRows {
			return uuid.Nil, repository.ErrNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to resolve task wedding: %w", err)
	}
	return weddingID, nil
}
