package models

import (
	"time"

	"github.com/google/uuid"
)

// Task represents a single to-do item derived from a plan
type Task struct {
	ID          uuid.UUID    `json:"id" db:"id"`
	PlanID      uuid.UUID    `json:"planId" db:"plan_id"`
	Title       string       `json:"title" db:"title"`
	Description string       `json:"description" db:"description"`
	DueDate     *time.Time   `json:"dueDate" db:"due_date"`
	IsCompleted bool         `json:"isCompleted" db:"is_completed"`
	Category    TaskCategory `json:"category" db:"category"`
	Remark      *string      `json:"remark" db:"remark"`
	Position    int          `json:"position" db:"position"`
	RemindedAt  *time.Time   `json:"-" db:"reminded_at"`
	CreatedAt   time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time    `json:"updatedAt" db:"updated_at"`
}

// Toggle flips the completion flag. There are no guards on the transition.
func (t *Task) Toggle() {
	t.IsCompleted = !t.IsCompleted
}

// IsOverdue returns true if the task has a due date and it's passed
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.IsCompleted {
		return false
	}
	return now.After(*t.DueDate)
}

// DueWithin reports whether an open task falls due before now+window.
func (t *Task) DueWithin(now time.Time, window time.Duration) bool {
	if t.DueDate == nil || t.IsCompleted {
		return false
	}
	return t.DueDate.Before(now.Add(window))
}

// TaskReminder pairs an open task with the chat that should hear about it.
type TaskReminder struct {
	Task      *Task
	WeddingID uuid.UUID
	UserID    uuid.UUID
	ChatID    int64
}
