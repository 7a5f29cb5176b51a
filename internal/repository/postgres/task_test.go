package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/weddingplanner/internal/models"
)

var reminderRowColumns = []string{
	"id", "plan_id", "title", "description", "due_date", "is_completed",
	"category", "remark", "position", "reminded_at", "created_at", "updated_at",
	"wedding_id", "user_id", "telegram_chat_id",
}

func TestListDueForReminder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	before := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	taskID, planID, weddingID := uuid.New(), uuid.New(), uuid.New()
	ana, rui := uuid.New(), uuid.New()
	due := before.Add(-24 * time.Hour)
	now := time.Now()

	mock.ExpectQuery(`(?s)t\.reminded_at IS NULL.*t\.due_date <= \$1.*u\.telegram_chat_id IS NOT NULL.*LIMIT \$2`).
		WithArgs(before, 50).
		WillReturnRows(sqlmock.NewRows(reminderRowColumns).
			AddRow(taskID.String(), planID.String(), "Book venue", "", due, false,
				"VENUE", "call first", 0, nil, now, now, weddingID.String(), ana.String(), int64(101)).
			AddRow(taskID.String(), planID.String(), "Book venue", "", due, false,
				"VENUE", nil, 0, nil, now, now, weddingID.String(), rui.String(), int64(202)))

	reminders, err := NewTaskRepository(db).ListDueForReminder(context.Background(), before, 50)
	require.NoError(t, err)
	require.Len(t, reminders, 2)

	first := reminders[0]
	assert.Equal(t, taskID, first.Task.ID)
	assert.Equal(t, models.CategoryVenue, first.Task.Category)
	require.NotNil(t, first.Task.DueDate)
	assert.True(t, due.Equal(*first.Task.DueDate))
	require.NotNil(t, first.Task.Remark)
	assert.Equal(t, "call first", *first.Task.Remark)
	assert.Equal(t, weddingID, first.WeddingID)
	assert.Equal(t, ana, first.UserID)
	assert.Equal(t, int64(101), first.ChatID)

	assert.Equal(t, rui, reminders[1].UserID)
	assert.Equal(t, int64(202), reminders[1].ChatID)
	assert.Nil(t, reminders[1].Task.Remark)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListDueForReminderEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(q(`FROM tasks t`)).WillReturnRows(sqlmock.NewRows(reminderRowColumns))

	reminders, err := NewTaskRepository(db).ListDueForReminder(context.Background(), time.Now(), 10)
	require.NoError(t, err)
	assert.Empty(t, reminders)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkRemindedSkipsEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, NewTaskRepository(db).MarkReminded(context.Background(), nil, time.Now()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
