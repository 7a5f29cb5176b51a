package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/weddingplanner/internal/models"
)

func dueTask(title string, due time.Time) *models.Task {
	return &models.Task{ID: uuid.New(), Title: title, Category: models.CategoryVenue, DueDate: &due}
}

func TestProcessRemindersDigestsPerChat(t *testing.T) {
	env := newTestEnv()
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	wedding := uuid.New()

	venue := dueTask("Book venue", now.Add(48*time.Hour))
	cake := dueTask("Order cake", now.Add(-24*time.Hour))
	env.tasks.due = []*models.TaskReminder{
		{Task: venue, WeddingID: wedding, UserID: uuid.New(), ChatID: 1},
		{Task: cake, WeddingID: wedding, UserID: uuid.New(), ChatID: 1},
		{Task: venue, WeddingID: wedding, UserID: uuid.New(), ChatID: 2},
	}

	sent := map[int64]string{}
	cfg := ReminderConfig{Lookahead: 72 * time.Hour, Now: func() time.Time { return now }}
	env.svc.ProcessReminders(context.Background(), cfg, func(chatID int64, text string) error {
		sent[chatID] = text
		return nil
	})

	assert.Equal(t, now.Add(72*time.Hour), env.tasks.before)
	require.Len(t, sent, 2)
	assert.Contains(t, sent[1], "Book venue")
	assert.Contains(t, sent[1], "Order cake (overdue)")
	assert.Less(t, strings.Index(sent[1], "Order cake"), strings.Index(sent[1], "Book venue"))
	assert.NotContains(t, sent[2], "Order cake")

	assert.Len(t, env.tasks.reminded, 2)

	calls := 0
	env.svc.ProcessReminders(context.Background(), cfg, func(int64, string) error {
		calls++
		return nil
	})
	assert.Zero(t, calls)
}

func TestProcessRemindersRetriesFailedDeliveries(t *testing.T) {
	env := newTestEnv()
	now := time.Now()
	task := dueTask("Book venue", now.Add(time.Hour))
	env.tasks.due = []*models.TaskReminder{{Task: task, ChatID: 7}}

	cfg := ReminderConfig{Now: func() time.Time { return now }}
	env.svc.ProcessReminders(context.Background(), cfg, func(int64, string) error {
		return errors.New("bot was blocked by the user")
	})
	assert.Empty(t, env.tasks.reminded)

	env.svc.ProcessReminders(context.Background(), cfg, func(int64, string) error { return nil })
	assert.Contains(t, env.tasks.reminded, task.ID)
}

func TestStartReminderSchedulerStopsOnCancel(t *testing.T) {
	env := newTestEnv()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		env.svc.StartReminderScheduler(ctx, ReminderConfig{Interval: time.Millisecond}, func(int64, string) error { return nil })
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
