package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Kerhoff/weddingplanner/internal/metrics"
	"github.com/Kerhoff/weddingplanner/internal/models"
)

// ReminderCallback is a function that sends a reminder message to a chat.
type ReminderCallback func(chatID int64, text string) error

// ReminderConfig controls the due-task reminder loop.
type ReminderConfig struct {
	Interval  time.Duration
	Lookahead time.Duration
	// BatchSize bounds the reminders handled per tick.
	BatchSize int
	Metrics   *metrics.Metrics
	Now       func() time.Time
}

func (c ReminderConfig) withDefaults() ReminderConfig {
	if c.Interval <= 0 {
		c.Interval = time.Hour
	}
	if c.Lookahead <= 0 {
		c.Lookahead = 7 * 24 * time.Hour
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 500
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// StartReminderScheduler runs a background loop that sends each linked
// member a digest of their open tasks falling due within the look-ahead
// window. It blocks until the context is cancelled, so it should be
// launched in a separate goroutine.
func (s *Service) StartReminderScheduler(ctx context.Context, cfg ReminderConfig, callback ReminderCallback) {
	cfg = cfg.withDefaults()
	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	s.logger.WithField("interval", cfg.Interval).Info("Reminder scheduler started")

	s.ProcessReminders(ctx, cfg, callback)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Reminder scheduler stopped")
			return
		case <-ticker.C:
			s.ProcessReminders(ctx, cfg, callback)
		}
	}
}

// ProcessReminders runs a single reminder pass. A task is marked reminded
// once at least one of its members has received it; tasks with no
// successful delivery are retried on the next pass.
func (s *Service) ProcessReminders(ctx context.Context, cfg ReminderConfig, callback ReminderCallback) {
	cfg = cfg.withDefaults()
	now := cfg.Now()

	due, err := s.Tasks.ListDueForReminder(ctx, now.Add(cfg.Lookahead), cfg.BatchSize)
	if err != nil {
		s.logger.Errorf("Failed to get due tasks: %v", err)
		return
	}
	if len(due) == 0 {
		return
	}

	byChat := make(map[int64][]*models.Task)
	var chats []int64
	for _, r := range due {
		if _, ok := byChat[r.ChatID]; !ok {
			chats = append(chats, r.ChatID)
		}
		byChat[r.ChatID] = append(byChat[r.ChatID], r.Task)
	}

	delivered := make(map[uuid.UUID]bool)
	for _, chatID := range chats {
		tasks := byChat[chatID]
		err := callback(chatID, FormatDigest(tasks, now))
		cfg.Metrics.RecordReminder(err)
		if err != nil {
			s.logger.WithError(err).WithField("chat_id", chatID).Warn("Failed to send task reminder")
			continue
		}
		for _, t := range tasks {
			delivered[t.ID] = true
		}
	}

	ids := make([]uuid.UUID, 0, len(delivered))
	for id := range delivered {
		ids = append(ids, id)
	}
	if err := s.Tasks.MarkReminded(ctx, ids, now); err != nil {
		s.logger.Errorf("Failed to mark %d tasks reminded: %v", len(ids), err)
		return
	}

	s.logger.WithField("tasks", len(ids)).Info("Task reminders sent")
}

// FormatDigest renders the reminder message for one chat, soonest first.
// Tasks without a due date are skipped.
func FormatDigest(tasks []*models.Task, now time.Time) string {
	sorted := make([]*models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.DueDate != nil {
			sorted = append(sorted, t)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DueDate.Before(*sorted[j].DueDate)
	})

	var b strings.Builder
	b.WriteString("⏰ *Upcoming wedding tasks*\n")
	for _, t := range sorted {
		marker := ""
		if t.IsOverdue(now) {
			marker = " (overdue)"
		}
		fmt.Fprintf(&b, "\n• %s [%s] due %s%s", t.Title, t.Category.Label(), t.DueDate.Format("Jan 2, 2006"), marker)
	}
	return b.String()
}
