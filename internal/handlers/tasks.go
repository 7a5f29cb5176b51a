package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/weddingplanner/internal/models"
	"github.com/Kerhoff/weddingplanner/internal/service"
	"github.com/Kerhoff/weddingplanner/internal/telegram"
)

const (
	// DoneCallbackPrefix tags inline "done" buttons.
	DoneCallbackPrefix = "done"

	taskListLimit = 10
	shortIDLen    = 8
)

var errTaskNotFound = errors.New("task not found")

func reply(bot telegram.Sender, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := bot.Send(msg)
	return err
}

func shortID(id uuid.UUID) string {
	return id.String()[:shortIDLen]
}

// linkedUser returns the user whose profile holds this chat id, or nil.
func linkedUser(ctx context.Context, svc *service.Service, chatID int64) (*models.User, error) {
	user, err := svc.Users.GetByTelegramChat(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("lookup linked user: %w", err)
	}
	return user, nil
}

const notLinkedText = "🔗 This chat is not linked to a wedding plan yet. Send /start to get the chat id to link."

// FormatTaskList renders open tasks with short ids and due dates.
func FormatTaskList(tasks []*models.Task, now time.Time) string {
	if len(tasks) == 0 {
		return "🎉 *No open tasks!* Everything is on track."
	}

	var sb strings.Builder
	sb.WriteString("📋 *Your next tasks*\n\n")
	for _, t := range tasks {
		fmt.Fprintf(&sb, "`%s` %s", shortID(t.ID), tgbotapi.EscapeText(tgbotapi.ModeMarkdown, t.Title))
		if t.DueDate != nil {
			fmt.Fprintf(&sb, "  📅 _%s_", t.DueDate.Format("2006-01-02"))
		}
		if t.IsOverdue(now) {
			sb.WriteString(" ⚠️")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n_Tap a button or send /done <id> to mark a task done._")
	return sb.String()
}

func doneKeyboard(tasks []*models.Task) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ "+shortID(t.ID), DoneCallbackPrefix+":"+t.ID.String()),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// ---------------------------------------------------------------------------
// TasksHandler – /tasks
// ---------------------------------------------------------------------------

// TasksHandler lists the next open tasks of the linked user.
type TasksHandler struct {
	svc    *service.Service
	logger *logrus.Logger
	now    func() time.Time
}

// NewTasksHandler creates a new TasksHandler.
func NewTasksHandler(svc *service.Service, logger *logrus.Logger) *TasksHandler {
	return &TasksHandler{svc: svc, logger: logger, now: time.Now}
}

// Handle processes the /tasks command.
func (h *TasksHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	ctx := context.Background()

	user, err := linkedUser(ctx, h.svc, message.Chat.ID)
	if err != nil {
		return err
	}
	if user == nil {
		return reply(bot, message.Chat.ID, notLinkedText)
	}

	tasks, err := h.svc.Tasks.ListOpenForUser(ctx, user.ID, taskListLimit)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, FormatTaskList(tasks, h.now()))
	msg.ParseMode = tgbotapi.ModeMarkdown
	if len(tasks) > 0 {
		msg.ReplyMarkup = doneKeyboard(tasks)
	}
	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("send task list: %w", err)
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"user_id": user.ID,
		"count":   len(tasks),
	}).Info("Listed tasks")

	return nil
}

// ---------------------------------------------------------------------------
// DoneHandler – /done <id> and inline buttons
// ---------------------------------------------------------------------------

// DoneHandler toggles completion of a task the linked user can see.
type DoneHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewDoneHandler creates a new DoneHandler.
func NewDoneHandler(svc *service.Service, logger *logrus.Logger) *DoneHandler {
	return &DoneHandler{svc: svc, logger: logger}
}

// Handle processes the /done command.
func (h *DoneHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	if len(args) == 0 {
		return reply(bot, message.Chat.ID, "❌ Please provide a task id.\nUsage: `/done 1a2b3c4d`")
	}

	ctx := context.Background()
	user, err := linkedUser(ctx, h.svc, message.Chat.ID)
	if err != nil {
		return err
	}
	if user == nil {
		return reply(bot, message.Chat.ID, notLinkedText)
	}

	task, err := h.toggle(ctx, user, args[0])
	if errors.Is(err, errTaskNotFound) {
		return reply(bot, message.Chat.ID, fmt.Sprintf("❌ Task `%s` not found.", tgbotapi.EscapeText(tgbotapi.ModeMarkdown, args[0])))
	}
	if err != nil {
		return err
	}

	return reply(bot, message.Chat.ID, toggledText(task))
}

// HandleCallback processes a press on an inline "done" button.
func (h *DoneHandler) HandleCallback(bot telegram.Sender, query *tgbotapi.CallbackQuery, payload string) (string, error) {
	if query.Message == nil || query.Message.Chat == nil {
		return "", nil
	}
	ctx := context.Background()

	user, err := linkedUser(ctx, h.svc, query.Message.Chat.ID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "Chat is not linked", nil
	}

	task, err := h.toggle(ctx, user, payload)
	if errors.Is(err, errTaskNotFound) {
		return "Task not found", nil
	}
	if err != nil {
		return "", err
	}
	if err := reply(bot, query.Message.Chat.ID, toggledText(task)); err != nil {
		h.logger.WithError(err).Warn("Failed to confirm toggled task")
	}
	if task.IsCompleted {
		return "Marked done", nil
	}
	return "Reopened", nil
}

func toggledText(task *models.Task) string {
	title := tgbotapi.EscapeText(tgbotapi.ModeMarkdown, task.Title)
	if task.IsCompleted {
		return fmt.Sprintf("🎉 Task `%s` done!\n\n%s", shortID(task.ID), title)
	}
	return fmt.Sprintf("↩️ Task `%s` reopened.\n\n%s", shortID(task.ID), title)
}

// toggle resolves ref to a task the user may access and flips it. A full
// id may name any visible task; a short id is matched against open tasks.
func (h *DoneHandler) toggle(ctx context.Context, user *models.User, ref string) (*models.Task, error) {
	id, err := h.resolve(ctx, user, ref)
	if err != nil {
		return nil, err
	}

	ok, err := h.svc.CanAccessTask(ctx, user.ID, id)
	if err != nil {
		return nil, fmt.Errorf("check task access: %w", err)
	}
	if !ok {
		return nil, errTaskNotFound
	}

	task, err := h.svc.Tasks.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if task == nil {
		return nil, errTaskNotFound
	}

	task.Toggle()
	updated, err := h.svc.Tasks.Update(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	h.logger.WithFields(logrus.Fields{
		"user_id":   user.ID,
		"task_id":   updated.ID,
		"completed": updated.IsCompleted,
	}).Info("Task toggled from Telegram")
	return updated, nil
}

func (h *DoneHandler) resolve(ctx context.Context, user *models.User, ref string) (uuid.UUID, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if id, err := uuid.Parse(ref); err == nil {
		return id, nil
	}
	if len(ref) < 4 {
		return uuid.Nil, errTaskNotFound
	}

	open, err := h.svc.Tasks.ListOpenForUser(ctx, user.ID, 100)
	if err != nil {
		return uuid.Nil, fmt.Errorf("list tasks: %w", err)
	}
	return MatchShortID(open, ref)
}

// MatchShortID finds the single task whose id starts with prefix.
func MatchShortID(tasks []*models.Task, prefix string) (uuid.UUID, error) {
	var match uuid.UUID
	found := 0
	for _, t := range tasks {
		if strings.HasPrefix(t.ID.String(), prefix) {
			match = t.ID
			found++
		}
	}
	if found != 1 {
		return uuid.Nil, errTaskNotFound
	}
	return match, nil
}
