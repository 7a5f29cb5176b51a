package handlers

import (
	"context"
	"io"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/weddingplanner/internal/models"
	"github.com/Kerhoff/weddingplanner/internal/repository"
	"github.com/Kerhoff/weddingplanner/internal/service"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
}

func (s *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		s.sent = append(s.sent, m)
	}
	return tgbotapi.Message{}, nil
}

func (s *fakeSender) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (s *fakeSender) last(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	require.NotEmpty(t, s.sent)
	return s.sent[len(s.sent)-1]
}

type chatUsers struct {
	repository.UserRepository
	byChat map[int64]*models.User
}

func (c *chatUsers) GetByTelegramChat(_ context.Context, chatID int64) (*models.User, error) {
	return c.byChat[chatID], nil
}

type memberWeddings struct {
	repository.WeddingRepository
	members map[uuid.UUID]uuid.UUID
}

func (m *memberWeddings) IsMember(_ context.Context, weddingID, userID uuid.UUID) (bool, error) {
	return m.members[userID] == weddingID, nil
}

type weddingTasks struct {
	repository.TaskRepository
	wedding uuid.UUID
	byID    map[uuid.UUID]*models.Task
	order   []uuid.UUID
}

func (w *weddingTasks) add(title string, due *time.Time) *models.Task {
	t := &models.Task{ID: uuid.New(), Title: title, DueDate: due}
	w.byID[t.ID] = t
	w.order = append(w.order, t.ID)
	return t
}

func (w *weddingTasks) ListOpenForUser(_ context.Context, _ uuid.UUID, limit int) ([]*models.Task, error) {
	var out []*models.Task
	for _, id := range w.order {
		if t := w.byID[id]; !t.IsCompleted && len(out) < limit {
			out = append(out, t)
		}
	}
	return out, nil
}

func (w *weddingTasks) GetByID(_ context.Context, id uuid.UUID) (*models.Task, error) {
	return w.byID[id], nil
}

func (w *weddingTasks) Update(_ context.Context, t *models.Task) (*models.Task, error) {
	w.byID[t.ID] = t
	return t, nil
}

func (w *weddingTasks) WeddingIDForTask(_ context.Context, id uuid.UUID) (uuid.UUID, error) {
	if _, ok := w.byID[id]; !ok {
		return uuid.Nil, repository.ErrNotFound
	}
	return w.wedding, nil
}

const linkedChat int64 = 4242

type botEnv struct {
	svc   *service.Service
	tasks *weddingTasks
	user  *models.User
	log   *logrus.Logger
}

func newBotEnv() *botEnv {
	log := logrus.New()
	log.SetOutput(io.Discard)

	weddingID := uuid.New()
	user := &models.User{ID: uuid.New(), Name: "Amy", Email: "amy@example.com"}
	tasks := &weddingTasks{wedding: weddingID, byID: map[uuid.UUID]*models.Task{}}
	svc := service.New(log,
		&chatUsers{byChat: map[int64]*models.User{linkedChat: user}},
		&memberWeddings{members: map[uuid.UUID]uuid.UUID{user.ID: weddingID}},
		nil, tasks, nil, nil)
	return &botEnv{svc: svc, tasks: tasks, user: user, log: log}
}

func cmd(chatID int64) *tgbotapi.Message {
	return &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}, From: &tgbotapi.User{ID: 1}}
}

func TestStartShowsChatIDWhenUnlinked(t *testing.T) {
	env := newBotEnv()
	bot := &fakeSender{}
	h := NewStartHandler(env.svc, env.log)

	require.NoError(t, h.Handle(bot, cmd(999), nil))
	assert.Contains(t, bot.last(t).Text, "`999`")

	require.NoError(t, h.Handle(bot, cmd(linkedChat), nil))
	assert.Contains(t, bot.last(t).Text, "Welcome back, Amy")
}

func TestTasksListsOpenTasksWithButtons(t *testing.T) {
	env := newBotEnv()
	due := time.Date(2027, 1, 10, 0, 0, 0, 0, time.UTC)
	book := env.tasks.add("Book_venue", &due)
	env.tasks.add("Send invites", nil).IsCompleted = true

	h := NewTasksHandler(env.svc, env.log)
	h.now = func() time.Time { return time.Date(2027, 2, 1, 0, 0, 0, 0, time.UTC) }
	bot := &fakeSender{}
	require.NoError(t, h.Handle(bot, cmd(linkedChat), nil))

	msg := bot.last(t)
	assert.Contains(t, msg.Text, shortID(book.ID))
	assert.Contains(t, msg.Text, `Book\_venue`)
	assert.Contains(t, msg.Text, "2027-01-10")
	assert.Contains(t, msg.Text, "⚠️")
	assert.NotContains(t, msg.Text, "Send invites")

	kb, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, kb.InlineKeyboard, 1)
	assert.Equal(t, "done:"+book.ID.String(), *kb.InlineKeyboard[0][0].CallbackData)
}

func TestTasksRequiresLinkedChat(t *testing.T) {
	env := newBotEnv()
	bot := &fakeSender{}
	require.NoError(t, NewTasksHandler(env.svc, env.log).Handle(bot, cmd(1), nil))
	assert.Equal(t, notLinkedText, bot.last(t).Text)
}

func TestDoneTogglesByShortAndFullID(t *testing.T) {
	env := newBotEnv()
	task := env.tasks.add("Book venue", nil)
	h := NewDoneHandler(env.svc, env.log)
	bot := &fakeSender{}

	require.NoError(t, h.Handle(bot, cmd(linkedChat), []string{shortID(task.ID)}))
	assert.True(t, env.tasks.byID[task.ID].IsCompleted)
	assert.Contains(t, bot.last(t).Text, "done!")

	require.NoError(t, h.Handle(bot, cmd(linkedChat), []string{task.ID.String()}))
	assert.False(t, env.tasks.byID[task.ID].IsCompleted)
	assert.Contains(t, bot.last(t).Text, "reopened")

	require.NoError(t, h.Handle(bot, cmd(linkedChat), []string{uuid.NewString()}))
	assert.Contains(t, bot.last(t).Text, "not found")
}

func TestDoneCallback(t *testing.T) {
	env := newBotEnv()
	task := env.tasks.add("Taste menus", nil)
	h := NewDoneHandler(env.svc, env.log)
	bot := &fakeSender{}

	query := &tgbotapi.CallbackQuery{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: linkedChat}}}
	notice, err := h.HandleCallback(bot, query, task.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Marked done", notice)
	assert.True(t, env.tasks.byID[task.ID].IsCompleted)

	query.Message.Chat.ID = 1
	notice, err = h.HandleCallback(bot, query, task.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Chat is not linked", notice)
}

func TestMatchShortID(t *testing.T) {
	a := &models.Task{ID: uuid.MustParse("aaaa1111-0000-0000-0000-000000000000")}
	b := &models.Task{ID: uuid.MustParse("aaaa2222-0000-0000-0000-000000000000")}

	id, err := MatchShortID([]*models.Task{a, b}, "aaaa1")
	require.NoError(t, err)
	assert.Equal(t, a.ID, id)

	_, err = MatchShortID([]*models.Task{a, b}, "aaaa")
	assert.ErrorIs(t, err, errTaskNotFound)
}
