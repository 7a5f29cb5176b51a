package telegram

import (
	"errors"
	"io"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
}

func (s *recordingSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.sent = append(s.sent, c)
	return tgbotapi.Message{}, nil
}

func (s *recordingSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	s.requests = append(s.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

type commandFunc func(bot Sender, message *tgbotapi.Message, args []string) error

func (f commandFunc) Handle(bot Sender, message *tgbotapi.Message, args []string) error {
	return f(bot, message, args)
}

type callbackFunc func(bot Sender, query *tgbotapi.CallbackQuery, payload string) (string, error)

func (f callbackFunc) HandleCallback(bot Sender, query *tgbotapi.CallbackQuery, payload string) (string, error) {
	return f(bot, query, payload)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func command(text string, cmdLen int) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 1,
		Chat:      &tgbotapi.Chat{ID: 77},
		From:      &tgbotapi.User{ID: 5},
		Text:      text,
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}},
	}
}

func TestRouterDispatchesCommandWithArgs(t *testing.T) {
	r := NewRouter(quietLogger())
	var got []string
	r.RegisterCommand("done", commandFunc(func(_ Sender, _ *tgbotapi.Message, args []string) error {
		got = args
		return nil
	}))

	bot := &recordingSender{}
	r.HandleMessage(bot, command("/done abc123  extra", 5))

	assert.Equal(t, []string{"abc123", "extra"}, got)
	assert.Empty(t, bot.sent)
}

func TestRouterRepliesOnUnknownAndFailedCommands(t *testing.T) {
	r := NewRouter(quietLogger())
	r.RegisterCommand("tasks", commandFunc(func(Sender, *tgbotapi.Message, []string) error {
		return errors.New("db down")
	}))

	bot := &recordingSender{}
	r.HandleMessage(bot, command("/nope", 5))
	r.HandleMessage(bot, command("/tasks", 6))
	r.HandleMessage(bot, &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 77}, Text: "just chatting"})

	require.Len(t, bot.sent, 2)
	assert.Contains(t, bot.sent[0].(tgbotapi.MessageConfig).Text, "Unknown command")
	assert.Contains(t, bot.sent[1].(tgbotapi.MessageConfig).Text, "An error occurred")
}

func TestRouterCallbackAnswersWithHandlerNotice(t *testing.T) {
	r := NewRouter(quietLogger())
	var payload string
	r.RegisterCallback("done", callbackFunc(func(_ Sender, _ *tgbotapi.CallbackQuery, p string) (string, error) {
		payload = p
		return "Marked done", nil
	}))

	bot := &recordingSender{}
	r.HandleCallbackQuery(bot, &tgbotapi.CallbackQuery{ID: "cb1", From: &tgbotapi.User{ID: 5}, Data: "done:1234"})

	assert.Equal(t, "1234", payload)
	require.Len(t, bot.requests, 1)
	answer := bot.requests[0].(tgbotapi.CallbackConfig)
	assert.Equal(t, "cb1", answer.CallbackQueryID)
	assert.Equal(t, "Marked done", answer.Text)

	r.HandleCallbackQuery(bot, &tgbotapi.CallbackQuery{ID: "cb2", From: &tgbotapi.User{ID: 5}, Data: "other"})
	require.Len(t, bot.requests, 2)
	assert.Empty(t, bot.requests[1].(tgbotapi.CallbackConfig).Text)
}
