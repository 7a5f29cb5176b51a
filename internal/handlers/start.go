package handlers

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/weddingplanner/internal/service"
	"github.com/Kerhoff/weddingplanner/internal/telegram"
)

// StartHandler handles the /start command
type StartHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewStartHandler creates a new start command handler
func NewStartHandler(svc *service.Service, logger *logrus.Logger) *StartHandler {
	return &StartHandler{svc: svc, logger: logger}
}

// Handle replies with the chat id the user pastes into the app to receive
// reminders here.
func (h *StartHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	user, err := h.svc.Users.GetByTelegramChat(context.Background(), message.Chat.ID)
	if err != nil {
		return fmt.Errorf("lookup linked user: %w", err)
	}

	var text string
	if user != nil {
		text = fmt.Sprintf("💍 *Welcome back, %s!*\n\nThis chat is linked to your wedding plan. "+
			"Use /tasks to see what is coming up.", user.DisplayName())
	} else {
		text = fmt.Sprintf("💍 *Welcome to Wedding Planner!*\n\n"+
			"To get task reminders here, open your profile in the app and link this chat id:\n\n`%d`\n\n"+
			"Use /help to see what I can do.", message.Chat.ID)
	}

	if err := reply(bot, message.Chat.ID, text); err != nil {
		return fmt.Errorf("failed to send start message: %w", err)
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"linked":  user != nil,
	}).Info("Sent start message")

	return nil
}
