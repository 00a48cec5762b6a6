package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"nutrivision/internal/models"
	"nutrivision/internal/tracker"
	"nutrivision/pkg/logger"
)

// analysisTimeout bounds one photo analysis including the nutrition lookup.
const analysisTimeout = 2 * time.Minute

// TelegramBot is the chat front-end for a single owner.
type TelegramBot struct {
	bot     *tgbotapi.BotAPI
	tracker *tracker.Tracker
	ownerID int64
	logger  *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	stateMutex sync.Mutex
	wizard     *profileWizard
	mealType   models.MealType
}

func NewTelegramBot(token string, ownerChatID int64, tr *tracker.Tracker, l *logger.Logger) (*TelegramBot, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	l = l.Named("telegram")
	l.Infow("Authorized on Telegram", "username", bot.Self.UserName)

	return &TelegramBot{
		bot:      bot,
		tracker:  tr,
		ownerID:  ownerChatID,
		logger:   l,
		mealType: models.DefaultMealType,
	}, nil
}

// Start begins receiving updates from Telegram via polling
func (t *TelegramBot) Start(ctx context.Context) error {
	t.logger.Info("Removing any existing webhook")
	_, err := t.bot.Request(tgbotapi.DeleteWebhookConfig{
		DropPendingUpdates: true,
	})
	if err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	_, err = t.bot.Request(tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "profile", Description: "Set up or edit your profile"},
		tgbotapi.BotCommand{Command: "meal", Description: "Choose the meal type for the next photo"},
		tgbotapi.BotCommand{Command: "history", Description: "Show logged meals by day"},
		tgbotapi.BotCommand{Command: "advice", Description: "Show the latest advice"},
		tgbotapi.BotCommand{Command: "clear", Description: "Delete all logged meals"},
		tgbotapi.BotCommand{Command: "help", Description: "How to use the bot"},
	))
	if err != nil {
		t.logger.Warnw("Failed to register bot commands", "error", err)
	}

	t.ctx, t.cancel = context.WithCancel(ctx)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := t.bot.GetUpdatesChan(updateConfig)

	t.logger.Info("Started receiving Telegram updates")

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		t.handleUpdates(updates)
	}()

	return nil
}

// handleUpdates processes incoming updates from Telegram
func (t *TelegramBot) handleUpdates(updates tgbotapi.UpdatesChannel) {
	for update := range updates {
		t.wg.Add(1)
		go func(update tgbotapi.Update) {
			defer t.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					t.logger.Errorw("Recovered from panic while processing update", "error", r)
				}
			}()

			switch {
			case update.Message != nil:
				if !t.authorize(update.Message.Chat.ID) {
					return
				}
				if update.Message.IsCommand() {
					t.handleCommand(update.Message)
				} else {
					t.handleMessage(update.Message)
				}
			case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
				if !t.authorize(update.CallbackQuery.Message.Chat.ID) {
					return
				}
				t.handleCallbackQuery(update.CallbackQuery)
			}
		}(update)
	}
}

// authorize refuses every chat but the owner's.
func (t *TelegramBot) authorize(chatID int64) bool {
	if chatID == t.ownerID {
		return true
	}
	t.logger.Warnw("Rejected update from unknown chat", "chat_id", chatID)
	t.sendText(chatID, fmt.Sprintf("This bot is private. Your chat ID is %d.", chatID))
	return false
}

// PushAdvice sends freshly generated advice to the owner.
func (t *TelegramBot) PushAdvice(text string) {
	t.sendHTML(t.ownerID, "💡 <b>Advice</b>\n\n"+toHTML(text), nil)
}

// Stop gracefully shuts down the bot
func (t *TelegramBot) Stop(ctx context.Context) error {
	t.bot.StopReceivingUpdates()
	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (t *TelegramBot) sendText(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		t.logger.Errorw("Failed to send message", "chat_id", chatID, "error", err)
	}
}

func (t *TelegramBot) sendHTML(chatID int64, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := t.bot.Send(msg); err != nil {
		t.logger.Errorw("Failed to send message", "chat_id", chatID, "error", err)
	}
}

func (t *TelegramBot) sendTyping(chatID int64) {
	if _, err := t.bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		t.logger.Debugw("Failed to send chat action", "error", err)
	}
}
