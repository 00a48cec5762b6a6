package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"nutrivision/internal/models"
	"nutrivision/internal/tracker"
)

const (
	cbMealPrefix = "meal:"
	cbUseGuess   = "guess"
	cbCancel     = "cancel"
	cbClearYes   = "clear:yes"
	cbClearNo    = "clear:no"
)

const helpText = `<b>NutriVision</b>
Send me a photo of your meal and I will identify it, estimate its nutrition and add it to your log.

/profile - set up your profile (needed before logging meals)
/meal - choose the meal type for the next photo
/history - meals by day
/advice - latest coaching advice
/clear - delete all logged meals

Tip: a photo caption like "Dinner" sets the meal type for that photo.`

// handleCommand processes bot commands
func (t *TelegramBot) handleCommand(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	command := message.Command()
	t.logger.Infow("Handling command", "command", command)

	if command != "profile" {
		t.stateMutex.Lock()
		t.wizard = nil
		t.stateMutex.Unlock()
	}

	switch command {
	case "start", "help":
		t.sendHTML(chatID, helpText, nil)
		if command == "start" && t.tracker.Profile() == nil {
			t.startWizard(chatID)
		}

	case "profile":
		t.sendHTML(chatID, formatProfile(t.tracker.Profile(), t.tracker.Calculations()), nil)
		if message.CommandArguments() != "show" {
			t.startWizard(chatID)
		}

	case "meal":
		t.stateMutex.Lock()
		current := t.mealType
		t.stateMutex.Unlock()
		t.sendHTML(chatID, fmt.Sprintf("Next photo will be logged as <b>%s</b>. Change it:", current), mealTypeKeyboard())

	case "history":
		t.sendHTML(chatID, formatHistory(t.tracker.History(time.Now())), nil)

	case "advice":
		text, fetching := t.tracker.Advice()
		switch {
		case fetching:
			t.sendText(chatID, "Thinking about your advice, it will arrive shortly.")
		case text == "":
			t.sendText(chatID, "No advice yet. Log a meal and set up your profile first.")
		default:
			t.PushAdvice(text)
		}

	case "clear":
		markup := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Yes, delete everything", cbClearYes),
			tgbotapi.NewInlineKeyboardButtonData("No", cbClearNo),
		))
		t.sendHTML(chatID, "Delete <b>all</b> logged meals? This cannot be undone.", markup)

	case "cancel":
		if t.tracker.CancelPending() {
			t.sendText(chatID, "Cancelled.")
		} else {
			t.sendText(chatID, "Nothing to cancel.")
		}

	default:
		t.sendText(chatID, "Unknown command. Use /help to see what I can do.")
	}
}

// handleMessage processes photos, wizard answers and food names.
func (t *TelegramBot) handleMessage(message *tgbotapi.Message) {
	chatID := message.Chat.ID

	if len(message.Photo) > 0 || message.Document != nil {
		t.handleUpload(message)
		return
	}

	text := strings.TrimSpace(message.Text)

	if t.continueWizard(chatID, text) {
		return
	}

	if t.tracker.Pending() != nil {
		t.confirm(chatID, text)
		return
	}

	t.sendText(chatID, "Send me a photo of your meal, or use /help.")
}

// handleCallbackQuery processes callback queries from inline keyboards
func (t *TelegramBot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	chatID := query.Message.Chat.ID
	data := query.Data
	t.logger.Infow("Received callback query", "data", data)

	if _, err := t.bot.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		t.logger.Debugw("Failed to answer callback", "error", err)
	}

	switch {
	case strings.HasPrefix(data, cbMealPrefix):
		mt, err := models.ParseMealType(strings.TrimPrefix(data, cbMealPrefix))
		if err != nil {
			return
		}
		t.stateMutex.Lock()
		t.mealType = mt
		t.stateMutex.Unlock()
		t.editText(query.Message, fmt.Sprintf("Next photo will be logged as <b>%s</b>.", mt))

	case data == cbUseGuess:
		p := t.tracker.Pending()
		if p == nil {
			t.sendText(chatID, tracker.UserMessage(tracker.ErrNoPending))
			return
		}
		t.confirm(chatID, p.Guess)

	case data == cbCancel:
		if t.tracker.CancelPending() {
			t.editText(query.Message, "Cancelled. Send another photo whenever you like.")
		}

	case data == cbClearYes:
		if err := t.tracker.ClearMeals(t.ctx); err != nil {
			t.sendText(chatID, tracker.UserMessage(err))
			return
		}
		t.editText(query.Message, "All meals deleted.")

	case data == cbClearNo:
		t.editText(query.Message, "Kept your meals.")
	}
}

func (t *TelegramBot) startWizard(chatID int64) {
	w := newProfileWizard()
	t.stateMutex.Lock()
	t.wizard = w
	prompt, options := w.Prompt()
	t.stateMutex.Unlock()
	t.ask(chatID, prompt, options)
}

func (t *TelegramBot) ask(chatID int64, prompt string, options []string) {
	var markup interface{} = tgbotapi.NewRemoveKeyboard(true)
	if len(options) > 0 {
		markup = replyKeyboard(options)
	}
	t.sendHTML(chatID, prompt, markup)
}

// continueWizard feeds text to a running profile wizard. It reports false
// when no wizard is running.
func (t *TelegramBot) continueWizard(chatID int64, text string) bool {
	t.stateMutex.Lock()
	w := t.wizard
	if w == nil {
		t.stateMutex.Unlock()
		return false
	}
	done, err := w.Answer(text)
	prompt, options := w.Prompt()
	if done {
		t.wizard = nil
	}
	t.stateMutex.Unlock()

	if err != nil {
		t.sendText(chatID, err.Error())
	}
	if !done {
		t.ask(chatID, prompt, options)
		return true
	}

	p := w.Profile()
	if err := t.tracker.SetProfile(t.ctx, &p); err != nil {
		t.logger.Errorw("Failed to save profile", "error", err)
		t.sendText(chatID, tracker.UserMessage(err))
		return true
	}
	t.sendHTML(chatID, "Profile saved.\n\n"+formatProfile(t.tracker.Profile(), t.tracker.Calculations()), tgbotapi.NewRemoveKeyboard(true))
	return true
}

func (t *TelegramBot) handleUpload(message *tgbotapi.Message) {
	chatID := message.Chat.ID

	fileID, size, ok := uploadFile(message)
	if !ok {
		t.sendText(chatID, models.ImageErrorMessage(models.ErrImageType))
		return
	}
	if size > models.MaxImageBytes {
		t.sendText(chatID, models.ImageErrorMessage(models.ErrImageTooLarge))
		return
	}

	t.stateMutex.Lock()
	mealType := t.mealType
	t.stateMutex.Unlock()
	if caption := strings.TrimSpace(message.Caption); caption != "" {
		if mt, err := models.ParseMealType(caption); err == nil {
			mealType = mt
		}
	}

	ctx, cancel := context.WithTimeout(t.ctx, analysisTimeout)
	defer cancel()

	data, err := t.downloadFile(ctx, fileID)
	if err != nil {
		t.logger.Errorw("Failed to download photo", "error", err)
		t.sendText(chatID, "Could not download the photo. Please try again.")
		return
	}
	img, err := models.NewImage(data)
	if err != nil {
		t.sendText(chatID, models.ImageErrorMessage(err))
		return
	}

	t.sendTyping(chatID)
	t.sendText(chatID, "🔎 Analyzing your meal...")

	out, err := t.tracker.AnalyzeImage(ctx, img, mealType)
	if err != nil {
		if errors.Is(err, tracker.ErrProfileRequired) {
			t.sendText(chatID, tracker.UserMessage(err))
			t.startWizard(chatID)
			return
		}
		t.sendText(chatID, tracker.UserMessage(err))
		return
	}

	if out.Pending != nil {
		t.sendHTML(chatID, formatPending(*out.Pending), pendingKeyboard(out.Pending.Guess))
		return
	}
	t.sendHTML(chatID, "✅ Added to your log\n\n"+formatMeal(*out.Meal), nil)
}

func (t *TelegramBot) confirm(chatID int64, name string) {
	ctx, cancel := context.WithTimeout(t.ctx, analysisTimeout)
	defer cancel()

	t.sendTyping(chatID)
	meal, err := t.tracker.ConfirmFood(ctx, name)
	if err != nil {
		var te *tracker.Error
		if p := t.tracker.Pending(); errors.As(err, &te) && p != nil {
			// still pending, so another name can be tried
			t.sendHTML(chatID, toHTML(te.UserMessage()), pendingKeyboard(p.Guess))
			return
		}
		t.sendText(chatID, tracker.UserMessage(err))
		return
	}
	t.sendHTML(chatID, "✅ Added to your log\n\n"+formatMeal(*meal), nil)
}

// uploadFile picks the largest photo size, or an image document.
func uploadFile(message *tgbotapi.Message) (string, int, bool) {
	if n := len(message.Photo); n > 0 {
		p := message.Photo[n-1]
		return p.FileID, p.FileSize, true
	}
	if d := message.Document; d != nil && isImageMIME(d.MimeType) {
		return d.FileID, d.FileSize, true
	}
	return "", 0, false
}

func isImageMIME(mime string) bool {
	switch strings.ToLower(mime) {
	case "image/jpeg", "image/jpg", "image/png":
		return true
	}
	return false
}

func (t *TelegramBot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	url, err := t.bot.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download file: status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, models.MaxImageBytes+1))
}

func (t *TelegramBot) editText(message *tgbotapi.Message, text string) {
	edit := tgbotapi.NewEditMessageText(message.Chat.ID, message.MessageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	if _, err := t.bot.Send(edit); err != nil {
		t.logger.Errorw("Failed to edit message", "error", err)
	}
}

func mealTypeKeyboard() tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(models.MealTypes))
	for _, mt := range models.MealTypes {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(string(mt), cbMealPrefix+string(mt)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func pendingKeyboard(guess string) tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	if guess != "" {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(truncate("Use: "+guess, 60), cbUseGuess))
	}
	row = append(row, tgbotapi.NewInlineKeyboardButtonData("Cancel", cbCancel))
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

// replyKeyboard lays long option lists out one per row.
func replyKeyboard(options []string) tgbotapi.ReplyKeyboardMarkup {
	perRow := 2
	if len(options) > 3 {
		perRow = 1
	}
	var rows [][]tgbotapi.KeyboardButton
	for i := 0; i < len(options); i += perRow {
		end := min(i+perRow, len(options))
		var row []tgbotapi.KeyboardButton
		for _, o := range options[i:end] {
			row = append(row, tgbotapi.NewKeyboardButton(o))
		}
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(row...))
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.OneTimeKeyboard = true
	return kb
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
