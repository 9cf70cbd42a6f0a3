package gateway

import (
	"io"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/pkg/errors"
)

// Telegram sends through the Bot API.
type Telegram struct {
	Bot *tgbotapi.BotAPI
}

// NewTelegram authorizes the bot. Every API call, long polling included, is
// bounded by client's timeout.
func NewTelegram(token string, client *http.Client) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, client)
	if err != nil {
		return nil, errors.Wrap(err, "cannot authorize bot")
	}

	return &Telegram{Bot: bot}, nil
}

func (t *Telegram) SendText(chatID int64, text string, kb *Keyboard) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if kb != nil {
		msg.ReplyMarkup = markup(kb)
	}

	if _, err := t.Bot.Send(msg); err != nil {
		return errors.Wrap(err, "cannot send message")
	}

	return nil
}

func (t *Telegram) SendImage(chatID int64, data []byte, caption string, kb *Keyboard) error {
	msg := tgbotapi.NewPhotoUpload(chatID, tgbotapi.FileBytes{
		Name:  "photo.jpg",
		Bytes: data,
	})
	msg.Caption = caption
	if kb != nil {
		msg.ReplyMarkup = markup(kb)
	}

	if _, err := t.Bot.Send(msg); err != nil {
		return errors.Wrap(err, "cannot send photo")
	}

	return nil
}

func (t *Telegram) SendDocument(chatID int64, data []byte, filename, caption string) error {
	msg := tgbotapi.NewDocumentUpload(chatID, tgbotapi.FileBytes{
		Name:  filename,
		Bytes: data,
	})
	msg.Caption = caption

	if _, err := t.Bot.Send(msg); err != nil {
		return errors.Wrap(err, "cannot send document")
	}

	return nil
}

func (t *Telegram) AnswerAction(actionID, text string, alert bool) error {
	cb := tgbotapi.NewCallback(actionID, text)
	cb.ShowAlert = alert

	if _, err := t.Bot.AnswerCallbackQuery(cb); err != nil {
		return errors.Wrap(err, "cannot answer callback query")
	}

	return nil
}

func (t *Telegram) Download(fileID string) ([]byte, error) {
	link, err := t.Bot.GetFileDirectURL(fileID)
	if err != nil {
		return nil, errors.Wrap(err, "cannot get file link")
	}

	resp, err := t.Bot.Client.Get(link)
	if err != nil {
		return nil, errors.Wrap(err, "cannot download file")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("cannot download file: %s", resp.Status)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read file")
	}

	return b, nil
}

// Updates starts long polling.
func (t *Telegram) Updates(timeout int) (tgbotapi.UpdatesChannel, error) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeout

	return t.Bot.GetUpdatesChan(u)
}

func markup(kb *Keyboard) interface{} {
	if kb.Inline {
		rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb.Rows))
		for _, row := range kb.Rows {
			buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
			for _, b := range row {
				if b.URL != "" {
					buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(b.Text, b.URL))
				} else {
					buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
				}
			}
			rows = append(rows, buttons)
		}
		return tgbotapi.NewInlineKeyboardMarkup(rows...)
	}

	rows := make([][]tgbotapi.KeyboardButton, 0, len(kb.Rows))
	for _, row := range kb.Rows {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(b.Text))
		}
		rows = append(rows, buttons)
	}
	reply := tgbotapi.NewReplyKeyboard(rows...)
	reply.ResizeKeyboard = true

	return reply
}

// EventFromUpdate reports false for updates the bot does not handle.
func EventFromUpdate(u tgbotapi.Update) (Event, bool) {
	if cq := u.CallbackQuery; cq != nil {
		if cq.From == nil {
			return Event{}, false
		}
		ev := Event{
			ID:     cq.ID,
			UserID: cq.From.ID,
			ChatID: int64(cq.From.ID),
			Kind:   KindButton,
			Data:   cq.Data,
		}
		if cq.Message != nil && cq.Message.Chat != nil {
			ev.ChatID = cq.Message.Chat.ID
		}
		return ev, true
	}

	m := u.Message
	if m == nil || m.Chat == nil || m.From == nil {
		return Event{}, false
	}

	ev := Event{
		UserID: m.From.ID,
		ChatID: m.Chat.ID,
		Text:   m.Text,
	}

	switch {
	case m.Photo != nil && len(*m.Photo) > 0:
		photos := *m.Photo
		ev.Kind = KindImage
		ev.FileID = photos[len(photos)-1].FileID
		ev.Text = m.Caption
	case m.IsCommand():
		ev.Kind = KindCommand
		ev.Command = m.Command()
		ev.Args = m.CommandArguments()
	case m.Text != "":
		ev.Kind = KindText
	default:
		return Event{}, false
	}

	return ev, true
}
