package handler

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"repairbot/archive"
	"repairbot/gateway"
	"repairbot/metrics"
	"repairbot/model"
	"repairbot/render"
	"repairbot/session"
	"repairbot/tool"
)

var phonePattern = regexp.MustCompile(`^\+7\d{10}$`)

// prompts asks for the value of each form step.
var prompts = map[session.State]string{
	session.StateDeviceType:  "Укажите тип устройства:",
	session.StateDeviceModel: "Укажите модель устройства:",
	session.StateProblem:     "Опишите неисправность:",
	session.StateComment:     "Комментарий (или '-' если нет):",
	session.StateName:        "Ваше имя:",
	session.StatePhone:       "Телефон (+7XXXXXXXXXX):",
	session.StatePhoto:       "Пришлите фото устройства или /skip:",
}

const (
	textFiled = "✅ Ваша заявка отправлена!\n\n" +
		"📲 Свяжитесь с мастером и договоритесь о встрече:\n" +
		"🛵 Передайте устройство мастеру, он подтвердит заявку\n" +
		"📄 Вы получите квитанцию о приёме после осмотра"
	textFileFailed = "Ошибка при сохранении заявки. Пожалуйста, попробуйте позже."
)

// Apply starts a new request form, dropping any dialogue in progress.
func (h *Handler) Apply(ctx context.Context, ev gateway.Event) error {
	sess, err := h.Sessions.Begin(ctx, ev.ChatID, session.EventApply)
	if err != nil {
		return tool.NewHRError(
			"Ошибка при создании заявки. Пожалуйста, попробуйте позже.",
			errors.Wrap(err, "cannot start application"),
		)
	}
	sess.Draft = model.NewApplication(ev.ChatID, h.Now())

	return h.send(ev.ChatID, prompts[session.StateDeviceType], backMenu())
}

// Fill stores the answer to a text step of the form and asks the next one.
func (h *Handler) Fill(ctx context.Context, ev gateway.Event, sess *session.Session) error {
	state := sess.State()
	text := ev.Text

	if state == session.StateDeviceType && text == btnBack {
		return h.back(ev)
	}
	if ev.Kind == gateway.KindImage || strings.TrimSpace(text) == "" {
		return h.send(ev.ChatID, prompts[state], nil)
	}

	d := sess.Draft
	switch state {
	case session.StateDeviceType:
		d.DeviceType = text
	case session.StateDeviceModel:
		d.DeviceModel = text
	case session.StateProblem:
		d.Problem = text
	case session.StateComment:
		if text == "-" {
			text = ""
		}
		d.Comment = text
	case session.StateName:
		d.Name = text
	case session.StatePhone:
		if !phonePattern.MatchString(text) {
			return h.send(ev.ChatID, "Неверный формат. Введите +7XXXXXXXXXX", nil)
		}
		d.Phone = text
	}

	if err := sess.Advance(ctx); err != nil {
		return err
	}

	return h.send(ev.ChatID, prompts[sess.State()], nil)
}

// Photo takes the device photo or /skip.
func (h *Handler) Photo(ctx context.Context, ev gateway.Event, sess *session.Session) error {
	switch {
	case ev.Kind == gateway.KindCommand && ev.Command == "skip":
	case ev.Kind == gateway.KindImage:
		path, err := h.savePhoto(ev)
		if err != nil {
			h.log(ctx).WithError(err).Error("cannot save photo")
			return h.send(ev.ChatID, "Не удалось загрузить фото. Попробуйте еще раз или используйте /skip", nil)
		}
		sess.Draft.Photo = path
	default:
		return h.send(ev.ChatID, prompts[session.StatePhoto], nil)
	}

	if err := sess.Advance(ctx); err != nil {
		return err
	}

	return h.showPreview(sess)
}

func (h *Handler) savePhoto(ev gateway.Event) (string, error) {
	data, err := h.Gateway.Download(ev.FileID)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("%d_%s.jpg", ev.ChatID, h.Now().Format("20060102150405"))
	return h.Archive.Put(archive.DirPhotos, name, data)
}

func previewText(d *model.Application) string {
	comment := d.Comment
	if comment == "" {
		comment = "-"
	}

	return fmt.Sprintf(
		"Проверьте данные:\n"+
			"🔌 Устройство: %s\n"+
			"ℹ️ Модель: %s\n"+
			"⚙️ Неисправность: %s\n"+
			"📝 Комментарий: %s\n"+
			"👤 Имя: %s\n"+
			"📞 Телефон: %s\n"+
			"📅 Дата: %s\n"+
			"Отправить заявку? (да/нет)",
		d.DeviceType, d.DeviceModel, d.Problem, comment, d.Name, d.Phone, d.Date,
	)
}

func (h *Handler) showPreview(sess *session.Session) error {
	text := previewText(sess.Draft)
	kb := gateway.Reply(gateway.Row("да", "нет"))

	err := h.sendWithPhoto(sess.ChatID, sess.Draft.Photo, text, kb)
	if err != nil {
		return tool.NewHRError(
			"Ошибка при отображении предпросмотра. Пожалуйста, начните заново.",
			err,
		)
	}

	return nil
}

// sendWithPhoto sends text as the caption of the photo at path, or alone when
// there is no photo or it cannot be read.
func (h *Handler) sendWithPhoto(chatID int64, path, text string, kb *gateway.Keyboard) error {
	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			if err := h.Gateway.SendImage(chatID, data, text, kb); err != nil {
				return errors.Wrap(err, "cannot send photo")
			}
			return nil
		}
	}

	return h.send(chatID, text, kb)
}

// Preview waits for the client to confirm the form.
func (h *Handler) Preview(ctx context.Context, ev gateway.Event, sess *session.Session) error {
	switch strings.ToLower(strings.TrimSpace(ev.Text)) {
	case "нет":
		h.Sessions.End(ev.ChatID)
		return h.send(ev.ChatID, "Отмена.", mainMenu())
	case "да":
		return h.confirm(ctx, sess)
	}

	return h.Fallback(ctx, ev)
}

// confirm files the draft. The session ends whatever happens.
func (h *Handler) confirm(ctx context.Context, sess *session.Session) error {
	defer h.Sessions.End(sess.ChatID)

	app := sess.Draft
	last, err := h.DB.LastRequestID(ctx)
	if err != nil {
		h.log(ctx).WithError(err).Error("cannot read last request id")
		last = 0
	}
	app.ID = last + 1

	h.Sessions.RememberOwner(app.ID, app.ChatID)

	req := app.Request()
	if err := h.DB.InsertRequest(ctx, req); err != nil {
		metrics.RequestsFiled.WithLabelValues("error").Inc()
		return tool.NewHRError(textFileFailed, errors.Wrapf(err, "cannot insert request %d", app.ID))
	}
	metrics.RequestsFiled.WithLabelValues("ok").Inc()

	h.notifyOperator(ctx, req)

	return h.send(app.ChatID, textFiled, mainMenu())
}

// notifyOperator tells the operator about a new request and sends its sticker.
// Failures are logged; the request is already stored.
func (h *Handler) notifyOperator(ctx context.Context, req *model.Request) {
	logger := h.log(ctx).WithField("request_id", req.ID)

	text := fmt.Sprintf(
		"🔔 Новая заявка #%d\n"+
			"🔌 Устройство: %s\n"+
			"⚙️ Проблема: %s\n"+
			"👤 Имя: %s\n"+
			"📞 Телефон: %s",
		req.ID, req.DeviceType, req.Problem, req.Name, req.Phone,
	)
	kb := gateway.Inline(gateway.ButtonRow(
		gateway.Button{Text: "✅ Принять", Data: fmt.Sprintf("accept_%d", req.ID)},
		gateway.Button{Text: "❌ Отказать", Data: fmt.Sprintf("reject_%d", req.ID)},
	))

	if err := h.sendWithPhoto(h.operatorChat(), req.Photo, text, kb); err != nil {
		logger.WithError(err).Error("cannot notify operator")
		return
	}

	sticker, err := h.Renderer.Sticker(req, h.Config.Storage.PublicURL)
	if err != nil {
		logger.WithError(err).Error("cannot render sticker")
		if err := h.send(h.operatorChat(), fmt.Sprintf("⚠️ Не удалось создать стикер для заявки #%d", req.ID), nil); err != nil {
			logger.WithError(err).Error("cannot notify operator")
		}
		return
	}

	name := render.StickerName(req.ID)
	if _, err := h.Archive.Put(archive.DirStickers, name, sticker); err != nil {
		logger.WithError(err).Warn("cannot keep sticker")
	}

	if err := h.Gateway.SendDocument(h.operatorChat(), sticker, name, fmt.Sprintf("Стикер #%d", req.ID)); err != nil {
		logger.WithError(err).Error("cannot send sticker")
	}
}

func (h *Handler) CheckStatus(ctx context.Context, ev gateway.Event) error {
	if _, err := h.Sessions.Begin(ctx, ev.ChatID, session.EventCheck); err != nil {
		return err
	}
	return h.send(ev.ChatID, "Введите ID заявки:", backMenu())
}

// Lookup answers the status of the request id typed by a client.
func (h *Handler) Lookup(ctx context.Context, ev gateway.Event) error {
	if ev.Text == btnBack {
		return h.back(ev)
	}

	id, err := tool.ParseID(ev.Text)
	if err != nil {
		return h.send(ev.ChatID, `ID должен быть числом. Попробуйте еще раз или нажмите "🔙 Назад"`, nil)
	}

	h.Sessions.End(ev.ChatID)

	req, err := h.DB.GetRequest(ctx, id)
	if tool.IsNotFound(err) {
		return h.send(ev.ChatID, "ID не найден.", mainMenu())
	}
	if err != nil {
		return tool.NewHRError("Произошла ошибка. Попробуйте позже.", errors.Wrap(err, "cannot get request"))
	}

	text := req.Status.Icon() + req.Status.String()
	if req.Status == model.StatusDone {
		text += costNote(req.Cost, "Свяжитесь с мастером.")
	}

	return h.send(ev.ChatID, text, mainMenu())
}

func (h *Handler) ContactMaster(ctx context.Context, ev gateway.Event) error {
	phone := h.Config.Telegram.OperatorPhone
	kb := gateway.Inline(
		gateway.ButtonRow(gateway.Button{Text: "📞 Позвонить", Data: "call_" + phone}),
		gateway.ButtonRow(
			gateway.Button{Text: "✉️ Telegram", URL: fmt.Sprintf("tg://user?id=%d", h.Config.Telegram.OperatorID)},
			gateway.Button{Text: "💬 WhatsApp", URL: "https://wa.me/" + strings.TrimPrefix(phone, "+")},
		),
	)

	return h.send(ev.ChatID, "⌛ Режим работы: Пн-Сб 10:00-20:00", kb)
}

// Call shows the operator's phone in an alert.
func (h *Handler) Call(ctx context.Context, ev gateway.Event) error {
	phone := strings.TrimPrefix(ev.Data, "call_")
	return h.answer(ev, "Телефон мастера: "+tool.FormatPhone(phone), true)
}

func (h *Handler) Channel(ctx context.Context, ev gateway.Event) error {
	return h.send(ev.ChatID, "Наш канал: "+h.Config.Telegram.Channel, nil)
}
