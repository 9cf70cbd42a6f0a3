package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"repairbot/archive"
	"repairbot/config"
	"repairbot/database"
	"repairbot/gateway"
	"repairbot/metrics"
	"repairbot/render"
	"repairbot/session"
	"repairbot/tool"
)

// Main menu and navigation buttons.
const (
	btnApply   = "📝 Оставить заявку"
	btnStatus  = "📊 Узнать статус"
	btnContact = "📞 Связаться с мастером"
	btnChannel = "📢 Наш Telegram-канал"
	btnBack    = "🔙 Назад"
)

const textGenericError = "Произошла ошибка. Пожалуйста, попробуйте позже."

func mainMenu() *gateway.Keyboard {
	return gateway.Reply(
		gateway.Row(btnApply, btnStatus),
		gateway.Row(btnContact, btnChannel),
	)
}

func backMenu() *gateway.Keyboard {
	return gateway.Reply(gateway.Row(btnBack))
}

type Handler struct {
	DB       database.IDatabase
	Gateway  gateway.Gateway
	Renderer render.Renderer
	Archive  archive.Sink
	Sessions *session.Store
	Logger   logrus.FieldLogger
	Config   *config.Config

	Now func() time.Time
}

func NewHandler(
	db database.IDatabase,
	gw gateway.Gateway,
	renderer render.Renderer,
	sink archive.Sink,
	sessions *session.Store,
	logger logrus.FieldLogger,
	conf *config.Config,
) *Handler {
	return &Handler{
		DB:       db,
		Gateway:  gw,
		Renderer: renderer,
		Archive:  sink,
		Sessions: sessions,
		Logger:   logger,
		Config:   conf,
		Now:      time.Now,
	}
}

type loggerKey struct{}

// log returns the event-scoped logger carried by ctx.
func (h *Handler) log(ctx context.Context) logrus.FieldLogger {
	if l, ok := ctx.Value(loggerKey{}).(logrus.FieldLogger); ok {
		return l
	}
	return h.Logger
}

func (h *Handler) operatorChat() int64 {
	return int64(h.Config.Telegram.OperatorID)
}

func (h *Handler) isOperator(ev gateway.Event) bool {
	return ev.UserID == h.Config.Telegram.OperatorID
}

// Dispatch handles one event. Events of the same chat are handled one at a
// time; nothing escapes to the caller, panics included.
func (h *Handler) Dispatch(ctx context.Context, ev gateway.Event) {
	unlock := h.Sessions.Lock(ev.ChatID)
	defer unlock()

	logger := h.Logger.WithFields(logrus.Fields{
		"trace_id": uuid.NewString(),
		"chat_id":  ev.ChatID,
		"user_id":  ev.UserID,
		"kind":     ev.Kind.String(),
	})
	ctx = context.WithValue(ctx, loggerKey{}, logger)

	metrics.Events.WithLabelValues(ev.Kind.String()).Inc()

	defer func() {
		if r := recover(); r != nil {
			h.handleError(ctx, ev, errors.Errorf("panic: %v", r))
		}
	}()

	if err := h.route(ctx, ev); err != nil {
		h.handleError(ctx, ev, err)
	}
}

func (h *Handler) handleError(ctx context.Context, ev gateway.Event, err error) {
	metrics.HandlerErrors.Inc()
	h.log(ctx).WithError(err).Error("cannot handle event")

	// Button presses are answered by their handlers.
	if ev.Kind == gateway.KindButton {
		return
	}

	h.Sessions.End(ev.ChatID)

	human := textGenericError
	if hrerr, ok := err.(tool.HumanReadableError); ok {
		human = hrerr.Human()
	}

	if err := h.Gateway.SendText(ev.ChatID, human, mainMenu()); err != nil {
		h.log(ctx).WithError(err).Error("cannot send message with human readable error")
	}
}

// route picks the handler for ev. Buttons and commands come first, then the
// main menu, then whatever the chat's session expects.
func (h *Handler) route(ctx context.Context, ev gateway.Event) error {
	if ev.Kind == gateway.KindButton {
		return h.Button(ctx, ev)
	}

	if ev.Kind == gateway.KindCommand {
		switch ev.Command {
		case "start":
			return h.Start(ctx, ev)
		case "setstatus":
			return h.SetStatus(ctx, ev)
		case "money":
			return h.SetCost(ctx, ev)
		case "mystat":
			return h.Stats(ctx, ev)
		}
	}

	if ev.Kind == gateway.KindText {
		switch ev.Text {
		case btnApply:
			return h.Apply(ctx, ev)
		case btnStatus:
			return h.CheckStatus(ctx, ev)
		case btnContact:
			return h.ContactMaster(ctx, ev)
		case btnChannel:
			return h.Channel(ctx, ev)
		}
	}

	sess, ok := h.Sessions.Get(ev.ChatID)
	if !ok {
		return h.Fallback(ctx, ev)
	}

	switch sess.State() {
	case session.StateDeviceType, session.StateDeviceModel, session.StateProblem,
		session.StateComment, session.StateName, session.StatePhone:
		return h.Fill(ctx, ev, sess)
	case session.StatePhoto:
		return h.Photo(ctx, ev, sess)
	case session.StatePreview:
		return h.Preview(ctx, ev, sess)
	case session.StateCheckStatus:
		return h.Lookup(ctx, ev)
	case session.StateSetStatus:
		return h.ApplyStatus(ctx, ev, sess)
	case session.StateStatPeriod:
		return h.Report(ctx, ev)
	}

	return h.Fallback(ctx, ev)
}

// Button handles inline button presses.
func (h *Handler) Button(ctx context.Context, ev gateway.Event) error {
	action, _, _ := strings.Cut(ev.Data, "_")
	switch action {
	case "call":
		return h.Call(ctx, ev)
	case "accept", "reject":
		if !h.isOperator(ev) {
			return h.answer(ev, "", false)
		}

		id, err := tool.SuffixID(ev.Data)
		if err != nil {
			_ = h.answer(ev, "⚠️ Ошибка при обработке", false)
			return err
		}
		if action == "accept" {
			return h.Accept(ctx, ev, id)
		}
		return h.Reject(ctx, ev, id)
	}

	return h.answer(ev, "", false)
}

func (h *Handler) Start(ctx context.Context, ev gateway.Event) error {
	h.Sessions.End(ev.ChatID)
	return h.send(ev.ChatID, "Добро пожаловать в RoboFix! Выберите действие:", mainMenu())
}

func (h *Handler) Fallback(ctx context.Context, ev gateway.Event) error {
	return h.send(ev.ChatID, "Пожалуйста, выберите действие:", mainMenu())
}

// back ends the chat's session and returns to the main menu.
func (h *Handler) back(ev gateway.Event) error {
	h.Sessions.End(ev.ChatID)
	return h.send(ev.ChatID, "Возвращаемся в главное меню", mainMenu())
}

func (h *Handler) send(chatID int64, text string, kb *gateway.Keyboard) error {
	if err := h.Gateway.SendText(chatID, text, kb); err != nil {
		return errors.Wrap(err, "cannot send message")
	}
	return nil
}

func (h *Handler) answer(ev gateway.Event, text string, alert bool) error {
	if err := h.Gateway.AnswerAction(ev.ID, text, alert); err != nil {
		return errors.Wrap(err, "cannot answer button")
	}
	return nil
}

func costNote(cost, suffix string) string {
	if cost == "" {
		return ""
	}
	return fmt.Sprintf("\nК оплате: %s руб. %s", cost, suffix)
}
