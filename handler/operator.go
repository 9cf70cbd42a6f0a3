package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"repairbot/archive"
	"repairbot/database"
	"repairbot/gateway"
	"repairbot/model"
	"repairbot/render"
	"repairbot/report"
	"repairbot/session"
	"repairbot/tool"
)

const (
	textActionFailed = "⚠️ Ошибка при обработке"
	textIDNotNumber  = "ID должен быть числом"
)

// Buttons of the statistics menu.
var periods = map[string]report.Period{
	"📊 Общая статистика": report.PeriodSummary,
	"📅 За текущий месяц": report.PeriodCurrentMonth,
	"📅 За прошлый месяц": report.PeriodPreviousMonth,
	"📆 За все время":     report.PeriodAllTime,
}

// client resolves the chat that filed req. The in-memory map wins; the stored
// chat id covers requests filed before a restart.
func (h *Handler) client(req *model.Request) (int64, bool) {
	if chatID, ok := h.Sessions.Owner(req.ID); ok {
		return chatID, true
	}
	if req.ChatID.Valid {
		return req.ChatID.Int64, true
	}
	return 0, false
}

// Accept marks the request accepted and hands the client a receipt. The
// status stays changed even when the receipt cannot be delivered.
func (h *Handler) Accept(ctx context.Context, ev gateway.Event, id int) error {
	req, err := h.DB.GetRequest(ctx, id)
	if tool.IsNotFound(err) {
		return h.answer(ev, "Заявка не найдена", false)
	}
	if err != nil {
		_ = h.answer(ev, textActionFailed, false)
		return errors.Wrapf(err, "cannot get request %d", id)
	}

	if err := h.DB.UpdateRequestField(ctx, id, database.ColumnStatus, string(model.StatusAccepted)); err != nil {
		_ = h.answer(ev, textActionFailed, false)
		return errors.Wrapf(err, "cannot accept request %d", id)
	}
	req.Status = model.StatusAccepted

	receipt, err := h.Renderer.Receipt(req)
	if err != nil {
		_ = h.answer(ev, textActionFailed, false)
		return errors.Wrapf(err, "cannot render receipt %d", id)
	}

	name := render.ReceiptName(id)
	if _, err := h.Archive.Put(archive.DirReceipts, name, receipt); err != nil {
		h.log(ctx).WithError(err).Warn("cannot keep receipt")
	}

	if chatID, ok := h.client(req); ok {
		caption := fmt.Sprintf(
			"✅ Ваша заявка принята!\n"+
				"📄 Вот квитанция о приеме устройства в ремонт.\n"+
				"🆔 Номер вашей заявки: %d\n\n"+
				"После диагностики мастер свяжется с вами для согласования стоимости ремонта.",
			id,
		)
		if err := h.Gateway.SendDocument(chatID, receipt, name, caption); err != nil {
			_ = h.answer(ev, textActionFailed, false)
			return errors.Wrapf(err, "cannot send receipt %d", id)
		}
	}

	return h.answer(ev, "✅ Заявка принята", false)
}

func (h *Handler) Reject(ctx context.Context, ev gateway.Event, id int) error {
	req, err := h.DB.GetRequest(ctx, id)
	if tool.IsNotFound(err) {
		return h.answer(ev, "Заявка не найдена", false)
	}
	if err != nil {
		_ = h.answer(ev, textActionFailed, false)
		return errors.Wrapf(err, "cannot get request %d", id)
	}

	if err := h.DB.UpdateRequestField(ctx, id, database.ColumnStatus, string(model.StatusRejected)); err != nil {
		_ = h.answer(ev, textActionFailed, false)
		return errors.Wrapf(err, "cannot reject request %d", id)
	}

	if chatID, ok := h.client(req); ok {
		text := fmt.Sprintf("❌ Ваша заявка №%d отклонена.\n\nПо всем вопросам обращайтесь к мастеру.", id)
		if err := h.send(chatID, text, nil); err != nil {
			h.log(ctx).WithError(err).Error("cannot notify client")
		}
	}

	return h.answer(ev, "❌ Заявка отклонена", false)
}

// SetStatus handles /setstatus <id> and offers the known statuses.
func (h *Handler) SetStatus(ctx context.Context, ev gateway.Event) error {
	if !h.isOperator(ev) {
		return nil
	}

	args := strings.Fields(ev.Args)
	if len(args) < 1 {
		return h.send(ev.ChatID, "Используйте: /setstatus [ID]", nil)
	}

	id, err := tool.ParseID(args[0])
	if err != nil {
		return h.send(ev.ChatID, textIDNotNumber, nil)
	}

	sess, err := h.Sessions.Begin(ctx, ev.ChatID, session.EventSetStatus)
	if err != nil {
		return err
	}
	sess.TargetID = id

	statuses := make([]string, 0, len(model.OperatorStatuses))
	for _, s := range model.OperatorStatuses {
		statuses = append(statuses, s.String())
	}

	return h.send(ev.ChatID, "Выберите статус:", gateway.Reply(statuses))
}

// ApplyStatus stores the status the operator picked or typed, verbatim.
func (h *Handler) ApplyStatus(ctx context.Context, ev gateway.Event, sess *session.Session) error {
	h.Sessions.End(ev.ChatID)
	if !h.isOperator(ev) {
		return nil
	}

	id := sess.TargetID
	status := model.Status(ev.Text)

	req, err := h.DB.GetRequest(ctx, id)
	if err == nil {
		err = h.DB.UpdateRequestField(ctx, id, database.ColumnStatus, ev.Text)
	}
	if tool.IsNotFound(err) {
		return h.send(ev.ChatID, fmt.Sprintf("Заявка #%d не найдена", id), mainMenu())
	}
	if err != nil {
		return tool.NewHRError("Произошла ошибка", errors.Wrapf(err, "cannot set status of %d", id))
	}

	if !status.Known() {
		h.log(ctx).WithField("status", status).Info("custom status set")
	}

	if err := h.send(ev.ChatID, fmt.Sprintf("#%d => %s", id, status), mainMenu()); err != nil {
		return err
	}

	if status != model.StatusDone {
		return nil
	}
	if chatID, ok := h.client(req); ok {
		note := "🟢 Ваше устройство готово." + costNote(req.Cost, "Свяжитесь с мастером чтоб забрать устройство.")
		if err := h.send(chatID, note, nil); err != nil {
			h.log(ctx).WithError(err).Error("cannot notify client")
		}
	}

	return nil
}

// SetCost handles /money <id> <cost>. Cost is stored as typed.
func (h *Handler) SetCost(ctx context.Context, ev gateway.Event) error {
	if !h.isOperator(ev) {
		return nil
	}

	args := strings.Fields(ev.Args)
	if len(args) < 2 {
		return h.send(ev.ChatID, "Используйте: /money [ID] [стоимость]", nil)
	}

	id, err := tool.ParseID(args[0])
	if err != nil {
		return h.send(ev.ChatID, textIDNotNumber, nil)
	}
	cost := args[1]

	err = h.DB.UpdateRequestField(ctx, id, database.ColumnCost, cost)
	if tool.IsNotFound(err) {
		return h.send(ev.ChatID, fmt.Sprintf("Заявка #%d не найдена", id), nil)
	}
	if err != nil {
		return tool.NewHRError("Произошла ошибка", errors.Wrapf(err, "cannot set cost of %d", id))
	}

	return h.send(ev.ChatID, fmt.Sprintf("Стоимость #%d установлена: %s", id, cost), nil)
}

// Stats handles /mystat and offers the report periods.
func (h *Handler) Stats(ctx context.Context, ev gateway.Event) error {
	if !h.isOperator(ev) {
		return nil
	}

	if _, err := h.Sessions.Begin(ctx, ev.ChatID, session.EventStats); err != nil {
		return tool.NewHRError("Не удалось загрузить статистику", err)
	}

	kb := gateway.Reply(
		gateway.Row("📊 Общая статистика"),
		gateway.Row("📅 За текущий месяц", "📅 За прошлый месяц"),
		gateway.Row("📆 За все время", btnBack),
	)

	return h.send(ev.ChatID, "Выберите период для статистики:", kb)
}

// Report sends the report for the period picked from the statistics menu.
// Anything else is ignored.
func (h *Handler) Report(ctx context.Context, ev gateway.Event) error {
	if ev.Text == btnBack {
		return h.back(ev)
	}

	period, ok := periods[ev.Text]
	if !ok {
		return nil
	}

	h.Sessions.End(ev.ChatID)

	reqs, err := h.DB.SelectRequests(ctx)
	if err != nil {
		return tool.NewHRError(
			"Произошла ошибка при формировании отчета. Убедитесь, что данные в таблице корректны.",
			errors.Wrap(err, "cannot select requests"),
		)
	}

	return h.send(ev.ChatID, report.Build(period, reqs, h.Now()), mainMenu())
}
