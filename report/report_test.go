package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"repairbot/model"
)

func req(date string, status model.Status, cost string) *model.Request {
	return &model.Request{Date: date, Status: status, Cost: cost}
}

func TestCompute(t *testing.T) {
	s := Compute([]*model.Request{
		req("2024-03-01 10:00:00", model.StatusDone, "100"),
		req("2024-03-02 10:00:00", model.StatusNew, "abc"),
		req("2024-03-03 10:00:00", model.StatusDone, "300"),
	})

	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 400, s.TotalCost)
	assert.Equal(t, 400, s.CompletedCost)
	assert.Equal(t, 200, s.AverageCost)
	assert.Equal(t, 2, s.Completed)
	assert.Equal(t, 67, s.CompletionRate)
	assert.Equal(t, map[string]int{"Готово": 2, "Новая": 1}, s.ByStatus)
}

func TestCompute_Empty(t *testing.T) {
	s := Compute(nil)

	assert.Equal(t, 0, s.Total)
	assert.Equal(t, 0, s.AverageCost)
	assert.Equal(t, 0, s.CompletionRate)
}

func TestCompute_NoNumericCosts(t *testing.T) {
	s := Compute([]*model.Request{
		req("2024-03-01", model.StatusNew, ""),
		req("2024-03-01", "", "-5"),
		req("2024-03-01", model.StatusNew, "1 000"),
	})

	assert.Equal(t, 0, s.TotalCost)
	assert.Equal(t, 0, s.AverageCost)
	assert.Equal(t, 1, s.ByStatus[NoStatus])
}

func TestCompute_StatusIsCaseSensitive(t *testing.T) {
	s := Compute([]*model.Request{
		req("2024-03-01", "готово", "10"),
		req("2024-03-01", model.StatusDone, "20"),
	})

	assert.Equal(t, 1, s.Completed)
	assert.Equal(t, 20, s.CompletedCost)
}

func TestInMonth_DateFormats(t *testing.T) {
	reqs := []*model.Request{
		req("2024-03-01 10:00:00", model.StatusNew, ""),
		req("01.03.2024 10:00", model.StatusNew, ""),
		req("2024-03-01", model.StatusNew, ""),
		req("garbage", model.StatusNew, ""),
		req("2024-04-01", model.StatusNew, ""),
	}

	assert.Len(t, InMonth(reqs, 2024, time.March), 3)
	assert.Len(t, InMonth(reqs, 1, time.January), 1)
}

func TestBuild_PreviousMonthWrapsYear(t *testing.T) {
	reqs := []*model.Request{
		req("2023-12-15 10:00:00", model.StatusDone, "500"),
		req("2024-01-03 10:00:00", model.StatusNew, ""),
	}
	now := time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC)

	text := Build(PeriodPreviousMonth, reqs, now)
	assert.True(t, strings.HasPrefix(text, "📅 Отчет за Декабрь 2023:"))
	assert.Contains(t, text, "📈 Выполнено: 1 из 1 (100%)")

	text = Build(PeriodCurrentMonth, reqs, now)
	assert.True(t, strings.HasPrefix(text, "📅 Отчет за Январь 2024:"))
	assert.Contains(t, text, "Новая: 1")
}

func TestBuild_EmptyMonth(t *testing.T) {
	now := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "📅 За Май 2024 нет данных", Build(PeriodCurrentMonth, nil, now))
	assert.Equal(t, "📆 Нет данных за все время", Build(PeriodAllTime, nil, now))
}

func TestFull_MonthsSortedUnparseableFirst(t *testing.T) {
	text := Full([]*model.Request{
		req("2024-03-01", model.StatusDone, "100"),
		req("01.02.2024 10:00", model.StatusNew, ""),
		req("unknown", model.StatusNew, ""),
		req("2024-03-20 09:00:00", model.StatusNew, ""),
	})

	jan1 := strings.Index(text, "Янв 1: 1")
	feb := strings.Index(text, "Фев 2024: 1")
	mar := strings.Index(text, "Мар 2024: 2")
	assert.True(t, jan1 > 0 && jan1 < feb && feb < mar, text)
	assert.Contains(t, text, "📈 Выполнено: 1 из 4 (25%)")
}

func TestSummary(t *testing.T) {
	text := Build(PeriodSummary, []*model.Request{
		req("2024-03-01", model.StatusDone, "100"),
		req("2024-03-01", model.StatusNew, "abc"),
		req("2024-03-01", model.StatusDone, "300"),
	}, time.Now())

	assert.Equal(t, "📊 Общая статистика:\n"+
		"Всего заявок: 3\n"+
		"\n📌 По статусам:\n"+
		"Готово: 2\nНовая: 1"+
		"\n\n💰 Общая стоимость всех заявок: 400 руб.\n"+
		"💰 Стоимость выполненных заявок: 400 руб.\n"+
		"💵 Средняя стоимость заявки: 200 руб.", text)
}
