// Package report builds the operator's statistics over stored requests.
package report

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"repairbot/model"
	"repairbot/tool"
)

type Period int

const (
	PeriodSummary Period = iota
	PeriodCurrentMonth
	PeriodPreviousMonth
	PeriodAllTime
)

// NoStatus groups requests whose status cell is empty.
const NoStatus = "Нет статуса"

var (
	monthNames = []string{"Январь", "Февраль", "Март", "Апрель", "Май", "Июнь",
		"Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь"}
	monthShort = []string{"Янв", "Фев", "Мар", "Апр", "Май", "Июн",
		"Июл", "Авг", "Сен", "Окт", "Ноя", "Дек"}
)

// Stats is a snapshot over a set of requests.
type Stats struct {
	Total     int
	ByStatus  map[string]int
	ByMonth   map[string]int
	Completed int

	TotalCost      int
	CompletedCost  int
	AverageCost    int
	CompletionRate int
}

// Compute aggregates reqs. Only costs written as plain non-negative integers
// are counted.
func Compute(reqs []*model.Request) Stats {
	s := Stats{
		Total:    len(reqs),
		ByStatus: make(map[string]int),
		ByMonth:  make(map[string]int),
	}

	var costs []int
	for _, r := range reqs {
		status := string(r.Status)
		if status == "" {
			status = NoStatus
		}
		s.ByStatus[status]++

		d := tool.ParseDate(r.Date)
		s.ByMonth[fmt.Sprintf("%04d-%02d", d.Year(), int(d.Month()))]++

		cost, ok := parseCost(r.Cost)
		if !ok {
			continue
		}
		s.TotalCost += cost
		costs = append(costs, cost)
		if r.Status == model.StatusDone {
			s.CompletedCost += cost
		}
	}

	if len(costs) > 0 {
		sum := 0
		for _, c := range costs {
			sum += c
		}
		s.AverageCost = round(float64(sum) / float64(len(costs)))
	} else if s.Total > 0 {
		s.AverageCost = round(float64(s.TotalCost) / float64(s.Total))
	}

	s.Completed = s.ByStatus[string(model.StatusDone)]
	if s.Total > 0 {
		s.CompletionRate = round(float64(s.Completed) / float64(s.Total) * 100)
	}

	return s
}

func parseCost(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func round(f float64) int {
	return int(math.Round(f))
}

// InMonth keeps the requests created in the given month. Unparseable dates
// fall into year 1 and so never match a real month.
func InMonth(reqs []*model.Request, year int, month time.Month) []*model.Request {
	var out []*model.Request
	for _, r := range reqs {
		d := tool.ParseDate(r.Date)
		if d.Year() == year && d.Month() == month {
			out = append(out, r)
		}
	}
	return out
}

// Build renders the report for period as seen at now.
func Build(period Period, reqs []*model.Request, now time.Time) string {
	switch period {
	case PeriodCurrentMonth:
		return Monthly(InMonth(reqs, now.Year(), now.Month()), now.Year(), now.Month())
	case PeriodPreviousMonth:
		prev := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -1, 0)
		return Monthly(InMonth(reqs, prev.Year(), prev.Month()), prev.Year(), prev.Month())
	case PeriodAllTime:
		return Full(reqs)
	}
	return Summary(reqs)
}

func Summary(reqs []*model.Request) string {
	s := Compute(reqs)

	var b strings.Builder
	b.WriteString("📊 Общая статистика:\n")
	fmt.Fprintf(&b, "Всего заявок: %d\n", s.Total)
	b.WriteString("\n📌 По статусам:\n")
	b.WriteString(s.statusLines())
	fmt.Fprintf(&b, "\n\n💰 Общая стоимость всех заявок: %d руб.\n", s.TotalCost)
	fmt.Fprintf(&b, "💰 Стоимость выполненных заявок: %d руб.\n", s.CompletedCost)
	fmt.Fprintf(&b, "💵 Средняя стоимость заявки: %d руб.", s.AverageCost)

	return b.String()
}

func Monthly(reqs []*model.Request, year int, month time.Month) string {
	name := monthNames[month-1]
	if len(reqs) == 0 {
		return fmt.Sprintf("📅 За %s %d нет данных", name, year)
	}

	s := Compute(reqs)

	var b strings.Builder
	fmt.Fprintf(&b, "📅 Отчет за %s %d:\n", name, year)
	fmt.Fprintf(&b, "Всего заявок: %d\n", s.Total)
	b.WriteString("\n📌 По статусам:\n")
	b.WriteString(s.statusLines())
	b.WriteString("\n\n")
	b.WriteString(s.costLines())

	return b.String()
}

func Full(reqs []*model.Request) string {
	if len(reqs) == 0 {
		return "📆 Нет данных за все время"
	}

	s := Compute(reqs)

	var b strings.Builder
	b.WriteString("📆 Полная статистика:\n")
	fmt.Fprintf(&b, "Всего заявок: %d\n", s.Total)
	b.WriteString("\n📌 По статусам:\n")
	b.WriteString(s.statusLines())
	b.WriteString("\n\n📅 По месяцам:\n")
	for _, key := range sortedKeys(s.ByMonth) {
		year, _ := strconv.Atoi(key[:4])
		month, _ := strconv.Atoi(key[5:])
		fmt.Fprintf(&b, "%s %d: %d\n", monthShort[month-1], year, s.ByMonth[key])
	}
	b.WriteString("\n")
	b.WriteString(s.costLines())

	return b.String()
}

func (s Stats) statusLines() string {
	keys := sortedKeys(s.ByStatus)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %d", k, s.ByStatus[k]))
	}
	return strings.Join(lines, "\n")
}

func (s Stats) costLines() string {
	return fmt.Sprintf(
		"💰 Общая стоимость: %d руб.\n"+
			"💰 Стоимость выполненных: %d руб.\n"+
			"💵 Средняя стоимость: %d руб.\n"+
			"📈 Выполнено: %d из %d (%d%%)",
		s.TotalCost, s.CompletedCost, s.AverageCost, s.Completed, s.Total, s.CompletionRate,
	)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
