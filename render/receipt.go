package render

import (
	"fmt"

	"github.com/go-pdf/fpdf"
	"repairbot/model"
	"repairbot/tool"
)

const (
	receiptTerm   = "Срок диагностики: 1-3 дня"
	receiptThanks = "Спасибо что обратились в наш сервис"
)

// ReceiptName is the file name a receipt is delivered and archived under.
func ReceiptName(id int) string {
	return fmt.Sprintf("Квитанция_№%d.pdf", id)
}

// Receipt renders the A4 acceptance receipt of req.
func (p *PDF) Receipt(req *model.Request) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(p.now())
	pdf.AddPage()
	p.setFont(pdf, 12)

	y := 20.0
	pdf.Text(18, y, fmt.Sprintf("Квитанция №%d", req.ID))
	y += 10

	lines := []struct {
		label string
		value string
	}{
		{"Имя", req.Name},
		{"Телефон", req.Phone},
		{"Устройство", req.DeviceType},
		{"Модель", req.DeviceModel},
		{"Неисправность", req.Problem},
		{"Комментарий", req.Comment},
		{"Дата", receiptDate(req.Date)},
	}
	for _, l := range lines {
		pdf.Text(18, y, fmt.Sprintf("%s: %s", l.label, l.value))
		y += 7
	}

	pdf.Text(18, y, receiptTerm)
	y += 10
	pdf.Text(18, y, receiptThanks)

	return output(pdf)
}

// receiptDate prints the request date as dd-mm-yyyy, or verbatim when it
// cannot be parsed.
func receiptDate(s string) string {
	d := tool.ParseDate(s)
	if d.IsZero() {
		return s
	}
	return d.Format("02-01-2006")
}
