package model

import (
	"database/sql"
	"time"
)

// DateLayout is how creation dates are written into the store.
const DateLayout = "2006-01-02 15:04:05"

// Application is a request draft collected by the dialogue. It is not stored
// until the client confirms it.
type Application struct {
	ID int

	DeviceType  string
	DeviceModel string
	Problem     string
	Comment     string
	Name        string
	Phone       string
	Photo       string

	Date   string
	Status Status
	ChatID int64
}

func NewApplication(chatID int64, now time.Time) *Application {
	return &Application{
		ChatID: chatID,
		Date:   now.Format(DateLayout),
		Status: StatusNew,
	}
}

// Request is a stored repair request row.
type Request struct {
	ID   int    `db:"id"`
	Date string `db:"date"`

	Name        string `db:"name"`
	Phone       string `db:"phone"`
	DeviceType  string `db:"device_type"`
	DeviceModel string `db:"device_model"`
	Problem     string `db:"problem"`
	Comment     string `db:"comment"`
	Photo       string `db:"photo"`

	Status Status `db:"status"`
	Cost   string `db:"cost"`

	Reserved1 string `db:"reserved1"`
	Reserved2 string `db:"reserved2"`

	ChatID sql.NullInt64 `db:"chat_id"`
}

// Request flattens the draft into a row. Empty comment is stored as "-".
func (a *Application) Request() *Request {
	comment := a.Comment
	if comment == "" {
		comment = "-"
	}

	return &Request{
		ID:          a.ID,
		Date:        a.Date,
		Name:        a.Name,
		Phone:       a.Phone,
		DeviceType:  a.DeviceType,
		DeviceModel: a.DeviceModel,
		Problem:     a.Problem,
		Comment:     comment,
		Photo:       a.Photo,
		Status:      a.Status,
		ChatID: sql.NullInt64{
			Int64: a.ChatID,
			Valid: a.ChatID != 0,
		},
	}
}
