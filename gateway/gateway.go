// Package gateway is the bot's only conduit to its users: outgoing texts,
// images, documents and button answers, and incoming events.
package gateway

type Kind int

const (
	KindText Kind = iota
	KindImage
	KindCommand
	KindButton
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindImage:
		return "image"
	case KindCommand:
		return "command"
	case KindButton:
		return "button"
	}
	return "unknown"
}

// Event is one incoming message or button press.
type Event struct {
	// ID identifies a button press so that it can be answered.
	ID     string
	UserID int
	ChatID int64
	Kind   Kind

	Text    string
	Command string
	Args    string
	FileID  string
	Data    string
}

type Gateway interface {
	SendText(chatID int64, text string, kb *Keyboard) error
	SendImage(chatID int64, data []byte, caption string, kb *Keyboard) error
	SendDocument(chatID int64, data []byte, filename, caption string) error
	AnswerAction(actionID, text string, alert bool) error
	Download(fileID string) ([]byte, error)
}

type Button struct {
	Text string
	Data string
	URL  string
}

// Keyboard is either a reply keyboard of plain texts or inline buttons.
type Keyboard struct {
	Inline bool
	Rows   [][]Button
}

// Reply builds a resizable reply keyboard, one row per argument.
func Reply(rows ...[]string) *Keyboard {
	kb := &Keyboard{}
	for _, row := range rows {
		buttons := make([]Button, 0, len(row))
		for _, text := range row {
			buttons = append(buttons, Button{Text: text})
		}
		kb.Rows = append(kb.Rows, buttons)
	}
	return kb
}

func Inline(rows ...[]Button) *Keyboard {
	return &Keyboard{Inline: true, Rows: rows}
}

func Row(texts ...string) []string {
	return texts
}

func ButtonRow(buttons ...Button) []Button {
	return buttons
}
