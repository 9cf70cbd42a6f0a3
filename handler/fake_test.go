package handler

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"repairbot/database"
	"repairbot/gateway"
	"repairbot/model"
	"repairbot/tool"
)

type fakeDB struct {
	mu   sync.Mutex
	rows []*model.Request

	lastErr   error
	insertErr error
	selectErr error
}

func (f *fakeDB) LastRequestID(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.lastErr != nil {
		return 0, f.lastErr
	}
	last := 0
	for _, r := range f.rows {
		if r.ID > last {
			last = r.ID
		}
	}
	return last, nil
}

func (f *fakeDB) InsertRequest(_ context.Context, req *model.Request) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.insertErr != nil {
		return f.insertErr
	}
	for _, r := range f.rows {
		if r.ID == req.ID {
			return errors.Errorf("duplicate id %d", req.ID)
		}
	}
	cp := *req
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *fakeDB) find(id int) (*model.Request, error) {
	for _, r := range f.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, errors.Wrapf(tool.ErrNotFound, "request %d", id)
}

func (f *fakeDB) GetRequest(_ context.Context, id int) (*model.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, err := f.find(id)
	if err != nil {
		return nil, err
	}
	cp := *r
	return &cp, nil
}

func (f *fakeDB) UpdateRequestField(_ context.Context, id int, column database.Column, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, err := f.find(id)
	if err != nil {
		return err
	}
	switch column {
	case database.ColumnStatus:
		r.Status = model.Status(value)
	case database.ColumnCost:
		r.Cost = value
	default:
		return errors.Errorf("column %q is not writable", column)
	}
	return nil
}

func (f *fakeDB) SelectRequests(_ context.Context) ([]*model.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.selectErr != nil {
		return nil, f.selectErr
	}
	out := make([]*model.Request, 0, len(f.rows))
	for _, r := range f.rows {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeDB) row(id int) *model.Request {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, _ := f.find(id)
	return r
}

type sent struct {
	ChatID   int64
	Text     string
	Keyboard *gateway.Keyboard
	Image    []byte
	Document []byte
	Filename string
}

type answer struct {
	ID    string
	Text  string
	Alert bool
}

type fakeGateway struct {
	mu      sync.Mutex
	sent    []sent
	answers []answer

	files   map[string][]byte
	sendErr error
}

func (f *fakeGateway) SendText(chatID int64, text string, kb *gateway.Keyboard) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sent{ChatID: chatID, Text: text, Keyboard: kb})
	return nil
}

func (f *fakeGateway) SendImage(chatID int64, data []byte, caption string, kb *gateway.Keyboard) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sent = append(f.sent, sent{ChatID: chatID, Text: caption, Keyboard: kb, Image: data})
	return nil
}

func (f *fakeGateway) SendDocument(chatID int64, data []byte, filename, caption string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sent = append(f.sent, sent{ChatID: chatID, Text: caption, Document: data, Filename: filename})
	return nil
}

func (f *fakeGateway) AnswerAction(actionID, text string, alert bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.answers = append(f.answers, answer{ID: actionID, Text: text, Alert: alert})
	return nil
}

func (f *fakeGateway) Download(fileID string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, ok := f.files[fileID]
	if !ok {
		return nil, errors.Errorf("file %s not found", fileID)
	}
	return b, nil
}

// to returns what was sent to chatID, in order.
func (f *fakeGateway) to(chatID int64) []sent {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []sent
	for _, s := range f.sent {
		if s.ChatID == chatID {
			out = append(out, s)
		}
	}
	return out
}

func (f *fakeGateway) last(chatID int64) sent {
	msgs := f.to(chatID)
	if len(msgs) == 0 {
		return sent{}
	}
	return msgs[len(msgs)-1]
}

type fakeRenderer struct {
	receiptErr error
	stickerErr error
	stickerURL string
}

func (f *fakeRenderer) Receipt(req *model.Request) ([]byte, error) {
	if f.receiptErr != nil {
		return nil, f.receiptErr
	}
	return []byte("%PDF receipt"), nil
}

func (f *fakeRenderer) Sticker(req *model.Request, url string) ([]byte, error) {
	if f.stickerErr != nil {
		return nil, f.stickerErr
	}
	f.stickerURL = url
	return []byte("%PDF sticker"), nil
}

type nopUploader struct{}

func (nopUploader) Upload(context.Context, []byte, string) error {
	return nil
}
