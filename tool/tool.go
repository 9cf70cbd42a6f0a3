package tool

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
)

type HumanReadableError interface {
	error
	Human() string
	Cause() error
}

// Human-readable Error
type HRError struct {
	human string
	error error
}

func NewHRError(human string, err error) HumanReadableError {
	return &HRError{human: human, error: err}
}

// Just to complain error interface, it should be named String() I guess
func (e *HRError) Error() string {
	return e.error.Error()
}

func (e *HRError) Human() string {
	return e.human
}

func (e *HRError) Cause() error {
	return e.error
}

// IsNotFound reports whether err was caused by ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Cause(err) == ErrNotFound
}

// dateLayouts are tried in order. Operators edit dates by hand, so the store
// may hold any of them.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"02.01.2006 15:04",
	"2006-01-02",
}

// ParseDate never fails: an unparseable value becomes the zero time, which is
// earlier than any real date.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}

	return time.Time{}
}

// FormatPhone turns +7XXXXXXXXXX into +7 (XXX) XXX-XX-XX. Anything else is
// returned as is.
func FormatPhone(phone string) string {
	if len(phone) != 12 || !strings.HasPrefix(phone, "+7") {
		return phone
	}

	return phone[:2] + " (" + phone[2:5] + ") " + phone[5:8] + "-" + phone[8:10] + "-" + phone[10:]
}

// ParseID parses a request id typed by a user.
func ParseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.Wrapf(ErrValidation, "id %q is not a number", s)
	}

	return id, nil
}

// SuffixID extracts the id from callback data like "accept_12".
func SuffixID(data string) (int, error) {
	i := strings.LastIndex(data, "_")
	if i < 0 || len(data) < i+2 {
		return 0, errors.Wrapf(ErrValidation, "there is no id in %q", data)
	}

	return ParseID(data[i+1:])
}
