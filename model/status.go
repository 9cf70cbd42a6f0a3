package model

// Status is free text in the store. The operator may type anything, so only
// the values below are known to the bot; everything else is kept verbatim.
type Status string

const (
	StatusNew        Status = "Новая"
	StatusAccepted   Status = "Принято"
	StatusInProgress Status = "В работе"
	StatusDone       Status = "Готово"
	StatusIssued     Status = "Выдано"
	StatusRejected   Status = "Отклонено"
)

// OperatorStatuses are offered on the /setstatus keyboard, in this order.
var OperatorStatuses = []Status{
	StatusAccepted,
	StatusInProgress,
	StatusDone,
	StatusIssued,
	StatusRejected,
}

var icons = map[Status]string{
	StatusNew:        "🟡",
	StatusAccepted:   "🟡",
	StatusInProgress: "🟠",
	StatusDone:       "🟢",
	StatusRejected:   "🔴",
}

func (s Status) Known() bool {
	switch s {
	case StatusNew, StatusAccepted, StatusInProgress, StatusDone, StatusIssued, StatusRejected:
		return true
	}
	return false
}

// Icon returns the status marker shown to clients, empty for unknown statuses.
func (s Status) Icon() string {
	return icons[s]
}

func (s Status) String() string {
	return string(s)
}
