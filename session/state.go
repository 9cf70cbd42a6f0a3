package session

import "github.com/looplab/fsm"

// State is a step of the dialogue.
type State string

const (
	StateIdle        State = "idle"
	StateDeviceType  State = "device_type"
	StateDeviceModel State = "device_model"
	StateProblem     State = "problem"
	StateComment     State = "comment"
	StateName        State = "name"
	StatePhone       State = "phone"
	StatePhoto       State = "photo"
	StatePreview     State = "preview"

	StateCheckStatus State = "check_status"
	StateSetStatus   State = "operator_set_status"
	StateStatPeriod  State = "stat_period"
)

// Events fired on a session's FSM.
const (
	EventApply     = "apply"
	EventCheck     = "check"
	EventSetStatus = "set_status"
	EventStats     = "stats"
	EventNext      = "next"
)

// formSteps is the request form in prompt order.
var formSteps = []State{
	StateDeviceType,
	StateDeviceModel,
	StateProblem,
	StateComment,
	StateName,
	StatePhone,
	StatePhoto,
	StatePreview,
}

func transitions() fsm.Events {
	events := fsm.Events{
		{Name: EventApply, Src: []string{string(StateIdle)}, Dst: string(StateDeviceType)},
		{Name: EventCheck, Src: []string{string(StateIdle)}, Dst: string(StateCheckStatus)},
		{Name: EventSetStatus, Src: []string{string(StateIdle)}, Dst: string(StateSetStatus)},
		{Name: EventStats, Src: []string{string(StateIdle)}, Dst: string(StateStatPeriod)},
	}

	for i := 0; i < len(formSteps)-1; i++ {
		events = append(events, fsm.EventDesc{
			Name: EventNext,
			Src:  []string{string(formSteps[i])},
			Dst:  string(formSteps[i+1]),
		})
	}

	return events
}
