package types

import "time"

// EventType classifies what a scan turned out to be.
type EventType string

const (
	EventEntry        EventType = "ENTRY"
	EventExit         EventType = "EXIT"
	EventAccessDenied EventType = "ACCESS_DENIED"
	EventIntrusion    EventType = "INTRUSION"
)

// Result is the access outcome reported alongside the event type.
type Result string

const (
	ResultGranted Result = "GRANTED"
	ResultDenied  Result = "DENIED"
)

// AccessEvent is an immutable record of one access decision. It is
// produced by the decision engine and consumed by two independent
// sinks: the in-memory day log and the delivery path.
type AccessEvent struct {
	EventID   string    `json:"event_id"`
	BadgeID   string    `json:"badge_id"`
	Name      string    `json:"name"`
	Type      EventType `json:"event_type"`
	Result    Result    `json:"result"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// FeedbackSignal is the abstract physical signal handed to the feedback
// dispatcher, which maps it to a light/tone pattern. The pipeline never
// waits for the dispatcher to finish.
type FeedbackSignal string

const (
	SignalGrantedEntry FeedbackSignal = "GRANTED_ENTRY"
	SignalGrantedExit  FeedbackSignal = "GRANTED_EXIT"
	SignalDenied       FeedbackSignal = "DENIED"
	SignalIntrusion    FeedbackSignal = "INTRUSION"
)

// SignalFor maps an event type to its feedback signal.
func SignalFor(t EventType) FeedbackSignal {
	switch t {
	case EventEntry:
		return SignalGrantedEntry
	case EventExit:
		return SignalGrantedExit
	case EventIntrusion:
		return SignalIntrusion
	default:
		return SignalDenied
	}
}
