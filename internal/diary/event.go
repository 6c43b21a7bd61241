package diary

// Event is a decoded user action. The transport layer turns raw callback
// payloads and messages into one of the concrete types below.
type Event interface {
	eventName() string
}

type ScoreSelected struct{ Value int }

type SymptomToggled struct{ Tag string }

type SymptomsDone struct{}

type MedicationSelected struct{ Taken bool }

type ActivityToggled struct{ Tag string }

type ActivitiesDone struct{}

// TextSubmitted carries a plain message body. It answers the notes question
// or the free-text "other" capture, and is malformed anywhere else.
type TextSubmitted struct{ Text string }

type Cancel struct{}

func (ScoreSelected) eventName() string      { return "score_selected" }
func (SymptomToggled) eventName() string     { return "symptom_toggled" }
func (SymptomsDone) eventName() string       { return "symptoms_done" }
func (MedicationSelected) eventName() string { return "medication_selected" }
func (ActivityToggled) eventName() string    { return "activity_toggled" }
func (ActivitiesDone) eventName() string     { return "activities_done" }
func (TextSubmitted) eventName() string      { return "text_submitted" }
func (Cancel) eventName() string             { return "cancel" }

// EventName returns a stable name for logging.
func EventName(ev Event) string {
	if ev == nil {
		return "nil"
	}
	return ev.eventName()
}
