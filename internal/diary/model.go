package diary

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// State is a position in the daily log conversation.
type State string

const (
	StateScores     State = "scores"
	StateSymptoms   State = "symptoms"
	StateMedication State = "medication"
	StateActivities State = "activities"
	StateNotes      State = "notes"
	StateDone       State = "done"
	StateCancelled  State = "cancelled"
)

// Terminal reports whether no further events are accepted.
func (s State) Terminal() bool {
	return s == StateDone || s == StateCancelled
}

// ScoreSlot is one of the four time-of-day severity ratings, in asking order.
type ScoreSlot int

const (
	SlotSleep ScoreSlot = iota
	SlotMorning
	SlotAfternoon
	SlotEvening
)

// Slots lists the score slots in the order they are asked.
var Slots = []ScoreSlot{SlotSleep, SlotMorning, SlotAfternoon, SlotEvening}

const (
	MinScore = 0
	MaxScore = 10
)

func (s ScoreSlot) String() string {
	switch s {
	case SlotSleep:
		return "sleep"
	case SlotMorning:
		return "morning"
	case SlotAfternoon:
		return "afternoon"
	case SlotEvening:
		return "evening"
	default:
		return "unknown"
	}
}

// Label is the capitalised name shown in prompts.
func (s ScoreSlot) Label() string {
	switch s {
	case SlotSleep:
		return "Sleep"
	case SlotMorning:
		return "Morning"
	case SlotAfternoon:
		return "Afternoon"
	case SlotEvening:
		return "Evening"
	default:
		return "Unknown"
	}
}

type Medication string

const (
	MedicationUnset Medication = ""
	MedicationYes   Medication = "yes"
	MedicationNo    Medication = "no"
)

// Tag is a selectable symptom or activity.
type Tag struct {
	Key   string
	Label string
}

// OtherTag is the selectable that opens the free-text capture step.
const OtherTag = "other"

var SymptomTags = []Tag{
	{Key: "sneezing", Label: "Sneezing"},
	{Key: "runny_nose", Label: "Runny nose"},
	{Key: "itchy_eyes", Label: "Itchy eyes"},
	{Key: "congestion", Label: "Congestion"},
	{Key: "itchy_throat", Label: "Itchy throat"},
}

var ActivityTags = []Tag{
	{Key: "indoors", Label: "Stayed indoors"},
	{Key: "outside", Label: "Went outside"},
	{Key: "purifier", Label: "Used air purifier"},
	{Key: "steam", Label: "Took steam"},
	{Key: "hot_water", Label: "Drank hot water"},
	{Key: "ayurvedic", Label: "Took Ayurvedic medicine"},
}

func knownTag(vocab []Tag, key string) bool {
	for _, t := range vocab {
		if t.Key == key {
			return true
		}
	}
	return false
}

// matchesVocabulary reports whether text names a listed tag by key or label.
func matchesVocabulary(vocab []Tag, text string) bool {
	if strings.EqualFold(text, OtherTag) {
		return true
	}
	for _, t := range vocab {
		if strings.EqualFold(t.Key, text) || strings.EqualFold(t.Label, text) {
			return true
		}
	}
	return false
}

// Session is one user's in-progress daily log.
type Session struct {
	ID        int64
	Machine   *Machine
	CreatedAt time.Time
	UpdatedAt time.Time
}

// View is a read-only snapshot of a session.
type View struct {
	SessionID    int64
	State        State
	Slot         ScoreSlot
	PendingOther State
	Answers      Answers
}

// Record is the immutable projection of a finished session, the unit handed to sinks.
type Record struct {
	ID         uuid.UUID
	SessionID  int64
	RecordedAt time.Time
	Answers    Answers
}
