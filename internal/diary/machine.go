package diary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/looplab/fsm"
)

// Output tells the caller what to show after an event was applied.
type Output int

const (
	OutputNone Output = iota
	// OutputRerender: same question, updated selection.
	OutputRerender
	// OutputNext: a new question (next score slot, next state, or the "other" capture).
	OutputNext
	// OutputFinalize: notes received, the answers are complete.
	OutputFinalize
	// OutputCancelled: the user abandoned the log.
	OutputCancelled
)

func (o Output) String() string {
	switch o {
	case OutputRerender:
		return "rerender"
	case OutputNext:
		return "next"
	case OutputFinalize:
		return "finalize"
	case OutputCancelled:
		return "cancelled"
	default:
		return "none"
	}
}

const (
	transScoresDone         = "scores_done"
	transSymptomsDone       = "symptoms_done"
	transMedicationSelected = "medication_selected"
	transActivitiesDone     = "activities_done"
	transNotesSubmitted     = "notes_submitted"
	transCancel             = "cancel"
)

var transitions = fsm.Events{
	{Name: transScoresDone, Src: []string{string(StateScores)}, Dst: string(StateSymptoms)},
	{Name: transSymptomsDone, Src: []string{string(StateSymptoms)}, Dst: string(StateMedication)},
	{Name: transMedicationSelected, Src: []string{string(StateMedication)}, Dst: string(StateActivities)},
	{Name: transActivitiesDone, Src: []string{string(StateActivities)}, Dst: string(StateNotes)},
	{Name: transNotesSubmitted, Src: []string{string(StateNotes)}, Dst: string(StateDone)},
	{Name: transCancel, Src: []string{
		string(StateScores),
		string(StateSymptoms),
		string(StateMedication),
		string(StateActivities),
		string(StateNotes),
	}, Dst: string(StateCancelled)},
}

// Machine drives one session through the fixed question sequence.
// It is not safe for concurrent use; the Registry serialises access.
type Machine struct {
	fsm     *fsm.FSM
	answers *Answers
	slot    ScoreSlot
	// pendingOther is the list state waiting for a free-text "other" entry, or "".
	pendingOther State
}

func NewMachine() *Machine {
	m := &Machine{answers: NewAnswers()}
	m.fsm = fsm.NewFSM(string(StateScores), transitions, fsm.Callbacks{
		"enter_state": func(_ context.Context, e *fsm.Event) {
			slog.Debug("diary: state changed", "from", e.Src, "to", e.Dst, "event", e.Event)
		},
	})
	return m
}

func (m *Machine) State() State {
	return State(m.fsm.Current())
}

func (m *Machine) View() View {
	return View{
		State:        m.State(),
		Slot:         m.slot,
		PendingOther: m.pendingOther,
		Answers:      m.answers.Clone(),
	}
}

// Prompt renders the question for the current position.
func (m *Machine) Prompt() Prompt {
	return Render(m.View())
}

// Apply consumes one event. Events that do not fit the current position
// return ErrMalformedEvent and change nothing.
func (m *Machine) Apply(ctx context.Context, ev Event) (Output, error) {
	state := m.State()
	if state.Terminal() {
		return OutputNone, fmt.Errorf("%w: session already %s", ErrMalformedEvent, state)
	}

	if _, ok := ev.(Cancel); ok {
		if err := m.fire(ctx, transCancel); err != nil {
			return OutputNone, err
		}
		m.pendingOther = ""
		return OutputCancelled, nil
	}

	pending := m.pendingOther
	if pending != "" {
		if text, ok := ev.(TextSubmitted); ok {
			return m.captureOther(text.Text)
		}
		// a button press on the list abandons the capture
		m.pendingOther = ""
	}

	out, err := m.applyInState(ctx, state, ev)
	if err != nil {
		m.pendingOther = pending
	}
	return out, err
}

func (m *Machine) applyInState(ctx context.Context, state State, ev Event) (Output, error) {
	switch state {
	case StateScores:
		return m.applyScore(ctx, ev)
	case StateSymptoms:
		return m.applySymptoms(ctx, ev)
	case StateMedication:
		return m.applyMedication(ctx, ev)
	case StateActivities:
		return m.applyActivities(ctx, ev)
	case StateNotes:
		return m.applyNotes(ctx, ev)
	}
	return OutputNone, fmt.Errorf("%w: unknown state %s", ErrMalformedEvent, state)
}

func (m *Machine) applyScore(ctx context.Context, ev Event) (Output, error) {
	e, ok := ev.(ScoreSelected)
	if !ok {
		return OutputNone, malformed(ev, StateScores)
	}
	if e.Value < MinScore || e.Value > MaxScore {
		return OutputNone, fmt.Errorf("%w: score %d out of range", ErrMalformedEvent, e.Value)
	}

	m.answers.SetScore(m.slot, e.Value)
	if int(m.slot) < len(Slots)-1 {
		m.slot++
		return OutputNext, nil
	}
	if err := m.fire(ctx, transScoresDone); err != nil {
		return OutputNone, err
	}
	return OutputNext, nil
}

func (m *Machine) applySymptoms(ctx context.Context, ev Event) (Output, error) {
	switch e := ev.(type) {
	case SymptomToggled:
		if e.Tag == OtherTag {
			m.pendingOther = StateSymptoms
			return OutputNext, nil
		}
		if !knownTag(SymptomTags, e.Tag) {
			return OutputNone, fmt.Errorf("%w: unknown symptom %q", ErrMalformedEvent, e.Tag)
		}
		m.answers.ToggleSymptom(e.Tag)
		return OutputRerender, nil
	case SymptomsDone:
		if err := m.fire(ctx, transSymptomsDone); err != nil {
			return OutputNone, err
		}
		return OutputNext, nil
	}
	return OutputNone, malformed(ev, StateSymptoms)
}

func (m *Machine) applyMedication(ctx context.Context, ev Event) (Output, error) {
	e, ok := ev.(MedicationSelected)
	if !ok {
		return OutputNone, malformed(ev, StateMedication)
	}
	if err := m.fire(ctx, transMedicationSelected); err != nil {
		return OutputNone, err
	}
	if e.Taken {
		m.answers.SetMedication(MedicationYes)
	} else {
		m.answers.SetMedication(MedicationNo)
	}
	return OutputNext, nil
}

func (m *Machine) applyActivities(ctx context.Context, ev Event) (Output, error) {
	switch e := ev.(type) {
	case ActivityToggled:
		if e.Tag == OtherTag {
			m.pendingOther = StateActivities
			return OutputNext, nil
		}
		if !knownTag(ActivityTags, e.Tag) {
			return OutputNone, fmt.Errorf("%w: unknown activity %q", ErrMalformedEvent, e.Tag)
		}
		m.answers.ToggleActivity(e.Tag)
		return OutputRerender, nil
	case ActivitiesDone:
		if err := m.fire(ctx, transActivitiesDone); err != nil {
			return OutputNone, err
		}
		return OutputNext, nil
	}
	return OutputNone, malformed(ev, StateActivities)
}

func (m *Machine) applyNotes(ctx context.Context, ev Event) (Output, error) {
	e, ok := ev.(TextSubmitted)
	if !ok || e.Text == "" {
		return OutputNone, malformed(ev, StateNotes)
	}
	if err := m.fire(ctx, transNotesSubmitted); err != nil {
		return OutputNone, err
	}
	m.answers.SetNotes(e.Text)
	return OutputFinalize, nil
}

// captureOther stores a free-text entry for the pending list and returns to it.
// Commas become semicolons so a stored list joins back unambiguously, and
// entries naming a built-in option are refused; that option has its own button.
func (m *Machine) captureOther(text string) (Output, error) {
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", ";")
	if text == "" {
		return OutputNone, fmt.Errorf("%w: empty entry", ErrMalformedEvent)
	}
	vocab := SymptomTags
	if m.pendingOther == StateActivities {
		vocab = ActivityTags
	}
	if matchesVocabulary(vocab, text) {
		return OutputNone, fmt.Errorf("%w: %q is a listed option", ErrMalformedEvent, text)
	}
	switch m.pendingOther {
	case StateSymptoms:
		m.answers.ToggleSymptom(text)
	case StateActivities:
		m.answers.ToggleActivity(text)
	}
	m.pendingOther = ""
	return OutputNext, nil
}

func (m *Machine) fire(ctx context.Context, name string) error {
	if err := m.fsm.Event(ctx, name); err != nil {
		return fmt.Errorf("%w: %s rejected in %s: %v", ErrMalformedEvent, name, m.State(), err)
	}
	return nil
}

func malformed(ev Event, state State) error {
	return fmt.Errorf("%w: %s not accepted in %s", ErrMalformedEvent, EventName(ev), state)
}
