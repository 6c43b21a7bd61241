package diary

import (
	"fmt"
	"strconv"
	"strings"
)

// Option is one selectable answer. The transport encodes Event into its own payload.
type Option struct {
	Label string
	Event Event
}

// Prompt is the question shown for a position in the conversation.
type Prompt struct {
	Text string
	Rows [][]Option
	// ExpectsText is set when the answer is a typed message rather than a button.
	ExpectsText bool
}

// Options flattens the keyboard rows.
func (p Prompt) Options() []Option {
	var out []Option
	for _, row := range p.Rows {
		out = append(out, row...)
	}
	return out
}

// Render builds the prompt for a session view. It has no side effects.
func Render(v View) Prompt {
	if v.PendingOther != "" {
		return otherPrompt(v.PendingOther)
	}

	switch v.State {
	case StateScores:
		return scorePrompt(v.Slot)
	case StateSymptoms:
		return listPrompt(
			"Select your symptoms (press 'Done' when finished):",
			"symptoms",
			SymptomTags,
			v.Answers.Symptoms,
			func(tag string) Event { return SymptomToggled{Tag: tag} },
			SymptomsDone{},
		)
	case StateMedication:
		return Prompt{
			Text: "Did you take any medication?",
			Rows: [][]Option{
				{{Label: "Yes", Event: MedicationSelected{Taken: true}}},
				{{Label: "No", Event: MedicationSelected{Taken: false}}},
			},
		}
	case StateActivities:
		return listPrompt(
			"Select relevant factors (press 'Done' when finished):",
			"activities",
			ActivityTags,
			v.Answers.Activities,
			func(tag string) Event { return ActivityToggled{Tag: tag} },
			ActivitiesDone{},
		)
	case StateNotes:
		return Prompt{Text: "Please enter any additional notes for today:", ExpectsText: true}
	case StateDone:
		return Prompt{Text: "All data has been logged. Thank you!"}
	case StateCancelled:
		return Prompt{Text: "Bye! Your input has been canceled."}
	}
	return Prompt{Text: "Send /start to log your allergy data."}
}

func scorePrompt(slot ScoreSlot) Prompt {
	row := func(from, to int) []Option {
		opts := make([]Option, 0, to-from+1)
		for i := from; i <= to; i++ {
			opts = append(opts, Option{Label: strconv.Itoa(i), Event: ScoreSelected{Value: i}})
		}
		return opts
	}
	return Prompt{
		Text: fmt.Sprintf("Rate your %s allergy severity (%d-%d):", slot.Label(), MinScore, MaxScore),
		Rows: [][]Option{row(MinScore, 5), row(6, MaxScore)},
	}
}

func listPrompt(question, noun string, vocab []Tag, selected []string, toggle func(string) Event, done Event) Prompt {
	summary := fmt.Sprintf("No %s selected yet.", noun)
	if len(selected) > 0 {
		summary = fmt.Sprintf("Selected %s: %s", noun, strings.Join(selected, ", "))
	}

	rows := make([][]Option, 0, len(vocab)+2)
	for _, t := range vocab {
		rows = append(rows, []Option{{Label: t.Label, Event: toggle(t.Key)}})
	}
	rows = append(rows,
		[]Option{{Label: "Other (please specify)", Event: toggle(OtherTag)}},
		[]Option{{Label: "Done", Event: done}},
	)
	return Prompt{Text: question + "\n" + summary, Rows: rows}
}

func otherPrompt(list State) Prompt {
	what := "symptom"
	if list == StateActivities {
		what = "activity"
	}
	return Prompt{
		Text:        fmt.Sprintf("Please describe the other %s (send the same text again to remove it):", what),
		ExpectsText: true,
	}
}
