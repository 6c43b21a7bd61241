package diary

import (
	"strings"
	"testing"
)

func TestRenderScoreRows(t *testing.T) {
	p := Render(View{State: StateScores, Slot: SlotAfternoon})

	if p.Text != "Rate your Afternoon allergy severity (0-10):" {
		t.Fatalf("unexpected text %q", p.Text)
	}
	if len(p.Rows) != 2 || len(p.Rows[0]) != 6 || len(p.Rows[1]) != 5 {
		t.Fatalf("unexpected row layout: %d rows", len(p.Rows))
	}
	for i, opt := range p.Options() {
		ev, ok := opt.Event.(ScoreSelected)
		if !ok || ev.Value != i {
			t.Fatalf("option %d: unexpected event %#v", i, opt.Event)
		}
	}
}

func TestRenderSymptomsSummaryFollowsAnswers(t *testing.T) {
	empty := Render(View{State: StateSymptoms, Answers: *NewAnswers()})
	if !strings.HasSuffix(empty.Text, "No symptoms selected yet.") {
		t.Fatalf("unexpected empty summary: %q", empty.Text)
	}

	a := NewAnswers()
	a.ToggleSymptom("sneezing")
	a.ToggleSymptom("congestion")
	p := Render(View{State: StateSymptoms, Answers: *a})
	if !strings.HasSuffix(p.Text, "Selected symptoms: sneezing, congestion") {
		t.Fatalf("unexpected summary: %q", p.Text)
	}

	opts := p.Options()
	if len(opts) != len(SymptomTags)+2 {
		t.Fatalf("expected %d options, got %d", len(SymptomTags)+2, len(opts))
	}
	if ev, ok := opts[len(opts)-2].Event.(SymptomToggled); !ok || ev.Tag != OtherTag {
		t.Fatalf("expected other option before done, got %#v", opts[len(opts)-2].Event)
	}
	if _, ok := opts[len(opts)-1].Event.(SymptomsDone); !ok {
		t.Fatalf("expected done option last, got %#v", opts[len(opts)-1].Event)
	}
}

func TestRenderActivitiesAndMedication(t *testing.T) {
	p := Render(View{State: StateActivities, Answers: *NewAnswers()})
	if !strings.Contains(p.Text, "No activities selected yet.") {
		t.Fatalf("unexpected text %q", p.Text)
	}
	if _, ok := p.Options()[0].Event.(ActivityToggled); !ok {
		t.Fatalf("expected activity toggle, got %#v", p.Options()[0].Event)
	}

	med := Render(View{State: StateMedication})
	if len(med.Options()) != 2 || med.Options()[0].Label != "Yes" {
		t.Fatalf("unexpected medication options: %+v", med.Options())
	}
}

func TestRenderTextPrompts(t *testing.T) {
	notes := Render(View{State: StateNotes})
	if !notes.ExpectsText || len(notes.Rows) != 0 {
		t.Fatalf("notes prompt should be a bare text question: %+v", notes)
	}

	other := Render(View{State: StateActivities, PendingOther: StateActivities})
	if !other.ExpectsText || !strings.Contains(other.Text, "other activity") {
		t.Fatalf("unexpected other prompt: %+v", other)
	}
}
