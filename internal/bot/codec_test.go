package bot

import (
	"reflect"
	"testing"

	"allergy-diary/internal/diary"
)

func TestDecode(t *testing.T) {
	cases := []struct {
		data string
		want diary.Event
	}{
		{"score_0", diary.ScoreSelected{Value: 0}},
		{"score_10", diary.ScoreSelected{Value: 10}},
		{"score_11", diary.ScoreSelected{Value: 11}},
		{"symptom_runny_nose", diary.SymptomToggled{Tag: "runny_nose"}},
		{"symptom_other", diary.SymptomToggled{Tag: "other"}},
		{"symptom_done", diary.SymptomsDone{}},
		{"medication_yes", diary.MedicationSelected{Taken: true}},
		{"medication_no", diary.MedicationSelected{Taken: false}},
		{"activity_hot_water", diary.ActivityToggled{Tag: "hot_water"}},
		{"activity_done", diary.ActivitiesDone{}},
	}
	for _, tc := range cases {
		got, ok := Decode(tc.data)
		if !ok || !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Decode(%q) = %#v, %v; want %#v", tc.data, got, ok, tc.want)
		}
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	for _, data := range []string{"", "score_", "score_x", "symptom_", "medication_maybe", "activity_", "weather_sunny"} {
		if ev, ok := Decode(data); ok {
			t.Errorf("Decode(%q) should fail, got %#v", data, ev)
		}
	}
}

func TestEncodeMatchesRenderedButtons(t *testing.T) {
	views := []diary.View{
		{State: diary.StateScores},
		{State: diary.StateSymptoms},
		{State: diary.StateMedication},
		{State: diary.StateActivities},
	}
	for _, v := range views {
		for _, opt := range diary.Render(v).Options() {
			data, ok := Encode(opt.Event)
			if !ok {
				t.Fatalf("%s: option %q has no payload", v.State, opt.Label)
			}
			if len(data) > 64 {
				t.Fatalf("payload %q exceeds Telegram's 64 byte limit", data)
			}
			back, ok := Decode(data)
			if !ok || !reflect.DeepEqual(back, opt.Event) {
				t.Fatalf("%s: %q decoded to %#v, want %#v", v.State, data, back, opt.Event)
			}
		}
	}
}

func TestParseCommand(t *testing.T) {
	cases := map[string]command{
		"/start":            cmdStart,
		"/start@AllergyBot": cmdStart,
		"/Cancel":           cmdCancel,
		"/help":             cmdOther,
		"felt fine":         cmdNone,
		" /start":           cmdStart,
	}
	for in, want := range cases {
		if got := parseCommand(in); got != want {
			t.Errorf("parseCommand(%q) = %q, want %q", in, got, want)
		}
	}
}
