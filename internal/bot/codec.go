package bot

import (
	"strconv"
	"strings"

	"allergy-diary/internal/diary"
)

// Callback payload prefixes.
const (
	prefixScore      = "score_"
	prefixSymptom    = "symptom_"
	prefixMedication = "medication_"
	prefixActivity   = "activity_"
	suffixDone       = "done"
)

// Decode turns a callback payload into a diary event.
// It only checks shape; ranges and vocabularies are the machine's job.
func Decode(data string) (diary.Event, bool) {
	switch {
	case strings.HasPrefix(data, prefixScore):
		n, err := strconv.Atoi(strings.TrimPrefix(data, prefixScore))
		if err != nil {
			return nil, false
		}
		return diary.ScoreSelected{Value: n}, true

	case strings.HasPrefix(data, prefixSymptom):
		tag := strings.TrimPrefix(data, prefixSymptom)
		if tag == "" {
			return nil, false
		}
		if tag == suffixDone {
			return diary.SymptomsDone{}, true
		}
		return diary.SymptomToggled{Tag: tag}, true

	case strings.HasPrefix(data, prefixMedication):
		switch strings.TrimPrefix(data, prefixMedication) {
		case string(diary.MedicationYes):
			return diary.MedicationSelected{Taken: true}, true
		case string(diary.MedicationNo):
			return diary.MedicationSelected{Taken: false}, true
		}
		return nil, false

	case strings.HasPrefix(data, prefixActivity):
		tag := strings.TrimPrefix(data, prefixActivity)
		if tag == "" {
			return nil, false
		}
		if tag == suffixDone {
			return diary.ActivitiesDone{}, true
		}
		return diary.ActivityToggled{Tag: tag}, true
	}
	return nil, false
}

// Encode is the inverse of Decode for events that appear on buttons.
func Encode(ev diary.Event) (string, bool) {
	switch e := ev.(type) {
	case diary.ScoreSelected:
		return prefixScore + strconv.Itoa(e.Value), true
	case diary.SymptomToggled:
		return prefixSymptom + e.Tag, true
	case diary.SymptomsDone:
		return prefixSymptom + suffixDone, true
	case diary.MedicationSelected:
		if e.Taken {
			return prefixMedication + string(diary.MedicationYes), true
		}
		return prefixMedication + string(diary.MedicationNo), true
	case diary.ActivityToggled:
		return prefixActivity + e.Tag, true
	case diary.ActivitiesDone:
		return prefixActivity + suffixDone, true
	}
	return "", false
}

type command string

const (
	cmdNone   command = ""
	cmdStart  command = "start"
	cmdCancel command = "cancel"
	cmdOther  command = "other"
)

// parseCommand recognises "/start", "/cancel" and "/start@SomeBot args".
func parseCommand(text string) command {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return cmdNone
	}
	name, _, _ := strings.Cut(strings.TrimPrefix(text, "/"), " ")
	name, _, _ = strings.Cut(name, "@")
	switch strings.ToLower(name) {
	case string(cmdStart):
		return cmdStart
	case string(cmdCancel):
		return cmdCancel
	}
	return cmdOther
}
