package diary

// Answers accumulates the partial answers of one session.
// Only the machine writes to it; readers receive clones.
type Answers struct {
	Scores     map[ScoreSlot]int
	Symptoms   []string
	Medication Medication
	Activities []string
	Notes      string
}

func NewAnswers() *Answers {
	return &Answers{Scores: make(map[ScoreSlot]int, len(Slots))}
}

func (a *Answers) SetScore(slot ScoreSlot, value int) {
	if a.Scores == nil {
		a.Scores = make(map[ScoreSlot]int, len(Slots))
	}
	a.Scores[slot] = value
}

// Score returns the rating for slot and whether it has been given.
func (a Answers) Score(slot ScoreSlot) (int, bool) {
	v, ok := a.Scores[slot]
	return v, ok
}

func (a *Answers) ToggleSymptom(tag string) {
	a.Symptoms = toggle(a.Symptoms, tag)
}

func (a *Answers) ToggleActivity(tag string) {
	a.Activities = toggle(a.Activities, tag)
}

func (a *Answers) SetMedication(m Medication) {
	a.Medication = m
}

func (a *Answers) SetNotes(text string) {
	a.Notes = text
}

// Clone returns a deep copy.
func (a *Answers) Clone() Answers {
	out := Answers{
		Scores:     make(map[ScoreSlot]int, len(a.Scores)),
		Medication: a.Medication,
		Notes:      a.Notes,
	}
	for k, v := range a.Scores {
		out.Scores[k] = v
	}
	if a.Symptoms != nil {
		out.Symptoms = append([]string(nil), a.Symptoms...)
	}
	if a.Activities != nil {
		out.Activities = append([]string(nil), a.Activities...)
	}
	return out
}

// toggle removes tag if present, otherwise appends it. Order of the rest is kept.
func toggle(tags []string, tag string) []string {
	for i, t := range tags {
		if t == tag {
			return append(tags[:i:i], tags[i+1:]...)
		}
	}
	return append(tags, tag)
}
