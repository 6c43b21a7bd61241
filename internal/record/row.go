package record

import (
	"strings"
	"time"

	"allergy-diary/internal/diary"
)

// TimestampLayout is the format of the first column.
const TimestampLayout = "2006-01-02 15:04:05"

// Columns names the row layout, in order.
var Columns = []string{
	"timestamp", "sleep", "morning", "afternoon", "evening",
	"symptoms", "medication", "activities", "notes",
}

// Row flattens rec into the fixed column order. Absent values become "",
// list values are joined with ", ".
func Row(rec diary.Record, loc *time.Location) []any {
	if loc == nil {
		loc = time.Local
	}
	a := rec.Answers

	row := make([]any, 0, len(Columns))
	row = append(row, rec.RecordedAt.In(loc).Format(TimestampLayout))
	for _, slot := range diary.Slots {
		if v, ok := a.Score(slot); ok {
			row = append(row, v)
		} else {
			row = append(row, "")
		}
	}
	row = append(row,
		strings.Join(a.Symptoms, ", "),
		string(a.Medication),
		strings.Join(a.Activities, ", "),
		a.Notes,
	)
	return row
}
