package record

import (
	"context"
	"time"

	"allergy-diary/internal/diary"
)

// RowAppender is satisfied by *sheets.Client.
type RowAppender interface {
	AppendRow(ctx context.Context, row []any) error
}

// SheetsSink appends one spreadsheet row per record.
type SheetsSink struct {
	appender RowAppender
	loc      *time.Location
}

func NewSheetsSink(appender RowAppender, loc *time.Location) *SheetsSink {
	return &SheetsSink{appender: appender, loc: loc}
}

func (s *SheetsSink) Persist(ctx context.Context, rec diary.Record) error {
	if err := s.appender.AppendRow(ctx, Row(rec, s.loc)); err != nil {
		return &SinkError{Sink: "sheets", Err: err}
	}
	return nil
}
