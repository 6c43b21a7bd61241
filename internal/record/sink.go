package record

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"

	"allergy-diary/internal/diary"
)

// Sink persists a completed diary record somewhere outside the process.
type Sink interface {
	Persist(ctx context.Context, rec diary.Record) error
}

// SinkError reports which sink failed.
type SinkError struct {
	Sink string
	Err  error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("%s sink: %v", e.Sink, e.Err)
}

func (e *SinkError) Unwrap() error {
	return e.Err
}

// Fanout writes each record to every sink. All sinks are attempted;
// failures are collected into one error.
type Fanout []Sink

func (f Fanout) Persist(ctx context.Context, rec diary.Record) error {
	var result *multierror.Error
	for _, s := range f {
		if err := persist(ctx, s, rec); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// Recorder applies the best-effort policy: a failed write is logged and
// dropped. There is no retry and the conversation is never told.
type Recorder struct {
	sink Sink
}

func NewRecorder(sink Sink) *Recorder {
	return &Recorder{sink: sink}
}

// Save persists rec and reports whether every sink accepted it.
func (r *Recorder) Save(ctx context.Context, rec diary.Record) bool {
	log := slog.With("recordId", rec.ID.String(), "chatId", rec.SessionID)
	if err := persist(ctx, r.sink, rec); err != nil {
		log.Error("failed to persist diary record", "error", err)
		return false
	}
	log.Info("diary record persisted")
	return true
}

// persist calls s.Persist, turning a panic into a SinkError.
func persist(ctx context.Context, s Sink, rec diary.Record) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &SinkError{Sink: fmt.Sprintf("%T", s), Err: fmt.Errorf("panic: %v", p)}
		}
	}()
	return s.Persist(ctx, rec)
}
