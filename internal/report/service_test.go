package report

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"allergy-diary/internal/diary"
	"allergy-diary/internal/record"
)

type fakeSender struct {
	chatID   int64
	fileName string
	data     []byte
	calls    int
	err      error
}

func (f *fakeSender) SendDocument(_ context.Context, chatID int64, data []byte, fileName string) error {
	f.calls++
	f.chatID, f.fileName, f.data = chatID, fileName, data
	return f.err
}

func sampleRecord() diary.Record {
	a := diary.NewAnswers()
	for i, slot := range diary.Slots {
		a.SetScore(slot, i+2)
	}
	a.ToggleSymptom("sneezing")
	a.SetMedication(diary.MedicationNo)
	a.ToggleActivity("indoors")
	a.SetNotes("felt better by evening")
	return diary.Record{
		SessionID:  7,
		RecordedAt: time.Date(2024, 5, 1, 16, 30, 5, 0, time.UTC),
		Answers:    a.Clone(),
	}
}

func TestPersistSendsPDFWithBundledFont(t *testing.T) {
	sender := &fakeSender{}
	missing := filepath.Join(t.TempDir(), "missing.ttf")
	ist, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatal(err)
	}
	svc := NewService(sender, 99, []string{missing}, ist)

	if err := svc.Persist(context.Background(), sampleRecord()); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if sender.calls != 1 || sender.chatID != 99 {
		t.Fatalf("expected one document to chat 99, got %d to %d", sender.calls, sender.chatID)
	}
	if sender.fileName != "allergy_log_2024-05-01.pdf" {
		t.Fatalf("unexpected file name %q", sender.fileName)
	}
	if !bytes.HasPrefix(sender.data, []byte("%PDF-")) {
		t.Fatalf("document is not a PDF: %q", sender.data[:min(len(sender.data), 16)])
	}
}

func TestPersistWrapsSendFailure(t *testing.T) {
	boom := errors.New("bot blocked")
	svc := NewService(&fakeSender{err: boom}, 99, nil, time.UTC)

	err := svc.Persist(context.Background(), sampleRecord())
	var sinkErr *record.SinkError
	if !errors.As(err, &sinkErr) || sinkErr.Sink != "report" {
		t.Fatalf("expected report SinkError, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestSummaryLines(t *testing.T) {
	a := diary.NewAnswers()
	a.ToggleSymptom("sneezing")
	a.ToggleSymptom("congestion")
	a.SetMedication(diary.MedicationYes)

	got := strings.Join(summaryLines(a.Clone()), "\n")
	want := "Symptoms: sneezing, congestion\nMedication: yes\nActivities: -\nNotes: -"
	if got != want {
		t.Fatalf("unexpected summary:\n%s", got)
	}
}
