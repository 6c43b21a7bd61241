package reminder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
)

type fakeNotifier struct {
	mu   sync.Mutex
	sent []int64
	fail map[int64]bool
}

func (f *fakeNotifier) SendMessage(_ context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[chatID] {
		return errors.New("blocked")
	}
	if text != DefaultText {
		return errors.New("unexpected text")
	}
	f.sent = append(f.sent, chatID)
	return nil
}

func TestDailySpec(t *testing.T) {
	cases := map[string]string{
		"22:00": "0 22 * * *",
		"07:05": "5 7 * * *",
		" 0:30": "30 0 * * *",
	}
	for in, want := range cases {
		got, err := DailySpec(in)
		if err != nil || got != want {
			t.Errorf("DailySpec(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	for _, bad := range []string{"", "22", "24:00", "12:60", "ab:cd"} {
		if _, err := DailySpec(bad); err == nil {
			t.Errorf("DailySpec(%q) should fail", bad)
		}
	}
}

func TestSpecFiresAtLocalTime(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	spec, err := DailySpec("22:00")
	if err != nil {
		t.Fatal(err)
	}
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	next := sched.Next(time.Date(2024, 5, 1, 12, 0, 0, 0, loc))
	want := time.Date(2024, 5, 1, 22, 0, 0, 0, loc)
	if !next.Equal(want) {
		t.Fatalf("next run %s, want %s", next, want)
	}
}

func TestFireContinuesPastFailures(t *testing.T) {
	n := &fakeNotifier{fail: map[int64]bool{2: true}}
	s, err := NewScheduler(n, []int64{1, 2, 3}, "22:00", time.UTC)
	if err != nil {
		t.Fatal(err)
	}

	if sent := s.Fire(context.Background()); sent != 2 {
		t.Fatalf("expected 2 reminders sent, got %d", sent)
	}
	if len(n.sent) != 2 || n.sent[0] != 1 || n.sent[1] != 3 {
		t.Fatalf("unexpected recipients %v", n.sent)
	}
}

func TestStartStop(t *testing.T) {
	s, err := NewScheduler(&fakeNotifier{}, []int64{1}, "22:00", time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start err: %v", err)
	}
	s.Stop()
}
