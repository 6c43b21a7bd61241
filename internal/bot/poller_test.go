package bot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"allergy-diary/internal/platform/telegram"
)

type scriptedSource struct {
	mu      sync.Mutex
	batches [][]telegram.Update
	offsets []int64
	cancel  context.CancelFunc
	failed  bool
}

func (s *scriptedSource) GetUpdates(_ context.Context, offset int64, _ int) ([]telegram.Update, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offsets = append(s.offsets, offset)
	if !s.failed {
		s.failed = true
		return nil, errors.New("network down")
	}
	if len(s.batches) == 0 {
		s.cancel()
		return nil, nil
	}
	batch := s.batches[0]
	s.batches = s.batches[1:]
	return batch, nil
}

func (s *scriptedSource) DeleteWebhook(context.Context) error { return nil }

func TestPollerAdvancesOffsetAndHandlesUpdates(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &scriptedSource{
		cancel: cancel,
		batches: [][]telegram.Update{
			{{UpdateID: 40, Message: &telegram.Message{Chat: telegram.Chat{ID: 1}, Text: "/start"}}},
			{{UpdateID: 41, CallbackQuery: &telegram.CallbackQuery{ID: "a", Message: &telegram.Message{MessageID: 2, Chat: telegram.Chat{ID: 1}}, Data: "score_3"}}},
		},
	}
	p := NewPoller(src, h.handler)
	p.backoff = time.Millisecond

	if err := p.Run(ctx); err != nil {
		t.Fatalf("Run err: %v", err)
	}

	want := []int64{0, 0, 41, 42}
	if len(src.offsets) != len(want) {
		t.Fatalf("unexpected offsets %v", src.offsets)
	}
	for i := range want {
		if src.offsets[i] != want[i] {
			t.Fatalf("unexpected offsets %v, want %v", src.offsets, want)
		}
	}

	v, created := h.sessions.GetOrCreate(1)
	if created || v.Slot != 1 {
		t.Fatalf("updates were not applied: %+v created=%v", v, created)
	}
}
