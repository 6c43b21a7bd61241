package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

const DefaultText = "Don't forget to log your allergy data for today!"

// Notifier is satisfied by *telegram.Client.
type Notifier interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Scheduler sends a daily nudge to a fixed list of chats. It knows nothing
// about sessions; it only sends a message.
type Scheduler struct {
	notifier Notifier
	chatIDs  []int64
	text     string
	spec     string
	cron     *cron.Cron
	timeout  time.Duration
}

// NewScheduler builds a scheduler firing every day at clock ("HH:MM") in loc.
func NewScheduler(notifier Notifier, chatIDs []int64, clock string, loc *time.Location) (*Scheduler, error) {
	spec, err := DailySpec(clock)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		notifier: notifier,
		chatIDs:  append([]int64(nil), chatIDs...),
		text:     DefaultText,
		spec:     spec,
		cron:     cron.New(cron.WithLocation(loc)),
		timeout:  30 * time.Second,
	}, nil
}

// Start registers the daily job and starts the cron goroutine.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.Fire(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule reminder %q: %w", s.spec, err)
	}
	s.cron.Start()
	slog.Info("reminder: scheduled", "spec", s.spec, "location", s.cron.Location().String(), "targets", len(s.chatIDs))
	return nil
}

// Stop halts scheduling and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Fire sends the reminder to every target now. Failures are logged per chat.
func (s *Scheduler) Fire(ctx context.Context) int {
	sent := 0
	for _, id := range s.chatIDs {
		if err := s.notifier.SendMessage(ctx, id, s.text); err != nil {
			slog.Error("reminder: failed to send", "chatId", id, "error", err)
			continue
		}
		sent++
	}
	return sent
}

// DailySpec converts "HH:MM" into a cron expression.
func DailySpec(clock string) (string, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(clock), ":")
	if !ok {
		return "", fmt.Errorf("invalid reminder time %q: want HH:MM", clock)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid reminder hour in %q", clock)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid reminder minute in %q", clock)
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}
