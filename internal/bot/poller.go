package bot

import (
	"context"
	"log/slog"
	"time"

	"allergy-diary/internal/platform/telegram"
)

// UpdateSource is satisfied by *telegram.Client.
type UpdateSource interface {
	GetUpdates(ctx context.Context, offset int64, timeoutSeconds int) ([]telegram.Update, error)
	DeleteWebhook(ctx context.Context) error
}

// Poller long-polls Telegram and feeds updates to the handler one at a time.
type Poller struct {
	source      UpdateSource
	handler     *Handler
	pollTimeout int
	backoff     time.Duration
}

func NewPoller(source UpdateSource, handler *Handler) *Poller {
	return &Poller{
		source:      source,
		handler:     handler,
		pollTimeout: 30,
		backoff:     3 * time.Second,
	}
}

// Run polls until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	if err := p.source.DeleteWebhook(ctx); err != nil {
		slog.Warn("bot: failed to clear webhook before polling", "error", err)
	}
	slog.Info("bot: polling for updates", "timeout", p.pollTimeout)

	var offset int64
	for {
		if ctx.Err() != nil {
			return nil
		}

		updates, err := p.source.GetUpdates(ctx, offset, p.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Warn("bot: getUpdates failed", "error", err, "retryIn", p.backoff)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(p.backoff):
			}
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			p.handler.HandleUpdate(ctx, upd)
		}
	}
}
