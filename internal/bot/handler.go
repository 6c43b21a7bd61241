package bot

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"allergy-diary/internal/diary"
	"allergy-diary/internal/logger"
	"allergy-diary/internal/platform/telegram"
)

const (
	msgWelcome    = "Let's log your allergy data for today."
	msgNoSession  = "There is no log in progress. Send /start to begin."
	msgNotesSaved = "Notes saved successfully!"
	msgLogged     = "All data has been logged. Thank you!"
	msgCancelled  = "Bye! Your input has been canceled."
)

// Messenger is the outbound part of the chat transport. Satisfied by *telegram.Client.
type Messenger interface {
	SendPrompt(ctx context.Context, chatID int64, text string, markup *telegram.InlineKeyboardMarkup) (telegram.Message, error)
	EditMessageText(ctx context.Context, chatID int64, messageID int, text string, markup *telegram.InlineKeyboardMarkup) error
	AnswerCallbackQuery(ctx context.Context, callbackID string) error
}

// Recorder is satisfied by *record.Recorder.
type Recorder interface {
	Save(ctx context.Context, rec diary.Record) bool
}

// Handler turns Telegram updates into registry events and replies.
type Handler struct {
	sessions    *diary.Registry
	tg          Messenger
	recorder    Recorder
	saveTimeout time.Duration
}

func NewHandler(sessions *diary.Registry, tg Messenger, recorder Recorder) *Handler {
	return &Handler{
		sessions:    sessions,
		tg:          tg,
		recorder:    recorder,
		saveTimeout: 30 * time.Second,
	}
}

// ActiveSessions reports the number of logs in progress.
func (h *Handler) ActiveSessions() int {
	return h.sessions.Len()
}

// HandleUpdate processes one update. Errors are logged, never returned.
func (h *Handler) HandleUpdate(ctx context.Context, upd telegram.Update) {
	log := logger.ForUpdate(upd.ChatID())
	defer func() {
		if r := recover(); r != nil {
			log.Error("bot: panic while handling update", "updateId", upd.UpdateID, "panic", r)
		}
	}()

	switch {
	case upd.CallbackQuery != nil:
		h.handleCallback(ctx, log, upd.CallbackQuery)
	case upd.Message != nil && upd.Message.Text != "":
		h.handleMessage(ctx, log, upd.Message)
	default:
		log.Debug("bot: ignoring update", "updateId", upd.UpdateID)
	}
}

func (h *Handler) handleMessage(ctx context.Context, log *slog.Logger, msg *telegram.Message) {
	chatID := msg.Chat.ID

	switch parseCommand(msg.Text) {
	case cmdStart:
		prompt := h.sessions.Start(chatID)
		log.Info("bot: log started")
		h.send(ctx, log, chatID, msgWelcome, nil)
		h.send(ctx, log, chatID, prompt.Text, keyboard(prompt))
		return
	case cmdCancel:
		h.advance(ctx, log, chatID, 0, diary.Cancel{})
		return
	case cmdOther:
		log.Debug("bot: ignoring unknown command", "text", msg.Text)
		return
	}

	h.advance(ctx, log, chatID, 0, diary.TextSubmitted{Text: msg.Text})
}

func (h *Handler) handleCallback(ctx context.Context, log *slog.Logger, cq *telegram.CallbackQuery) {
	if err := h.tg.AnswerCallbackQuery(ctx, cq.ID); err != nil {
		log.Warn("bot: failed to answer callback", "error", err)
	}

	chatID, messageID := cq.From.ID, 0
	if cq.Message != nil {
		chatID, messageID = cq.Message.Chat.ID, cq.Message.MessageID
	}

	ev, ok := Decode(cq.Data)
	if !ok {
		log.Warn("bot: undecodable callback", "data", cq.Data)
		h.rerender(ctx, log, chatID, messageID)
		return
	}
	h.advance(ctx, log, chatID, messageID, ev)
}

// advance applies ev and replies. messageID is the prompt message to edit, or 0 to send a new one.
func (h *Handler) advance(ctx context.Context, log *slog.Logger, chatID int64, messageID int, ev diary.Event) {
	step, err := h.sessions.Advance(ctx, chatID, ev)
	switch {
	case errors.Is(err, diary.ErrNoActiveSession):
		log.Info("bot: event without active log", "event", diary.EventName(ev), "reason", err)
		h.send(ctx, log, chatID, msgNoSession, nil)
		return
	case errors.Is(err, diary.ErrMalformedEvent):
		log.Debug("bot: ignored malformed event", "event", diary.EventName(ev), "reason", err)
		h.show(ctx, log, chatID, messageID, step.Prompt)
		return
	case err != nil:
		log.Error("bot: failed to advance log", "event", diary.EventName(ev), "error", err)
		return
	}

	switch step.Output {
	case diary.OutputRerender, diary.OutputNext:
		h.show(ctx, log, chatID, messageID, step.Prompt)
	case diary.OutputFinalize:
		h.finalize(ctx, log, chatID, step.Record)
	case diary.OutputCancelled:
		log.Info("bot: log cancelled")
		h.send(ctx, log, chatID, msgCancelled, nil)
	}
}

func (h *Handler) finalize(ctx context.Context, log *slog.Logger, chatID int64, rec *diary.Record) {
	h.send(ctx, log, chatID, msgNotesSaved, nil)

	if rec != nil {
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.saveTimeout)
		h.recorder.Save(saveCtx, *rec)
		cancel()
	}

	log.Info("bot: log completed")
	h.send(ctx, log, chatID, msgLogged, nil)
}

func (h *Handler) rerender(ctx context.Context, log *slog.Logger, chatID int64, messageID int) {
	prompt, err := h.sessions.Current(chatID)
	if err != nil {
		h.send(ctx, log, chatID, msgNoSession, nil)
		return
	}
	h.show(ctx, log, chatID, messageID, prompt)
}

// show edits the prompt message in place when possible. Text questions
// always go out as a fresh message so the reply box is next to them.
func (h *Handler) show(ctx context.Context, log *slog.Logger, chatID int64, messageID int, p diary.Prompt) {
	if p.Text == "" {
		return
	}
	if messageID != 0 && !p.ExpectsText {
		if err := h.tg.EditMessageText(ctx, chatID, messageID, p.Text, keyboard(p)); err != nil {
			log.Warn("bot: failed to edit prompt", "error", err)
		}
		return
	}
	h.send(ctx, log, chatID, p.Text, keyboard(p))
}

func (h *Handler) send(ctx context.Context, log *slog.Logger, chatID int64, text string, markup *telegram.InlineKeyboardMarkup) {
	if _, err := h.tg.SendPrompt(ctx, chatID, text, markup); err != nil {
		log.Warn("bot: failed to send message", "error", err)
	}
}

func keyboard(p diary.Prompt) *telegram.InlineKeyboardMarkup {
	if len(p.Rows) == 0 {
		return nil
	}
	rows := make([][]telegram.InlineKeyboardButton, 0, len(p.Rows))
	for _, row := range p.Rows {
		buttons := make([]telegram.InlineKeyboardButton, 0, len(row))
		for _, opt := range row {
			data, ok := Encode(opt.Event)
			if !ok {
				continue
			}
			buttons = append(buttons, telegram.InlineKeyboardButton{Text: opt.Label, CallbackData: data})
		}
		if len(buttons) > 0 {
			rows = append(rows, buttons)
		}
	}
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}
