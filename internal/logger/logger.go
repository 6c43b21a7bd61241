package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Init configures the default slog logger from LOG_LEVEL, LOG_FORMAT and LOG_FILE.
// Without LOG_FILE it writes to stdout.
func Init() {
	level := parseLevel(os.Getenv("LOG_LEVEL"))
	opts := &slog.HandlerOptions{Level: level}

	var w io.Writer = os.Stdout
	if logFile := os.Getenv("LOG_FILE"); logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
			slog.Error("failed to create log directory, using stdout only", "file", logFile, "error", err)
		} else if f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			slog.Error("failed to open log file, using stdout only", "file", logFile, "error", err)
		} else {
			w = f
		}
	}

	slog.SetDefault(slog.New(newHandler(w, os.Getenv("LOG_FORMAT"), opts)))
}

func newHandler(w io.Writer, format string, opts *slog.HandlerOptions) slog.Handler {
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ForUpdate returns a logger tagged with a fresh requestId and the chat id.
func ForUpdate(chatID int64) *slog.Logger {
	return slog.With("requestId", uuid.Must(uuid.NewV7()).String(), "chatId", chatID)
}
