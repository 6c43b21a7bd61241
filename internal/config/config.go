package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"allergy-diary/internal/diary"
)

// Error is a missing or invalid startup setting. The process must not start.
type Error struct {
	Key    string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("configuration error: %s %s", e.Key, e.Reason)
}

// Config aggregates every setting of the service.
type Config struct {
	Server   ServerConfig
	Telegram TelegramConfig
	Sheets   SheetsConfig
	Database DatabaseConfig
	Report   ReportConfig
	Reminder ReminderConfig
	Session  SessionConfig
	// Location is used for row timestamps and the reminder clock.
	Location *time.Location
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}
	telegram, err := loadTelegramConfig()
	if err != nil {
		return nil, err
	}
	sheets, err := loadSheetsConfig()
	if err != nil {
		return nil, err
	}
	report, err := loadReportConfig()
	if err != nil {
		return nil, err
	}
	reminder, err := loadReminderConfig()
	if err != nil {
		return nil, err
	}
	session, err := loadSessionConfig()
	if err != nil {
		return nil, err
	}

	tz := getEnvOrDefault("TIMEZONE", "Asia/Kolkata")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, &Error{Key: "TIMEZONE", Reason: fmt.Sprintf("is not a known zone (%q)", tz)}
	}

	return &Config{
		Server:   server,
		Telegram: telegram,
		Sheets:   sheets,
		Database: loadDatabaseConfig(),
		Report:   report,
		Reminder: reminder,
		Session:  session,
		Location: loc,
	}, nil
}

type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}
	if strings.Contains(port, ":") {
		return ServerConfig{Addr: port}, nil
	}
	if strings.Contains(port, " ") {
		return ServerConfig{}, &Error{Key: "PORT", Reason: fmt.Sprintf("is invalid (%q)", port)}
	}
	return ServerConfig{Addr: ":" + port}, nil
}

type TelegramConfig struct {
	Token string
	// WebhookURL switches from long polling to webhook delivery when set.
	WebhookURL    string
	WebhookSecret string
}

func loadTelegramConfig() (TelegramConfig, error) {
	token := strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
	if token == "" {
		token = strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN"))
	}
	if token == "" {
		return TelegramConfig{}, &Error{Key: "TELEGRAM_BOT_TOKEN", Reason: "is required"}
	}
	return TelegramConfig{
		Token:         token,
		WebhookURL:    strings.TrimSpace(os.Getenv("TELEGRAM_WEBHOOK_URL")),
		WebhookSecret: strings.TrimSpace(os.Getenv("TELEGRAM_WEBHOOK_SECRET")),
	}, nil
}

type SheetsConfig struct {
	CredentialsJSON []byte
	SpreadsheetID   string
	Range           string
}

func loadSheetsConfig() (SheetsConfig, error) {
	creds := strings.TrimSpace(os.Getenv("GOOGLE_SHEETS_CREDS_JSON"))
	if creds == "" {
		return SheetsConfig{}, &Error{Key: "GOOGLE_SHEETS_CREDS_JSON", Reason: "is required"}
	}
	if !json.Valid([]byte(creds)) {
		return SheetsConfig{}, &Error{Key: "GOOGLE_SHEETS_CREDS_JSON", Reason: "is not valid JSON"}
	}
	sheetID := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_ID"))
	if sheetID == "" {
		return SheetsConfig{}, &Error{Key: "GOOGLE_SHEET_ID", Reason: "is required"}
	}
	return SheetsConfig{
		CredentialsJSON: []byte(creds),
		SpreadsheetID:   sheetID,
		Range:           getEnvOrDefault("GOOGLE_SHEET_RANGE", "Sheet1"),
	}, nil
}

// DatabaseConfig enables the Postgres archive when URL is set.
type DatabaseConfig struct {
	URL            string
	MigrationsPath string
}

func (c DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URL:            strings.TrimSpace(os.Getenv("DATABASE_URL")),
		MigrationsPath: getEnvOrDefault("MIGRATIONS_PATH", "file://migrations"),
	}
}

// ReportConfig enables PDF summaries when DoctorChatID is set.
type ReportConfig struct {
	DoctorChatID int64
	FontPaths    []string
}

func (c ReportConfig) Enabled() bool {
	return c.DoctorChatID != 0
}

func loadReportConfig() (ReportConfig, error) {
	var chatID int64
	if raw := strings.TrimSpace(os.Getenv("DOCTOR_CHAT_ID")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return ReportConfig{}, &Error{Key: "DOCTOR_CHAT_ID", Reason: fmt.Sprintf("is not a chat id (%q)", raw)}
		}
		chatID = id
	}
	var fonts []string
	if path := strings.TrimSpace(os.Getenv("REPORT_FONT_PATH")); path != "" {
		fonts = []string{path}
	}
	return ReportConfig{DoctorChatID: chatID, FontPaths: fonts}, nil
}

type ReminderConfig struct {
	ChatIDs []int64
	Time    string
}

func (c ReminderConfig) Enabled() bool {
	return len(c.ChatIDs) > 0
}

func loadReminderConfig() (ReminderConfig, error) {
	ids, err := parseIDListEnv("REMINDER_CHAT_IDS")
	if err != nil {
		return ReminderConfig{}, err
	}
	return ReminderConfig{
		ChatIDs: ids,
		Time:    getEnvOrDefault("REMINDER_TIME", "22:00"),
	}, nil
}

type SessionConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

func loadSessionConfig() (SessionConfig, error) {
	ttl, err := parseDurationEnv("SESSION_TTL", diary.DefaultSessionTTL)
	if err != nil {
		return SessionConfig{}, err
	}
	interval, err := parseDurationEnv("SESSION_SWEEP_INTERVAL", 5*time.Minute)
	if err != nil {
		return SessionConfig{}, err
	}
	return SessionConfig{TTL: ttl, SweepInterval: interval}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, &Error{Key: key, Reason: fmt.Sprintf("is not a duration (%q)", raw)}
	}
	return d, nil
}

func parseIDListEnv(key string) ([]int64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, &Error{Key: key, Reason: fmt.Sprintf("contains an invalid chat id (%q)", part)}
		}
		ids = append(ids, id)
	}
	return ids, nil
}
