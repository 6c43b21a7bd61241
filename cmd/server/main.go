package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"allergy-diary/internal/bot"
	"allergy-diary/internal/config"
	"allergy-diary/internal/diary"
	"allergy-diary/internal/logger"
	"allergy-diary/internal/platform/sheets"
	"allergy-diary/internal/platform/telegram"
	"allergy-diary/internal/record"
	"allergy-diary/internal/reminder"
	"allergy-diary/internal/report"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
	}
	logger.Init()

	// 1. Configuration: missing secrets abort startup
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// 2. Clients
	tgClient := telegram.NewClient(cfg.Telegram.Token)

	sheetsClient, err := sheets.NewClient(ctx, cfg.Sheets.CredentialsJSON, cfg.Sheets.SpreadsheetID, cfg.Sheets.Range)
	if err != nil {
		log.Fatalf("failed to initialise Google Sheets client: %v", err)
	}

	// 3. Record sinks
	sinks := record.Fanout{record.NewSheetsSink(sheetsClient, cfg.Location)}

	if cfg.Database.Enabled() {
		db, err := openDB(ctx, cfg.Database.URL)
		if err != nil {
			slog.Warn("could not connect to database, continuing without the Postgres archive", "error", err)
		} else {
			defer db.Close()
			if err := record.Migrate(cfg.Database.MigrationsPath, cfg.Database.URL); err != nil {
				slog.Warn("migrations failed, continuing without the Postgres archive", "error", err)
			} else {
				slog.Info("migrations applied")
				sinks = append(sinks, record.NewPostgresSink(db))
			}
		}
	}

	if cfg.Report.Enabled() {
		sinks = append(sinks, report.NewService(tgClient, cfg.Report.DoctorChatID, cfg.Report.FontPaths, cfg.Location))
		slog.Info("PDF reports enabled", "doctorChatId", cfg.Report.DoctorChatID)
	}

	// 4. Conversation core
	sessions := diary.NewRegistry(diary.WithTTL(cfg.Session.TTL))
	go sessions.Run(ctx, cfg.Session.SweepInterval)

	handler := bot.NewHandler(sessions, tgClient, record.NewRecorder(sinks))

	// 5. Daily reminder
	if cfg.Reminder.Enabled() {
		sched, err := reminder.NewScheduler(tgClient, cfg.Reminder.ChatIDs, cfg.Reminder.Time, cfg.Location)
		if err != nil {
			log.Fatalf("invalid reminder configuration: %v", err)
		}
		if err := sched.Start(); err != nil {
			log.Fatalf("failed to start reminder: %v", err)
		}
		defer sched.Stop()
	} else {
		slog.Info("reminder disabled: REMINDER_CHAT_IDS is empty")
	}

	// 6. Update delivery
	if cfg.Telegram.WebhookURL != "" {
		if err := tgClient.SetWebhook(ctx, cfg.Telegram.WebhookURL, cfg.Telegram.WebhookSecret); err != nil {
			log.Fatalf("failed to register webhook: %v", err)
		}
		slog.Info("receiving updates by webhook", "url", cfg.Telegram.WebhookURL)
	} else {
		go func() {
			if err := bot.NewPoller(tgClient, handler).Run(ctx); err != nil {
				slog.Error("poller stopped", "error", err)
			}
		}()
	}

	startServer(ctx, cfg.Server, bot.NewRouter(handler, cfg.Telegram.WebhookSecret))
}

func openDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	for i := 0; i < 10; i++ {
		if err = db.PingContext(ctx); err == nil {
			slog.Info("connected to database")
			return db, nil
		}
		slog.Info(fmt.Sprintf("waiting for database... (%d/10)", i+1), "error", err)
		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	db.Close()
	return nil, err
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	slog.Info("allergy diary listening", "addr", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
