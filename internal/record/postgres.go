package record

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"allergy-diary/internal/diary"
)

// PostgresSink archives records in the diary_entries table.
type PostgresSink struct {
	db *sql.DB
}

func NewPostgresSink(db *sql.DB) *PostgresSink {
	return &PostgresSink{db: db}
}

func (s *PostgresSink) Persist(ctx context.Context, rec diary.Record) error {
	if err := s.insert(ctx, rec); err != nil {
		return &SinkError{Sink: "postgres", Err: err}
	}
	return nil
}

func (s *PostgresSink) insert(ctx context.Context, rec diary.Record) error {
	symptomsJSON, err := json.Marshal(nonNil(rec.Answers.Symptoms))
	if err != nil {
		return err
	}
	activitiesJSON, err := json.Marshal(nonNil(rec.Answers.Activities))
	if err != nil {
		return err
	}

	scores := make([]sql.NullInt32, len(diary.Slots))
	for i, slot := range diary.Slots {
		if v, ok := rec.Answers.Score(slot); ok {
			scores[i] = sql.NullInt32{Int32: int32(v), Valid: true}
		}
	}

	query := `
		INSERT INTO diary_entries (
			id, chat_id, recorded_at,
			sleep_score, morning_score, afternoon_score, evening_score,
			symptoms, medication, activities, notes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10, $11)
		ON CONFLICT (id) DO NOTHING
	`
	_, err = s.db.ExecContext(ctx, query,
		rec.ID, rec.SessionID, rec.RecordedAt,
		scores[0], scores[1], scores[2], scores[3],
		string(symptomsJSON), string(rec.Answers.Medication), string(activitiesJSON), rec.Answers.Notes)
	if err != nil {
		return fmt.Errorf("failed to insert diary entry: %w", err)
	}
	return nil
}

// Migrate applies the schema migrations found at sourceURL (e.g. file://migrations).
func Migrate(sourceURL, databaseURL string) error {
	m, err := migrate.New(sourceURL, databaseURL)
	if err != nil {
		return fmt.Errorf("migration init failed: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
