// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/typinglab/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

const prefDuration = "duration_seconds"

// Store wraps SQLite access for session history, preferences and training
// progress.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			mode TEXT NOT NULL,
			reason TEXT NOT NULL,
			wpm REAL NOT NULL,
			accuracy REAL NOT NULL,
			duration_seconds INTEGER NOT NULL,
			elapsed_seconds INTEGER NOT NULL,
			prompt_id INTEGER NOT NULL,
			level_id INTEGER NOT NULL,
			training_mode TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS session_samples (
			session_id TEXT NOT NULL,
			idx INTEGER NOT NULL,
			wpm REAL NOT NULL,
			accuracy REAL NOT NULL,
			PRIMARY KEY (session_id, idx)
		);`,
		`CREATE TABLE IF NOT EXISTS preferences (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS training_progress (
			mode TEXT NOT NULL,
			level INTEGER NOT NULL,
			percent INTEGER NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (mode, level)
		);`,
		`CREATE TABLE IF NOT EXISTS submissions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			wpm REAL NOT NULL,
			accuracy REAL NOT NULL,
			duration_seconds INTEGER NOT NULL,
			prompt_id INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_user ON submissions(user_id, created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSession stores a finished session with its per-second samples. An
// empty record ID is replaced by a new UUID, which is returned.
func (s *Store) InsertSession(ctx context.Context, rec model.SessionRecord, samples []model.MetricSample) (id string, err error) {
	id = rec.ID
	if id == "" {
		id = uuid.NewString()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, started_at, ended_at, mode, reason, wpm, accuracy, duration_seconds, elapsed_seconds, prompt_id, level_id, training_mode)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		rec.StartedAt.UTC().Format(time.RFC3339Nano),
		rec.EndedAt.UTC().Format(time.RFC3339Nano),
		string(rec.Mode),
		rec.Reason,
		rec.WPM,
		rec.Accuracy,
		rec.DurationSeconds,
		rec.ElapsedSeconds,
		rec.PromptID,
		rec.LevelID,
		rec.TrainingMode,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert session: %w", err)
	}

	if len(samples) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO session_samples (session_id, idx, wpm, accuracy) VALUES (?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return "", fmt.Errorf("failed to prepare sample insert: %w", err)
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for i, sample := range samples {
			if _, err = stmt.ExecContext(ctx, id, i, sample.WPM, sample.Accuracy); err != nil {
				return "", fmt.Errorf("failed to insert sample: %w", err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit session: %w", err)
	}
	return id, nil
}

// ListSessions returns session aggregates filtered by stats config, oldest first.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Mode != "" {
		clauses = append(clauses, "s.mode = ?")
		args = append(args, cfg.Mode)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "s.ended_at >= ?")
		args = append(args, cfg.Since.UTC().Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT s.id, s.ended_at, s.mode, s.reason, s.wpm, s.accuracy, s.duration_seconds,
			(SELECT COUNT(*) FROM session_samples ss WHERE ss.session_id = s.id)
		FROM sessions s
		WHERE %s
		ORDER BY s.ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var endedAt, mode string
		if err := rows.Scan(&agg.ID, &endedAt, &mode, &agg.Reason, &agg.WPM, &agg.Accuracy, &agg.DurationSeconds, &agg.SampleCount); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse ended_at: %w", err)
		}
		agg.EndedAt = parsed
		agg.Mode = model.Mode(mode)
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// SessionSamples returns the per-second samples of a session in order.
func (s *Store) SessionSamples(ctx context.Context, sessionID string) ([]model.MetricSample, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT wpm, accuracy FROM session_samples WHERE session_id = ? ORDER BY idx ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var samples []model.MetricSample
	for rows.Next() {
		var sample model.MetricSample
		if err := rows.Scan(&sample.WPM, &sample.Accuracy); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return samples, nil
}

// PreferredDuration returns the stored session duration, if any.
func (s *Store) PreferredDuration(ctx context.Context) (int, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, prefDuration).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to load preferred duration: %w", err)
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, nil
	}
	return seconds, true, nil
}

// SetPreferredDuration stores the session duration.
func (s *Store) SetPreferredDuration(ctx context.Context, seconds int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO preferences (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		prefDuration, strconv.Itoa(seconds))
	if err != nil {
		return fmt.Errorf("failed to save preferred duration: %w", err)
	}
	return nil
}

// TrainingProgress returns every stored level percent.
func (s *Store) TrainingProgress(ctx context.Context) (model.Progress, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT mode, level, percent FROM training_progress`)
	if err != nil {
		return nil, fmt.Errorf("failed to query training progress: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	progress := model.Progress{}
	for rows.Next() {
		var mode string
		var level, percent int
		if err := rows.Scan(&mode, &level, &percent); err != nil {
			return nil, fmt.Errorf("failed to scan training progress: %w", err)
		}
		progress.Set(mode, level, percent)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return progress, nil
}

// SaveTrainingProgress stores a level percent. A lower percent never
// replaces a higher one.
func (s *Store) SaveTrainingProgress(ctx context.Context, mode string, level, percent int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO training_progress (mode, level, percent, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(mode, level) DO UPDATE SET
			percent = MAX(training_progress.percent, excluded.percent),
			updated_at = excluded.updated_at`,
		mode, level, percent, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save training progress: %w", err)
	}
	return nil
}

// InsertSubmission stores a ranked result. Submissions are idempotent by ID;
// the return value reports whether a new row was written.
func (s *Store) InsertSubmission(ctx context.Context, sub model.Submission) (bool, error) {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO submissions (id, user_id, wpm, accuracy, duration_seconds, prompt_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.UserID, sub.WPM, sub.Accuracy, sub.DurationSeconds, sub.PromptID,
		sub.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return false, fmt.Errorf("failed to insert submission: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

// ListSubmissions returns a user's submissions, newest first.
func (s *Store) ListSubmissions(ctx context.Context, userID string, limit int) ([]model.Submission, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, wpm, accuracy, duration_seconds, prompt_id, created_at
		 FROM submissions WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var subs []model.Submission
	for rows.Next() {
		var sub model.Submission
		var createdAt string
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.WPM, &sub.Accuracy, &sub.DurationSeconds, &sub.PromptID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		parsed, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		sub.CreatedAt = parsed
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return subs, nil
}
