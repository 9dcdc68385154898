// Package store persists evaluations and the LLM request log in a local
// SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vmonsalve/rubrica/internal/evaluator"
	"github.com/vmonsalve/rubrica/internal/llm"
)

const schema = `
CREATE TABLE IF NOT EXISTS evaluations (
	id           TEXT PRIMARY KEY,
	subject_id   TEXT NOT NULL,
	subject_name TEXT NOT NULL,
	repository   TEXT NOT NULL,
	grade        REAL NOT NULL,
	percent      REAL NOT NULL,
	status       TEXT NOT NULL,
	created_at   TEXT NOT NULL,
	payload      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_evaluations_subject
	ON evaluations(subject_id, created_at);

CREATE TABLE IF NOT EXISTS llm_requests (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at    TEXT NOT NULL,
	provider      TEXT NOT NULL,
	model         TEXT NOT NULL,
	purpose       TEXT NOT NULL,
	input_tokens  INTEGER NOT NULL,
	output_tokens INTEGER NOT NULL,
	latency_ms    INTEGER NOT NULL,
	success       INTEGER NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	request_body  TEXT NOT NULL,
	response_body TEXT NOT NULL
);
`

// Store wraps the SQLite database. Safe for concurrent use; the driver
// serializes writes and WAL keeps readers unblocked.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the database at path and applies
// the schema. Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DefaultDBPath resolves the database location: $RUBRICA_DB if set, else
// $XDG_DATA_HOME/rubrica/rubrica.db, else ~/.local/share/rubrica/rubrica.db.
func DefaultDBPath() string {
	if p := os.Getenv("RUBRICA_DB"); p != "" {
		return p
	}
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "rubrica", "rubrica.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "rubrica.db"
	}
	return filepath.Join(home, ".local", "share", "rubrica", "rubrica.db")
}

// SaveEvaluation persists one evaluation. The full record is stored as
// JSON; the indexed columns exist for queries and sorting.
func (s *Store) SaveEvaluation(ctx context.Context, ev *evaluator.Evaluation) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("serialize evaluation: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO evaluations
			(id, subject_id, subject_name, repository, grade, percent, status, created_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.SubjectID, ev.SubjectName, ev.Repository,
		ev.Grade, ev.Percent, string(ev.Status),
		ev.CreatedAt.UTC().Format(time.RFC3339Nano), string(payload))
	if err != nil {
		return fmt.Errorf("insert evaluation: %w", err)
	}
	return nil
}

// ListEvaluations returns up to limit evaluations, newest first.
// A non-positive limit returns everything.
func (s *Store) ListEvaluations(ctx context.Context, limit int) ([]*evaluator.Evaluation, error) {
	if limit <= 0 {
		limit = -1 // sqlite: no limit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM evaluations ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query evaluations: %w", err)
	}
	defer rows.Close()
	return scanEvaluations(rows)
}

// SubjectHistory returns one subject's evaluations in chronological
// order, the shape the monitoring agent expects.
func (s *Store) SubjectHistory(ctx context.Context, subjectID string) ([]*evaluator.Evaluation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM evaluations WHERE subject_id = ? ORDER BY created_at ASC`, subjectID)
	if err != nil {
		return nil, fmt.Errorf("query subject history: %w", err)
	}
	defer rows.Close()
	return scanEvaluations(rows)
}

// Histories returns every subject's chronological history keyed by
// subject name.
func (s *Store) Histories(ctx context.Context) (map[string][]*evaluator.Evaluation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM evaluations ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("query evaluations: %w", err)
	}
	defer rows.Close()

	evals, err := scanEvaluations(rows)
	if err != nil {
		return nil, err
	}

	histories := map[string][]*evaluator.Evaluation{}
	for _, ev := range evals {
		histories[ev.SubjectName] = append(histories[ev.SubjectName], ev)
	}
	return histories, nil
}

// LatestBySubject returns each subject's most recent evaluation keyed by
// subject name, the shape the plagiarism check expects.
func (s *Store) LatestBySubject(ctx context.Context) (map[string]*evaluator.Evaluation, error) {
	histories, err := s.Histories(ctx)
	if err != nil {
		return nil, err
	}

	latest := make(map[string]*evaluator.Evaluation, len(histories))
	for name, history := range histories {
		latest[name] = history[len(history)-1]
	}
	return latest, nil
}

func scanEvaluations(rows *sql.Rows) ([]*evaluator.Evaluation, error) {
	var out []*evaluator.Evaluation
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}
		var ev evaluator.Evaluation
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			return nil, fmt.Errorf("decode evaluation payload: %w", err)
		}
		out = append(out, &ev)
	}
	return out, rows.Err()
}

// AppendLLMRequest records one LLM call. Implements llm.RequestSink.
func (s *Store) AppendLLMRequest(ctx context.Context, rec llm.RequestRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO llm_requests
			(created_at, provider, model, purpose, input_tokens, output_tokens,
			 latency_ms, success, error_message, request_body, response_body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339Nano),
		rec.Provider, rec.Model, rec.Purpose,
		rec.InputTokens, rec.OutputTokens, rec.LatencyMs,
		boolToInt(rec.Success), rec.ErrorMessage, rec.RequestBody, rec.ResponseBody)
	if err != nil {
		return fmt.Errorf("insert llm request: %w", err)
	}
	return nil
}

// RequestTotals sums token usage over the request log.
func (s *Store) RequestTotals(ctx context.Context) (requests, inputTokens, outputTokens int, err error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(input_tokens), 0), COALESCE(SUM(output_tokens), 0)
		FROM llm_requests`)
	if err := row.Scan(&requests, &inputTokens, &outputTokens); err != nil {
		return 0, 0, 0, fmt.Errorf("query request totals: %w", err)
	}
	return requests, inputTokens, outputTokens, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
