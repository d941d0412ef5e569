// Package localstore keeps candidates in a local SQLite file. It serves
// single-machine deployments and the CLI.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/ats-autofill/internal/types"

	_ "modernc.org/sqlite"
)

// timeLayout is fixed-width so that text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store is a SQLite-backed candidate store.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the SQLite database at path and initializes the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("localstore: mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("localstore: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if err := initSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("localstore: init schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS candidates (
		id         TEXT PRIMARY KEY,
		form       TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS resume_parses (
		id           TEXT PRIMARY KEY,
		candidate_id TEXT NOT NULL REFERENCES candidates(id) ON DELETE CASCADE,
		file_name    TEXT NOT NULL,
		raw_response TEXT,
		draft        TEXT NOT NULL,
		created_at   TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_resume_parses_candidate ON resume_parses(candidate_id, created_at)`)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) timestamp() (time.Time, string) {
	t := s.now().UTC()
	return t, t.Format(timeLayout)
}

// CreateCandidate inserts a new candidate with a fresh ID.
func (s *Store) CreateCandidate(ctx context.Context, form types.CandidateForm) (*types.Candidate, error) {
	formJSON, err := json.Marshal(form)
	if err != nil {
		return nil, fmt.Errorf("localstore: marshal form: %w", err)
	}
	id := uuid.New()
	now, ts := s.timestamp()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO candidates (id, form, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		id.String(), string(formJSON), ts, ts,
	); err != nil {
		return nil, fmt.Errorf("localstore: create candidate: %w", err)
	}
	return &types.Candidate{ID: id, CandidateForm: form.Clone(), CreatedAt: now, UpdatedAt: now}, nil
}

// GetCandidate returns the candidate, or nil when it does not exist.
func (s *Store) GetCandidate(ctx context.Context, id uuid.UUID) (*types.Candidate, error) {
	var formJSON, createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT form, created_at, updated_at FROM candidates WHERE id = ?`, id.String(),
	).Scan(&formJSON, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("localstore: get candidate %s: %w", id, err)
	}

	c := &types.Candidate{ID: id}
	if err := json.Unmarshal([]byte(formJSON), &c.CandidateForm); err != nil {
		return nil, fmt.Errorf("localstore: unmarshal candidate %s: %w", id, err)
	}
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateCandidate replaces the stored form. It returns
// types.ErrCandidateNotFound when the candidate does not exist.
func (s *Store) UpdateCandidate(ctx context.Context, id uuid.UUID, form types.CandidateForm) (*types.Candidate, error) {
	formJSON, err := json.Marshal(form)
	if err != nil {
		return nil, fmt.Errorf("localstore: marshal form: %w", err)
	}
	now, ts := s.timestamp()

	res, err := s.db.ExecContext(ctx,
		`UPDATE candidates SET form = ?, updated_at = ? WHERE id = ?`,
		string(formJSON), ts, id.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("localstore: update candidate %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("%w: %s", types.ErrCandidateNotFound, id)
	}

	var createdAt string
	if err := s.db.QueryRowContext(ctx,
		`SELECT created_at FROM candidates WHERE id = ?`, id.String(),
	).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("localstore: reload candidate %s: %w", id, err)
	}
	created, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &types.Candidate{ID: id, CandidateForm: form.Clone(), CreatedAt: created, UpdatedAt: now}, nil
}

// SaveResumeParse stores an audit record. ID and CreatedAt are assigned when zero.
func (s *Store) SaveResumeParse(ctx context.Context, rec *types.ResumeParseRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	draftJSON, err := json.Marshal(rec.Draft)
	if err != nil {
		return fmt.Errorf("localstore: marshal draft: %w", err)
	}
	var raw sql.NullString
	if len(rec.RawResponse) > 0 {
		raw = sql.NullString{String: string(rec.RawResponse), Valid: true}
	}
	now, ts := s.timestamp()

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO resume_parses (id, candidate_id, file_name, raw_response, draft, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.CandidateID.String(), rec.FileName, raw, string(draftJSON), ts,
	); err != nil {
		return fmt.Errorf("localstore: save resume parse for candidate %s: %w", rec.CandidateID, err)
	}
	rec.CreatedAt = now
	return nil
}

// ListResumeParses returns the candidate's parse records, newest first.
func (s *Store) ListResumeParses(ctx context.Context, candidateID uuid.UUID) ([]types.ResumeParseRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, file_name, raw_response, draft, created_at
		 FROM resume_parses WHERE candidate_id = ?
		 ORDER BY created_at DESC, rowid DESC`,
		candidateID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("localstore: list resume parses: %w", err)
	}
	defer rows.Close()

	records := []types.ResumeParseRecord{}
	for rows.Next() {
		var (
			id, fileName, draftJSON, createdAt string
			raw                                sql.NullString
		)
		if err := rows.Scan(&id, &fileName, &raw, &draftJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("localstore: scan resume parse: %w", err)
		}
		rec := types.ResumeParseRecord{CandidateID: candidateID, FileName: fileName}
		if rec.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("localstore: bad resume parse id %q: %w", id, err)
		}
		if raw.Valid {
			rec.RawResponse = json.RawMessage(raw.String)
		}
		var draft types.CandidateDraft
		if err := json.Unmarshal([]byte(draftJSON), &draft); err != nil {
			return nil, fmt.Errorf("localstore: unmarshal draft %s: %w", id, err)
		}
		rec.Draft = &draft
		if rec.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("localstore: iterate resume parses: %w", err)
	}
	return records, nil
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("localstore: bad timestamp %q: %w", s, err)
	}
	return t, nil
}
