package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/ats-autofill/internal/types"
)

// CreateCandidate inserts a new candidate with a fresh ID.
func (db *DB) CreateCandidate(ctx context.Context, form types.CandidateForm) (*types.Candidate, error) {
	formJSON, err := encodeForm(form)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	var createdAt, updatedAt time.Time
	err = db.pool.QueryRow(ctx,
		`INSERT INTO candidates (id, form)
		 VALUES ($1, $2)
		 RETURNING created_at, updated_at`,
		id, formJSON,
	).Scan(&createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create candidate: %w", err)
	}

	return &types.Candidate{
		ID:            id,
		CandidateForm: form.Clone(),
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}, nil
}

// GetCandidate returns the candidate, or nil when it does not exist.
func (db *DB) GetCandidate(ctx context.Context, id uuid.UUID) (*types.Candidate, error) {
	var formJSON []byte
	var createdAt, updatedAt time.Time
	err := db.pool.QueryRow(ctx,
		`SELECT form, created_at, updated_at FROM candidates WHERE id = $1`,
		id,
	).Scan(&formJSON, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get candidate %s: %w", id, err)
	}
	return decodeCandidate(id, formJSON, createdAt, updatedAt)
}

// UpdateCandidate replaces the stored form. It returns
// types.ErrCandidateNotFound when the candidate does not exist.
func (db *DB) UpdateCandidate(ctx context.Context, id uuid.UUID, form types.CandidateForm) (*types.Candidate, error) {
	formJSON, err := encodeForm(form)
	if err != nil {
		return nil, err
	}

	var createdAt, updatedAt time.Time
	err = db.pool.QueryRow(ctx,
		`UPDATE candidates SET form = $2, updated_at = NOW()
		 WHERE id = $1
		 RETURNING created_at, updated_at`,
		id, formJSON,
	).Scan(&createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", types.ErrCandidateNotFound, id)
		}
		return nil, fmt.Errorf("failed to update candidate %s: %w", id, err)
	}

	return &types.Candidate{
		ID:            id,
		CandidateForm: form.Clone(),
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}, nil
}

func encodeForm(form types.CandidateForm) ([]byte, error) {
	data, err := json.Marshal(form)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal candidate form: %w", err)
	}
	return data, nil
}

func decodeCandidate(id uuid.UUID, formJSON []byte, createdAt, updatedAt time.Time) (*types.Candidate, error) {
	var form types.CandidateForm
	if err := json.Unmarshal(formJSON, &form); err != nil {
		return nil, fmt.Errorf("failed to unmarshal candidate %s form: %w", id, err)
	}
	return &types.Candidate{
		ID:            id,
		CandidateForm: form,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}, nil
}
