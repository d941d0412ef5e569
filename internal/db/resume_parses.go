package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/ats-autofill/internal/types"
)

// SaveResumeParse stores an audit record. ID and CreatedAt are assigned when zero.
func (db *DB) SaveResumeParse(ctx context.Context, rec *types.ResumeParseRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	draftJSON, err := json.Marshal(rec.Draft)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}
	var raw []byte
	if len(rec.RawResponse) > 0 {
		raw = rec.RawResponse
	}

	err = db.pool.QueryRow(ctx,
		`INSERT INTO resume_parses (id, candidate_id, file_name, raw_response, draft)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		rec.ID, rec.CandidateID, rec.FileName, raw, draftJSON,
	).Scan(&rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save resume parse for candidate %s: %w", rec.CandidateID, err)
	}
	return nil
}

// ListResumeParses returns the candidate's parse records, newest first.
func (db *DB) ListResumeParses(ctx context.Context, candidateID uuid.UUID) ([]types.ResumeParseRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, file_name, raw_response, draft, created_at
		 FROM resume_parses
		 WHERE candidate_id = $1
		 ORDER BY created_at DESC`,
		candidateID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list resume parses: %w", err)
	}
	defer rows.Close()

	records := []types.ResumeParseRecord{}
	for rows.Next() {
		var (
			id        uuid.UUID
			fileName  string
			raw       []byte
			draftJSON []byte
			createdAt time.Time
		)
		if err := rows.Scan(&id, &fileName, &raw, &draftJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan resume parse: %w", err)
		}
		rec, err := decodeResumeParse(id, candidateID, fileName, raw, draftJSON, createdAt)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate resume parses: %w", err)
	}
	return records, nil
}

func decodeResumeParse(id, candidateID uuid.UUID, fileName string, raw, draftJSON []byte, createdAt time.Time) (*types.ResumeParseRecord, error) {
	var draft types.CandidateDraft
	if err := json.Unmarshal(draftJSON, &draft); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft for resume parse %s: %w", id, err)
	}
	return &types.ResumeParseRecord{
		ID:          id,
		CandidateID: candidateID,
		FileName:    fileName,
		RawResponse: raw,
		Draft:       &draft,
		CreatedAt:   createdAt,
	}, nil
}
