package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/ats-autofill/internal/types"
	"go.uber.org/zap"
)

type autofillResponse struct {
	Candidate *types.Candidate      `json:"candidate"`
	Draft     *types.CandidateDraft `json:"draft"`
}

func (s *Server) handleCreateCandidate(w http.ResponseWriter, r *http.Request) {
	var form types.CandidateForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if form.Status == "" {
		form.Status = types.CandidateStatusNew
	}
	if err := form.Validate(); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	candidate, err := s.store.CreateCandidate(r.Context(), form)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusCreated, candidate)
}

func (s *Server) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := s.candidateID(w, r)
	if !ok {
		return
	}

	candidate, err := s.store.GetCandidate(r.Context(), candidateID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if candidate == nil {
		s.errorResponse(w, http.StatusNotFound, "Candidate not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, candidate)
}

func (s *Server) handleUpdateCandidate(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := s.candidateID(w, r)
	if !ok {
		return
	}

	var form types.CandidateForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := form.Validate(); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	candidate, err := s.store.UpdateCandidate(r.Context(), candidateID, form)
	if err != nil {
		if errors.Is(err, types.ErrCandidateNotFound) {
			s.errorResponse(w, http.StatusNotFound, "Candidate not found")
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, candidate)
}

// handleAutofillCandidate uploads a resume and merges the parsed draft into
// the stored candidate. Only one upload per candidate runs at a time.
func (s *Server) handleAutofillCandidate(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := s.candidateID(w, r)
	if !ok {
		return
	}

	release, err := s.tracker.Acquire(candidateID.String())
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	defer release()

	// An issued parse runs to completion even if the client goes away.
	ctx := context.WithoutCancel(r.Context())
	existing, err := s.store.GetCandidate(ctx, candidateID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if existing == nil {
		s.errorResponse(w, http.StatusNotFound, "Candidate not found")
		return
	}

	file, header, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	draft, raw, err := s.filler.Draft(ctx, header.Filename, file)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	// Merge against the form as stored now; edits made while the parser
	// was running are kept unless the draft overrides them.
	current, err := s.store.GetCandidate(ctx, candidateID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if current == nil {
		s.errorResponse(w, http.StatusNotFound, "Candidate not found")
		return
	}

	merged, err := s.filler.Merged(current.CandidateForm, draft, header.Filename)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	updated, err := s.store.UpdateCandidate(ctx, candidateID, merged)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), "Database error: "+err.Error())
		return
	}

	rec := &types.ResumeParseRecord{
		CandidateID: candidateID,
		FileName:    header.Filename,
		RawResponse: raw,
		Draft:       draft,
	}
	if err := s.store.SaveResumeParse(ctx, rec); err != nil {
		s.logger.Warn("failed to record resume parse",
			zap.String("candidate_id", candidateID.String()),
			zap.Error(err),
		)
	}

	s.logger.Info("candidate autofilled from resume",
		zap.String("candidate_id", candidateID.String()),
		zap.String("file", header.Filename),
	)

	s.jsonResponse(w, http.StatusOK, autofillResponse{Candidate: updated, Draft: draft})
}

func (s *Server) handleListResumeParses(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := s.candidateID(w, r)
	if !ok {
		return
	}

	candidate, err := s.store.GetCandidate(r.Context(), candidateID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if candidate == nil {
		s.errorResponse(w, http.StatusNotFound, "Candidate not found")
		return
	}

	records, err := s.store.ListResumeParses(r.Context(), candidateID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"resume_parses": records,
		"count":         len(records),
	})
}

func (s *Server) candidateID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid candidate ID")
		return uuid.Nil, false
	}
	return id, true
}

