package server

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/jonathan/ats-autofill/internal/types"
	"github.com/jonathan/ats-autofill/internal/webhook"
)

type parseResumeResponse struct {
	Draft *types.CandidateDraft `json:"draft"`
}

func (s *Server) handleParseResume(w http.ResponseWriter, r *http.Request) {
	file, header, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	draft, _, err := s.filler.Draft(r.Context(), header.Filename, file)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, parseResumeResponse{Draft: draft})
}

// readUpload extracts the resume file part. It writes the error response
// itself and reports false when the request has no usable file.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.errorResponse(w, http.StatusRequestEntityTooLarge, "Resume file is too large")
			return nil, nil, false
		}
		s.errorResponse(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return nil, nil, false
	}

	file, header, err := r.FormFile(webhook.FileField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			s.errorResponse(w, http.StatusBadRequest, "Missing resume file in form field \""+webhook.FileField+"\"")
			return nil, nil, false
		}
		s.errorResponse(w, http.StatusBadRequest, "Invalid resume file: "+err.Error())
		return nil, nil, false
	}
	if header.Size == 0 {
		file.Close()
		s.errorResponse(w, http.StatusBadRequest, "Resume file is empty")
		return nil, nil, false
	}
	return file, header, true
}

