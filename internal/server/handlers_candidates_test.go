package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/ats-autofill/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCandidate(t *testing.T) {
	env := newTestEnv(t, respondJSON(`{}`))

	w := env.do(jsonRequest(t, http.MethodPost, "/candidates", types.CandidateForm{
		FirstName: "Jane",
		Email:     "jane@example.com",
		Skills:    []string{"Go"},
	}))

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var c types.Candidate
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &c))
	assert.NotEqual(t, uuid.Nil, c.ID)
	assert.Equal(t, "Jane", c.FirstName)
	assert.Equal(t, types.CandidateStatusNew, c.Status, "status defaults to new")

	stored, err := env.store.GetCandidate(context.Background(), c.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "jane@example.com", stored.Email)
}

func TestCreateCandidate_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "bad JSON", body: `{`},
		{name: "no name or email", body: `{"last_name":"Doe"}`},
		{name: "bad email", body: `{"first_name":"Jane","email":"not-an-email"}`},
		{name: "bad status", body: `{"first_name":"Jane","status":"archived"}`},
		{name: "bad linkedin", body: `{"first_name":"Jane","linkedin_url":"linkedin"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, respondJSON(`{}`))
			req := httptest.NewRequest(http.MethodPost, "/candidates", strings.NewReader(tt.body))

			w := env.do(req)

			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.NotEmpty(t, decodeError(t, w))
		})
	}
}

func TestGetCandidate(t *testing.T) {
	env := newTestEnv(t, respondJSON(`{}`))
	c := env.createCandidate(t, types.CandidateForm{FirstName: "Jane"})

	w := env.do(httptest.NewRequest(http.MethodGet, "/candidates/"+c.ID.String(), nil))
	require.Equal(t, http.StatusOK, w.Code)
	var got types.Candidate
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, c.ID, got.ID)

	w = env.do(httptest.NewRequest(http.MethodGet, "/candidates/"+uuid.New().String(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Candidate not found", decodeError(t, w))

	w = env.do(httptest.NewRequest(http.MethodGet, "/candidates/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateCandidate(t *testing.T) {
	env := newTestEnv(t, respondJSON(`{}`))
	c := env.createCandidate(t, types.CandidateForm{FirstName: "Jane"})

	form := c.CandidateForm
	form.Notes = "strong referral"
	w := env.do(jsonRequest(t, http.MethodPut, "/candidates/"+c.ID.String(), form))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	stored, err := env.store.GetCandidate(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, "strong referral", stored.Notes)

	w = env.do(jsonRequest(t, http.MethodPut, "/candidates/"+uuid.New().String(), form))
	assert.Equal(t, http.StatusNotFound, w.Code)

	form.Email = "broken"
	w = env.do(jsonRequest(t, http.MethodPut, "/candidates/"+c.ID.String(), form))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAutofillCandidate_MergesAndRecords(t *testing.T) {
	env := newTestEnv(t, respondJSON(janeResponse))
	c := env.createCandidate(t, types.CandidateForm{
		FirstName: "J.",
		Phone:     "555-0100",
		Skills:    []string{"Python"},
		Status:    types.CandidateStatusScreening,
		Source:    "referral",
		Notes:     "call back Monday",
	})

	w := env.do(uploadRequest(t, "/candidates/"+c.ID.String()+"/resume", "jane.pdf", "%PDF"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Candidate types.Candidate      `json:"candidate"`
		Draft     types.CandidateDraft `json:"draft"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Jane", resp.Candidate.FirstName)
	assert.Equal(t, "Doe", resp.Candidate.LastName)
	assert.Equal(t, "555-0100", resp.Candidate.Phone, "absent draft field keeps form value")
	assert.Equal(t, []string{"Go", "SQL"}, resp.Candidate.Skills)
	assert.Equal(t, types.CandidateStatusScreening, resp.Candidate.Status)
	assert.Equal(t, "referral", resp.Candidate.Source)
	assert.Equal(t, "call back Monday", resp.Candidate.Notes)
	assert.Equal(t, "jane.pdf", resp.Candidate.ResumeFileName)

	stored, err := env.store.GetCandidate(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.Candidate.CandidateForm, stored.CandidateForm)

	w = env.do(httptest.NewRequest(http.MethodGet, "/candidates/"+c.ID.String()+"/resume-parses", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		ResumeParses []types.ResumeParseRecord `json:"resume_parses"`
		Count        int                       `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "jane.pdf", list.ResumeParses[0].FileName)
	assert.JSONEq(t, janeResponse, string(list.ResumeParses[0].RawResponse))
}

func TestAutofillCandidate_WebhookFailureLeavesCandidate(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`<html><body><h1>Maintenance</h1></body></html>`))
	})
	original := types.CandidateForm{FirstName: "Jane", Skills: []string{"Go"}}
	c := env.createCandidate(t, original)

	w := env.do(uploadRequest(t, "/candidates/"+c.ID.String()+"/resume", "jane.pdf", "%PDF"))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, decodeError(t, w), "Maintenance")

	stored, err := env.store.GetCandidate(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, original, stored.CandidateForm)

	records, err := env.store.ListResumeParses(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAutofillCandidate_MissingCandidate(t *testing.T) {
	env := newTestEnv(t, respondJSON(janeResponse))

	w := env.do(uploadRequest(t, "/candidates/"+uuid.New().String()+"/resume", "jane.pdf", "%PDF"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Zero(t, env.calls.Load(), "webhook must not be called")

	w = env.do(httptest.NewRequest(http.MethodGet, "/candidates/"+uuid.New().String()+"/resume-parses", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAutofillCandidate_RejectsConcurrentUpload(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() { close(entered) })
		<-release
		respondJSON(janeResponse)(w, r)
	})
	c := env.createCandidate(t, types.CandidateForm{FirstName: "J."})
	path := "/candidates/" + c.ID.String() + "/resume"

	firstReq := uploadRequest(t, path, "first.pdf", "%PDF")
	first := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		first <- env.do(firstReq)
	}()
	<-entered

	w := env.do(uploadRequest(t, path, "second.pdf", "%PDF"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, decodeError(t, w), "already in progress")

	other := env.createCandidate(t, types.CandidateForm{FirstName: "Other"})
	close(release)

	w = <-first
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, int32(1), env.calls.Load())

	w = env.do(uploadRequest(t, "/candidates/"+other.ID.String()+"/resume", "other.pdf", "%PDF"))
	assert.Equal(t, http.StatusOK, w.Code, "other candidates are independent")

	w = env.do(uploadRequest(t, path, "third.pdf", "%PDF"))
	assert.Equal(t, http.StatusOK, w.Code, "guard is released after completion")
}

func TestAutofillCandidate_InvalidMergeLeavesCandidate(t *testing.T) {
	env := newTestEnv(t, respondJSON(`{"Email":"jane at example dot com","Linkedin URL":"linkedin.com/in/jane"}`))
	original := types.CandidateForm{FirstName: "Jane", Email: "jane@example.com"}
	c := env.createCandidate(t, original)

	w := env.do(uploadRequest(t, "/candidates/"+c.ID.String()+"/resume", "jane.pdf", "%PDF"))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	assert.Contains(t, decodeError(t, w), "invalid candidate form")

	stored, err := env.store.GetCandidate(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, original, stored.CandidateForm)

	records, err := env.store.ListResumeParses(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Empty(t, records)

	w = env.do(jsonRequest(t, http.MethodPut, "/candidates/"+c.ID.String(), stored.CandidateForm))
	assert.Equal(t, http.StatusOK, w.Code, "stored form still passes validation")
}

func TestAutofillCandidate_ClientDisconnectDoesNotCancelParse(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() { close(entered) })
		<-release
		respondJSON(janeResponse)(w, r)
	})
	c := env.createCandidate(t, types.CandidateForm{FirstName: "J."})

	ctx, cancel := context.WithCancel(context.Background())
	req := uploadRequest(t, "/candidates/"+c.ID.String()+"/resume", "jane.pdf", "%PDF").WithContext(ctx)
	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		done <- env.do(req)
	}()

	<-entered
	cancel()
	close(release)

	w := <-done
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	stored, err := env.store.GetCandidate(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane", stored.FirstName)
	assert.Equal(t, "jane.pdf", stored.ResumeFileName)
}
