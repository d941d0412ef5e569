package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/ats-autofill/internal/autofill"
	"github.com/jonathan/ats-autofill/internal/config"
	"github.com/jonathan/ats-autofill/internal/localstore"
	"github.com/jonathan/ats-autofill/internal/resumeparse"
	"github.com/jonathan/ats-autofill/internal/server/ratelimit"
	"github.com/jonathan/ats-autofill/internal/types"
	"github.com/jonathan/ats-autofill/internal/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const janeResponse = `[{
	"First name ": "Jane",
	"Last Name": "Doe",
	"Email": "jane@example.com",
	"Skills of the candidate ": "Go, SQL",
	"Education 0": {"Graduation Institution ": "MIT", "Graduation Year": "2018"},
	"Company_0": {"Company_0": "Acme", "Company_0 Job tittle": "Engineer"}
}]`

type testEnv struct {
	server *Server
	store  *localstore.Store
	calls  atomic.Int32
}

type testOptions struct {
	auth      *config.AuthConfig
	rateLimit *ratelimit.Config
}

func newTestEnv(t *testing.T, webhookHandler http.HandlerFunc, opts ...testOptions) *testEnv {
	t.Helper()
	env := &testEnv{}

	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.calls.Add(1)
		webhookHandler(w, r)
	}))
	t.Cleanup(hook.Close)

	client, err := webhook.NewClient(hook.URL, &webhook.Options{Timeout: 5 * time.Second})
	require.NoError(t, err)
	normalizer, err := resumeparse.NewNormalizer(resumeparse.DefaultOptions(), nil)
	require.NoError(t, err)

	store, err := localstore.Open(context.Background(), filepath.Join(t.TempDir(), "ats.db"))
	require.NoError(t, err)
	env.store = store

	cfg := Config{
		Store:      store,
		Autofiller: autofill.New(client, normalizer, autofill.ListRetainOnEmpty, nil),
		RateLimit:  &ratelimit.Config{Enabled: false},
	}
	if len(opts) > 0 {
		cfg.Auth = opts[0].auth
		if opts[0].rateLimit != nil {
			cfg.RateLimit = opts[0].rateLimit
		}
	}

	s, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	env.server = s
	return env
}

func respondJSON(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	return w
}

func uploadRequest(t *testing.T, path, fileName, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(webhook.FileField, fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	msg, _ := resp["error"].(string)
	return msg
}

func (e *testEnv) createCandidate(t *testing.T, form types.CandidateForm) *types.Candidate {
	t.Helper()
	c, err := e.store.CreateCandidate(context.Background(), form)
	require.NoError(t, err)
	return c
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t, respondJSON(`{}`))

	w := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, respondJSON(`{}`))

	w := env.do(httptest.NewRequest(http.MethodOptions, "/candidates", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestRateLimitMiddleware(t *testing.T) {
	env := newTestEnv(t, respondJSON(`{}`), testOptions{rateLimit: &ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  2,
		DefaultWindow: time.Hour,
	}})

	id := uuid.New().String()
	for i := 0; i < 2; i++ {
		w := env.do(httptest.NewRequest(http.MethodGet, "/candidates/"+id, nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := env.do(httptest.NewRequest(http.MethodGet, "/candidates/"+id, nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limit_exceeded", decodeError(t, w))

	w = env.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code, "health is never limited")
}
