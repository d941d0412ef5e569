package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

const janeResponse = `[{
	"First name ": "Jane",
	"Last Name": "Doe",
	"Email": "jane@example.com",
	"Skills of the candidate ": "Go, SQL",
	"Education 0": {"Graduation Institution ": "MIT", "Graduation Year": "2018"},
	"Company_0": {"Company_0": "Acme", "Company_0 Job tittle": "Engineer"}
}]`

// getBinaryPath returns the path to the ats_autofill binary for testing
func getBinaryPath(t *testing.T) string {
	binaryName := "ats_autofill"
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := filepath.Join("..", "..", "bin", binaryName)
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Skipf("Binary not found at %s, build it first with 'go build -o bin/ats_autofill ./cmd/ats_autofill'", binaryPath)
	}

	return binaryPath
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func webhookServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}
