// Package webhook talks to the external resume parsing webhook.
package webhook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// DefaultTimeout is the default HTTP client timeout for a parse call.
const DefaultTimeout = 60 * time.Second

// FileField is the multipart field name the webhook reads the resume from.
const FileField = "file"

// maxSnippet bounds the response text carried in a TransportError.
const maxSnippet = 200

// TransportError represents a failed call to the parsing webhook: the
// request could not be made, or the webhook answered with a non-2xx status.
type TransportError struct {
	URL        string
	StatusCode int
	Message    string
	Cause      error
}

func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("resume webhook %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("resume webhook %s: %s", e.URL, e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// Options configures the Client.
type Options struct {
	Timeout    time.Duration
	HTTPClient *http.Client // overrides Timeout when set
	Logger     *zap.Logger
}

// Client posts resume files to a fixed webhook URL.
type Client struct {
	url    string
	http   *http.Client
	logger *zap.Logger
}

// NewClient creates a Client for webhookURL.
func NewClient(webhookURL string, opts *Options) (*Client, error) {
	parsed, err := url.Parse(webhookURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, &TransportError{URL: webhookURL, Message: "invalid URL", Cause: err}
	}
	if opts == nil {
		opts = &Options{}
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{url: webhookURL, http: httpClient, logger: logger}, nil
}

// URL returns the webhook URL.
func (c *Client) URL() string {
	return c.url
}

// ParseResume uploads file as the single multipart part "file" and returns
// the response body. It does not retry.
func (c *Client) ParseResume(ctx context.Context, fileName string, file io.Reader) ([]byte, error) {
	body, contentType, err := multipartBody(fileName, file)
	if err != nil {
		return nil, &TransportError{URL: c.url, Message: "failed to build request body", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return nil, &TransportError{URL: c.url, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{URL: c.url, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: c.url, StatusCode: resp.StatusCode, Message: "failed to read response body", Cause: err}
	}

	c.logger.Debug("resume webhook responded",
		zap.String("file", fileName),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(respBody)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fmt.Sprintf("HTTP status %d", resp.StatusCode)
		if snippet := responseSnippet(resp.Header.Get("Content-Type"), respBody); snippet != "" {
			msg += ": " + snippet
		}
		return nil, &TransportError{URL: c.url, StatusCode: resp.StatusCode, Message: msg}
	}

	return respBody, nil
}

func multipartBody(fileName string, file io.Reader) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	name := filepath.Base(fileName)
	if name == "." || name == string(filepath.Separator) {
		name = "resume"
	}
	part, err := w.CreateFormFile(FileField, name)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// responseSnippet returns a short readable excerpt of an error body. HTML
// error pages are reduced to their visible text.
func responseSnippet(contentType string, body []byte) string {
	text := string(body)
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if mediaType == "text/html" || looksLikeHTML(body) {
		if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body)); err == nil {
			doc.Find("script, style, noscript").Remove()
			text = doc.Find("body").Text()
			if strings.TrimSpace(text) == "" {
				text = doc.Find("title").Text()
			}
		}
	}

	text = strings.Join(strings.Fields(text), " ")
	if runes := []rune(text); len(runes) > maxSnippet {
		text = string(runes[:maxSnippet]) + "..."
	}
	return text
}

func looksLikeHTML(body []byte) bool {
	head := bytes.ToLower(bytes.TrimSpace(body))
	if len(head) > 64 {
		head = head[:64]
	}
	return bytes.HasPrefix(head, []byte("<!doctype html")) || bytes.HasPrefix(head, []byte("<html"))
}
