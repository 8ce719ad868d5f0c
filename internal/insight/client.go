// Package insight generates promotional taglines for books by calling an
// OpenAI-compatible chat completions endpoint.
package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vyrodovalexey/library-api/internal/metrics"
	"github.com/vyrodovalexey/library-api/internal/model"
)

// Default client settings.
const (
	DefaultEndpoint = "https://api.openai.com/v1/chat/completions"
	DefaultModel    = "gpt-4"
	DefaultTimeout  = 60 * time.Second
)

// DefaultContentType is reported when the remote response carries none.
const DefaultContentType = "text/plain; charset=utf-8"

// maxResponseBytes bounds the remote body. A larger body is an error rather
// than a truncated reply.
const maxResponseBytes = 1 << 20

// Client errors.
var (
	ErrEmptyPrompt      = errors.New("prompt cannot be empty")
	ErrUpstreamStatus   = errors.New("unexpected upstream status")
	ErrResponseTooLarge = errors.New("upstream response too large")
)

// Generator produces generated text for a prompt.
type Generator interface {
	// Generate sends prompt to the text-generation service and returns the
	// raw response body together with its content type.
	Generate(ctx context.Context, prompt string) (*Response, error)
}

// Response is the untouched reply of the text-generation service.
type Response struct {
	Body        []byte
	ContentType string
}

// Options configures a Client.
type Options struct {
	Endpoint   string
	Model      string
	APIKey     string
	HTTPClient *http.Client
}

// Client calls a chat completions endpoint.
type Client struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

// NewClient creates a new Client. Empty options fall back to the defaults.
func NewClient(opts Options) *Client {
	c := &Client{
		endpoint:   opts.Endpoint,
		model:      opts.Model,
		apiKey:     opts.APIKey,
		httpClient: opts.HTTPClient,
	}
	if c.endpoint == "" {
		c.endpoint = DefaultEndpoint
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return c
}

// Generate posts a single user message and returns the response body as is.
// Any non-2xx status is returned as an error wrapping ErrUpstreamStatus.
func (c *Client) Generate(ctx context.Context, prompt string) (resp *Response, err error) {
	start := time.Now()
	defer func() { metrics.ObserveInsight(start, err) }()

	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	payload, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", c.endpoint, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if len(body) > maxResponseBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, maxResponseBytes)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %d", ErrUpstreamStatus, httpResp.StatusCode)
	}

	contentType := httpResp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = DefaultContentType
	}

	return &Response{Body: body, ContentType: contentType}, nil
}

// Prompt builds the tagline prompt for a book.
func Prompt(book *model.Book) string {
	return fmt.Sprintf("Generate a catchy tagline for this book: %s by %s. Description: %s",
		book.Title, book.Author, book.Description)
}
