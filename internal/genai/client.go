// Package genai is an HTTP client for the Gemini generateContent API, the
// language-generation collaborator behind both interview modalities.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Djalilu/interview-app/internal/domain"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	// DefaultModel is used when no model is configured.
	DefaultModel = "gemini-2.5-flash"
)

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithModel sets the model used for all requests.
func WithModel(model string) ClientOption {
	return func(c *Client) {
		c.model = model
	}
}

// Client is a custom HTTP client for the Gemini API.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewClient creates a new Gemini API client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		model:      DefaultModel,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// generate sends a generateContent request and returns the first candidate's
// text. An empty or absent candidate is a generation failure, not a valid
// empty result.
func (c *Client) generate(ctx context.Context, req *generateContentRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", domain.ErrGeneration("request failed").WithCause(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.ErrGeneration("failed to read response").WithCause(err)
	}

	if resp.StatusCode != http.StatusOK {
		if msg, ok := parseAPIError(respBody); ok {
			return "", domain.ErrGeneration(msg)
		}
		return "", domain.ErrGeneration(fmt.Sprintf("API error (status %d)", resp.StatusCode))
	}

	var result generateContentResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", domain.ErrGeneration("failed to unmarshal response").WithCause(err)
	}

	text := result.text()
	if strings.TrimSpace(text) == "" {
		return "", domain.ErrGeneration("model returned no text")
	}
	return text, nil
}

// GenerateText issues a one-shot text generation request.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	req := &generateContentRequest{
		Contents: []Content{{Role: "user", Parts: []Part{{Text: prompt}}}},
	}
	return c.generate(ctx, req)
}

// GenerateStructured issues a schema-constrained JSON generation request and
// unmarshals the payload into out. A payload that does not parse into the
// expected shape is a schema mismatch.
func (c *Client) GenerateStructured(ctx context.Context, prompt string, schema *Schema, out any) error {
	req := &generateContentRequest{
		Contents: []Content{{Role: "user", Parts: []Part{{Text: prompt}}}},
		GenerationConfig: &GenerationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   schema,
		},
	}

	text, err := c.generate(ctx, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return domain.ErrSchemaMismatch("response did not match expected format").WithCause(err)
	}
	return nil
}

// StartChat opens a stateful conversation under the given system instruction,
// sends the initial trigger message, and returns the chat handle together
// with the model's opening text.
func (c *Client) StartChat(ctx context.Context, systemInstruction string) (*Chat, string, error) {
	chat := &Chat{
		client: c,
		system: &Content{Parts: []Part{{Text: systemInstruction}}},
	}
	first, err := chat.Send(ctx, "Start the interview.")
	if err != nil {
		return nil, "", err
	}
	return chat, first, nil
}
