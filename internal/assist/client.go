package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"seoboard/internal/engine"
)

const (
	DefaultModel   = "gemini-2.5-flash"
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
)

// ErrNotConfigured is returned when no API key is available.
var ErrNotConfigured = errors.New("AI assistant is not configured (set GEMINI_API_KEY)")

// HTTPClient abstracts HTTP requests for testing
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Assistant produces task suggestions and progress analyses.
type Assistant interface {
	SuggestTasks(ctx context.Context, label string) ([]string, error)
	AnalyzeProgress(ctx context.Context, snap engine.ProgressSnapshot) (string, error)
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Client calls the Gemini generateContent endpoint.
type Client struct {
	httpClient HTTPClient
	logger     *slog.Logger
	apiKey     string
	model      string
	baseURL    string
}

func NewClient(httpClient HTTPClient, cfg Config, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		model:      cfg.Model,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool { return c.apiKey != "" }

type generateRequest struct {
	Contents         []contentBlock    `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type contentBlock struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMIMEType string `json:"responseMimeType,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content contentBlock `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// generate sends one prompt and returns the concatenated text of the first candidate.
func (c *Client) generate(ctx context.Context, prompt string, mimeType string) (string, error) {
	if !c.Enabled() {
		return "", ErrNotConfigured
	}

	reqBody := generateRequest{
		Contents: []contentBlock{{Role: "user", Parts: []part{{Text: prompt}}}},
	}
	if mimeType != "" {
		reqBody.GenerationConfig = &generationConfig{ResponseMIMEType: mimeType}
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	c.logger.Debug("gemini request", "model", c.model, "prompt_bytes", len(prompt))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	var apiResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if apiResp.Error != nil {
		return "", errors.New(apiResp.Error.Message)
	}
	if len(apiResp.Candidates) == 0 {
		return "", errors.New("empty response from Gemini API")
	}

	var sb strings.Builder
	for _, p := range apiResp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	if sb.Len() == 0 {
		return "", errors.New("no text content in Gemini response")
	}
	return sb.String(), nil
}

var fenceRegex = regexp.MustCompile("(?s)^```\\w*\\s*\\n?(.*?)\\n?\\s*```$")

// parseJSONResponse extracts and parses JSON, unwrapping a markdown code fence if present.
func parseJSONResponse(text string, target any) error {
	jsonStr := strings.TrimSpace(text)
	if m := fenceRegex.FindStringSubmatch(jsonStr); len(m) > 1 {
		jsonStr = strings.TrimSpace(m[1])
	}
	if err := json.Unmarshal([]byte(jsonStr), target); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return nil
}

// SuggestTasks asks for two or three new tasks fitting the phase label.
func (c *Client) SuggestTasks(ctx context.Context, label string) ([]string, error) {
	text, err := c.generate(ctx, suggestPrompt(label), "application/json")
	if err != nil {
		return nil, wrap("suggest tasks", err)
	}

	var raw []string
	if err := parseJSONResponse(text, &raw); err != nil {
		return nil, wrap("suggest tasks", err)
	}
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	c.logger.Info("suggestions received", "label", label, "count", len(out))
	return out, nil
}

// AnalyzeProgress asks for a short written analysis of the snapshot.
func (c *Client) AnalyzeProgress(ctx context.Context, snap engine.ProgressSnapshot) (string, error) {
	text, err := c.generate(ctx, analysisPrompt(snap), "")
	if err != nil {
		return "", wrap("analyze progress", err)
	}
	return strings.TrimSpace(text), nil
}

func wrap(op string, err error) error {
	if errors.Is(err, ErrNotConfigured) {
		return err
	}
	return engine.AdapterError{Op: op, Err: err}
}
