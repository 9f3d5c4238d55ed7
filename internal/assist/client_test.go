package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seoboard/internal/engine"
)

// mockHTTPClient records the last request and replays a canned response.
type mockHTTPClient struct {
	response *http.Response
	err      error
	lastReq  *http.Request
	lastBody []byte
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.lastReq = req
	if req.Body != nil {
		m.lastBody, _ = io.ReadAll(req.Body)
	}
	return m.response, m.err
}

func geminiResponse(status int, text string) *http.Response {
	resp := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	}
	body, _ := json.Marshal(resp)
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader(body)),
		Header:     make(http.Header),
	}
}

func TestSuggestTasks(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "plain array", text: `["Audit schema markup", "Fix 404s"]`, want: []string{"Audit schema markup", "Fix 404s"}},
		{name: "fenced", text: "```json\n[\"Compress images\", \"  \"]\n```", want: []string{"Compress images"}},
		{name: "bare fence", text: "```\n[\"A\"]\n```", want: []string{"A"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockHTTPClient{response: geminiResponse(http.StatusOK, tt.text)}
			c := NewClient(mock, Config{APIKey: "k"}, nil)

			got, err := c.SuggestTasks(context.Background(), "Weekly")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			assert.Equal(t, "k", mock.lastReq.Header.Get("x-goog-api-key"))
			assert.True(t, strings.HasSuffix(mock.lastReq.URL.Path, "/models/"+DefaultModel+":generateContent"))
			assert.Contains(t, string(mock.lastBody), "'Weekly' phase")
			assert.Contains(t, string(mock.lastBody), `"responseMimeType":"application/json"`)
		})
	}
}

func TestSuggestTasksFailures(t *testing.T) {
	c := NewClient(&mockHTTPClient{}, Config{}, nil)
	_, err := c.SuggestTasks(context.Background(), "Daily")
	assert.ErrorIs(t, err, ErrNotConfigured)

	c = NewClient(&mockHTTPClient{response: geminiResponse(http.StatusOK, "not json")}, Config{APIKey: "k"}, nil)
	_, err = c.SuggestTasks(context.Background(), "Daily")
	var adapter engine.AdapterError
	require.ErrorAs(t, err, &adapter)
	assert.Equal(t, "suggest tasks", adapter.Op)

	c = NewClient(&mockHTTPClient{err: errors.New("offline")}, Config{APIKey: "k"}, nil)
	_, err = c.SuggestTasks(context.Background(), "Daily")
	assert.ErrorAs(t, err, &adapter)

	c = NewClient(&mockHTTPClient{response: geminiResponse(http.StatusTooManyRequests, "")}, Config{APIKey: "k"}, nil)
	_, err = c.SuggestTasks(context.Background(), "Daily")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestAnalyzeProgress(t *testing.T) {
	mock := &mockHTTPClient{response: geminiResponse(http.StatusOK, "  Looking good.  ")}
	c := NewClient(mock, Config{APIKey: "k", Model: "gemini-test", BaseURL: "http://localhost/v1/"}, nil)

	snap := engine.Progress(engine.DefaultStore())
	got, err := c.AnalyzeProgress(context.Background(), snap)
	require.NoError(t, err)
	assert.Equal(t, "Looking good.", got)
	assert.Equal(t, "/v1/models/gemini-test:generateContent", mock.lastReq.URL.Path)
	assert.NotContains(t, string(mock.lastBody), "responseMimeType")
}

func TestAnalysisPrompt(t *testing.T) {
	snap := engine.ProgressSnapshot{
		Overall: engine.ProgressCount{Completed: 1, Total: 4, Percentage: 25},
		Categories: []engine.CategoryProgress{
			{Label: "Daily", ProgressCount: engine.ProgressCount{Completed: 1, Total: 2, Percentage: 50}, IncompleteSamples: []string{"Check indexing"}},
			{Label: "Weekly", ProgressCount: engine.ProgressCount{Total: 2}, IncompleteSamples: []string{}},
		},
	}
	p := analysisPrompt(snap)
	assert.Contains(t, p, "Overall Progress: 1/4 tasks completed (25%).")
	assert.Contains(t, p, "Category: Daily\n  - Progress: 1/2 tasks completed (50%).\n  - Some pending tasks: Check indexing\n")
	assert.Contains(t, p, "Category: Weekly\n  - Progress: 0/2 tasks completed (0%).\n\n")
}
