// Package openai talks to the external analysis collaborator over an
// OpenAI-compatible chat-completions API. The collaborator's reasoning is a
// black box; this package only ships the table, the question and the response
// contract, and hands back whatever raw text comes out.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hhhafather/data-agent/internal/core/domain"
	"github.com/hhhafather/data-agent/internal/infrastructure/resilience"
)

const (
	defaultTimeout    = 120 * time.Second
	defaultMaxTokens  = 8192
	defaultSampleRows = 50
)

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	maxTokens  int
	sampleRows int
	httpClient *http.Client
	executor   *resilience.Executor
}

type Options struct {
	Timeout            time.Duration
	MaxTokens          int
	SampleRows         int
	ResilienceExecutor *resilience.Executor
}

func New(baseURL, apiKey, model string, options Options) *Client {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxTokens := options.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	sampleRows := options.SampleRows
	if sampleRows <= 0 {
		sampleRows = defaultSampleRows
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		maxTokens:  maxTokens,
		sampleRows: sampleRows,
		httpClient: &http.Client{Timeout: timeout},
		executor:   options.ResilienceExecutor,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Analyze submits one question about the table and returns the collaborator's
// raw text. Callers must treat the text as untrusted.
func (c *Client) Analyze(ctx context.Context, table *domain.Table, question string) (string, error) {
	request := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: buildAnalysisPrompt(table, question, c.sampleRows)},
		},
		Temperature: 0,
		MaxTokens:   c.maxTokens,
	}

	var response chatResponse
	call := func(ctx context.Context) error {
		return c.postJSON(ctx, "/chat/completions", request, &response, "analyze")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "llm.analyze", call, classifyAnalysisError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapAnalysisError("analyze", err)
	}

	if len(response.Choices) == 0 {
		return "", domain.WrapError(domain.ErrAnalysis, "analyze", fmt.Errorf("empty choices in completion response"))
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}
