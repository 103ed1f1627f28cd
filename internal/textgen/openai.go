// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textgen

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pdiddy/seo-engine/pkg/types"
)

// OpenAIGenerator calls an OpenAI-compatible chat completions API for one
// model.
type OpenAIGenerator struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewOpenAI returns a generator for model. cfg.BaseURL points it at any
// OpenAI-compatible server.
func NewOpenAI(cfg types.AIConfig, model string, httpClient *http.Client) *OpenAIGenerator {
	transportCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		transportCfg.BaseURL = cfg.BaseURL
	}
	if httpClient != nil {
		transportCfg.HTTPClient = httpClient
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &OpenAIGenerator{
		client:    openai.NewClientWithConfig(transportCfg),
		model:     model,
		maxTokens: maxTokens,
	}
}

// Name returns the model name.
func (g *OpenAIGenerator) Name() string { return g.model }

// Generate sends the system and user messages and returns the first choice.
func (g *OpenAIGenerator) Generate(ctx context.Context, req Request) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = g.maxTokens
	}

	var msgs []openai.ChatCompletionMessage
	if sys := systemPrompt(req); sys != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: sys})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})

	ccReq := openai.ChatCompletionRequest{
		Model:     g.model,
		Messages:  msgs,
		MaxTokens: maxTokens,
	}
	if req.JSON {
		ccReq.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	resp, err := g.client.CreateChatCompletion(ctx, ccReq)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", &StatusError{Model: g.model, Status: apiErr.HTTPStatusCode, Err: err}
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return "", &StatusError{Model: g.model, Status: reqErr.HTTPStatusCode, Err: err}
		}
		return "", fmt.Errorf("calling %s: %w", g.model, err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%s: %w", g.model, ErrEmptyResponse)
	}
	return resp.Choices[0].Message.Content, nil
}
