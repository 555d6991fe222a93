// Package describer implements the optional code2desc step of C7: asking a
// chat-completion model to produce a natural-language description of a
// segment's code.
package describer

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Aman-CERP/codevector/internal/cverrors"
)

// analysisSystemPrompt is the spec.md §6 analysis prompt: a numbered
// Markdown list, one technical description per natural sub-segment of the
// user-provided code block.
const analysisSystemPrompt = `You are a senior software engineer analyzing a code segment.
Respond with a numbered Markdown list. Each item is one concise, technical
description of one natural sub-segment of the code block the user provides
(a function, a method, a constant group, or similar unit). Do not restate
the code; describe what it does and why it matters to a reader navigating
the repository.`

// Describer wraps a chat-completion model for the code2desc step.
type Describer struct {
	client *openai.Client
	model  string
}

// New builds a Describer against model, using apiKey/baseURL for
// transport. baseURL may be empty to use the default OpenAI endpoint.
func New(apiKey, model, baseURL string) *Describer {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Describer{client: openai.NewClientWithConfig(cfg), model: model}
}

// Describe returns a natural-language description of code.
func (d *Describer) Describe(ctx context.Context, code string) (string, error) {
	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: d.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: analysisSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: code},
		},
	})
	if err != nil {
		return "", cverrors.EmbeddingProvider("chat completion request failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", cverrors.EmbeddingProvider("chat completion returned no choices", nil)
	}
	return resp.Choices[0].Message.Content, nil
}
