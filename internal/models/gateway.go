// Package models wraps the chat-completions-compatible model endpoint.
package models

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/yuli2514/rurichat/internal/types"
)

// Gateway performs single-attempt calls against a user-configured
// chat-completions-compatible endpoint. No retries: the surrounding pacing
// logic assumes exactly one reply per invocation and the model is
// stochastic across attempts.
type Gateway struct {
	httpClient *http.Client
}

// NewGateway creates a Gateway.
func NewGateway() *Gateway {
	return &Gateway{
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// CompleteOptions tune a single completion call.
type CompleteOptions struct {
	// Temperature overrides the stored endpoint temperature when non-nil.
	Temperature *float64
	MaxTokens   int64
}

// Complete sends one POST to {endpoint}/chat/completions with bearer auth
// and returns the assistant's raw text.
func (g *Gateway) Complete(ctx context.Context, cfg types.ChatAPIConfig, msgs []ChatMessage, opts CompleteOptions) (string, error) {
	if !cfg.Configured() {
		return "", ErrNotConfigured
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL(cfg.Endpoint)),
		option.WithAPIKey(cfg.Key),
		option.WithMaxRetries(0),
	)

	temperature := cfg.Temperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}

	params := openai.ChatCompletionNewParams{
		Model:       cfg.Model,
		Messages:    convertMessages(msgs),
		Temperature: openai.Float(temperature),
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(opts.MaxTokens)
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apierr *openai.Error
		if errors.As(err, &apierr) {
			slog.Error("model endpoint rejected completion", "status", apierr.StatusCode, "error", err.Error())
			return "", fmt.Errorf("failed to call model endpoint: %w", &HTTPError{Status: apierr.StatusCode})
		}
		slog.Error("failed to call model endpoint", "error", err.Error())
		return "", fmt.Errorf("failed to call model endpoint: %w", err)
	}

	if resp == nil || len(resp.Choices) == 0 {
		slog.Error("model response missing choices")
		return "", fmt.Errorf("%w: no choices", ErrBadResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

func convertMessages(msgs []ChatMessage) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, msg := range msgs {
		if len(msg.Parts) > 0 {
			parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(msg.Parts))
			for _, p := range msg.Parts {
				if p.ImageURL != "" {
					parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
						URL:    p.ImageURL,
						Detail: "low",
					}))
					continue
				}
				parts = append(parts, openai.TextContentPart(p.Text))
			}
			out = append(out, openai.UserMessage(parts))
			continue
		}
		switch msg.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(msg.Content))
		default:
			out = append(out, openai.UserMessage(msg.Content))
		}
	}
	return out
}

// baseURL ensures the trailing slash openai-go expects when joining the
// chat/completions path.
func baseURL(endpoint string) string {
	return strings.TrimRight(endpoint, "/") + "/"
}
