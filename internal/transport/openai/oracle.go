package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mindvault/internal/domain"
)

const systemPrompt = "You analyze saved content and search queries. " +
	"Reply with exactly one JSON object and nothing else."

// Oracle is a chat completion client implementing domain.Oracle.
type Oracle struct {
	client     *openai.Client
	model      string
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger
}

// OracleConfig holds the chat model settings.
type OracleConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxRetries int
	RetryDelay time.Duration // base delay; 0 means 250ms
	Logger     *zap.Logger
}

// NewOracle creates an OpenAI-compatible chat oracle.
func NewOracle(cfg *OracleConfig) *Oracle {
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = 250 * time.Millisecond
	}
	return &Oracle{
		client:     newClient(cfg.APIKey, cfg.BaseURL),
		model:      cfg.Model,
		maxRetries: cfg.MaxRetries,
		retryDelay: delay,
		logger:     cfg.Logger,
	}
}

// Complete sends the prompt, with the image attached when one is given.
// Transport errors, 429 and 5xx are retried with exponential backoff, bounded by ctx.
func (o *Oracle) Complete(ctx context.Context, req domain.OracleRequest) (domain.OracleResponse, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleSystem, Content: systemPrompt}, userMessage(req)},
		Temperature: 0.2,
	}

	var lastErr error
	for attempt := 0; attempt <= o.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, backoff(o.retryDelay, attempt)); err != nil {
				break
			}
			o.logger.Debug("Retrying oracle call",
				zap.String("purpose", string(req.Purpose)),
				zap.Int("attempt", attempt+1),
				zap.Error(lastErr),
			)
		}

		resp, err := o.client.CreateChatCompletion(ctx, chatReq)
		if err != nil {
			lastErr = err
			if !retryable(err) {
				break
			}
			continue
		}
		if len(resp.Choices) == 0 {
			return domain.OracleResponse{}, fmt.Errorf("no completion choices: %w", domain.ErrOracleUnavailable)
		}
		return domain.OracleResponse{
			Text:        resp.Choices[0].Message.Content,
			TotalTokens: resp.Usage.TotalTokens,
		}, nil
	}

	if lastErr == nil {
		lastErr = ctx.Err()
	}
	return domain.OracleResponse{}, parseAPIError("oracle", lastErr, domain.ErrOracleUnavailable)
}

func userMessage(req domain.OracleRequest) openai.ChatCompletionMessage {
	if req.ImageURL == "" {
		return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt}
	}
	return openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: req.Prompt},
			{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: req.ImageURL, Detail: openai.ImageURLDetailLow},
			},
		},
	}
}
