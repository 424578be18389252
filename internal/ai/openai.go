package ai

import (
	"context"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Ranker is the model call used by the digest assembler: one text prompt in,
// free-form text out. Failures surface as errors; interpreting the response
// is the caller's problem.
type Ranker interface {
	Rank(ctx context.Context, prompt string) (string, error)
}

// OpenAIClient implements Ranker using the Chat Completions API.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

type Config struct {
	APIKey      string
	Model       string
	BaseURL     string // optional, for OpenAI-compatible gateways
	MaxTokens   int
	Temperature float32
}

func NewOpenAI(cfg Config) *OpenAIClient {
	var c *openai.Client
	if cfg.BaseURL != "" {
		cc := openai.DefaultConfig(cfg.APIKey)
		cc.BaseURL = cfg.BaseURL
		c = openai.NewClientWithConfig(cc)
	} else {
		c = openai.NewClient(cfg.APIKey)
	}
	if cfg.Model == "" {
		panic("ai model must be specified")
	}
	return &OpenAIClient{
		client:      c,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

func (o *OpenAIClient) Rank(ctx context.Context, prompt string) (string, error) {
	// Default timeout guard, if caller didn't set one
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 120*time.Second)
		defer cancel()
	}
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   o.maxTokens,
		Temperature: o.temperature,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
