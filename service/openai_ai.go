package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/haint/paperlens/config"
)

var SystemMessageResearchAssistant = openai.ChatCompletionMessage{
	Role:    openai.ChatMessageRoleSystem,
	Content: systemPromptResearchAssistant,
}

type OpenAIService struct {
	client *openai.Client
	model  string
	cfg    config.AnalysisConfig
}

func NewOpenAIService(baseURL, apiKey, model string, cfg config.AnalysisConfig) *OpenAIService {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL // Set this to your local LLM server URL
	}
	client := openai.NewClientWithConfig(clientConfig)
	return &OpenAIService{
		client: client,
		model:  model,
		cfg:    cfg,
	}
}

func (s *OpenAIService) Summarize(ctx context.Context, text string) (string, error) {
	// The token cap applies to chunk summaries only. The word cap on the
	// synthesis answer is advisory, carried in the prompt.
	return s.complete(ctx, summaryPrompt(text), s.cfg.MaxTokens)
}

func (s *OpenAIService) Synthesize(ctx context.Context, summaries []string) (string, error) {
	prompt := synthesisPrompt(summaries, s.cfg.MinHypotheses, s.cfg.MaxHypotheses, s.cfg.SynthesisWords)
	return s.complete(ctx, prompt, 0)
}

func (s *OpenAIService) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:       s.model,
			Temperature: s.cfg.Temperature,
			MaxTokens:   maxTokens,
			Messages: []openai.ChatCompletionMessage{
				SystemMessageResearchAssistant,
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
		},
	)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response generated")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
