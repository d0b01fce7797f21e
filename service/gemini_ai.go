package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/haint/paperlens/config"
)

type GeminiService struct {
	apiKeys    []string
	currentKey int
	client     *genai.Client
	model      *genai.GenerativeModel
	modelName  string
	cfg        config.AnalysisConfig
	mu         sync.Mutex
}

func NewGeminiService(apiKeys []string, modelName string, cfg config.AnalysisConfig) (*GeminiService, error) {
	if len(apiKeys) == 0 {
		return nil, errors.New("no API keys provided")
	}

	service := &GeminiService{
		apiKeys:    apiKeys,
		currentKey: 0,
		modelName:  modelName,
		cfg:        cfg,
	}

	if err := service.initClient(); err != nil {
		return nil, err
	}
	return service, nil
}

// initClient swaps in a fresh client for the current key. Callers after
// construction must hold s.mu.
func (s *GeminiService) initClient() error {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(s.apiKeys[s.currentKey]))
	if err != nil {
		return err
	}
	s.client = client
	s.model = client.GenerativeModel(s.modelName)
	s.model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPromptResearchAssistant)},
	}
	s.model.SetTemperature(s.cfg.Temperature)
	return nil
}

func (s *GeminiService) rotateAPIKey() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentKey = (s.currentKey + 1) % len(s.apiKeys)
	if err := s.client.Close(); err != nil {
		return err
	}
	return s.initClient()
}

func (s *GeminiService) Summarize(ctx context.Context, text string) (string, error) {
	return s.generate(ctx, summaryPrompt(text), int32(s.cfg.MaxTokens))
}

func (s *GeminiService) Synthesize(ctx context.Context, summaries []string) (string, error) {
	// Word cap is advisory, carried inside the prompt.
	prompt := synthesisPrompt(summaries, s.cfg.MinHypotheses, s.cfg.MaxHypotheses, s.cfg.SynthesisWords)
	return s.generate(ctx, prompt, 0)
}

// generateOnce runs one completion against a per-call copy of the shared
// model, so the token cap never leaks between concurrent requests.
func (s *GeminiService) generateOnce(ctx context.Context, prompt string, maxTokens int32) (*genai.GenerateContentResponse, error) {
	s.mu.Lock()
	model := *s.model
	s.mu.Unlock()

	if maxTokens > 0 {
		model.SetMaxOutputTokens(maxTokens)
	} else {
		model.MaxOutputTokens = nil
	}
	return model.GenerateContent(ctx, genai.Text(prompt))
}

func (s *GeminiService) generate(ctx context.Context, prompt string, maxTokens int32) (string, error) {
	resp, err := s.generateOnce(ctx, prompt, maxTokens)
	if err != nil {
		// Try rotating API key if there's an error
		if err := s.rotateAPIKey(); err != nil {
			return "", err
		}
		resp, err = s.generateOnce(ctx, prompt, maxTokens)
		if err != nil {
			return "", err
		}
	}

	if len(resp.Candidates) == 0 {
		return "", errors.New("no response generated")
	}

	content := ""
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if text, ok := part.(genai.Text); ok {
					content += string(text)
				}
			}
		}
	}

	return strings.TrimSpace(content), nil
}
