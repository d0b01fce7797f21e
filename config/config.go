package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Port         string         `mapstructure:"port"`
	Provider     string         `mapstructure:"provider"`
	AIEndpoint   string         `mapstructure:"ai_endpoint"`
	Model        string         `mapstructure:"model"`
	OpenAIAPIKey string         `mapstructure:"OPENAI_API_KEY"`
	GeminiAPIKey string         `mapstructure:"GEMINI_API_KEY"`
	Document     DocumentConfig `mapstructure:"document"`
	Analysis     AnalysisConfig `mapstructure:"analysis"`
}

// DocumentConfig bounds the chunker.
type DocumentConfig struct {
	MaxChunkSize int `mapstructure:"max_chunk_size"`
	OverlapSize  int `mapstructure:"overlap_size"`
}

// AnalysisConfig bounds the LLM calls made per request.
type AnalysisConfig struct {
	MaxSections     int     `mapstructure:"max_sections"`
	Temperature     float32 `mapstructure:"temperature"`
	MaxTokens       int     `mapstructure:"max_tokens"`
	MinHypotheses   int     `mapstructure:"min_hypotheses"`
	MaxHypotheses   int     `mapstructure:"max_hypotheses"`
	SynthesisWords  int     `mapstructure:"synthesis_words"`
	ContinueOnError bool    `mapstructure:"continue_on_error"`
}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set up Viper to read from config file
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Set up Viper to read from environment variables
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Bind environment variables
	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("GEMINI_API_KEY")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("provider", "openai")
	v.SetDefault("model", "gpt-4o-mini")
	v.SetDefault("document.max_chunk_size", 5000)
	v.SetDefault("document.overlap_size", 500)
	v.SetDefault("analysis.max_sections", 5)
	v.SetDefault("analysis.temperature", 0.3)
	v.SetDefault("analysis.max_tokens", 500)
	v.SetDefault("analysis.min_hypotheses", 1)
	v.SetDefault("analysis.max_hypotheses", 3)
	v.SetDefault("analysis.synthesis_words", 500)
	v.SetDefault("analysis.continue_on_error", false)
}

// Validate checks the configuration once at process start. A missing LLM
// credential is a startup failure, not a per-request error.
func (c *Config) Validate() error {
	switch c.Provider {
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for provider %q", c.Provider)
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for provider %q", c.Provider)
		}
	default:
		return fmt.Errorf("unknown provider: %s", c.Provider)
	}
	if c.Document.MaxChunkSize <= 0 {
		return fmt.Errorf("document.max_chunk_size must be positive")
	}
	if c.Document.OverlapSize < 0 || c.Document.OverlapSize >= c.Document.MaxChunkSize {
		return fmt.Errorf("document.overlap_size must be in [0, max_chunk_size)")
	}
	if c.Analysis.MaxSections <= 0 {
		return fmt.Errorf("analysis.max_sections must be positive")
	}
	if c.Analysis.MinHypotheses < 1 || c.Analysis.MaxHypotheses < c.Analysis.MinHypotheses {
		return fmt.Errorf("hypothesis bounds are invalid")
	}
	return nil
}
