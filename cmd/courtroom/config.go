package main

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	providerGroq   = "groq"
	providerOpenAI = "openai"
	providerRemote = "remote"

	audioBackendMiniaudio = "miniaudio"
	audioBackendPortaudio = "portaudio"
	audioBackendNone      = "none"
)

type Config struct {
	LLMProvider  string `env:"COURTROOM_LLM_PROVIDER" envDefault:"groq"`
	GroqAPIKey   string `env:"GROQ_API_KEY"`
	GroqModel    string `env:"GROQ_MODEL"`
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	OpenAIModel  string `env:"OPENAI_MODEL"`
	GatewayURL   string `env:"COURTROOM_GATEWAY_URL"`
	GatewayToken string `env:"COURTROOM_GATEWAY_TOKEN"`

	DeepgramAPIKey string `env:"DEEPGRAM_API_KEY"`
	AudioBackend   string `env:"COURTROOM_AUDIO_BACKEND" envDefault:"miniaudio"`
	Narrate        bool   `env:"COURTROOM_NARRATE" envDefault:"false"`

	ResponseTimeout time.Duration `env:"COURTROOM_RESPONSE_TIMEOUT" envDefault:"0s"`
	Temperature     float64       `env:"COURTROOM_TEMPERATURE" envDefault:"0.7"`
	ReactionChance  float64       `env:"COURTROOM_REACTION_CHANCE" envDefault:"0.4"`
	Muted           bool          `env:"COURTROOM_MUTED" envDefault:"false"`
	SoundDir        string        `env:"COURTROOM_SOUND_DIR"`
	CatalogPath     string        `env:"COURTROOM_CATALOG"`

	OTelEndpoint string `env:"COURTROOM_OTEL_ENDPOINT"`
}

// loadConfig reads envFile into the environment without overriding variables
// that are already set, then parses the environment. A missing envFile is
// not an error.
func loadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.LLMProvider {
	case providerGroq, providerOpenAI, providerRemote:
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLMProvider)
	}

	switch c.AudioBackend {
	case audioBackendMiniaudio, audioBackendPortaudio, audioBackendNone:
	default:
		return fmt.Errorf("unknown audio backend %q", c.AudioBackend)
	}

	if c.ReactionChance < 0 || c.ReactionChance > 1 {
		return fmt.Errorf("reaction chance %v is outside [0, 1]", c.ReactionChance)
	}
	if c.ResponseTimeout < 0 {
		return fmt.Errorf("response timeout %v is negative", c.ResponseTimeout)
	}
	return nil
}
