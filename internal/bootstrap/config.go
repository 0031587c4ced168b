package bootstrap

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	SuggestionNone = "none"
	SuggestionLLM  = "llm"
	SuggestionGRPC = "grpc"

	PolicyPerfect = "perfect"
	PolicyFast    = "fast"
)

type Config struct {
	ServerPort        string        `mapstructure:"SERVER_PORT"`
	IsLocalCors       bool          `mapstructure:"LOCAL_CORS"`
	RedisUrl          string        `mapstructure:"REDIS_URL"`
	CacheKeyPrefix    string        `mapstructure:"CACHE_KEY_PREFIX"`
	MongoUri          string        `mapstructure:"MONGO_URI"`
	MongoDatabase     string        `mapstructure:"MONGO_DATABASE"`
	SuggestionSource  string        `mapstructure:"SUGGESTION_SOURCE"`
	SuggestionTimeout time.Duration `mapstructure:"SUGGESTION_TIMEOUT"`
	LlmApiKey         string        `mapstructure:"LLM_API_KEY"`
	LlmEndpoint       string        `mapstructure:"LLM_ENDPOINT"`
	LlmModel          string        `mapstructure:"LLM_MODEL"`
	AdvisorAddr       string        `mapstructure:"ADVISOR_ADDR"`
	AdvisorPort       string        `mapstructure:"ADVISOR_PORT"`
	EnginePolicy      string        `mapstructure:"ENGINE_POLICY"`
	AiPlayer          string        `mapstructure:"AI_PLAYER"`
}

var defaults = map[string]any{
	"SERVER_PORT":        "8080",
	"LOCAL_CORS":         false,
	"REDIS_URL":          "",
	"CACHE_KEY_PREFIX":   "ttt:move:",
	"MONGO_URI":          "",
	"MONGO_DATABASE":     "senti_ttt",
	"SUGGESTION_SOURCE":  SuggestionNone,
	"SUGGESTION_TIMEOUT": "4s",
	"LLM_API_KEY":        "",
	"LLM_ENDPOINT":       "https://api.fireworks.ai/inference",
	"LLM_MODEL":          "accounts/sentientfoundation/models/dobby-unhinged-llama-3-3-70b-new",
	"ADVISOR_ADDR":       "localhost:8082",
	"ADVISOR_PORT":       "8082",
	"ENGINE_POLICY":      PolicyPerfect,
	"AI_PLAYER":          "O",
}

// Setup loads cfgPath into the process environment (a missing file is fine)
// and reads the configuration from the environment on top of the defaults.
func Setup(cfgPath string) (*Config, error) {
	if cfgPath != "" {
		if err := godotenv.Load(cfgPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", cfgPath, err)
		}
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.SuggestionSource = strings.ToLower(strings.TrimSpace(cfg.SuggestionSource))
	cfg.EnginePolicy = strings.ToLower(strings.TrimSpace(cfg.EnginePolicy))
	cfg.AiPlayer = strings.ToUpper(strings.TrimSpace(cfg.AiPlayer))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}
	switch c.SuggestionSource {
	case SuggestionNone, SuggestionLLM, SuggestionGRPC:
	default:
		return fmt.Errorf("unknown SUGGESTION_SOURCE %q", c.SuggestionSource)
	}
	if c.SuggestionTimeout <= 0 {
		return fmt.Errorf("SUGGESTION_TIMEOUT must be > 0")
	}
	switch c.EnginePolicy {
	case PolicyPerfect, PolicyFast:
	default:
		return fmt.Errorf("unknown ENGINE_POLICY %q", c.EnginePolicy)
	}
	if c.AiPlayer != "X" && c.AiPlayer != "O" {
		return fmt.Errorf("AI_PLAYER must be X or O, got %q", c.AiPlayer)
	}
	return nil
}

func (c *Config) SuggestionEnabled() bool {
	return c.SuggestionSource != SuggestionNone
}
