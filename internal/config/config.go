package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultAddr    = "0.0.0.0:3000"
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultModel   = "meta-llama/llama-4-maverick"
)

type Config struct {
	HTTP struct {
		Addr        string
		CORSOrigins []string
	}
	LLM struct {
		APIKey  string
		BaseURL string
		Model   string
		Timeout time.Duration
	}
	Log struct {
		Level  string
		Format string
	}
}

// Load reads config from a .env file, the environment (OPTIMIZER_ prefix) and an
// optional title-optimizer.yaml. The API key may also be given as META_API_KEY.
func Load() (*Config, error) {
	_ = godotenv.Load() // optional .env; never overrides the real environment

	v := viper.New()
	v.SetEnvPrefix("OPTIMIZER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigName("title-optimizer")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional config file

	if err := v.BindEnv("llm.api_key", "OPTIMIZER_LLM_API_KEY", "META_API_KEY"); err != nil {
		return nil, fmt.Errorf("bind llm.api_key: %w", err)
	}

	v.SetDefault("http.addr", DefaultAddr)
	v.SetDefault("llm.base_url", DefaultBaseURL)
	v.SetDefault("llm.model", DefaultModel)
	v.SetDefault("llm.timeout", "0s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	cfg := &Config{}
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.HTTP.CORSOrigins = splitList(v.GetString("http.cors_origins"))
	cfg.LLM.APIKey = v.GetString("llm.api_key")
	cfg.LLM.BaseURL = strings.TrimRight(v.GetString("llm.base_url"), "/")
	cfg.LLM.Model = v.GetString("llm.model")
	cfg.Log.Level = strings.ToLower(v.GetString("log.level"))
	cfg.Log.Format = strings.ToLower(v.GetString("log.format"))

	timeout, err := time.ParseDuration(v.GetString("llm.timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid OPTIMIZER_LLM_TIMEOUT: %w", err)
	}
	if timeout < 0 {
		return nil, fmt.Errorf("OPTIMIZER_LLM_TIMEOUT must not be negative")
	}
	cfg.LLM.Timeout = timeout

	if cfg.LLM.APIKey == "" {
		return nil, fmt.Errorf("META_API_KEY (or OPTIMIZER_LLM_API_KEY) is required")
	}
	if cfg.LLM.BaseURL == "" {
		return nil, fmt.Errorf("OPTIMIZER_LLM_BASE_URL must not be empty")
	}
	if cfg.LLM.Model == "" {
		return nil, fmt.Errorf("OPTIMIZER_LLM_MODEL must not be empty")
	}
	switch cfg.Log.Format {
	case "text", "json":
	default:
		return nil, fmt.Errorf("OPTIMIZER_LOG_FORMAT must be text or json, got %q", cfg.Log.Format)
	}

	return cfg, nil
}

// splitList parses a comma separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
