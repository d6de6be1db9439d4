package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// MaxBodyBytes is the largest request body the proxy accepts.
const MaxBodyBytes = 10 << 20

type Config struct {
	// proxy
	Port               int    `env:"PORT" envDefault:"3000"`
	APIKey             string `env:"GROQ_API_KEY"`
	Model              string `env:"GROQ_MODEL" envDefault:"llama-3.3-70b-versatile"`
	UpstreamURL        string `env:"GROQ_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	StaticDir          string `env:"STATIC_DIR"`
	RateLimitPerMinute int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"60"`

	// client
	ProxyURL      string        `env:"PARLEY_PROXY_URL" envDefault:"http://localhost:3000"`
	ThinkingDelay time.Duration `env:"PARLEY_THINKING_DELAY" envDefault:"600ms"`

	// flags
	Dev      bool
	LogPath  string
	NoServer bool
}

// Load reads the given dotenv files (".env" when none are given) into the
// process environment, without overriding variables already set, and parses
// the result. Missing dotenv files are not an error.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load dotenv: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Addr is the listen address of the proxy.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// LocalProxyURL is where the embedded proxy can be reached.
func (c *Config) LocalProxyURL() string {
	return fmt.Sprintf("http://localhost:%d", c.Port)
}
