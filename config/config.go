package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds everything the server needs from the environment.
type Config struct {
	Env  string `env:"ENV" envDefault:"development"`
	Port string `env:"PORT" envDefault:"4000"`

	MongoURI      string `env:"MONGO_URI,required,notEmpty"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"taskflow"`
	RedisURL      string `env:"REDIS_URL" envDefault:"localhost:6379"`

	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GithubClientID     string `env:"GITHUB_CLIENT_ID"`
	GithubClientSecret string `env:"GITHUB_CLIENT_SECRET"`

	// FrontendURL is used both for CORS and for the oauth-callback redirect.
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`
	// APIURL is the externally visible base URL used to build provider
	// callback URLs in production.
	APIURL string `env:"API_URL"`
}

// Load reads an optional .env file and then parses the process environment.
// A missing .env file is not an error; missing required variables are.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return &cfg, nil
}

// IsProduction reports whether the server runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// CallbackURL builds the OAuth callback URL for a provider, matching the
// host selection the frontend is configured against.
func (c *Config) CallbackURL(provider string) string {
	if c.IsProduction() && c.APIURL != "" {
		return fmt.Sprintf("%s/auth/%s/callback", c.APIURL, provider)
	}
	return fmt.Sprintf("http://localhost:%s/api/auth/%s/callback", c.Port, provider)
}
