package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the WePick API.
type Config struct {
	Environment    string
	HTTPPort       int
	DatabaseURL    string
	DataStore      string
	LogLevel       string
	LogFormat      string
	AllowedOrigins []string
	FrontendURL    string

	TMDBAPIKey      string
	TMDBAccessToken string
	TMDBBaseURL     string
	JikanBaseURL    string
	ProviderTimeout time.Duration

	// RecommendRateLimit is the number of recommendation requests a single
	// client IP may make per minute.
	RecommendRateLimit int

	GoogleClientID       string
	GoogleClientSecret   string
	GoogleRedirectURL    string
	GoogleAllowedDomains []string
	GoogleAllowedEmails  []string
}

// Load reads configuration from the environment, after merging a local .env
// file when one exists. Variables already set take precedence over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: loading .env: %w", err)
	}

	databaseURL, err := getEnvOrFile("DATABASE_URL", "/run/secrets/wepick_database_url")
	if err != nil {
		return Config{}, err
	}
	tmdbKey, err := getEnvOrFile("TMDB_API_KEY", "/run/secrets/wepick_tmdb_api_key")
	if err != nil {
		return Config{}, err
	}
	tmdbToken, err := getEnvOrFile("TMDB_ACCESS_TOKEN", "")
	if err != nil {
		return Config{}, err
	}
	googleSecret, err := getEnvOrFile("AUTH_GOOGLE_CLIENT_SECRET", "/run/secrets/wepick_google_client_secret")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Environment:          strings.ToLower(getEnv("APP_ENV", "development")),
		DatabaseURL:          databaseURL,
		DataStore:            strings.ToLower(getEnv("DATA_STORE", "memory")),
		LogLevel:             strings.ToLower(getEnv("LOG_LEVEL", "info")),
		AllowedOrigins:       parseCSV(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:8080")),
		FrontendURL:          getEnv("FRONTEND_URL", "http://localhost:5173"),
		TMDBAPIKey:           strings.TrimSpace(tmdbKey),
		TMDBAccessToken:      strings.TrimSpace(tmdbToken),
		TMDBBaseURL:          getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
		JikanBaseURL:         getEnv("JIKAN_BASE_URL", "https://api.jikan.moe/v4"),
		GoogleClientID:       strings.TrimSpace(os.Getenv("AUTH_GOOGLE_CLIENT_ID")),
		GoogleClientSecret:   strings.TrimSpace(googleSecret),
		GoogleRedirectURL:    getEnv("AUTH_GOOGLE_REDIRECT_URL", "http://localhost:8080/api/auth/google/callback"),
		GoogleAllowedDomains: parseCSV(os.Getenv("AUTH_GOOGLE_ALLOWED_DOMAINS")),
		GoogleAllowedEmails:  parseCSV(os.Getenv("AUTH_GOOGLE_ALLOWED_EMAILS")),
	}

	defaultFormat := "json"
	if cfg.IsDevelopment() {
		defaultFormat = "pretty"
	}
	cfg.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", defaultFormat))

	portValue := getEnv("PORT", getEnv("HTTP_PORT", "8080"))
	port, err := strconv.Atoi(portValue)
	if err != nil {
		return Config{}, fmt.Errorf("invalid port %q: %w", portValue, err)
	}
	cfg.HTTPPort = port

	timeoutValue := getEnv("PROVIDER_TIMEOUT", "10s")
	cfg.ProviderTimeout, err = time.ParseDuration(timeoutValue)
	if err != nil || cfg.ProviderTimeout <= 0 {
		return Config{}, fmt.Errorf("invalid PROVIDER_TIMEOUT %q", timeoutValue)
	}

	limitValue := getEnv("RECOMMEND_RATE_LIMIT", "30")
	cfg.RecommendRateLimit, err = strconv.Atoi(limitValue)
	if err != nil || cfg.RecommendRateLimit <= 0 {
		return Config{}, fmt.Errorf("invalid RECOMMEND_RATE_LIMIT %q", limitValue)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.DataStore {
	case "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATA_STORE is postgres but DATABASE_URL is not set")
		}
	default:
		return fmt.Errorf("unsupported DATA_STORE %q", c.DataStore)
	}

	switch c.LogFormat {
	case "text", "json", "pretty":
	default:
		return fmt.Errorf("unsupported LOG_FORMAT %q", c.LogFormat)
	}

	if c.OAuthEnabled() && c.GoogleClientSecret == "" {
		return fmt.Errorf("AUTH_GOOGLE_CLIENT_SECRET is required when AUTH_GOOGLE_CLIENT_ID is set")
	}

	if c.IsDevelopment() {
		return nil
	}

	if len(c.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_ORIGINS must define at least one origin outside development")
	}
	for _, origin := range c.AllowedOrigins {
		if strings.Contains(origin, "*") {
			return fmt.Errorf("ALLOWED_ORIGINS cannot contain wildcard outside development")
		}
	}

	if c.OAuthEnabled() && len(c.GoogleAllowedDomains) == 0 && len(c.GoogleAllowedEmails) == 0 {
		return fmt.Errorf("AUTH_GOOGLE_ALLOWED_DOMAINS or AUTH_GOOGLE_ALLOWED_EMAILS is required outside development")
	}
	return nil
}

// HTTPAddress returns the address the HTTP server should bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// UseInMemoryStore returns true if the in-memory repositories should be used.
func (c Config) UseInMemoryStore() bool {
	return c.DataStore == "memory"
}

// IsDevelopment reports whether the API runs in local development mode.
func (c Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// OAuthEnabled reports whether Google sign-in is configured. Without it the
// API serves anonymous sessions only.
func (c Config) OAuthEnabled() bool {
	return c.GoogleClientID != ""
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvOrFile(key, defaultPath string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}

	fileKey := key + "_FILE"
	if path := os.Getenv(fileKey); path != "" {
		return readSecret(path, fileKey)
	}

	if defaultPath != "" {
		return readSecret(defaultPath, key)
	}

	return "", nil
}

func readSecret(path, name string) (string, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("config: reading %s (%s): %w", name, path, err)
	}

	value := strings.TrimSpace(string(contents))
	if value == "" {
		return "", fmt.Errorf("config: %s (%s) is empty", name, path)
	}
	return value, nil
}
