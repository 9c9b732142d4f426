// Package config loads the agent's settings from the environment (optionally
// seeded from a .env file) and from an optional YAML file for the pieces
// that don't fit environment variables well.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the agent reads from the environment.
type Config struct {
	// Email
	SMTPServer       string
	SMTPPort         string
	SMTPUsername     string
	SMTPPassword     string
	DefaultRecipient string

	// Search
	SearchQuery      string
	MaxNewsPerSource int
	RequestTimeout   time.Duration

	// Report
	ReportTitle     string
	ReportOutputDir string

	// Storage
	SourcesDBPath string
	ArticlesDir   string

	// Publishing
	GitHubToken      string
	GitHubRepository string
	DocsDir          string
}

// LoadEnv reads a .env file into the process environment if one is present.
// A missing file is normal outside development.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: no .env file loaded: %v", err)
	}
}

// FromEnv builds a Config from environment variables, applying defaults for
// anything unset.
func FromEnv() Config {
	return Config{
		SMTPServer:       getEnv("SMTP_SERVER", "smtp.gmail.com"),
		SMTPPort:         getEnv("SMTP_PORT", "587"),
		SMTPUsername:     getEnv("SMTP_USERNAME", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
		DefaultRecipient: getEnv("DEFAULT_EMAIL_RECIPIENT", ""),
		SearchQuery:      getEnv("SEARCH_QUERY", "Adam Sandler"),
		MaxNewsPerSource: getEnvInt("MAX_NEWS_PER_SOURCE", 10),
		RequestTimeout:   time.Duration(getEnvInt("REQUEST_TIMEOUT", 30)) * time.Second,
		ReportTitle:      getEnv("REPORT_TITLE", ""),
		ReportOutputDir:  getEnv("REPORT_OUTPUT_DIR", "reports"),
		SourcesDBPath:    getEnv("SOURCES_DB_PATH", "sources.db"),
		ArticlesDir:      getEnv("ARTICLES_DIR", "articles"),
		GitHubToken:      getEnv("GITHUB_TOKEN", ""),
		GitHubRepository: getEnv("GITHUB_REPOSITORY", ""),
		DocsDir:          getEnv("DOCS_DIR", "docs"),
	}
}

// HasPublishConfig reports whether enough is set to push reports to GitHub.
func (c Config) HasPublishConfig() bool {
	return c.GitHubToken != "" && c.GitHubRepository != ""
}

// HasEmailConfig reports whether enough is set to send email.
func (c Config) HasEmailConfig() bool {
	return c.SMTPUsername != "" && c.SMTPPassword != "" && c.DefaultRecipient != ""
}

// ValidateEmail returns a descriptive error when email settings are
// incomplete.
func (c Config) ValidateEmail() error {
	if c.SMTPUsername == "" {
		return fmt.Errorf("SMTP_USERNAME is not set")
	}
	if c.SMTPPassword == "" {
		return fmt.Errorf("SMTP_PASSWORD is not set")
	}
	if c.DefaultRecipient == "" {
		return fmt.Errorf("DEFAULT_EMAIL_RECIPIENT is not set")
	}
	return nil
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt parses an integer environment variable, keeping the default on
// absent or malformed values.
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("WARN: invalid %s=%q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}
