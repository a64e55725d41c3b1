package common

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EndpointPlaceholder is the marker left in sample .env files. A recognition
// endpoint still containing it is treated as unconfigured.
const EndpointPlaceholder = "your-resource-name"

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	Store  StoreConfig
	OCR    OCRConfig
	LLM    LLMConfig

	// DOCXEnabled toggles word-processing document extraction. When off,
	// .docx uploads are skipped with a log instead of failing the job.
	DOCXEnabled bool
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr            string
	CORSOrigins     []string
	ShutdownTimeout time.Duration
}

// StoreConfig holds result-store configuration.
type StoreConfig struct {
	DataDir    string
	WatchFiles bool
}

// OCRConfig holds text-recognition provider configuration.
type OCRConfig struct {
	Endpoint        string
	APIKey          string
	PollInterval    time.Duration
	PollMaxAttempts int
	Timeout         time.Duration
}

// LLMConfig holds structuring provider configuration.
type LLMConfig struct {
	APIKey    string
	Model     string
	BaseURL   string
	Timeout   time.Duration
	Workers   int
	QueueSize int
}

// LoadConfig reads configuration from the environment, loading a .env file
// first when present.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Addr:            getEnv("HTTP_ADDR", ":8000"),
			CORSOrigins:     splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Store: StoreConfig{
			DataDir:    getEnv("DATA_DIR", "./data"),
			WatchFiles: getEnvAsBool("STORE_WATCH_FILES", true),
		},
		OCR: OCRConfig{
			Endpoint:        getEnv("OCR_ENDPOINT", "https://"+EndpointPlaceholder+".cognitiveservices.azure.com/"),
			APIKey:          getEnv("OCR_API_KEY", ""),
			PollInterval:    getEnvAsDuration("OCR_POLL_INTERVAL", time.Second),
			PollMaxAttempts: getEnvAsInt("OCR_POLL_MAX_ATTEMPTS", 60),
			Timeout:         getEnvAsDuration("OCR_TIMEOUT", 30*time.Second),
		},
		LLM: LLMConfig{
			APIKey:    getEnv("GEMINI_API_KEY", ""),
			Model:     getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			BaseURL:   getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			Timeout:   getEnvAsDuration("GEMINI_TIMEOUT", 45*time.Second),
			Workers:   getEnvAsInt("LLM_WORKERS", 4),
			QueueSize: getEnvAsInt("LLM_QUEUE_SIZE", 256),
		},
		DOCXEnabled: getEnvAsBool("DOCX_ENABLED", true),
	}
}

// Validate rejects configuration the process cannot run with. Missing provider
// credentials are not an error here; they surface per-job and via /health.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("HTTP_ADDR must not be empty")
	}
	if c.Store.DataDir == "" {
		return errors.New("DATA_DIR must not be empty")
	}
	if c.LLM.Workers <= 0 {
		return fmt.Errorf("LLM_WORKERS must be positive, got %d", c.LLM.Workers)
	}
	if c.LLM.QueueSize <= 0 {
		return fmt.Errorf("LLM_QUEUE_SIZE must be positive, got %d", c.LLM.QueueSize)
	}
	if c.OCR.PollInterval <= 0 {
		return errors.New("OCR_POLL_INTERVAL must be positive")
	}
	if c.OCR.PollMaxAttempts <= 0 {
		return errors.New("OCR_POLL_MAX_ATTEMPTS must be positive")
	}
	return nil
}

// OCRConfigured reports whether the recognition provider looks usable. This is
// a config inspection, not a live provider check.
func (c *Config) OCRConfigured() bool {
	return c.OCR.APIKey != "" && c.OCR.Endpoint != "" &&
		!strings.Contains(c.OCR.Endpoint, EndpointPlaceholder)
}

// LLMConfigured reports whether the structuring provider has credentials.
func (c *Config) LLMConfigured() bool {
	return c.LLM.APIKey != ""
}

// Helper functions for environment variable parsing.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
