package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	OCR OCRConfig
	LLM LLMConfig
}

// OCRConfig holds text-extraction configuration. When VisionEndpoint is set
// the remote vision adapter is used; otherwise local Tesseract.
type OCRConfig struct {
	VisionEndpoint string
	VisionAPIKey   string
	Language       string
	TessdataDir    string
	Timeout        time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
}

// LLMConfig holds assistant configuration. An empty APIKey selects the
// offline mock assistant.
type LLMConfig struct {
	Model         string
	APIKey        string
	BaseURL       string
	Temperature   float32
	MaxTokens     int
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		OCR: OCRConfig{
			VisionEndpoint: getEnv("VISION_ENDPOINT", ""),
			VisionAPIKey:   getEnv("VISION_API_KEY", ""),
			Language:       getEnv("OCR_LANGUAGE", "eng"),
			TessdataDir:    getEnv("TESSDATA_PREFIX", ""),
			Timeout:        getEnvAsDuration("OCR_TIMEOUT", 30*time.Second),
			RetryAttempts:  getEnvAsInt("OCR_RETRY_ATTEMPTS", 3),
			RetryDelay:     getEnvAsDuration("OCR_RETRY_DELAY", time.Second),
		},
		LLM: LLMConfig{
			Model:         getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:        getEnv("OPENAI_API_KEY", ""),
			BaseURL:       getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Temperature:   getEnvAsFloat32("OPENAI_TEMPERATURE", 0.3),
			MaxTokens:     getEnvAsInt("OPENAI_MAX_TOKENS", 500),
			Timeout:       getEnvAsDuration("OPENAI_TIMEOUT", 30*time.Second),
			RetryAttempts: getEnvAsInt("OPENAI_RETRY_ATTEMPTS", 3),
			RetryDelay:    getEnvAsDuration("OPENAI_RETRY_DELAY", time.Second),
		},
	}
}

// Helper functions for environment variable parsing
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

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
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

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.OCR.VisionEndpoint != "" && c.OCR.VisionAPIKey == "" {
		return NewAppError("CONFIG_ERROR", "VISION_API_KEY is required when VISION_ENDPOINT is set", ErrInvalidInput)
	}
	if c.OCR.RetryAttempts <= 0 || c.LLM.RetryAttempts <= 0 {
		return NewAppError("CONFIG_ERROR", "retry attempts must be positive", ErrInvalidInput)
	}
	return nil
}
