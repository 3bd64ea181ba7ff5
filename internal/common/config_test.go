package common

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"OCR_LANGUAGE", "OCR_TIMEOUT", "OPENAI_RETRY_ATTEMPTS", "OPENAI_RETRY_DELAY", "VISION_ENDPOINT"} {
		t.Setenv(key, "")
	}
	cfg := LoadConfig()

	if cfg.OCR.Language != "eng" {
		t.Errorf("ocr language: got %q", cfg.OCR.Language)
	}
	if cfg.OCR.Timeout != 30*time.Second {
		t.Errorf("ocr timeout: got %v", cfg.OCR.Timeout)
	}
	if cfg.LLM.RetryAttempts != 3 || cfg.LLM.RetryDelay != time.Second {
		t.Errorf("llm retry: got %d/%v", cfg.LLM.RetryAttempts, cfg.LLM.RetryDelay)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestValidate_VisionEndpointNeedsKey(t *testing.T) {
	cfg := LoadConfig()
	cfg.OCR.VisionEndpoint = "https://vision.example.com/annotate"
	cfg.OCR.VisionAPIKey = ""

	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for endpoint without key")
	}
}

func TestValidate_RejectsNonPositiveRetries(t *testing.T) {
	cfg := LoadConfig()
	cfg.LLM.RetryAttempts = 0

	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for zero retry attempts")
	}
}
