package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATABASE_URL", "JWT_SECRET", "GEMINI_API_KEY", "GEMINI_MODEL", "UPLOAD_DIR", "GCS_BUCKET"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.GeminiModel != "gemini-2.0-flash" {
		t.Errorf("GeminiModel = %q", cfg.GeminiModel)
	}
	if cfg.UploadDir != "uploads" {
		t.Errorf("UploadDir = %q", cfg.UploadDir)
	}
	if cfg.GeminiAPIKey != "" {
		t.Errorf("GeminiAPIKey should default empty, got %q", cfg.GeminiAPIKey)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("GCS_BUCKET", "my-bucket")

	cfg := Load()

	if cfg.Port != "9999" {
		t.Errorf("Port = %q, want 9999", cfg.Port)
	}
	if cfg.GCSBucket != "my-bucket" {
		t.Errorf("GCSBucket = %q, want my-bucket", cfg.GCSBucket)
	}
}
