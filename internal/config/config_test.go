package config

import (
	"os"
	"testing"
)

func TestNewFromEnv(t *testing.T) {
	// Helper function to set environment variables for a test
	setEnv := func(key, value string) {
		t.Helper()
		t.Setenv(key, value)
	}

	t.Run("Success", func(t *testing.T) {
		setEnv("MEAL_SYNC_AUTH_SECRET", "secret")
		setEnv("MEAL_SYNC_DB_PATH", "/tmp/test.db")
		setEnv("MEAL_SYNC_SERVER_URL", "http://sync.test")
		setEnv("GEMINI_API_KEY", "gemini_key")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.AuthSecret != "secret" {
			t.Errorf("Expected AuthSecret to be 'secret', got '%s'", cfg.AuthSecret)
		}
		if cfg.DBPath != "/tmp/test.db" {
			t.Errorf("Expected DBPath to be '/tmp/test.db', got '%s'", cfg.DBPath)
		}
		if cfg.ServerURL != "http://sync.test" {
			t.Errorf("Expected ServerURL to be 'http://sync.test', got '%s'", cfg.ServerURL)
		}
		if cfg.GeminiAPIKey != "gemini_key" {
			t.Errorf("Expected GeminiAPIKey to be 'gemini_key', got '%s'", cfg.GeminiAPIKey)
		}
	})

	t.Run("Defaults", func(t *testing.T) {
		setEnv("MEAL_SYNC_AUTH_SECRET", "secret")
		os.Unsetenv("MEAL_SYNC_DB_PATH")
		os.Unsetenv("MEAL_SYNC_LISTEN_ADDR")
		os.Unsetenv("MEAL_SYNC_DOCUMENT_KEY")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.DBPath != "data/meal-planner.db" {
			t.Errorf("Expected default DBPath, got '%s'", cfg.DBPath)
		}
		if cfg.ListenAddr != ":8080" {
			t.Errorf("Expected default ListenAddr, got '%s'", cfg.ListenAddr)
		}
		if cfg.DocumentKey != "household" {
			t.Errorf("Expected default DocumentKey, got '%s'", cfg.DocumentKey)
		}
	})

	t.Run("MissingAuthSecret", func(t *testing.T) {
		os.Unsetenv("MEAL_SYNC_AUTH_SECRET")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for missing MEAL_SYNC_AUTH_SECRET, got nil")
		}
		expectedError := "MEAL_SYNC_AUTH_SECRET environment variable not set"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})

	t.Run("TelegramAllowUserID", func(t *testing.T) {
		setEnv("MEAL_SYNC_AUTH_SECRET", "secret")
		setEnv("TELEGRAM_ALLOW_USER_ID", "12345")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.TelegramAllowUserID != 12345 {
			t.Errorf("Expected TelegramAllowUserID 12345, got %d", cfg.TelegramAllowUserID)
		}
	})
}
