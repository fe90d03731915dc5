package config

import (
	"fmt"
	"os"
)

// Config holds the configuration for the application.
type Config struct {
	// Sync server / store
	DBPath      string
	ListenAddr  string
	ServerURL   string
	AuthSecret  string
	DocumentKey string

	// LLM providers (optional for the server, required for plan generation)
	GeminiAPIKey string
	GroqAPIKey   string

	// Telegram Config
	TelegramBotToken    string
	TelegramAllowUserID int64
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	authSecret := os.Getenv("MEAL_SYNC_AUTH_SECRET")
	if authSecret == "" {
		return nil, fmt.Errorf("MEAL_SYNC_AUTH_SECRET environment variable not set")
	}

	dbPath := os.Getenv("MEAL_SYNC_DB_PATH")
	if dbPath == "" {
		dbPath = "data/meal-planner.db"
	}

	listenAddr := os.Getenv("MEAL_SYNC_LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = ":8080"
	}

	serverURL := os.Getenv("MEAL_SYNC_SERVER_URL")
	if serverURL == "" {
		serverURL = "http://localhost:8080"
	}

	documentKey := os.Getenv("MEAL_SYNC_DOCUMENT_KEY")
	if documentKey == "" {
		documentKey = "household"
	}

	// LLM keys are optional here; the clients error out when used without one.
	geminiAPIKey := os.Getenv("GEMINI_API_KEY")
	groqAPIKey := os.Getenv("GROQ_API_KEY")

	// Telegram Config (optional for CLI and server, required for the bot)
	telegramBotToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	telegramAllowUserIDStr := os.Getenv("TELEGRAM_ALLOW_USER_ID")
	var telegramAllowUserID int64
	if telegramAllowUserIDStr != "" {
		fmt.Sscanf(telegramAllowUserIDStr, "%d", &telegramAllowUserID)
	}

	return &Config{
		DBPath:              dbPath,
		ListenAddr:          listenAddr,
		ServerURL:           serverURL,
		AuthSecret:          authSecret,
		DocumentKey:         documentKey,
		GeminiAPIKey:        geminiAPIKey,
		GroqAPIKey:          groqAPIKey,
		TelegramBotToken:    telegramBotToken,
		TelegramAllowUserID: telegramAllowUserID,
	}, nil
}
