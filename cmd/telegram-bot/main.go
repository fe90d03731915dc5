package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"meal-planner/internal/client"
	"meal-planner/internal/clipper"
	"meal-planner/internal/config"
	"meal-planner/internal/generate"
	"meal-planner/internal/llm"
	"meal-planner/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.TelegramBotToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN environment variable not set")
	}
	if cfg.TelegramAllowUserID == 0 {
		log.Fatal("TELEGRAM_ALLOW_USER_ID environment variable not set")
	}

	var textGen llm.TextGenerator
	if cfg.GroqAPIKey != "" {
		textGen = llm.NewGroqClient(cfg)
	} else {
		geminiClient, err := llm.NewGeminiClient(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to initialize Gemini client: %v", err)
		}
		if closer, ok := geminiClient.(llm.Closer); ok {
			defer closer.Close()
		}
		textGen = geminiClient
	}

	remote := client.NewRemote(cfg.ServerURL, cfg.AuthSecret)
	initial, err := remote.Fetch(ctx)
	if err != nil {
		log.Fatalf("Failed to fetch document from %s: %v", cfg.ServerURL, err)
	}
	queue := client.NewQueue(remote, initial)

	bot, err := telegram.NewBot(cfg, queue, generate.NewGenerator(textGen), clipper.NewClipper(textGen))
	if err != nil {
		log.Fatalf("Failed to initialize bot: %v", err)
	}

	log.Println("Telegram bot running, press Ctrl+C to stop")
	bot.Run(ctx)
}
