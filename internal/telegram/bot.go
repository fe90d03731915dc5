package telegram

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"meal-planner/internal/client"
	"meal-planner/internal/clipper"
	"meal-planner/internal/config"
	"meal-planner/internal/document"
	"meal-planner/internal/generate"
	"meal-planner/internal/views"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bot wraps the Telegram API, the sync client and the generators.
type Bot struct {
	api       *tgbotapi.BotAPI
	queue     *client.Queue
	generator *generate.Generator
	clipper   *clipper.Clipper
	cfg       *config.Config
}

// NewBot initializes the Telegram Bot.
func NewBot(cfg *config.Config, queue *client.Queue, generator *generate.Generator, recipeClipper *clipper.Clipper) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	return &Bot{
		api:       bot,
		queue:     queue,
		generator: generator,
		clipper:   recipeClipper,
		cfg:       cfg,
	}, nil
}

// Run polls for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			if update.Message == nil {
				continue
			}
			if update.Message.From.ID != b.cfg.TelegramAllowUserID {
				log.Printf("⚠️ Unauthorized access attempt from UserID: %d (@%s)", update.Message.From.ID, update.Message.From.UserName)
				continue
			}
			go b.processMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)
	switch {
	case text == "/week":
		b.handleWeek(msg.Chat.ID)
	case text == "/groceries":
		b.handleGroceries(msg.Chat.ID)
	case strings.HasPrefix(text, "/done"):
		b.handleDone(msg.Chat.ID, strings.TrimSpace(strings.TrimPrefix(text, "/done")))
	case strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://"):
		b.handleClip(ctx, msg.Chat.ID, text)
	default:
		b.handlePlan(ctx, msg.Chat.ID, text)
	}
}

// weekDates returns today plus the next six days.
func weekDates() []string {
	dates := make([]string, 7)
	start := time.Now()
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i).Format("2006-01-02")
	}
	return dates
}

func (b *Bot) handleWeek(chatID int64) {
	doc := b.queue.Current()
	occ := views.Occupancy(doc)

	var sb strings.Builder
	sb.WriteString("🗓️ *This week*\n")
	for _, date := range weekDates() {
		if rec, ok := occ[date]; ok {
			fmt.Fprintf(&sb, "%s: %s\n", date, rec.Title)
		} else {
			fmt.Fprintf(&sb, "%s: —\n", date)
		}
	}
	b.send(chatID, sb.String())
}

func (b *Bot) handleGroceries(chatID int64) {
	doc := b.queue.Current()
	sections := views.Groceries(doc, weekDates())
	if len(sections) == 0 {
		b.send(chatID, "🛒 Nothing to buy this week.")
		return
	}

	var sb strings.Builder
	sb.WriteString("🛒 *Grocery list*\n")
	for _, sec := range sections {
		fmt.Fprintf(&sb, "\n*%s*\n", sec.Section)
		for _, item := range sec.Items {
			if item.Amount > 0 {
				fmt.Fprintf(&sb, "- %s: %g %s\n", item.Name, item.Amount, item.Unit)
			} else {
				fmt.Fprintf(&sb, "- %s\n", item.Name)
			}
		}
	}
	b.send(chatID, sb.String())
}

func (b *Bot) handleDone(chatID int64, date string) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		b.send(chatID, "Usage: /done YYYY-MM-DD")
		return
	}

	if err := <-b.queue.Enqueue(document.ToggleGroceriesPurchased(date)); err != nil {
		log.Printf("Failed to toggle groceries for %s: %v", date, err)
		b.send(chatID, fmt.Sprintf("❌ Save failed, please retry: %v", err))
		return
	}
	b.send(chatID, fmt.Sprintf("✅ Groceries toggled for %s", date))
}

func (b *Bot) handleClip(ctx context.Context, chatID int64, url string) {
	sent := b.send(chatID, "✂️ *Clipping recipe...*")

	rec, err := b.clipper.ClipURL(ctx, url)
	if err != nil {
		log.Printf("Error clipping recipe: %v", err)
		b.edit(chatID, sent, fmt.Sprintf("❌ Error clipping recipe: %v", err))
		return
	}

	if err := <-b.queue.Enqueue(document.AddRecipes(*rec)); err != nil {
		b.edit(chatID, sent, fmt.Sprintf("❌ Save failed, please retry: %v", err))
		return
	}
	b.edit(chatID, sent, fmt.Sprintf("✅ *Recipe saved!*\n\n*%s*", rec.Title))
}

func (b *Bot) handlePlan(ctx context.Context, chatID int64, request string) {
	sent := b.send(chatID, "🧑‍🍳 *Thinking...*\n(Generating your plan)")

	start := time.Now().Format("2006-01-02")
	plan, err := b.generator.Plan(ctx, request, start, 7)
	if err != nil {
		log.Printf("Error generating plan: %v", err)
		b.edit(chatID, sent, fmt.Sprintf("❌ Error generating plan: %v", err))
		return
	}

	if err := <-b.queue.Enqueue(document.ApplyMealPlan(plan.Recipes, plan.Assignments)); err != nil {
		b.edit(chatID, sent, fmt.Sprintf("❌ Save failed, please retry: %v", err))
		return
	}

	byID := make(map[string]document.Recipe, len(plan.Recipes))
	for _, r := range plan.Recipes {
		byID[r.ID] = r
	}
	var sb strings.Builder
	sb.WriteString("🗓️ *Your plan*\n")
	for _, a := range plan.Assignments {
		fmt.Fprintf(&sb, "%s: %s\n", a.Date, byID[a.RecipeID].Title)
	}
	b.edit(chatID, sent, sb.String())
}

func (b *Bot) send(chatID int64, text string) int {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	sent, err := b.api.Send(msg)
	if err != nil {
		log.Printf("Failed to send message: %v", err)
		return 0
	}
	return sent.MessageID
}

func (b *Bot) edit(chatID int64, messageID int, text string) {
	if messageID == 0 {
		b.send(chatID, text)
		return
	}
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = "Markdown"
	if _, err := b.api.Send(edit); err != nil {
		log.Printf("Failed to edit message: %v", err)
	}
}
