package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"meal-planner/internal/client"
	"meal-planner/internal/clipper"
	"meal-planner/internal/config"
	"meal-planner/internal/database"
	"meal-planner/internal/document"
	"meal-planner/internal/generate"
	"meal-planner/internal/llm"
	"meal-planner/internal/metrics"
	"meal-planner/internal/views"
)

func main() {
	ctx := context.Background()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	remote := client.NewRemote(cfg.ServerURL, cfg.AuthSecret)
	initial, err := remote.Fetch(ctx)
	if err != nil {
		log.Fatalf("Failed to fetch document from %s: %v", cfg.ServerURL, err)
	}
	queue := client.NewQueue(remote, initial)

	switch os.Args[1] {
	case "plan":
		planCmd := flag.NewFlagSet("plan", flag.ExitOnError)
		start := planCmd.String("start", time.Now().Format("2006-01-02"), "First date of the plan (YYYY-MM-DD)")
		days := planCmd.Int("days", 7, "Number of days to plan")
		planCmd.Parse(os.Args[2:])
		if planCmd.NArg() < 1 {
			log.Fatal("Usage: meal-planner plan [flags] \"<request>\"")
		}
		if err := runPlan(ctx, cfg, queue, planCmd.Arg(0), *start, *days); err != nil {
			log.Fatalf("Plan failed: %v", err)
		}
	case "clip":
		if len(os.Args) < 3 {
			log.Fatal("Usage: meal-planner clip <url>")
		}
		if err := runClip(ctx, cfg, queue, os.Args[2]); err != nil {
			log.Fatalf("Clip failed: %v", err)
		}
	case "week":
		runWeek(queue)
	case "groceries":
		groceriesCmd := flag.NewFlagSet("groceries", flag.ExitOnError)
		days := groceriesCmd.Int("days", 7, "Number of days to aggregate, starting today")
		groceriesCmd.Parse(os.Args[2:])
		runGroceries(queue, *days)
	case "stale":
		runStale(queue)
	case "metrics":
		metricsCmd := flag.NewFlagSet("metrics", flag.ExitOnError)
		days := metricsCmd.Int("days", 7, "Number of days to summarize")
		metricsCmd.Parse(os.Args[2:])
		if err := runMetrics(ctx, cfg, *days); err != nil {
			log.Fatalf("Metrics failed: %v", err)
		}
	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])
		if err := runMetricsCleanup(ctx, cfg, *days); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func newTextGenerator(ctx context.Context, cfg *config.Config) (llm.TextGenerator, error) {
	if cfg.GroqAPIKey != "" {
		return llm.NewGroqClient(cfg), nil
	}
	return llm.NewGeminiClient(ctx, cfg)
}

func runPlan(ctx context.Context, cfg *config.Config, queue *client.Queue, request, start string, days int) error {
	textGen, err := newTextGenerator(ctx, cfg)
	if err != nil {
		return err
	}
	if closer, ok := textGen.(llm.Closer); ok {
		defer closer.Close()
	}

	fmt.Printf("Generating meal plan for: \"%s\"...\n", request)
	plan, err := generate.NewGenerator(textGen).Plan(ctx, request, start, days)
	if err != nil {
		return err
	}

	if err := <-queue.Enqueue(document.ApplyMealPlan(plan.Recipes, plan.Assignments)); err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}

	byID := make(map[string]document.Recipe, len(plan.Recipes))
	for _, r := range plan.Recipes {
		byID[r.ID] = r
	}
	fmt.Println("\n=== MEAL PLAN ===")
	for _, a := range plan.Assignments {
		fmt.Printf("%s: %s\n", a.Date, byID[a.RecipeID].Title)
	}
	return nil
}

func runClip(ctx context.Context, cfg *config.Config, queue *client.Queue, url string) error {
	textGen, err := newTextGenerator(ctx, cfg)
	if err != nil {
		return err
	}
	if closer, ok := textGen.(llm.Closer); ok {
		defer closer.Close()
	}

	fmt.Printf("Clipping recipe from %s...\n", url)
	rec, err := clipper.NewClipper(textGen).ClipURL(ctx, url)
	if err != nil {
		return err
	}

	if err := <-queue.Enqueue(document.AddRecipes(*rec)); err != nil {
		return fmt.Errorf("failed to save recipe: %w", err)
	}
	fmt.Printf("Saved \"%s\" (%d ingredients).\n", rec.Title, len(rec.Ingredients))
	return nil
}

func runWeek(queue *client.Queue) {
	occ := views.Occupancy(queue.Current())
	fmt.Println("=== THIS WEEK ===")
	for i := 0; i < 7; i++ {
		date := time.Now().AddDate(0, 0, i).Format("2006-01-02")
		if rec, ok := occ[date]; ok {
			fmt.Printf("%s: %s\n", date, rec.Title)
		} else {
			fmt.Printf("%s: -\n", date)
		}
	}
}

func runGroceries(queue *client.Queue, days int) {
	dates := make([]string, days)
	for i := range dates {
		dates[i] = time.Now().AddDate(0, 0, i).Format("2006-01-02")
	}

	sections := views.Groceries(queue.Current(), dates)
	if len(sections) == 0 {
		fmt.Println("Nothing to buy.")
		return
	}
	fmt.Println("=== GROCERY LIST ===")
	for _, sec := range sections {
		fmt.Printf("\n[%s]\n", sec.Section)
		for _, item := range sec.Items {
			if item.Amount > 0 {
				fmt.Printf("- %s: %g %s\n", item.Name, item.Amount, item.Unit)
			} else {
				fmt.Printf("- %s\n", item.Name)
			}
		}
	}
}

func runStale(queue *client.Queue) {
	stale := views.StaleRecipes(queue.Current(), time.Now())
	if len(stale) == 0 {
		fmt.Println("No stale recipes.")
		return
	}
	fmt.Println("=== STALE RECIPES ===")
	for _, rec := range stale {
		if rec.LastUsedAt != "" {
			fmt.Printf("- %s (last used %s)\n", rec.Title, rec.LastUsedAt)
		} else {
			fmt.Printf("- %s (never used, added %s)\n", rec.Title, rec.CreatedAt)
		}
	}
}

func runMetrics(ctx context.Context, cfg *config.Config, days int) error {
	db, err := database.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	summaries, err := metrics.NewStore(db.SQL).Summarize(ctx, days)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Println("No sync activity recorded.")
		return nil
	}
	fmt.Println("=== SYNC ACTIVITY ===")
	for _, day := range summaries {
		fmt.Printf("%s: %d accepted, %d conflicts, %d errors\n", day.Date, day.Accepted, day.Conflicts, day.Errors)
	}
	return nil
}

func runMetricsCleanup(ctx context.Context, cfg *config.Config, days int) error {
	db, err := database.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	affected, err := metrics.NewStore(db.SQL).Cleanup(ctx, days)
	if err != nil {
		return err
	}
	fmt.Printf("Successfully removed %d old metric records.\n", affected)
	return nil
}

func printUsage() {
	fmt.Println("Usage: meal-planner <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  plan \"<request>\"   Generate a meal plan and save it to the calendar")
	fmt.Println("  clip <url>          Import a recipe from a web page")
	fmt.Println("  week                Show the coming week's calendar")
	fmt.Println("  groceries           Show the aggregated grocery list")
	fmt.Println("  stale               List recipes past their decay threshold")
	fmt.Println("  metrics             Show sync activity per day")
	fmt.Println("  metrics-cleanup     Remove old metric records")
}
