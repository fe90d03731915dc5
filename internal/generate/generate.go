package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"meal-planner/internal/document"
	"meal-planner/internal/llm"

	"github.com/google/uuid"
)

// Generator turns natural-language requests into Recipe payloads ready to be
// inserted into the document through the mutation queue.
type Generator struct {
	textGen llm.TextGenerator
	now     func() time.Time
}

// NewGenerator creates a Generator.
func NewGenerator(textGen llm.TextGenerator) *Generator {
	return &Generator{textGen: textGen, now: time.Now}
}

// generatedRecipe is the JSON shape the LLM is asked to produce.
type generatedRecipe struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Ingredients []struct {
		Name    string  `json:"name"`
		Amount  float64 `json:"amount"`
		Unit    string  `json:"unit"`
		Section string  `json:"section"`
	} `json:"ingredients"`
	Steps    []string `json:"steps"`
	Tags     []string `json:"tags"`
	PrepTime string   `json:"prep_time"`
	Servings string   `json:"servings"`
}

// Recipes asks the LLM for count recipes matching the request.
func (g *Generator) Recipes(ctx context.Context, request string, count int) ([]document.Recipe, error) {
	prompt := fmt.Sprintf(`
You are an expert home cook. Create %d recipes matching this request: "%s".

Return the result strictly as a JSON object with this structure:
{
  "recipes": [
    {
      "title": "Recipe Name",
      "description": "One-sentence description",
      "ingredients": [
        {"name": "Onion", "amount": 1, "unit": "pc", "section": "Produce"},
        ...
      ],
      "steps": ["Step 1 description", "Step 2 description", ...],
      "tags": ["tag1", "tag2"],
      "prep_time": "e.g. 30 mins",
      "servings": "e.g. 4 people"
    },
    ...
  ]
}

Use store sections from: Produce, Pantry, Dairy, Meat & Fish, Frozen, Bakery, Other.
Ensure the output is valid JSON. Do not include any other text in your response.
Return ONLY the raw JSON string. Do not wrap the response in markdown code blocks.
`, count, request)

	resp, err := g.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to get LLM response: %w", err)
	}

	var parsed struct {
		Recipes []generatedRecipe `json:"recipes"`
	}
	if err := json.Unmarshal([]byte(llm.StripCodeFences(resp)), &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal LLM response: %w. LLM Response: %s", err, resp)
	}
	if len(parsed.Recipes) == 0 {
		return nil, fmt.Errorf("LLM returned no recipes")
	}

	out := make([]document.Recipe, 0, len(parsed.Recipes))
	for _, gr := range parsed.Recipes {
		out = append(out, g.toRecipe(gr))
	}
	return out, nil
}

// WeekPlan holds a generated multi-day plan: the new recipes plus the date
// assignments, applied to the document as one atomic transform.
type WeekPlan struct {
	Recipes     []document.Recipe
	Assignments []document.PlanAssignment
}

// Plan asks the LLM for a plan covering days consecutive dates starting at
// startDate (YYYY-MM-DD).
func (g *Generator) Plan(ctx context.Context, request, startDate string, days int) (*WeekPlan, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", startDate, err)
	}

	recipes, err := g.Recipes(ctx, fmt.Sprintf("%d dinners for: %s", days, request), days)
	if err != nil {
		return nil, err
	}

	assignments := make([]document.PlanAssignment, 0, days)
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		// Repeat recipes if the LLM returned fewer than requested.
		rec := recipes[i%len(recipes)]
		assignments = append(assignments, document.PlanAssignment{Date: date, RecipeID: rec.ID})
	}

	return &WeekPlan{Recipes: recipes, Assignments: assignments}, nil
}

func (g *Generator) toRecipe(gr generatedRecipe) document.Recipe {
	ingredients := make([]document.Ingredient, 0, len(gr.Ingredients))
	for _, ing := range gr.Ingredients {
		ingredients = append(ingredients, document.Ingredient{
			Name:    ing.Name,
			Amount:  ing.Amount,
			Unit:    ing.Unit,
			Section: ing.Section,
		})
	}
	return document.Recipe{
		ID:          uuid.NewString(),
		Title:       gr.Title,
		Description: gr.Description,
		Ingredients: ingredients,
		Steps:       gr.Steps,
		Tags:        gr.Tags,
		PrepTime:    gr.PrepTime,
		Servings:    gr.Servings,
		CreatedAt:   g.now().UTC().Format("2006-01-02"),
	}
}
