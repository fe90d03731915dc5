package clipper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"meal-planner/internal/document"
	"meal-planner/internal/llm"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
)

// Clipper fetches a recipe page and turns it into a Recipe payload ready for
// the mutation queue.
type Clipper struct {
	textGen    llm.TextGenerator
	httpClient *http.Client
	now        func() time.Time
}

// extractedRecipe is the JSON shape the LLM is asked to produce.
type extractedRecipe struct {
	Title       string `json:"title"`
	Ingredients []struct {
		Name    string  `json:"name"`
		Amount  float64 `json:"amount"`
		Unit    string  `json:"unit"`
		Section string  `json:"section"`
	} `json:"ingredients"`
	Steps    []string `json:"steps"`
	PrepTime string   `json:"prep_time"`
	Servings string   `json:"servings"`
}

// NewClipper creates a new Clipper instance.
func NewClipper(textGen llm.TextGenerator) *Clipper {
	return &Clipper{
		textGen:    textGen,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		now:        time.Now,
	}
}

// ClipURL fetches the URL and extracts the recipe using AI.
func (c *Clipper) ClipURL(ctx context.Context, url string) (*document.Recipe, error) {
	// 1. Fetch and clean HTML
	content, err := c.fetchAndCleanHTML(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content: %w", err)
	}

	// 2. Extract structured data
	prompt := fmt.Sprintf(`
You are a recipe extraction expert. Extract the recipe details from the following page content.
Return the result strictly as a JSON object with this structure:
{
  "title": "Recipe Title",
  "ingredients": [
    {"name": "Onion", "amount": 1, "unit": "pc", "section": "Produce"},
    ...
  ],
  "steps": ["Step 1 description", "Step 2 description", ...],
  "prep_time": "e.g. 30 mins",
  "servings": "e.g. 4 people"
}

Use store sections from: Produce, Pantry, Dairy, Meat & Fish, Frozen, Bakery, Other.

Page Content:
%s
`, content)

	llmResponse, err := c.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("ai extraction failed: %w", err)
	}

	var extracted extractedRecipe
	if err := json.Unmarshal([]byte(llm.StripCodeFences(llmResponse)), &extracted); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w. Response: %s", err, llmResponse)
	}
	if extracted.Title == "" {
		return nil, fmt.Errorf("no recipe found on page")
	}

	// 3. Build the Recipe payload
	ingredients := make([]document.Ingredient, 0, len(extracted.Ingredients))
	for _, ing := range extracted.Ingredients {
		ingredients = append(ingredients, document.Ingredient{
			Name:    ing.Name,
			Amount:  ing.Amount,
			Unit:    ing.Unit,
			Section: ing.Section,
		})
	}

	return &document.Recipe{
		ID:          uuid.NewString(),
		Title:       extracted.Title,
		Ingredients: ingredients,
		Steps:       extracted.Steps,
		PrepTime:    extracted.PrepTime,
		Servings:    extracted.Servings,
		SourceURL:   url,
		CreatedAt:   c.now().UTC().Format("2006-01-02"),
	}, nil
}

func (c *Clipper) fetchAndCleanHTML(url string) (string, error) {
	resp, err := c.httpClient.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	// Remove noise to save LLM tokens
	doc.Find("script, style, nav, footer, iframe, ads, .ads, #ads").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	return doc.Find("body").Text(), nil
}
