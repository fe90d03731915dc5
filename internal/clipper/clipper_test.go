package clipper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// --- Mocks ---

type MockTextGenerator struct {
	Response    string
	ShouldError bool
	LastPrompt  string
}

func (m *MockTextGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	m.LastPrompt = prompt
	if m.ShouldError {
		return "", fmt.Errorf("mock ai error")
	}
	return m.Response, nil
}

// --- Tests ---

func TestFetchAndCleanHTML(t *testing.T) {
	// 1. Setup a test server serving dirty HTML
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		html := `
		<html>
			<head><script>alert('bad');</script></head>
			<body>
				<h1>Tasty Recipe</h1>
				<div class="ads">Buy stuff!</div>
				<p>Mix flour and water.</p>
				<script>more_bad_stuff()</script>
				<footer>Copyright 2024</footer>
			</body>
		</html>`
		w.Write([]byte(html))
	}))
	defer ts.Close()

	c := NewClipper(&MockTextGenerator{})

	cleanText, err := c.fetchAndCleanHTML(ts.URL)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if strings.Contains(cleanText, "alert('bad')") {
		t.Error("Failed to remove <script> tags")
	}
	if strings.Contains(cleanText, "Buy stuff!") {
		t.Error("Failed to remove .ads class")
	}
	if strings.Contains(cleanText, "Copyright 2024") {
		t.Error("Failed to remove <footer>")
	}
	if !strings.Contains(cleanText, "Tasty Recipe") {
		t.Error("Expected to find 'Tasty Recipe'")
	}
	if !strings.Contains(cleanText, "Mix flour and water.") {
		t.Error("Expected to find body content")
	}
}

func TestClipURL_Success(t *testing.T) {
	aiResponse := `{
		"title": "Mock Pie",
		"ingredients": [{"name": "Apple", "amount": 4, "unit": "pc", "section": "Produce"}],
		"steps": ["Bake"],
		"prep_time": "1h",
		"servings": "8"
	}`

	mockAI := &MockTextGenerator{Response: aiResponse}
	c := NewClipper(mockAI)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>Some Content</body></html>"))
	}))
	defer ts.Close()

	rec, err := c.ClipURL(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("ClipURL failed: %v", err)
	}

	if rec.Title != "Mock Pie" {
		t.Errorf("Expected title 'Mock Pie', got '%s'", rec.Title)
	}
	if rec.ID == "" {
		t.Error("Expected clipped recipe to get an id")
	}
	if rec.SourceURL != ts.URL {
		t.Errorf("Expected source URL to be recorded, got '%s'", rec.SourceURL)
	}
	if len(rec.Ingredients) != 1 || rec.Ingredients[0].Name != "Apple" {
		t.Errorf("Expected extracted ingredients, got %+v", rec.Ingredients)
	}
	if !strings.Contains(mockAI.LastPrompt, "Some Content") {
		t.Error("Expected the page content to be passed to the LLM")
	}
}

func TestClipURL_FencedResponse(t *testing.T) {
	// Models sometimes wrap the JSON in markdown fences despite the prompt.
	aiResponse := "```json\n{\"title\": \"Fenced Pie\", \"ingredients\": [], \"steps\": [\"Bake\"]}\n```"
	c := NewClipper(&MockTextGenerator{Response: aiResponse})

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>Some Content</body></html>"))
	}))
	defer ts.Close()

	rec, err := c.ClipURL(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("ClipURL failed on fenced response: %v", err)
	}
	if rec.Title != "Fenced Pie" {
		t.Errorf("Expected title 'Fenced Pie', got '%s'", rec.Title)
	}
}

func TestClipURL_AIError(t *testing.T) {
	c := NewClipper(&MockTextGenerator{ShouldError: true})

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>Some Content</body></html>"))
	}))
	defer ts.Close()

	if _, err := c.ClipURL(context.Background(), ts.URL); err == nil {
		t.Error("Expected AI error to propagate")
	}
}

func TestClipURL_EmptyExtraction(t *testing.T) {
	c := NewClipper(&MockTextGenerator{Response: `{"title": ""}`})

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>Not a recipe page</body></html>"))
	}))
	defer ts.Close()

	if _, err := c.ClipURL(context.Background(), ts.URL); err == nil {
		t.Error("Expected an error when no recipe is found")
	}
}
