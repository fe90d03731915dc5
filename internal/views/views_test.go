package views

import (
	"testing"
	"time"

	"meal-planner/internal/document"
)

func strptr(s string) *string { return &s }

func weekDoc() document.Document {
	return document.Document{
		Recipes: []document.Recipe{
			{
				ID:    "soup",
				Title: "Lentil Soup",
				Ingredients: []document.Ingredient{
					{Name: "Onion", Amount: 1, Unit: "pc", Section: "Produce"},
					{Name: "Lentils", Amount: 250, Unit: "g", Section: "Pantry"},
				},
			},
			{
				ID:    "curry",
				Title: "Chickpea Curry",
				Ingredients: []document.Ingredient{
					{Name: "onion", Amount: 2, Unit: "pc", Section: "Produce"},
					{Name: "Chickpeas", Amount: 400, Unit: "g", Section: "Pantry"},
				},
			},
		},
		Calendar: []document.DayPlan{
			{Date: "2024-02-05", RecipeID: strptr("soup")},
			{Date: "2024-02-06", RecipeID: strptr("curry")},
			{Date: "2024-02-07", RecipeID: strptr("gone")}, // dangling
			{Date: "2024-02-08", RecipeID: nil},
		},
		Settings: document.DefaultSettings(),
	}
}

func TestGroceriesAggregation(t *testing.T) {
	sections := Groceries(weekDoc(), []string{"2024-02-05", "2024-02-06", "2024-02-07"})

	if len(sections) != 2 {
		t.Fatalf("Expected 2 sections, got %d", len(sections))
	}

	var produce, pantry *GrocerySection
	for i := range sections {
		switch sections[i].Section {
		case "Produce":
			produce = &sections[i]
		case "Pantry":
			pantry = &sections[i]
		}
	}
	if produce == nil || pantry == nil {
		t.Fatalf("Expected Produce and Pantry sections, got %+v", sections)
	}

	// "Onion" and "onion" share a normalized key and sum their amounts.
	if len(produce.Items) != 1 {
		t.Fatalf("Expected 1 produce item, got %d", len(produce.Items))
	}
	onion := produce.Items[0]
	if onion.Amount != 3 {
		t.Errorf("Expected 3 onions after merging, got %v", onion.Amount)
	}
	if len(onion.Recipes) != 2 {
		t.Errorf("Expected onion to list both recipes, got %v", onion.Recipes)
	}

	if len(pantry.Items) != 2 {
		t.Errorf("Expected chickpeas and lentils in pantry, got %+v", pantry.Items)
	}
}

func TestGroceriesIgnoresUnselectedAndDanglingDates(t *testing.T) {
	// Only the dangling date selected: nothing to buy, no error.
	sections := Groceries(weekDoc(), []string{"2024-02-07"})
	if len(sections) != 0 {
		t.Errorf("Expected empty list for dangling reference, got %+v", sections)
	}

	// Only one date selected: the other recipe's ingredients are excluded.
	sections = Groceries(weekDoc(), []string{"2024-02-05"})
	for _, sec := range sections {
		for _, item := range sec.Items {
			if normalize(item.Name) == "chickpeas" {
				t.Error("Expected unselected date's ingredients to be excluded")
			}
		}
	}
}

func TestSameNameDifferentUnitStaysSeparate(t *testing.T) {
	doc := document.Document{
		Recipes: []document.Recipe{
			{ID: "a", Title: "A", Ingredients: []document.Ingredient{{Name: "Milk", Amount: 200, Unit: "ml"}}},
			{ID: "b", Title: "B", Ingredients: []document.Ingredient{{Name: "Milk", Amount: 1, Unit: "l"}}},
		},
		Calendar: []document.DayPlan{
			{Date: "2024-02-05", RecipeID: strptr("a")},
			{Date: "2024-02-06", RecipeID: strptr("b")},
		},
	}

	sections := Groceries(doc, []string{"2024-02-05", "2024-02-06"})
	if len(sections) != 1 {
		t.Fatalf("Expected one section, got %d", len(sections))
	}
	if len(sections[0].Items) != 2 {
		t.Errorf("Expected ml and l milk kept separate, got %+v", sections[0].Items)
	}
}

func TestOccupancy(t *testing.T) {
	occ := Occupancy(weekDoc())

	if got := occ["2024-02-05"].Title; got != "Lentil Soup" {
		t.Errorf("Expected Lentil Soup on 2024-02-05, got '%s'", got)
	}
	if _, ok := occ["2024-02-07"]; ok {
		t.Error("Expected dangling reference to produce an empty slot")
	}
	if _, ok := occ["2024-02-08"]; ok {
		t.Error("Expected empty DayPlan to produce no entry")
	}
}

func TestStaleRecipes(t *testing.T) {
	today := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	doc := document.Document{
		Recipes: []document.Recipe{
			{ID: "fresh", LastUsedAt: "2024-02-25"},
			{ID: "used-long-ago", LastUsedAt: "2024-01-01"},
			{ID: "never-used-old", CreatedAt: "2023-12-01"},
			{ID: "never-used-new", CreatedAt: "2024-02-28"},
			{ID: "no-dates"},
		},
		Settings: document.Settings{RecipeDecayDays: 14, SuggestedRecipeDecayDays: 30},
	}

	stale := StaleRecipes(doc, today)

	ids := make(map[string]bool)
	for _, r := range stale {
		ids[r.ID] = true
	}
	if !ids["used-long-ago"] {
		t.Error("Expected used-long-ago to be flagged")
	}
	if !ids["never-used-old"] {
		t.Error("Expected never-used-old to be flagged")
	}
	if ids["fresh"] || ids["never-used-new"] || ids["no-dates"] {
		t.Errorf("Unexpected recipes flagged: %v", ids)
	}
}
