package views

import (
	"time"

	"meal-planner/internal/document"
)

// Occupancy maps each date to the recipe planned for it. Dates whose DayPlan
// has no recipe, or references a recipe that no longer exists, are absent.
func Occupancy(doc document.Document) map[string]document.Recipe {
	out := make(map[string]document.Recipe, len(doc.Calendar))
	for _, day := range doc.Calendar {
		if day.RecipeID == nil {
			continue
		}
		if rec := doc.FindRecipe(*day.RecipeID); rec != nil {
			out[day.Date] = *rec
		}
	}
	return out
}

// StaleRecipes returns the recipes flagged by the decay thresholds: a used
// recipe whose lastUsedAt is older than RecipeDecayDays, or a never-used
// recipe created more than SuggestedRecipeDecayDays ago. Recipes without
// either date are never flagged.
func StaleRecipes(doc document.Document, today time.Time) []document.Recipe {
	var out []document.Recipe
	for _, rec := range doc.Recipes {
		if isStale(rec, doc.Settings, today) {
			out = append(out, rec)
		}
	}
	return out
}

func isStale(rec document.Recipe, s document.Settings, today time.Time) bool {
	if rec.LastUsedAt != "" {
		return olderThanDays(rec.LastUsedAt, s.RecipeDecayDays, today)
	}
	if rec.CreatedAt != "" {
		return olderThanDays(rec.CreatedAt, s.SuggestedRecipeDecayDays, today)
	}
	return false
}

func olderThanDays(date string, days int, today time.Time) bool {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return false
	}
	return today.Sub(t) > time.Duration(days)*24*time.Hour
}
