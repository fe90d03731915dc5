package views

import (
	"sort"
	"strings"

	"meal-planner/internal/document"
)

// GroceryItem is one aggregated line of the grocery list.
type GroceryItem struct {
	Name    string
	Unit    string
	Amount  float64
	Recipes []string
}

// GrocerySection groups aggregated items by store section.
type GrocerySection struct {
	Section string
	Items   []GroceryItem
}

// Groceries aggregates the ingredients of every recipe planned on the given
// dates: lines are grouped by normalized name+unit with amounts summed, then
// bucketed by store section. It is a pure view over the document; a
// DayPlan referencing a missing recipe contributes nothing.
func Groceries(doc document.Document, dates []string) []GrocerySection {
	wanted := make(map[string]bool, len(dates))
	for _, d := range dates {
		wanted[d] = true
	}

	type key struct{ name, unit string }
	amounts := make(map[key]*GroceryItem)
	sections := make(map[key]string)

	for _, day := range doc.Calendar {
		if !wanted[day.Date] || day.RecipeID == nil {
			continue
		}
		rec := doc.FindRecipe(*day.RecipeID)
		if rec == nil {
			continue
		}
		for _, ing := range rec.Ingredients {
			k := key{name: normalize(ing.Name), unit: normalize(ing.Unit)}
			item, ok := amounts[k]
			if !ok {
				item = &GroceryItem{Name: ing.Name, Unit: ing.Unit}
				amounts[k] = item
				sections[k] = ing.Section
			}
			item.Amount += ing.Amount
			if !contains(item.Recipes, rec.Title) {
				item.Recipes = append(item.Recipes, rec.Title)
			}
		}
	}

	bySection := make(map[string][]GroceryItem)
	for k, item := range amounts {
		section := sections[k]
		if section == "" {
			section = "Other"
		}
		bySection[section] = append(bySection[section], *item)
	}

	out := make([]GrocerySection, 0, len(bySection))
	for section, items := range bySection {
		sort.Slice(items, func(i, j int) bool {
			return normalize(items[i].Name) < normalize(items[j].Name)
		})
		out = append(out, GrocerySection{Section: section, Items: items})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Section < out[j].Section })
	return out
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
