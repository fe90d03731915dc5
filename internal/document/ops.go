package document

// Op transforms one document state into the next. Operations are pure: they
// read the input at apply-time and return a fresh value, so re-applying the
// same Op to a newer document after a version conflict always yields a valid
// candidate. The sync client relies on this for rebase-on-conflict.
//
// Ops never touch Version; the server assigns it on accept.
type Op func(Document) Document

// AddRecipes appends the given recipes. A recipe whose id already exists
// replaces the stored one instead of duplicating it.
func AddRecipes(recipes ...Recipe) Op {
	return func(d Document) Document {
		d = d.Clone()
		for _, rec := range recipes {
			if existing := d.FindRecipe(rec.ID); existing != nil {
				*existing = rec.clone()
				continue
			}
			d.Recipes = append(d.Recipes, rec.clone())
		}
		return d
	}
}

// RemoveRecipe deletes the recipe with the given id and nulls out every
// calendar entry referencing it. Leaving a dangling recipeId behind would be
// a correctness bug, so the cleanup happens in the same transform.
func RemoveRecipe(id string) Op {
	return func(d Document) Document {
		d = d.Clone()
		kept := d.Recipes[:0]
		for _, rec := range d.Recipes {
			if rec.ID != id {
				kept = append(kept, rec)
			}
		}
		d.Recipes = kept
		for i := range d.Calendar {
			if d.Calendar[i].RecipeID != nil && *d.Calendar[i].RecipeID == id {
				d.Calendar[i].RecipeID = nil
			}
		}
		return d
	}
}

// ToggleFavorite flips the favorite flag on the recipe with the given id.
// Unknown ids are a no-op.
func ToggleFavorite(id string) Op {
	return func(d Document) Document {
		d = d.Clone()
		if rec := d.FindRecipe(id); rec != nil {
			rec.IsFavorite = !rec.IsFavorite
		}
		return d
	}
}

// SetLastUsedAt stamps the recipe's lastUsedAt date. Unknown ids are a no-op.
func SetLastUsedAt(id, date string) Op {
	return func(d Document) Document {
		d = d.Clone()
		if rec := d.FindRecipe(id); rec != nil {
			rec.LastUsedAt = date
		}
		return d
	}
}

// AssignRecipe upserts the DayPlan for date and points it at recipeID.
func AssignRecipe(date, recipeID string) Op {
	return func(d Document) Document {
		d = d.Clone()
		id := recipeID
		if day := d.FindDay(date); day != nil {
			day.RecipeID = &id
			return d
		}
		d.Calendar = append(d.Calendar, DayPlan{Date: date, RecipeID: &id})
		return d
	}
}

// ClearDate nulls the recipe reference for date. The DayPlan entry itself is
// kept; an empty entry and an absent one read the same.
func ClearDate(date string) Op {
	return func(d Document) Document {
		d = d.Clone()
		if day := d.FindDay(date); day != nil {
			day.RecipeID = nil
		}
		return d
	}
}

// SwapRecipes exchanges the recipe references of two dates in a single
// transform. Expressing this as two assignments would let an interleaved
// conflict strand one side.
func SwapRecipes(dateA, dateB string) Op {
	return func(d Document) Document {
		d = d.Clone()
		dayA := d.FindDay(dateA)
		dayB := d.FindDay(dateB)
		if dayA == nil && dayB == nil {
			return d
		}
		if dayA == nil {
			d.Calendar = append(d.Calendar, DayPlan{Date: dateA})
			dayA = &d.Calendar[len(d.Calendar)-1]
			dayB = d.FindDay(dateB)
		}
		if dayB == nil {
			d.Calendar = append(d.Calendar, DayPlan{Date: dateB})
			dayB = &d.Calendar[len(d.Calendar)-1]
			dayA = d.FindDay(dateA)
		}
		dayA.RecipeID, dayB.RecipeID = dayB.RecipeID, dayA.RecipeID
		return d
	}
}

// ToggleGroceriesPurchased flips the purchased flag for date, creating the
// DayPlan if needed. On the transition to purchased the referenced recipe's
// lastUsedAt is stamped in the same transform.
func ToggleGroceriesPurchased(date string) Op {
	return func(d Document) Document {
		d = d.Clone()
		day := d.FindDay(date)
		if day == nil {
			d.Calendar = append(d.Calendar, DayPlan{Date: date})
			day = &d.Calendar[len(d.Calendar)-1]
		}
		day.GroceriesPurchased = !day.GroceriesPurchased
		if day.GroceriesPurchased && day.RecipeID != nil {
			if rec := d.FindRecipe(*day.RecipeID); rec != nil {
				rec.LastUsedAt = date
			}
		}
		return d
	}
}

// PlanAssignment pairs a date with the recipe planned for it.
type PlanAssignment struct {
	Date     string
	RecipeID string
}

// ApplyMealPlan inserts the generated recipes and upserts every day
// assignment as one atomic transform, so a multi-day plan lands in a single
// version increment.
func ApplyMealPlan(recipes []Recipe, assignments []PlanAssignment) Op {
	return func(d Document) Document {
		d = AddRecipes(recipes...)(d)
		for _, a := range assignments {
			d = AssignRecipe(a.Date, a.RecipeID)(d)
		}
		return d
	}
}

// ReplaceSettings swaps the settings wholesale. There are no partial-field
// settings updates.
func ReplaceSettings(s Settings) Op {
	return func(d Document) Document {
		d = d.Clone()
		d.Settings = s
		return d
	}
}
