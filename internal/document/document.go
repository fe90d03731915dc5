package document

// Document is the single synchronized unit: every recipe, calendar entry and
// setting for the household lives in one JSON blob with a version number.
type Document struct {
	Recipes  []Recipe  `json:"recipes"`
	Calendar []DayPlan `json:"calendar"`
	Settings Settings  `json:"settings"`
	Version  int64     `json:"version"`
}

// Recipe is a single recipe. Everything except ID, LastUsedAt and IsFavorite
// is opaque to the sync layer.
type Recipe struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Ingredients []Ingredient `json:"ingredients"`
	Steps       []string     `json:"steps,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	PrepTime    string       `json:"prepTime,omitempty"`
	Servings    string       `json:"servings,omitempty"`
	SourceURL   string       `json:"sourceUrl,omitempty"`
	CreatedAt   string       `json:"createdAt,omitempty"`
	LastUsedAt  string       `json:"lastUsedAt,omitempty"`
	IsFavorite  bool         `json:"isFavorite,omitempty"`
}

// Ingredient is one line of a recipe's ingredient list.
type Ingredient struct {
	Name    string  `json:"name"`
	Amount  float64 `json:"amount,omitempty"`
	Unit    string  `json:"unit,omitempty"`
	Section string  `json:"section,omitempty"`
}

// DayPlan links a calendar date to an optional recipe. The date is the
// natural key within Document.Calendar; RecipeID is a reference, not
// ownership. A DayPlan with a nil RecipeID is equivalent to no DayPlan at
// all for reads, but existing empty entries are kept as-is.
type DayPlan struct {
	Date               string  `json:"date"`
	RecipeID           *string `json:"recipeId"`
	GroceriesPurchased bool    `json:"groceriesPurchased,omitempty"`
}

// Settings holds the decay thresholds, replaced wholesale on update.
type Settings struct {
	RecipeDecayDays          int `json:"recipeDecayDays"`
	SuggestedRecipeDecayDays int `json:"suggestedRecipeDecayDays"`
}

// DefaultSettings are substituted whenever a loaded document carries no
// settings at all.
func DefaultSettings() Settings {
	return Settings{
		RecipeDecayDays:          14,
		SuggestedRecipeDecayDays: 30,
	}
}

// Default returns the empty document at version 0 used when nothing has been
// stored yet.
func Default() Document {
	return Document{
		Recipes:  []Recipe{},
		Calendar: []DayPlan{},
		Settings: DefaultSettings(),
		Version:  0,
	}
}

// Clone returns a deep copy of the document. Operations and the sync client
// never mutate a shared document in place; every write is built on a copy.
func (d Document) Clone() Document {
	out := d
	out.Recipes = make([]Recipe, len(d.Recipes))
	for i, r := range d.Recipes {
		out.Recipes[i] = r.clone()
	}
	out.Calendar = make([]DayPlan, len(d.Calendar))
	for i, p := range d.Calendar {
		out.Calendar[i] = p.clone()
	}
	return out
}

func (r Recipe) clone() Recipe {
	out := r
	if r.Ingredients != nil {
		out.Ingredients = append([]Ingredient(nil), r.Ingredients...)
	}
	if r.Steps != nil {
		out.Steps = append([]string(nil), r.Steps...)
	}
	if r.Tags != nil {
		out.Tags = append([]string(nil), r.Tags...)
	}
	return out
}

func (p DayPlan) clone() DayPlan {
	out := p
	if p.RecipeID != nil {
		id := *p.RecipeID
		out.RecipeID = &id
	}
	return out
}

// FindRecipe returns the recipe with the given id, or nil.
func (d Document) FindRecipe(id string) *Recipe {
	for i := range d.Recipes {
		if d.Recipes[i].ID == id {
			return &d.Recipes[i]
		}
	}
	return nil
}

// FindDay returns the DayPlan for the given date, or nil.
func (d Document) FindDay(date string) *DayPlan {
	for i := range d.Calendar {
		if d.Calendar[i].Date == date {
			return &d.Calendar[i]
		}
	}
	return nil
}

// Normalize turns nil collections on a freshly decoded document into empty
// slices. Documents read from the store or the wire always pass through here.
// Settings are left untouched: a zero Settings value is a legitimate wholesale
// replacement, and defaults apply only when a stored document carries no
// settings key at all (the store handles that on load).
func (d Document) Normalize() Document {
	if d.Recipes == nil {
		d.Recipes = []Recipe{}
	}
	if d.Calendar == nil {
		d.Calendar = []DayPlan{}
	}
	return d
}
