package spoonacular

// RecipeSummary is one search hit.
type RecipeSummary struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Image     string `json:"image"`
	ImageType string `json:"imageType,omitempty"`
}

type Ingredient struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Original string  `json:"original"`
	Amount   float64 `json:"amount"`
	Unit     string  `json:"unit"`
	Image    string  `json:"image,omitempty"`
}

// RecipeDetail is the full record served by the information endpoint.
type RecipeDetail struct {
	ID                  int64        `json:"id"`
	Title               string       `json:"title"`
	Image               string       `json:"image"`
	ImageType           string       `json:"imageType,omitempty"`
	ReadyInMinutes      int          `json:"readyInMinutes"`
	Servings            int          `json:"servings"`
	SourceURL           string       `json:"sourceUrl,omitempty"`
	SourceName          string       `json:"sourceName,omitempty"`
	Summary             string       `json:"summary,omitempty"`
	Instructions        string       `json:"instructions,omitempty"`
	Vegetarian          bool         `json:"vegetarian"`
	Vegan               bool         `json:"vegan"`
	GlutenFree          bool         `json:"glutenFree"`
	DairyFree           bool         `json:"dairyFree"`
	Cuisines            []string     `json:"cuisines,omitempty"`
	DishTypes           []string     `json:"dishTypes,omitempty"`
	Diets               []string     `json:"diets,omitempty"`
	ExtendedIngredients []Ingredient `json:"extendedIngredients,omitempty"`
}
