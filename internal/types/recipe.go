package types

import "github.com/pageza/foodgram/backend/internal/models"

// UserView is a user as seen by the requester.
type UserView struct {
	Email        string `json:"email"`
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

// RecipeIngredientView flattens an ingredient line for output.
type RecipeIngredientView struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeFlags are the per-requester relation flags of a recipe.
type RecipeFlags struct {
	IsFavorited      bool `json:"is_favorited"`
	IsInShoppingCart bool `json:"is_in_shopping_cart"`
}

// RecipeView is a recipe decorated for one requester.
type RecipeView struct {
	ID          uint                   `json:"id"`
	Tags        []models.Tag           `json:"tags"`
	Author      UserView               `json:"author"`
	Ingredients []RecipeIngredientView `json:"ingredients"`
	RecipeFlags
	Name        string `json:"name"`
	Image       string `json:"image"`
	Text        string `json:"text"`
	CookingTime int    `json:"cooking_time"`
}

// RecipeShort is the compact recipe projection.
type RecipeShort struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

func NewRecipeShort(r *models.Recipe) RecipeShort {
	return RecipeShort{ID: r.ID, Name: r.Name, Image: r.Image, CookingTime: r.CookingTime}
}

// SubscriptionView is a followed author with a preview of their recipes.
type SubscriptionView struct {
	UserView
	Recipes      []RecipeShort `json:"recipes"`
	RecipesCount int64         `json:"recipes_count"`
}

// ShoppingListItem is one aggregated line of a shopping list.
type ShoppingListItem struct {
	IngredientID    uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}
