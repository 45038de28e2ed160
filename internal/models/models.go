package models

// All returns every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Subscription{},
		&Tag{},
		&Ingredient{},
		&Recipe{},
		&RecipeTag{},
		&RecipeIngredient{},
		&FavoriteRecipe{},
		&ShoppingCartEntry{},
	}
}
