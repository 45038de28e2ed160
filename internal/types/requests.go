package types

// IngredientAmount is one ingredient line of a recipe write.
type IngredientAmount struct {
	ID     uint `json:"id"`
	Amount int  `json:"amount"`
}

// RecipeRequest is the body of recipe create and partial update requests.
// Nil fields are absent; Tags and Ingredients are nil when omitted.
type RecipeRequest struct {
	Name        *string            `json:"name" validate:"omitnil,min=1,max=200"`
	Text        *string            `json:"text" validate:"omitnil,min=1"`
	CookingTime *int               `json:"cooking_time" validate:"omitnil,gte=1,lte=999"`
	Image       *string            `json:"image" validate:"omitnil,startswith=data:image/"`
	Tags        []uint             `json:"tags"`
	Ingredients []IngredientAmount `json:"ingredients"`
}

// RegisterRequest is the body of the user registration request.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150,username"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SetPasswordRequest changes the caller's password.
type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}

type TokenResponse struct {
	AuthToken string `json:"auth_token"`
}

// RecipeFilter narrows a recipe listing. Zero values mean "no filter".
type RecipeFilter struct {
	AuthorID    uint
	TagSlugs    []string
	FavoritedBy uint
	InCartOf    uint
}
