package testhelpers

import (
	"context"
	"fmt"
	"testing"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// Password is the password of every user created by CreateUser.
const Password = "s3cret-pass"

// PNGDataURI is a 1x1 PNG in the data URI form recipe uploads use.
const PNGDataURI = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNk+M9QDwADhgGAWjR9awAAAABJRU5ErkJggg=="

// CreateUser registers a user named username through the auth service.
func (e *Env) CreateUser(t *testing.T, username string) *models.User {
	t.Helper()
	user, err := e.Auth.Register(context.Background(), types.RegisterRequest{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "Test",
		LastName:  "User",
		Password:  Password,
	})
	if err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

// Token returns a signed auth token for user.
func (e *Env) Token(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := e.Auth.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func (e *Env) CreateTag(t *testing.T, slug string) models.Tag {
	t.Helper()
	color := "#49B64E"
	tag := models.Tag{Name: slug, Slug: slug, Color: &color}
	if err := e.DB.Create(&tag).Error; err != nil {
		t.Fatalf("failed to create tag %s: %v", slug, err)
	}
	return tag
}

func (e *Env) CreateIngredient(t *testing.T, name, unit string) models.Ingredient {
	t.Helper()
	ing := models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := e.DB.Create(&ing).Error; err != nil {
		t.Fatalf("failed to create ingredient %s: %v", name, err)
	}
	return ing
}

// Line builds one ingredient line of a recipe request.
func Line(ing models.Ingredient, amount int) types.IngredientAmount {
	return types.IngredientAmount{ID: ing.ID, Amount: amount}
}

// CreateRecipe creates a recipe by author with the given tags and ingredient lines.
func (e *Env) CreateRecipe(t *testing.T, author *models.User, name string, tags []models.Tag, lines ...types.IngredientAmount) *models.Recipe {
	t.Helper()
	tagIDs := make([]uint, 0, len(tags))
	for _, tag := range tags {
		tagIDs = append(tagIDs, tag.ID)
	}
	spec, err := e.RecipeSvc.Validate(context.Background(), tagIDs, lines)
	if err != nil {
		t.Fatalf("invalid recipe fixture %s: %v", name, err)
	}
	text := fmt.Sprintf("How to cook %s", name)
	cookingTime := 15
	image := "/media/recipes/images/" + name + ".png"
	recipe, err := e.RecipeSvc.Create(context.Background(), author.ID, service.RecipeFields{
		Name:        &name,
		Text:        &text,
		CookingTime: &cookingTime,
		Image:       &image,
	}, spec)
	if err != nil {
		t.Fatalf("failed to create recipe %s: %v", name, err)
	}
	return recipe
}
