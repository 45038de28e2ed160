package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

type recipeFixture struct {
	env    *testhelpers.Env
	author *models.User
	other  *models.User
	lunch  models.Tag
	dinner models.Tag
	flour  models.Ingredient
	sugar  models.Ingredient
	salt   models.Ingredient
}

func newRecipeFixture(t *testing.T) *recipeFixture {
	e := testhelpers.NewEnv(t)
	return &recipeFixture{
		env:    e,
		author: e.CreateUser(t, "author"),
		other:  e.CreateUser(t, "other"),
		lunch:  e.CreateTag(t, "lunch"),
		dinner: e.CreateTag(t, "dinner"),
		flour:  e.CreateIngredient(t, "flour", "g"),
		sugar:  e.CreateIngredient(t, "sugar", "g"),
		salt:   e.CreateIngredient(t, "salt", "pinch"),
	}
}

func ptr[T any](v T) *T { return &v }

func (f *recipeFixture) request(tags []uint, lines ...types.IngredientAmount) types.RecipeRequest {
	return types.RecipeRequest{
		Name:        ptr("Pancakes"),
		Text:        ptr("Mix and fry."),
		CookingTime: ptr(20),
		Image:       ptr(testhelpers.PNGDataURI),
		Tags:        tags,
		Ingredients: lines,
	}
}

func countRows(t *testing.T, e *testhelpers.Env, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.DB.Model(model).Count(&n).Error)
	return n
}

func TestCreateRecipeRejectsInvalidAssociations(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		tags      []uint
		lines     []types.IngredientAmount
		detailKey string
	}{
		{
			name:      "empty ingredients",
			tags:      []uint{f.lunch.ID},
			detailKey: "ingredients",
		},
		{
			name:      "empty tags",
			lines:     []types.IngredientAmount{testhelpers.Line(f.flour, 100)},
			detailKey: "tags",
		},
		{
			name:      "duplicate ingredient",
			tags:      []uint{f.lunch.ID},
			lines:     []types.IngredientAmount{testhelpers.Line(f.flour, 100), testhelpers.Line(f.flour, 50)},
			detailKey: "ingredients",
		},
		{
			name:      "duplicate tag",
			tags:      []uint{f.lunch.ID, f.lunch.ID},
			lines:     []types.IngredientAmount{testhelpers.Line(f.flour, 100)},
			detailKey: "tags",
		},
		{
			// Amounts start at 1; zero is rejected.
			name:      "zero amount",
			tags:      []uint{f.lunch.ID},
			lines:     []types.IngredientAmount{testhelpers.Line(f.sugar, 10), testhelpers.Line(f.flour, 0)},
			detailKey: "ingredients[1].amount",
		},
		{
			name:      "negative amount",
			tags:      []uint{f.lunch.ID},
			lines:     []types.IngredientAmount{testhelpers.Line(f.flour, -5)},
			detailKey: "ingredients[0].amount",
		},
		{
			name:      "unknown ingredient",
			tags:      []uint{f.lunch.ID},
			lines:     []types.IngredientAmount{{ID: 9999, Amount: 1}},
			detailKey: "ingredients",
		},
		{
			name:      "unknown tag",
			tags:      []uint{f.lunch.ID, 9999},
			lines:     []types.IngredientAmount{testhelpers.Line(f.flour, 100)},
			detailKey: "tags",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.env.RecipeSvc.CreateRecipe(ctx, f.author.ID, f.request(tt.tags, tt.lines...))
			require.Error(t, err)
			assert.ErrorIs(t, err, apperr.ErrValidation)

			var appErr *apperr.Error
			require.True(t, errors.As(err, &appErr))
			assert.Contains(t, appErr.Details, tt.detailKey)

			assert.Zero(t, countRows(t, f.env, &models.Recipe{}))
			assert.Zero(t, countRows(t, f.env, &models.RecipeIngredient{}))
			assert.Zero(t, countRows(t, f.env, &models.RecipeTag{}))
			assert.Zero(t, f.env.Images.Len(), "no image is stored for a rejected recipe")
		})
	}
}

func TestCreateRecipeRequiresFields(t *testing.T) {
	f := newRecipeFixture(t)
	req := f.request([]uint{f.lunch.ID}, testhelpers.Line(f.flour, 100))
	req.Image = nil
	req.CookingTime = nil

	_, err := f.env.RecipeSvc.CreateRecipe(context.Background(), f.author.ID, req)
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
	assert.Contains(t, appErr.Details, "image")
	assert.Contains(t, appErr.Details, "cooking_time")
}

func TestCreateRecipeRejectsBadFieldValues(t *testing.T) {
	f := newRecipeFixture(t)
	req := f.request([]uint{f.lunch.ID}, testhelpers.Line(f.flour, 100))
	req.CookingTime = ptr(0)

	_, err := f.env.RecipeSvc.CreateRecipe(context.Background(), f.author.ID, req)
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Contains(t, appErr.Details, "cooking_time")
}

func TestCreateRecipeAnonymous(t *testing.T) {
	f := newRecipeFixture(t)
	_, err := f.env.RecipeSvc.CreateRecipe(context.Background(), 0, f.request([]uint{f.lunch.ID}, testhelpers.Line(f.flour, 1)))
	assert.ErrorIs(t, err, apperr.ErrAuthenticationRequired)
}

func TestCreateRecipe(t *testing.T) {
	f := newRecipeFixture(t)
	req := f.request([]uint{f.dinner.ID, f.lunch.ID}, testhelpers.Line(f.sugar, 50), testhelpers.Line(f.flour, 200))

	recipe, err := f.env.RecipeSvc.CreateRecipe(context.Background(), f.author.ID, req)
	require.NoError(t, err)

	assert.Equal(t, f.author.ID, recipe.AuthorID)
	assert.Equal(t, "author", recipe.Author.Username)
	assert.Equal(t, "Pancakes", recipe.Name)
	assert.True(t, f.env.Images.Has(recipe.Image), "image reference %q is stored", recipe.Image)

	tagIDs := []uint{}
	for _, tag := range recipe.Tags {
		tagIDs = append(tagIDs, tag.ID)
	}
	assert.ElementsMatch(t, []uint{f.lunch.ID, f.dinner.ID}, tagIDs)

	amounts := map[string]int{}
	for _, line := range recipe.Ingredients {
		amounts[line.Ingredient.Name] = line.Amount
	}
	assert.Equal(t, map[string]int{"flour": 200, "sugar": 50}, amounts)
}

func TestCreateRecipeRejectsNonImagePayload(t *testing.T) {
	f := newRecipeFixture(t)
	req := f.request([]uint{f.lunch.ID}, testhelpers.Line(f.flour, 100))
	req.Image = ptr("data:image/png;base64,aGVsbG8gd29ybGQ=")

	_, err := f.env.RecipeSvc.CreateRecipe(context.Background(), f.author.ID, req)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Zero(t, countRows(t, f.env, &models.Recipe{}))
}

func TestUpdateRecipeReplacesAssociations(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()
	recipe := f.env.CreateRecipe(t, f.author, "bread", []models.Tag{f.lunch},
		testhelpers.Line(f.flour, 2), testhelpers.Line(f.sugar, 3))

	oldLineIDs := map[uint]bool{}
	for _, line := range recipe.Ingredients {
		oldLineIDs[line.ID] = true
	}

	req := types.RecipeRequest{
		Name:        ptr("Sweet bread"),
		Tags:        []uint{f.dinner.ID},
		Ingredients: []types.IngredientAmount{testhelpers.Line(f.sugar, 3), testhelpers.Line(f.salt, 1)},
	}
	updated, err := f.env.RecipeSvc.UpdateRecipe(ctx, recipe.ID, f.author.ID, req)
	require.NoError(t, err)

	assert.Equal(t, "Sweet bread", updated.Name)
	assert.Equal(t, recipe.Text, updated.Text, "absent fields are kept")
	assert.Equal(t, recipe.Image, updated.Image)

	require.Len(t, updated.Tags, 1)
	assert.Equal(t, f.dinner.ID, updated.Tags[0].ID)

	amounts := map[uint]int{}
	for _, line := range updated.Ingredients {
		amounts[line.IngredientID] = line.Amount
		assert.False(t, oldLineIDs[line.ID], "line %d should be a new row", line.ID)
	}
	assert.Equal(t, map[uint]int{f.sugar.ID: 3, f.salt.ID: 1}, amounts)
	assert.Equal(t, int64(2), countRows(t, f.env, &models.RecipeIngredient{}))
	assert.Equal(t, int64(1), countRows(t, f.env, &models.RecipeTag{}))
}

func TestUpdateRecipeRequiresTagsAndIngredients(t *testing.T) {
	f := newRecipeFixture(t)
	recipe := f.env.CreateRecipe(t, f.author, "bread", []models.Tag{f.lunch}, testhelpers.Line(f.flour, 2))

	_, err := f.env.RecipeSvc.UpdateRecipe(context.Background(), recipe.ID, f.author.ID, types.RecipeRequest{
		Name: ptr("Only a name"),
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	reloaded, err := f.env.RecipeSvc.GetRecipe(context.Background(), recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "bread", reloaded.Name)
}

func TestUpdateRecipeInvalidLinesKeepExisting(t *testing.T) {
	f := newRecipeFixture(t)
	recipe := f.env.CreateRecipe(t, f.author, "bread", []models.Tag{f.lunch}, testhelpers.Line(f.flour, 2))

	_, err := f.env.RecipeSvc.UpdateRecipe(context.Background(), recipe.ID, f.author.ID, types.RecipeRequest{
		Tags:        []uint{f.lunch.ID},
		Ingredients: []types.IngredientAmount{testhelpers.Line(f.flour, 0)},
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	reloaded, err := f.env.RecipeSvc.GetRecipe(context.Background(), recipe.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Ingredients, 1)
	assert.Equal(t, 2, reloaded.Ingredients[0].Amount)
}

func TestUpdateRecipeImageReplacesStoredFile(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()
	created, err := f.env.RecipeSvc.CreateRecipe(ctx, f.author.ID, f.request([]uint{f.lunch.ID}, testhelpers.Line(f.flour, 1)))
	require.NoError(t, err)

	updated, err := f.env.RecipeSvc.UpdateRecipe(ctx, created.ID, f.author.ID, types.RecipeRequest{
		Image:       ptr(testhelpers.PNGDataURI),
		Tags:        []uint{f.lunch.ID},
		Ingredients: []types.IngredientAmount{testhelpers.Line(f.flour, 1)},
	})
	require.NoError(t, err)

	assert.NotEqual(t, created.Image, updated.Image)
	assert.True(t, f.env.Images.Has(updated.Image))
	assert.False(t, f.env.Images.Has(created.Image))
}

func TestNonAuthorCannotChangeRecipe(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()
	recipe := f.env.CreateRecipe(t, f.author, "bread", []models.Tag{f.lunch}, testhelpers.Line(f.flour, 2))

	_, err := f.env.RecipeSvc.UpdateRecipe(ctx, recipe.ID, f.other.ID, types.RecipeRequest{
		Name:        ptr("Hijacked"),
		Tags:        []uint{f.lunch.ID},
		Ingredients: []types.IngredientAmount{testhelpers.Line(f.flour, 1)},
	})
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)

	err = f.env.RecipeSvc.DeleteRecipe(ctx, recipe.ID, f.other.ID)
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)

	reloaded, err := f.env.RecipeSvc.GetRecipe(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "bread", reloaded.Name)
	require.Len(t, reloaded.Ingredients, 1)
	assert.Equal(t, 2, reloaded.Ingredients[0].Amount)
}

func TestDeleteRecipeCascades(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()
	created, err := f.env.RecipeSvc.CreateRecipe(ctx, f.author.ID, f.request([]uint{f.lunch.ID}, testhelpers.Line(f.flour, 1)))
	require.NoError(t, err)

	_, err = f.env.RelationSvc.AddRelation(ctx, models.RelationFavorite, f.other.ID, created.ID)
	require.NoError(t, err)
	_, err = f.env.RelationSvc.AddRelation(ctx, models.RelationShoppingCart, f.other.ID, created.ID)
	require.NoError(t, err)

	require.NoError(t, f.env.RecipeSvc.DeleteRecipe(ctx, created.ID, f.author.ID))

	_, err = f.env.RecipeSvc.GetRecipe(ctx, created.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Zero(t, countRows(t, f.env, &models.RecipeIngredient{}))
	assert.Zero(t, countRows(t, f.env, &models.RecipeTag{}))
	assert.Zero(t, countRows(t, f.env, &models.FavoriteRecipe{}))
	assert.Zero(t, countRows(t, f.env, &models.ShoppingCartEntry{}))
	assert.False(t, f.env.Images.Has(created.Image))

	err = f.env.RecipeSvc.DeleteRecipe(ctx, created.ID, f.author.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListRecipesFilters(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()
	bread := f.env.CreateRecipe(t, f.author, "bread", []models.Tag{f.lunch}, testhelpers.Line(f.flour, 2))
	soup := f.env.CreateRecipe(t, f.author, "soup", []models.Tag{f.dinner}, testhelpers.Line(f.salt, 1))
	cake := f.env.CreateRecipe(t, f.other, "cake", []models.Tag{f.lunch, f.dinner}, testhelpers.Line(f.sugar, 3))

	_, err := f.env.RelationSvc.AddRelation(ctx, models.RelationFavorite, f.other.ID, bread.ID)
	require.NoError(t, err)
	_, err = f.env.RelationSvc.AddRelation(ctx, models.RelationShoppingCart, f.other.ID, soup.ID)
	require.NoError(t, err)

	names := func(filter types.RecipeFilter) []string {
		t.Helper()
		recipes, total, err := f.env.RecipeSvc.ListRecipes(ctx, filter, types.Page{})
		require.NoError(t, err)
		assert.Equal(t, int64(len(recipes)), total)
		out := []string{}
		for _, r := range recipes {
			out = append(out, r.Name)
		}
		return out
	}

	assert.Equal(t, []string{cake.Name, soup.Name, bread.Name}, names(types.RecipeFilter{}), "newest first")
	assert.Equal(t, []string{soup.Name, bread.Name}, names(types.RecipeFilter{AuthorID: f.author.ID}))
	assert.Equal(t, []string{cake.Name, bread.Name}, names(types.RecipeFilter{TagSlugs: []string{"lunch"}}))
	assert.Equal(t, []string{cake.Name, soup.Name, bread.Name}, names(types.RecipeFilter{TagSlugs: []string{"lunch", "dinner"}}), "tags match any, without duplicates")
	assert.Equal(t, []string{bread.Name}, names(types.RecipeFilter{FavoritedBy: f.other.ID}))
	assert.Equal(t, []string{soup.Name}, names(types.RecipeFilter{InCartOf: f.other.ID}))
	assert.Empty(t, names(types.RecipeFilter{FavoritedBy: f.author.ID}))
}

func TestListRecipesPagination(t *testing.T) {
	f := newRecipeFixture(t)
	for _, name := range []string{"a", "b", "c"} {
		f.env.CreateRecipe(t, f.author, name, []models.Tag{f.lunch}, testhelpers.Line(f.flour, 1))
	}

	recipes, total, err := f.env.RecipeSvc.ListRecipes(context.Background(), types.RecipeFilter{}, types.Page{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, recipes, 1)
	assert.Equal(t, "a", recipes[0].Name)
}

func TestCreateRecipeFailureLeavesNoPartialRows(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	spec, err := f.env.RecipeSvc.Validate(ctx, []uint{f.lunch.ID, f.dinner.ID},
		[]types.IngredientAmount{testhelpers.Line(f.flour, 100), testhelpers.Line(f.sugar, 20)})
	require.NoError(t, err)

	// The ingredient disappears between validation and persistence, so the line insert fails
	// after the recipe row and its tags were written inside the transaction.
	require.NoError(t, f.env.DB.Delete(&models.Ingredient{}, f.sugar.ID).Error)

	fields := service.RecipeFields{Name: ptr("Pancakes"), Text: ptr("Mix and fry."), CookingTime: ptr(20)}
	_, err = f.env.RecipeSvc.Create(ctx, f.author.ID, fields, spec)
	require.Error(t, err)

	assert.Zero(t, countRows(t, f.env, &models.Recipe{}))
	assert.Zero(t, countRows(t, f.env, &models.RecipeTag{}))
	assert.Zero(t, countRows(t, f.env, &models.RecipeIngredient{}))
}

func TestCreateAndUpdateRejectNilSpec(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()
	fields := service.RecipeFields{Name: ptr("Pancakes"), Text: ptr("Mix and fry."), CookingTime: ptr(20)}

	_, err := f.env.RecipeSvc.Create(ctx, f.author.ID, fields, nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Zero(t, countRows(t, f.env, &models.Recipe{}))

	recipe := f.env.CreateRecipe(t, f.author, "bread", []models.Tag{f.lunch}, testhelpers.Line(f.flour, 100))
	_, err = f.env.RecipeSvc.Update(ctx, recipe, f.author.ID, fields, nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	reloaded, err := f.env.RecipeSvc.GetRecipe(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "bread", reloaded.Name)
	assert.Len(t, reloaded.Ingredients, 1)
}
