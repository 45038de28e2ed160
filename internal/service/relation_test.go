package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestRelationLifecycle(t *testing.T) {
	for _, kind := range []models.RelationKind{models.RelationFavorite, models.RelationShoppingCart} {
		t.Run(string(kind), func(t *testing.T) {
			f := newRecipeFixture(t)
			ctx := context.Background()
			recipe := f.env.CreateRecipe(t, f.author, "bread", []models.Tag{f.lunch}, testhelpers.Line(f.flour, 2))

			short, err := f.env.RelationSvc.AddRelation(ctx, kind, f.other.ID, recipe.ID)
			require.NoError(t, err)
			assert.Equal(t, recipe.ID, short.ID)
			assert.Equal(t, "bread", short.Name)
			assert.Equal(t, recipe.CookingTime, short.CookingTime)

			_, err = f.env.RelationSvc.AddRelation(ctx, kind, f.other.ID, recipe.ID)
			assert.ErrorIs(t, err, apperr.ErrConflict)

			require.NoError(t, f.env.RelationSvc.RemoveRelation(ctx, kind, f.other.ID, recipe.ID))

			err = f.env.RelationSvc.RemoveRelation(ctx, kind, f.other.ID, recipe.ID)
			assert.ErrorIs(t, err, apperr.ErrNotFound)
		})
	}
}

func TestRelationUnknownRecipe(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	_, err := f.env.RelationSvc.AddRelation(ctx, models.RelationFavorite, f.other.ID, 9999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	err = f.env.RelationSvc.RemoveRelation(ctx, models.RelationShoppingCart, f.other.ID, 9999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRelationRequiresUser(t *testing.T) {
	f := newRecipeFixture(t)
	recipe := f.env.CreateRecipe(t, f.author, "bread", []models.Tag{f.lunch}, testhelpers.Line(f.flour, 2))

	_, err := f.env.RelationSvc.AddRelation(context.Background(), models.RelationFavorite, 0, recipe.ID)
	assert.ErrorIs(t, err, apperr.ErrAuthenticationRequired)

	_, err = f.env.RelationSvc.AddRelation(context.Background(), models.RelationKind("bookmark"), f.other.ID, recipe.ID)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestRelationsAreIndependent(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()
	recipe := f.env.CreateRecipe(t, f.author, "bread", []models.Tag{f.lunch}, testhelpers.Line(f.flour, 2))

	_, err := f.env.RelationSvc.AddRelation(ctx, models.RelationFavorite, f.other.ID, recipe.ID)
	require.NoError(t, err)

	view, err := f.env.Decorator.Decorate(ctx, recipe, f.other.ID)
	require.NoError(t, err)
	assert.True(t, view.IsFavorited)
	assert.False(t, view.IsInShoppingCart)

	view, err = f.env.Decorator.Decorate(ctx, recipe, f.author.ID)
	require.NoError(t, err)
	assert.False(t, view.IsFavorited, "flags belong to the requester")
}
