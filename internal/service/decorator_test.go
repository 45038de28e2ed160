package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type MockRelationRepo struct {
	mock.Mock
}

func (m *MockRelationRepo) Exists(ctx context.Context, tx *gorm.DB, kind models.RelationKind, userID, recipeID uint) (bool, error) {
	args := m.Called(ctx, tx, kind, userID, recipeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRelationRepo) Add(ctx context.Context, tx *gorm.DB, kind models.RelationKind, userID, recipeID uint) error {
	return m.Called(ctx, tx, kind, userID, recipeID).Error(0)
}

func (m *MockRelationRepo) Remove(ctx context.Context, tx *gorm.DB, kind models.RelationKind, userID, recipeID uint) (int64, error) {
	args := m.Called(ctx, tx, kind, userID, recipeID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRelationRepo) RecipeIDs(ctx context.Context, tx *gorm.DB, kind models.RelationKind, userID uint, recipeIDs []uint) (map[uint]struct{}, error) {
	args := m.Called(ctx, tx, kind, userID, recipeIDs)
	return args.Get(0).(map[uint]struct{}), args.Error(1)
}

func (m *MockRelationRepo) CartLines(ctx context.Context, tx *gorm.DB, userID uint) ([]models.RecipeIngredient, error) {
	args := m.Called(ctx, tx, userID)
	return args.Get(0).([]models.RecipeIngredient), args.Error(1)
}

type MockSubscriptionRepo struct {
	mock.Mock
}

func (m *MockSubscriptionRepo) Exists(ctx context.Context, tx *gorm.DB, subscriberID, authorID uint) (bool, error) {
	args := m.Called(ctx, tx, subscriberID, authorID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSubscriptionRepo) Create(ctx context.Context, tx *gorm.DB, subscriberID, authorID uint) error {
	return m.Called(ctx, tx, subscriberID, authorID).Error(0)
}

func (m *MockSubscriptionRepo) Delete(ctx context.Context, tx *gorm.DB, subscriberID, authorID uint) (int64, error) {
	args := m.Called(ctx, tx, subscriberID, authorID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSubscriptionRepo) SubscribedAmong(ctx context.Context, tx *gorm.DB, subscriberID uint, authorIDs []uint) (map[uint]struct{}, error) {
	args := m.Called(ctx, tx, subscriberID, authorIDs)
	return args.Get(0).(map[uint]struct{}), args.Error(1)
}

func (m *MockSubscriptionRepo) ListAuthors(ctx context.Context, tx *gorm.DB, subscriberID uint, page types.Page) ([]models.User, int64, error) {
	args := m.Called(ctx, tx, subscriberID, page)
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

func sampleRecipes() []models.Recipe {
	alice := models.User{ID: 10, Username: "alice"}
	bob := models.User{ID: 11, Username: "bob"}
	return []models.Recipe{
		{ID: 1, AuthorID: alice.ID, Author: alice, Name: "bread"},
		{ID: 2, AuthorID: bob.ID, Author: bob, Name: "soup"},
		{ID: 3, AuthorID: alice.ID, Author: alice, Name: "cake"},
	}
}

func TestAnnotateAnonymousIssuesNoQuery(t *testing.T) {
	relations := &MockRelationRepo{}
	subscriptions := &MockSubscriptionRepo{}
	d := service.NewViewDecorator(relations, subscriptions)
	recipes := sampleRecipes()

	flags, err := d.Annotate(context.Background(), &recipes[0], 0)
	require.NoError(t, err)
	assert.Equal(t, types.RecipeFlags{}, flags)

	views, err := d.DecorateMany(context.Background(), recipes, 0)
	require.NoError(t, err)
	require.Len(t, views, 3)
	for _, v := range views {
		assert.False(t, v.IsFavorited)
		assert.False(t, v.IsInShoppingCart)
		assert.False(t, v.Author.IsSubscribed)
	}

	relations.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	relations.AssertNotCalled(t, "RecipeIDs", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	subscriptions.AssertNotCalled(t, "SubscribedAmong", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAnnotateAuthenticated(t *testing.T) {
	relations := &MockRelationRepo{}
	relations.On("Exists", mock.Anything, mock.Anything, models.RelationFavorite, uint(5), uint(1)).Return(true, nil).Once()
	relations.On("Exists", mock.Anything, mock.Anything, models.RelationShoppingCart, uint(5), uint(1)).Return(false, nil).Once()
	d := service.NewViewDecorator(relations, &MockSubscriptionRepo{})
	recipes := sampleRecipes()

	flags, err := d.Annotate(context.Background(), &recipes[0], 5)
	require.NoError(t, err)
	assert.Equal(t, types.RecipeFlags{IsFavorited: true}, flags)
	relations.AssertExpectations(t)
}

func TestDecorateManyBatchesQueries(t *testing.T) {
	relations := &MockRelationRepo{}
	subscriptions := &MockSubscriptionRepo{}
	ids := []uint{1, 2, 3}

	relations.On("RecipeIDs", mock.Anything, mock.Anything, models.RelationFavorite, uint(5), ids).
		Return(map[uint]struct{}{3: {}}, nil).Once()
	relations.On("RecipeIDs", mock.Anything, mock.Anything, models.RelationShoppingCart, uint(5), ids).
		Return(map[uint]struct{}{1: {}, 3: {}}, nil).Once()
	subscriptions.On("SubscribedAmong", mock.Anything, mock.Anything, uint(5), []uint{10, 11}).
		Return(map[uint]struct{}{11: {}}, nil).Once()

	d := service.NewViewDecorator(relations, subscriptions)
	views, err := d.DecorateMany(context.Background(), sampleRecipes(), 5)
	require.NoError(t, err)
	require.Len(t, views, 3)

	assert.Equal(t, types.RecipeFlags{IsFavorited: false, IsInShoppingCart: true}, views[0].RecipeFlags)
	assert.Equal(t, types.RecipeFlags{}, views[1].RecipeFlags)
	assert.Equal(t, types.RecipeFlags{IsFavorited: true, IsInShoppingCart: true}, views[2].RecipeFlags)
	assert.False(t, views[0].Author.IsSubscribed)
	assert.True(t, views[1].Author.IsSubscribed)

	relations.AssertExpectations(t)
	subscriptions.AssertExpectations(t)
	relations.AssertNumberOfCalls(t, "RecipeIDs", 2)
	relations.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	subscriptions.AssertNumberOfCalls(t, "SubscribedAmong", 1)
}

func TestDecorateManyEmptyPage(t *testing.T) {
	d := service.NewViewDecorator(&MockRelationRepo{}, &MockSubscriptionRepo{})
	views, err := d.DecorateMany(context.Background(), nil, 5)
	require.NoError(t, err)
	assert.NotNil(t, views)
	assert.Empty(t, views)
}

func TestDecorateFlattensIngredients(t *testing.T) {
	d := service.NewViewDecorator(&MockRelationRepo{}, &MockSubscriptionRepo{})
	recipe := models.Recipe{
		ID:   1,
		Name: "bread",
		Ingredients: []models.RecipeIngredient{
			{ID: 40, IngredientID: 7, Amount: 300, Ingredient: models.Ingredient{ID: 7, Name: "flour", MeasurementUnit: "g"}},
		},
	}

	view, err := d.Decorate(context.Background(), &recipe, 0)
	require.NoError(t, err)
	assert.Equal(t, []types.RecipeIngredientView{{ID: 7, Name: "flour", MeasurementUnit: "g", Amount: 300}}, view.Ingredients)
	assert.NotNil(t, view.Tags)
}
