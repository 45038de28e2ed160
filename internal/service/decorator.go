package service

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/types"
)

// ViewDecorator builds requester-specific views. Anonymous requesters (id 0)
// never trigger relation queries.
type ViewDecorator struct {
	relations     repository.RelationRepo
	subscriptions repository.SubscriptionRepo
}

func NewViewDecorator(relations repository.RelationRepo, subscriptions repository.SubscriptionRepo) *ViewDecorator {
	return &ViewDecorator{relations: relations, subscriptions: subscriptions}
}

// Annotate computes the relation flags of one recipe for userID.
func (d *ViewDecorator) Annotate(ctx context.Context, recipe *models.Recipe, userID uint) (types.RecipeFlags, error) {
	var flags types.RecipeFlags
	if userID == 0 {
		return flags, nil
	}
	fav, err := d.relations.Exists(ctx, nil, models.RelationFavorite, userID, recipe.ID)
	if err != nil {
		return flags, apperr.Internal("failed to load favorites", err)
	}
	cart, err := d.relations.Exists(ctx, nil, models.RelationShoppingCart, userID, recipe.ID)
	if err != nil {
		return flags, apperr.Internal("failed to load shopping cart", err)
	}
	flags.IsFavorited = fav
	flags.IsInShoppingCart = cart
	return flags, nil
}

// Decorate builds the view of a single recipe.
func (d *ViewDecorator) Decorate(ctx context.Context, recipe *models.Recipe, userID uint) (*types.RecipeView, error) {
	views, err := d.DecorateMany(ctx, []models.Recipe{*recipe}, userID)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// DecorateMany builds views for a page of recipes with one query per relation kind
// and one subscription query, regardless of page size.
func (d *ViewDecorator) DecorateMany(ctx context.Context, recipes []models.Recipe, userID uint) ([]types.RecipeView, error) {
	views := make([]types.RecipeView, 0, len(recipes))
	if len(recipes) == 0 {
		return views, nil
	}

	var favorites, cart, subscribed map[uint]struct{}
	if userID != 0 {
		recipeIDs := make([]uint, 0, len(recipes))
		authorIDs := make([]uint, 0, len(recipes))
		for i := range recipes {
			recipeIDs = append(recipeIDs, recipes[i].ID)
			authorIDs = append(authorIDs, recipes[i].AuthorID)
		}

		var err error
		if favorites, err = d.relations.RecipeIDs(ctx, nil, models.RelationFavorite, userID, recipeIDs); err != nil {
			return nil, apperr.Internal("failed to load favorites", err)
		}
		if cart, err = d.relations.RecipeIDs(ctx, nil, models.RelationShoppingCart, userID, recipeIDs); err != nil {
			return nil, apperr.Internal("failed to load shopping cart", err)
		}
		if subscribed, err = d.subscriptions.SubscribedAmong(ctx, nil, userID, uniqueIDs(authorIDs)); err != nil {
			return nil, apperr.Internal("failed to load subscriptions", err)
		}
	}

	for i := range recipes {
		r := &recipes[i]
		_, fav := favorites[r.ID]
		_, inCart := cart[r.ID]
		_, sub := subscribed[r.AuthorID]

		view := types.RecipeView{
			ID:          r.ID,
			Tags:        r.Tags,
			Author:      userView(&r.Author, sub),
			Ingredients: make([]types.RecipeIngredientView, 0, len(r.Ingredients)),
			RecipeFlags: types.RecipeFlags{IsFavorited: fav, IsInShoppingCart: inCart},
			Name:        r.Name,
			Image:       r.Image,
			Text:        r.Text,
			CookingTime: r.CookingTime,
		}
		if view.Tags == nil {
			view.Tags = []models.Tag{}
		}
		for _, line := range r.Ingredients {
			view.Ingredients = append(view.Ingredients, types.RecipeIngredientView{
				ID:              line.IngredientID,
				Name:            line.Ingredient.Name,
				MeasurementUnit: line.Ingredient.MeasurementUnit,
				Amount:          line.Amount,
			})
		}
		views = append(views, view)
	}
	return views, nil
}

// DecorateUsers builds user views with is_subscribed for viewerID.
func (d *ViewDecorator) DecorateUsers(ctx context.Context, users []models.User, viewerID uint) ([]types.UserView, error) {
	views := make([]types.UserView, 0, len(users))
	var subscribed map[uint]struct{}
	if viewerID != 0 && len(users) > 0 {
		ids := make([]uint, 0, len(users))
		for i := range users {
			ids = append(ids, users[i].ID)
		}
		var err error
		if subscribed, err = d.subscriptions.SubscribedAmong(ctx, nil, viewerID, ids); err != nil {
			return nil, apperr.Internal("failed to load subscriptions", err)
		}
	}
	for i := range users {
		_, sub := subscribed[users[i].ID]
		views = append(views, userView(&users[i], sub))
	}
	return views, nil
}

func userView(u *models.User, subscribed bool) types.UserView {
	return types.UserView{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
