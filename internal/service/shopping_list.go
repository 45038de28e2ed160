package service

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/types"
)

// ShoppingListService aggregates the ingredient lines of a user's cart.
type ShoppingListService struct {
	relations repository.RelationRepo
}

func NewShoppingListService(relations repository.RelationRepo) *ShoppingListService {
	return &ShoppingListService{relations: relations}
}

// BuildShoppingList sums amounts per ingredient id, in the order ingredients are first seen.
func (s *ShoppingListService) BuildShoppingList(ctx context.Context, userID uint) ([]types.ShoppingListItem, error) {
	if userID == 0 {
		return nil, apperr.AuthenticationRequired("authentication required")
	}

	lines, err := s.relations.CartLines(ctx, nil, userID)
	if err != nil {
		return nil, apperr.Internal("failed to load shopping cart", err)
	}

	items := make([]types.ShoppingListItem, 0, len(lines))
	index := make(map[uint]int, len(lines))
	for _, line := range lines {
		if i, ok := index[line.IngredientID]; ok {
			items[i].Amount += line.Amount
			continue
		}
		index[line.IngredientID] = len(items)
		items = append(items, types.ShoppingListItem{
			IngredientID:    line.IngredientID,
			Name:            line.Ingredient.Name,
			MeasurementUnit: line.Ingredient.MeasurementUnit,
			Amount:          line.Amount,
		})
	}
	return items, nil
}
