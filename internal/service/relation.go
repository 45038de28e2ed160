package service

import (
	"context"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/types"
)

// RelationService adds and removes favorite and shopping cart entries.
type RelationService struct {
	tx        repository.Transactor
	recipes   repository.RecipeRepo
	relations repository.RelationRepo
	log       *logger.Logger
}

func NewRelationService(tx repository.Transactor, recipes repository.RecipeRepo, relations repository.RelationRepo, baseLog *logger.Logger) *RelationService {
	return &RelationService{
		tx:        tx,
		recipes:   recipes,
		relations: relations,
		log:       baseLog.With("service", "RelationService"),
	}
}

func relationLabel(kind models.RelationKind) string {
	if kind == models.RelationShoppingCart {
		return "shopping cart"
	}
	return "favorites"
}

// AddRelation records (userID, recipeID) under kind and returns the recipe summary.
func (s *RelationService) AddRelation(ctx context.Context, kind models.RelationKind, userID, recipeID uint) (*types.RecipeShort, error) {
	if userID == 0 {
		return nil, apperr.AuthenticationRequired("authentication required")
	}
	if !kind.Valid() {
		return nil, apperr.Validation("unknown relation kind")
	}

	var short types.RecipeShort
	err := s.tx.InTx(ctx, func(tx *gorm.DB) error {
		recipe, err := s.recipes.GetByID(ctx, tx, recipeID)
		if err != nil {
			return err
		}
		exists, err := s.relations.Exists(ctx, tx, kind, userID, recipeID)
		if err != nil {
			return err
		}
		if exists {
			return apperr.Conflict("recipe is already in " + relationLabel(kind))
		}
		if err := s.relations.Add(ctx, tx, kind, userID, recipeID); err != nil {
			if database.IsUniqueViolation(err) {
				return apperr.Conflict("recipe is already in " + relationLabel(kind))
			}
			if database.IsForeignKeyViolation(err) {
				return apperr.NotFound("recipe not found")
			}
			return err
		}
		short = types.NewRecipeShort(recipe)
		return nil
	})
	if err != nil {
		// A racing insert can surface the unique violation at commit time.
		if database.IsUniqueViolation(err) {
			return nil, apperr.Conflict("recipe is already in " + relationLabel(kind))
		}
		return nil, wrapLookup(err, "failed to add recipe to "+relationLabel(kind))
	}

	s.log.Debug("Relation added", "kind", kind, "user_id", userID, "recipe_id", recipeID)
	return &short, nil
}

// RemoveRelation deletes (userID, recipeID) under kind.
func (s *RelationService) RemoveRelation(ctx context.Context, kind models.RelationKind, userID, recipeID uint) error {
	if userID == 0 {
		return apperr.AuthenticationRequired("authentication required")
	}
	if !kind.Valid() {
		return apperr.Validation("unknown relation kind")
	}

	err := s.tx.InTx(ctx, func(tx *gorm.DB) error {
		exists, err := s.recipes.Exists(ctx, tx, recipeID)
		if err != nil {
			return err
		}
		if !exists {
			return apperr.NotFound("recipe not found")
		}
		removed, err := s.relations.Remove(ctx, tx, kind, userID, recipeID)
		if err != nil {
			return err
		}
		if removed == 0 {
			return apperr.NotFound("recipe is not in " + relationLabel(kind))
		}
		return nil
	})
	if err != nil {
		return wrapLookup(err, "failed to remove recipe from "+relationLabel(kind))
	}

	s.log.Debug("Relation removed", "kind", kind, "user_id", userID, "recipe_id", recipeID)
	return nil
}
