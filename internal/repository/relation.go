package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/models"
)

// RelationRepo stores the favorite and shopping cart (user, recipe) pairs.
type RelationRepo interface {
	Exists(ctx context.Context, tx *gorm.DB, kind models.RelationKind, userID, recipeID uint) (bool, error)
	Add(ctx context.Context, tx *gorm.DB, kind models.RelationKind, userID, recipeID uint) error
	Remove(ctx context.Context, tx *gorm.DB, kind models.RelationKind, userID, recipeID uint) (int64, error)
	// RecipeIDs returns which of recipeIDs the user holds under kind, in one query.
	RecipeIDs(ctx context.Context, tx *gorm.DB, kind models.RelationKind, userID uint, recipeIDs []uint) (map[uint]struct{}, error)
	// CartLines returns the ingredient lines of every recipe in the user's cart.
	CartLines(ctx context.Context, tx *gorm.DB, userID uint) ([]models.RecipeIngredient, error)
}

type relationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRelationRepo(db *gorm.DB, baseLog *logger.Logger) RelationRepo {
	return &relationRepo{db: db, log: baseLog.With("repo", "RelationRepo")}
}

func (r *relationRepo) Exists(ctx context.Context, tx *gorm.DB, kind models.RelationKind, userID, recipeID uint) (bool, error) {
	var count int64
	err := pick(r.db, tx).WithContext(ctx).
		Table(kind.Table()).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *relationRepo) Add(ctx context.Context, tx *gorm.DB, kind models.RelationKind, userID, recipeID uint) error {
	db := pick(r.db, tx).WithContext(ctx).Omit(clause.Associations)
	switch kind {
	case models.RelationShoppingCart:
		return db.Create(&models.ShoppingCartEntry{UserID: userID, RecipeID: recipeID}).Error
	default:
		return db.Create(&models.FavoriteRecipe{UserID: userID, RecipeID: recipeID}).Error
	}
}

func (r *relationRepo) Remove(ctx context.Context, tx *gorm.DB, kind models.RelationKind, userID, recipeID uint) (int64, error) {
	db := pick(r.db, tx).WithContext(ctx).Where("user_id = ? AND recipe_id = ?", userID, recipeID)
	var res *gorm.DB
	switch kind {
	case models.RelationShoppingCart:
		res = db.Delete(&models.ShoppingCartEntry{})
	default:
		res = db.Delete(&models.FavoriteRecipe{})
	}
	return res.RowsAffected, res.Error
}

func (r *relationRepo) RecipeIDs(ctx context.Context, tx *gorm.DB, kind models.RelationKind, userID uint, recipeIDs []uint) (map[uint]struct{}, error) {
	if len(recipeIDs) == 0 {
		return map[uint]struct{}{}, nil
	}
	var ids []uint
	err := pick(r.db, tx).WithContext(ctx).
		Table(kind.Table()).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return idSet(ids), nil
}

func (r *relationRepo) CartLines(ctx context.Context, tx *gorm.DB, userID uint) ([]models.RecipeIngredient, error) {
	var lines []models.RecipeIngredient
	err := pick(r.db, tx).WithContext(ctx).
		Joins("JOIN shopping_cart_entries ON shopping_cart_entries.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_cart_entries.user_id = ?", userID).
		Order("shopping_cart_entries.id").
		Order("recipe_ingredients.id").
		Preload("Ingredient").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}
