package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/models"
)

type CatalogRepo interface {
	ListTags(ctx context.Context, tx *gorm.DB) ([]models.Tag, error)
	GetTag(ctx context.Context, tx *gorm.DB, id uint) (*models.Tag, error)
	GetTagsByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]models.Tag, error)
	CreateTags(ctx context.Context, tx *gorm.DB, tags []*models.Tag) (int64, error)

	ListIngredients(ctx context.Context, tx *gorm.DB, namePrefix string) ([]models.Ingredient, error)
	GetIngredient(ctx context.Context, tx *gorm.DB, id uint) (*models.Ingredient, error)
	GetIngredientsByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]models.Ingredient, error)
	CreateIngredients(ctx context.Context, tx *gorm.DB, ingredients []*models.Ingredient) (int64, error)
}

type catalogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCatalogRepo(db *gorm.DB, baseLog *logger.Logger) CatalogRepo {
	return &catalogRepo{db: db, log: baseLog.With("repo", "CatalogRepo")}
}

func (r *catalogRepo) ListTags(ctx context.Context, tx *gorm.DB) ([]models.Tag, error) {
	var tags []models.Tag
	if err := pick(r.db, tx).WithContext(ctx).Order("id").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *catalogRepo) GetTag(ctx context.Context, tx *gorm.DB, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := pick(r.db, tx).WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, notFoundOr(err, "tag not found")
	}
	return &tag, nil
}

func (r *catalogRepo) GetTagsByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]models.Tag, error) {
	var tags []models.Tag
	if len(ids) == 0 {
		return tags, nil
	}
	if err := pick(r.db, tx).WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// CreateTags inserts tags, skipping slugs that already exist.
func (r *catalogRepo) CreateTags(ctx context.Context, tx *gorm.DB, tags []*models.Tag) (int64, error) {
	if len(tags) == 0 {
		return 0, nil
	}
	res := pick(r.db, tx).WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "slug"}}, DoNothing: true}).
		Create(&tags)
	return res.RowsAffected, res.Error
}

func (r *catalogRepo) ListIngredients(ctx context.Context, tx *gorm.DB, namePrefix string) ([]models.Ingredient, error) {
	q := pick(r.db, tx).WithContext(ctx).Order("name").Order("id")
	if namePrefix != "" {
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, prefixPattern(namePrefix))
	}
	var ingredients []models.Ingredient
	if err := q.Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (r *catalogRepo) GetIngredient(ctx context.Context, tx *gorm.DB, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := pick(r.db, tx).WithContext(ctx).First(&ingredient, id).Error; err != nil {
		return nil, notFoundOr(err, "ingredient not found")
	}
	return &ingredient, nil
}

func (r *catalogRepo) GetIngredientsByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	if len(ids) == 0 {
		return ingredients, nil
	}
	if err := pick(r.db, tx).WithContext(ctx).Where("id IN ?", ids).Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

// CreateIngredients inserts ingredients, skipping existing name/unit pairs.
func (r *catalogRepo) CreateIngredients(ctx context.Context, tx *gorm.DB, ingredients []*models.Ingredient) (int64, error) {
	if len(ingredients) == 0 {
		return 0, nil
	}
	res := pick(r.db, tx).WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}, {Name: "measurement_unit"}}, DoNothing: true}).
		CreateInBatches(&ingredients, 500)
	return res.RowsAffected, res.Error
}
