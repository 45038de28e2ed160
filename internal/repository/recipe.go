package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

type RecipeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, recipe *models.Recipe) error
	UpdateFields(ctx context.Context, tx *gorm.DB, id uint, updates map[string]interface{}) error
	ReplaceTags(ctx context.Context, tx *gorm.DB, recipeID uint, tagIDs []uint) error
	ReplaceIngredients(ctx context.Context, tx *gorm.DB, recipeID uint, lines []models.RecipeIngredient) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Recipe, error)
	Exists(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
	List(ctx context.Context, tx *gorm.DB, filter types.RecipeFilter, page types.Page) ([]models.Recipe, int64, error)
	ListByAuthors(ctx context.Context, tx *gorm.DB, authorIDs []uint) ([]models.Recipe, error)
	CountByAuthors(ctx context.Context, tx *gorm.DB, authorIDs []uint) (map[uint]int64, error)
}

type recipeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecipeRepo(db *gorm.DB, baseLog *logger.Logger) RecipeRepo {
	return &recipeRepo{db: db, log: baseLog.With("repo", "RecipeRepo")}
}

// Create inserts only the recipe row; tags and ingredient lines are written explicitly.
func (r *recipeRepo) Create(ctx context.Context, tx *gorm.DB, recipe *models.Recipe) error {
	return pick(r.db, tx).WithContext(ctx).Omit(clause.Associations).Create(recipe).Error
}

func (r *recipeRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return pick(r.db, tx).WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", id).Updates(updates).Error
}

func (r *recipeRepo) ReplaceTags(ctx context.Context, tx *gorm.DB, recipeID uint, tagIDs []uint) error {
	db := pick(r.db, tx).WithContext(ctx)
	if err := db.Where("recipe_id = ?", recipeID).Delete(&models.RecipeTag{}).Error; err != nil {
		return err
	}
	if len(tagIDs) == 0 {
		return nil
	}
	rows := make([]models.RecipeTag, 0, len(tagIDs))
	for _, id := range tagIDs {
		rows = append(rows, models.RecipeTag{RecipeID: recipeID, TagID: id})
	}
	return db.Create(&rows).Error
}

// ReplaceIngredients drops every line of the recipe and inserts lines as new rows.
func (r *recipeRepo) ReplaceIngredients(ctx context.Context, tx *gorm.DB, recipeID uint, lines []models.RecipeIngredient) error {
	db := pick(r.db, tx).WithContext(ctx)
	if err := db.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	rows := make([]models.RecipeIngredient, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, models.RecipeIngredient{RecipeID: recipeID, IngredientID: l.IngredientID, Amount: l.Amount})
	}
	return db.Omit(clause.Associations).Create(&rows).Error
}

// Delete removes the recipe with its lines, tags and per-user relations.
func (r *recipeRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := pick(r.db, tx).WithContext(ctx)
	dependents := []interface{}{
		&models.RecipeIngredient{},
		&models.RecipeTag{},
		&models.FavoriteRecipe{},
		&models.ShoppingCartEntry{},
	}
	for _, m := range dependents {
		if err := db.Where("recipe_id = ?", id).Delete(m).Error; err != nil {
			return err
		}
	}
	res := db.Delete(&models.Recipe{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFoundOr(gorm.ErrRecordNotFound, "recipe not found")
	}
	return nil
}

func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id") }).
		Preload("Ingredients.Ingredient")
}

func (r *recipeRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := withDetails(pick(r.db, tx).WithContext(ctx)).First(&recipe, id).Error; err != nil {
		return nil, notFoundOr(err, "recipe not found")
	}
	return &recipe, nil
}

func (r *recipeRepo) Exists(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	var count int64
	if err := pick(r.db, tx).WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func applyFilter(db *gorm.DB, filter types.RecipeFilter) *gorm.DB {
	if filter.AuthorID != 0 {
		db = db.Where("recipes.author_id = ?", filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		db = db.Where("recipes.id IN (?)", db.Session(&gorm.Session{NewDB: true}).
			Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs))
	}
	if filter.FavoritedBy != 0 {
		db = db.Where("recipes.id IN (?)", db.Session(&gorm.Session{NewDB: true}).
			Table(models.RelationFavorite.Table()).
			Select("recipe_id").
			Where("user_id = ?", filter.FavoritedBy))
	}
	if filter.InCartOf != 0 {
		db = db.Where("recipes.id IN (?)", db.Session(&gorm.Session{NewDB: true}).
			Table(models.RelationShoppingCart.Table()).
			Select("recipe_id").
			Where("user_id = ?", filter.InCartOf))
	}
	return db
}

// List returns one page of recipes, newest first, with the total match count.
func (r *recipeRepo) List(ctx context.Context, tx *gorm.DB, filter types.RecipeFilter, page types.Page) ([]models.Recipe, int64, error) {
	base := pick(r.db, tx).WithContext(ctx)

	var total int64
	if err := applyFilter(base.Model(&models.Recipe{}), filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recipes []models.Recipe
	err := withDetails(applyFilter(base.Model(&models.Recipe{}), filter)).
		Order("recipes.created_at DESC").
		Order("recipes.id DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

// ListByAuthors returns the authors' recipes without associations, newest first.
func (r *recipeRepo) ListByAuthors(ctx context.Context, tx *gorm.DB, authorIDs []uint) ([]models.Recipe, error) {
	var recipes []models.Recipe
	if len(authorIDs) == 0 {
		return recipes, nil
	}
	err := pick(r.db, tx).WithContext(ctx).
		Where("author_id IN ?", authorIDs).
		Order("created_at DESC").
		Order("id DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}
	return recipes, nil
}

func (r *recipeRepo) CountByAuthors(ctx context.Context, tx *gorm.DB, authorIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		AuthorID uint
		Total    int64
	}
	err := pick(r.db, tx).WithContext(ctx).
		Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.AuthorID] = row.Total
	}
	return counts, nil
}
