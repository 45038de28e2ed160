package service

import (
	"context"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/pageza/foodgram/backend/internal/validation"
)

// SpecLine is a validated ingredient line.
type SpecLine struct {
	Ingredient models.Ingredient
	Amount     int
}

// RecipeSpec is a validated, existence-checked set of recipe associations in input order.
type RecipeSpec struct {
	Tags        []models.Tag
	Ingredients []SpecLine
}

func (s *RecipeSpec) tagIDs() []uint {
	ids := make([]uint, 0, len(s.Tags))
	for _, t := range s.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}

func (s *RecipeSpec) lines() []models.RecipeIngredient {
	lines := make([]models.RecipeIngredient, 0, len(s.Ingredients))
	for _, l := range s.Ingredients {
		lines = append(lines, models.RecipeIngredient{IngredientID: l.Ingredient.ID, Amount: l.Amount})
	}
	return lines
}

// RecipeFields are the scalar recipe columns. Nil means "leave unchanged".
// Image holds a stored image reference, not the upload payload.
type RecipeFields struct {
	Name        *string
	Text        *string
	CookingTime *int
	Image       *string
}

func (f RecipeFields) updates() map[string]interface{} {
	u := map[string]interface{}{}
	if f.Name != nil {
		u["name"] = *f.Name
	}
	if f.Text != nil {
		u["text"] = *f.Text
	}
	if f.CookingTime != nil {
		u["cooking_time"] = *f.CookingTime
	}
	if f.Image != nil {
		u["image"] = *f.Image
	}
	return u
}

// RecipeService validates and persists recipes with their tag and ingredient associations.
type RecipeService struct {
	tx        repository.Transactor
	recipes   repository.RecipeRepo
	catalog   repository.CatalogRepo
	images    *ImageService
	validator *validation.Validator
	log       *logger.Logger
}

func NewRecipeService(
	tx repository.Transactor,
	recipes repository.RecipeRepo,
	catalog repository.CatalogRepo,
	images *ImageService,
	validator *validation.Validator,
	baseLog *logger.Logger,
) *RecipeService {
	return &RecipeService{
		tx:        tx,
		recipes:   recipes,
		catalog:   catalog,
		images:    images,
		validator: validator,
		log:       baseLog.With("service", "RecipeService"),
	}
}

// Validate checks tag ids and ingredient lines and resolves them against the catalog.
// Any failure rejects the whole input.
func (s *RecipeService) Validate(ctx context.Context, tagIDs []uint, ingredients []types.IngredientAmount) (*RecipeSpec, error) {
	details := map[string]string{}

	if len(ingredients) == 0 {
		details["ingredients"] = "must contain at least one ingredient"
	}
	if len(tagIDs) == 0 {
		details["tags"] = "must contain at least one tag"
	}

	seenIngredients := make(map[uint]struct{}, len(ingredients))
	ingredientIDs := make([]uint, 0, len(ingredients))
	for i, line := range ingredients {
		if _, dup := seenIngredients[line.ID]; dup {
			details["ingredients"] = fmt.Sprintf("ingredient %d is listed more than once", line.ID)
		}
		seenIngredients[line.ID] = struct{}{}
		ingredientIDs = append(ingredientIDs, line.ID)
		if line.Amount < 1 {
			details["ingredients["+strconv.Itoa(i)+"].amount"] = "must be at least 1"
		}
	}

	seenTags := make(map[uint]struct{}, len(tagIDs))
	for _, id := range tagIDs {
		if _, dup := seenTags[id]; dup {
			details["tags"] = fmt.Sprintf("tag %d is listed more than once", id)
		}
		seenTags[id] = struct{}{}
	}

	if len(details) > 0 {
		return nil, apperr.ValidationWithDetails("invalid recipe associations", details)
	}

	foundIngredients, err := s.catalog.GetIngredientsByIDs(ctx, nil, ingredientIDs)
	if err != nil {
		return nil, apperr.Internal("failed to load ingredients", err)
	}
	byIngredient := make(map[uint]models.Ingredient, len(foundIngredients))
	for _, ing := range foundIngredients {
		byIngredient[ing.ID] = ing
	}

	foundTags, err := s.catalog.GetTagsByIDs(ctx, nil, tagIDs)
	if err != nil {
		return nil, apperr.Internal("failed to load tags", err)
	}
	byTag := make(map[uint]models.Tag, len(foundTags))
	for _, tag := range foundTags {
		byTag[tag.ID] = tag
	}

	spec := &RecipeSpec{
		Tags:        make([]models.Tag, 0, len(tagIDs)),
		Ingredients: make([]SpecLine, 0, len(ingredients)),
	}
	for _, line := range ingredients {
		ing, ok := byIngredient[line.ID]
		if !ok {
			details["ingredients"] = fmt.Sprintf("ingredient %d does not exist", line.ID)
			continue
		}
		spec.Ingredients = append(spec.Ingredients, SpecLine{Ingredient: ing, Amount: line.Amount})
	}
	for _, id := range tagIDs {
		tag, ok := byTag[id]
		if !ok {
			details["tags"] = fmt.Sprintf("tag %d does not exist", id)
			continue
		}
		spec.Tags = append(spec.Tags, tag)
	}

	if len(details) > 0 {
		return nil, apperr.ValidationWithDetails("invalid recipe associations", details)
	}
	return spec, nil
}

// Create persists a new recipe and its associations in one transaction.
func (s *RecipeService) Create(ctx context.Context, authorID uint, fields RecipeFields, spec *RecipeSpec) (*models.Recipe, error) {
	if spec == nil {
		return nil, apperr.Validation("ingredients and tags are required")
	}
	if fields.Name == nil || fields.Text == nil || fields.CookingTime == nil {
		return nil, apperr.Validation("name, text and cooking_time are required")
	}

	recipe := &models.Recipe{
		AuthorID:    authorID,
		Name:        *fields.Name,
		Text:        *fields.Text,
		CookingTime: *fields.CookingTime,
	}
	if fields.Image != nil {
		recipe.Image = *fields.Image
	}

	var created *models.Recipe
	err := s.tx.InTx(ctx, func(tx *gorm.DB) error {
		if err := s.recipes.Create(ctx, tx, recipe); err != nil {
			return err
		}
		if err := s.recipes.ReplaceTags(ctx, tx, recipe.ID, spec.tagIDs()); err != nil {
			return err
		}
		if err := s.recipes.ReplaceIngredients(ctx, tx, recipe.ID, spec.lines()); err != nil {
			return err
		}
		var err error
		created, err = s.recipes.GetByID(ctx, tx, recipe.ID)
		return err
	})
	if err != nil {
		return nil, apperr.Internal("failed to create recipe", err)
	}

	s.log.Info("Recipe created", "recipe_id", created.ID, "author_id", authorID)
	return created, nil
}

// Update replaces present scalar fields and fully replaces tags and ingredient lines.
func (s *RecipeService) Update(ctx context.Context, existing *models.Recipe, requesterID uint, fields RecipeFields, spec *RecipeSpec) (*models.Recipe, error) {
	if existing.AuthorID != requesterID {
		return nil, apperr.PermissionDenied("only the author can change this recipe")
	}
	if spec == nil {
		return nil, apperr.Validation("ingredients and tags are required")
	}

	var updated *models.Recipe
	err := s.tx.InTx(ctx, func(tx *gorm.DB) error {
		if err := s.recipes.UpdateFields(ctx, tx, existing.ID, fields.updates()); err != nil {
			return err
		}
		if err := s.recipes.ReplaceTags(ctx, tx, existing.ID, spec.tagIDs()); err != nil {
			return err
		}
		if err := s.recipes.ReplaceIngredients(ctx, tx, existing.ID, spec.lines()); err != nil {
			return err
		}
		var err error
		updated, err = s.recipes.GetByID(ctx, tx, existing.ID)
		return err
	})
	if err != nil {
		return nil, apperr.Internal("failed to update recipe", err)
	}

	s.log.Info("Recipe updated", "recipe_id", existing.ID)
	return updated, nil
}

// Destroy deletes the recipe and everything that references it.
func (s *RecipeService) Destroy(ctx context.Context, existing *models.Recipe, requesterID uint) error {
	if existing.AuthorID != requesterID {
		return apperr.PermissionDenied("only the author can delete this recipe")
	}

	err := s.tx.InTx(ctx, func(tx *gorm.DB) error {
		return s.recipes.Delete(ctx, tx, existing.ID)
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return err
		}
		return apperr.Internal("failed to delete recipe", err)
	}

	s.log.Info("Recipe deleted", "recipe_id", existing.ID)
	return nil
}

// CreateRecipe validates a request, stores its image and creates the recipe.
func (s *RecipeService) CreateRecipe(ctx context.Context, authorID uint, req types.RecipeRequest) (*models.Recipe, error) {
	if authorID == 0 {
		return nil, apperr.AuthenticationRequired("authentication required")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	missing := map[string]string{}
	if req.Name == nil {
		missing["name"] = "is required"
	}
	if req.Text == nil {
		missing["text"] = "is required"
	}
	if req.CookingTime == nil {
		missing["cooking_time"] = "is required"
	}
	if req.Image == nil {
		missing["image"] = "is required"
	}
	if len(missing) > 0 {
		return nil, apperr.ValidationWithDetails("validation failed", missing)
	}

	spec, err := s.Validate(ctx, req.Tags, req.Ingredients)
	if err != nil {
		return nil, err
	}

	fields := RecipeFields{Name: req.Name, Text: req.Text, CookingTime: req.CookingTime}
	imageRef, err := s.storeImage(ctx, req.Image)
	if err != nil {
		return nil, err
	}
	fields.Image = imageRef

	recipe, err := s.Create(ctx, authorID, fields, spec)
	if err != nil {
		s.discardImage(ctx, imageRef)
		return nil, err
	}
	return recipe, nil
}

// UpdateRecipe applies a partial update. Tags and ingredients must both be supplied.
func (s *RecipeService) UpdateRecipe(ctx context.Context, recipeID, requesterID uint, req types.RecipeRequest) (*models.Recipe, error) {
	if requesterID == 0 {
		return nil, apperr.AuthenticationRequired("authentication required")
	}
	existing, err := s.recipes.GetByID(ctx, nil, recipeID)
	if err != nil {
		return nil, wrapLookup(err, "failed to load recipe")
	}
	if existing.AuthorID != requesterID {
		return nil, apperr.PermissionDenied("only the author can change this recipe")
	}
	if req.Tags == nil || req.Ingredients == nil {
		return nil, apperr.Validation("ingredients and tags are required")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	spec, err := s.Validate(ctx, req.Tags, req.Ingredients)
	if err != nil {
		return nil, err
	}

	fields := RecipeFields{Name: req.Name, Text: req.Text, CookingTime: req.CookingTime}
	imageRef, err := s.storeImage(ctx, req.Image)
	if err != nil {
		return nil, err
	}
	fields.Image = imageRef

	updated, err := s.Update(ctx, existing, requesterID, fields, spec)
	if err != nil {
		s.discardImage(ctx, imageRef)
		return nil, err
	}
	if imageRef != nil && existing.Image != "" {
		s.discardImage(ctx, &existing.Image)
	}
	return updated, nil
}

// DeleteRecipe loads the recipe and destroys it on behalf of requesterID.
func (s *RecipeService) DeleteRecipe(ctx context.Context, recipeID, requesterID uint) error {
	if requesterID == 0 {
		return apperr.AuthenticationRequired("authentication required")
	}
	existing, err := s.recipes.GetByID(ctx, nil, recipeID)
	if err != nil {
		return wrapLookup(err, "failed to load recipe")
	}
	if err := s.Destroy(ctx, existing, requesterID); err != nil {
		return err
	}
	if existing.Image != "" {
		s.discardImage(ctx, &existing.Image)
	}
	return nil
}

func (s *RecipeService) GetRecipe(ctx context.Context, id uint) (*models.Recipe, error) {
	recipe, err := s.recipes.GetByID(ctx, nil, id)
	if err != nil {
		return nil, wrapLookup(err, "failed to load recipe")
	}
	return recipe, nil
}

// ListRecipes returns one page of recipes matching filter, newest first.
func (s *RecipeService) ListRecipes(ctx context.Context, filter types.RecipeFilter, page types.Page) ([]models.Recipe, int64, error) {
	recipes, total, err := s.recipes.List(ctx, nil, filter, page.Normalize())
	if err != nil {
		return nil, 0, apperr.Internal("failed to list recipes", err)
	}
	return recipes, total, nil
}

func (s *RecipeService) storeImage(ctx context.Context, dataURI *string) (*string, error) {
	if dataURI == nil {
		return nil, nil
	}
	ref, err := s.images.SaveDataURI(ctx, *dataURI)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

func (s *RecipeService) discardImage(ctx context.Context, ref *string) {
	if ref == nil {
		return
	}
	if err := s.images.Remove(ctx, *ref); err != nil {
		s.log.Warn("Failed to remove image", "ref", *ref, "error", err)
	}
}

// wrapLookup passes domain errors through and wraps everything else as internal.
func wrapLookup(err error, msg string) error {
	if apperr.KindOf(err) != apperr.KindInternal {
		return err
	}
	return apperr.Internal(msg, err)
}
