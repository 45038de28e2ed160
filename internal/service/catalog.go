package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/validation"
)

// TagCache caches the tag list. A nil cache disables caching.
type TagCache interface {
	Get(ctx context.Context) ([]models.Tag, bool, error)
	Set(ctx context.Context, tags []models.Tag) error
	Invalidate(ctx context.Context) error
}

// ImportResult reports the outcome of a bulk catalog load.
type ImportResult struct {
	Created  int64
	Rejected []string
}

// CatalogService serves and loads tags and ingredients.
type CatalogService struct {
	catalog   repository.CatalogRepo
	cache     TagCache
	validator *validation.Validator
	log       *logger.Logger
}

func NewCatalogService(catalog repository.CatalogRepo, cache TagCache, validator *validation.Validator, baseLog *logger.Logger) *CatalogService {
	return &CatalogService{
		catalog:   catalog,
		cache:     cache,
		validator: validator,
		log:       baseLog.With("service", "CatalogService"),
	}
}

// ListTags returns every tag, from the cache when possible. Cache failures fall back to the database.
func (s *CatalogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	if s.cache != nil {
		tags, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.log.Warn("Tag cache read failed", "error", err)
		} else if ok {
			return tags, nil
		}
	}

	tags, err := s.catalog.ListTags(ctx, nil)
	if err != nil {
		return nil, apperr.Internal("failed to list tags", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, tags); err != nil {
			s.log.Warn("Tag cache write failed", "error", err)
		}
	}
	return tags, nil
}

func (s *CatalogService) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	tag, err := s.catalog.GetTag(ctx, nil, id)
	if err != nil {
		return nil, wrapLookup(err, "failed to load tag")
	}
	return tag, nil
}

// ListIngredients returns ingredients ordered by name whose name starts with prefix, ignoring case.
func (s *CatalogService) ListIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	ingredients, err := s.catalog.ListIngredients(ctx, nil, strings.TrimSpace(prefix))
	if err != nil {
		return nil, apperr.Internal("failed to list ingredients", err)
	}
	return ingredients, nil
}

func (s *CatalogService) GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	ingredient, err := s.catalog.GetIngredient(ctx, nil, id)
	if err != nil {
		return nil, wrapLookup(err, "failed to load ingredient")
	}
	return ingredient, nil
}

// ImportTags validates and inserts tags. Invalid rows are reported and skipped, existing slugs are kept.
func (s *CatalogService) ImportTags(ctx context.Context, tags []models.Tag) (*ImportResult, error) {
	result := &ImportResult{}
	valid := make([]*models.Tag, 0, len(tags))
	for i := range tags {
		tag := tags[i]
		tag.ID = 0
		tag.Name = strings.TrimSpace(tag.Name)
		tag.Slug = strings.TrimSpace(tag.Slug)
		if tag.Color != nil && *tag.Color == "" {
			tag.Color = nil
		}
		if err := s.validator.Validate(tag); err != nil {
			result.Rejected = append(result.Rejected, fmt.Sprintf("tag %d (%q): %s", i+1, tag.Slug, describe(err)))
			continue
		}
		valid = append(valid, &tag)
	}

	created, err := s.catalog.CreateTags(ctx, nil, valid)
	if err != nil {
		return nil, apperr.Internal("failed to import tags", err)
	}
	result.Created = created

	if s.cache != nil && created > 0 {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.Warn("Tag cache invalidation failed", "error", err)
		}
	}
	s.log.Info("Tags imported", "created", created, "rejected", len(result.Rejected))
	return result, nil
}

// ImportIngredients validates and inserts ingredients, skipping invalid rows and existing name/unit pairs.
func (s *CatalogService) ImportIngredients(ctx context.Context, ingredients []models.Ingredient) (*ImportResult, error) {
	result := &ImportResult{}
	valid := make([]*models.Ingredient, 0, len(ingredients))
	for i := range ingredients {
		ing := ingredients[i]
		ing.ID = 0
		ing.Name = strings.TrimSpace(ing.Name)
		ing.MeasurementUnit = strings.TrimSpace(ing.MeasurementUnit)
		if err := s.validator.Validate(ing); err != nil {
			result.Rejected = append(result.Rejected, fmt.Sprintf("ingredient %d (%q): %s", i+1, ing.Name, describe(err)))
			continue
		}
		valid = append(valid, &ing)
	}

	created, err := s.catalog.CreateIngredients(ctx, nil, valid)
	if err != nil {
		return nil, apperr.Internal("failed to import ingredients", err)
	}
	result.Created = created
	s.log.Info("Ingredients imported", "created", created, "rejected", len(result.Rejected))
	return result, nil
}

func describe(err error) string {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || len(appErr.Details) == 0 {
		return err.Error()
	}
	parts := make([]string, 0, len(appErr.Details))
	for field, msg := range appErr.Details {
		parts = append(parts, field+" "+msg)
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}
