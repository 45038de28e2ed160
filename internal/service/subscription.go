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

// SubscriptionService manages who follows whom and builds the subscriptions feed.
type SubscriptionService struct {
	tx            repository.Transactor
	users         repository.UserRepo
	recipes       repository.RecipeRepo
	subscriptions repository.SubscriptionRepo
	log           *logger.Logger
}

func NewSubscriptionService(
	tx repository.Transactor,
	users repository.UserRepo,
	recipes repository.RecipeRepo,
	subscriptions repository.SubscriptionRepo,
	baseLog *logger.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		tx:            tx,
		users:         users,
		recipes:       recipes,
		subscriptions: subscriptions,
		log:           baseLog.With("service", "SubscriptionService"),
	}
}

// Subscribe makes subscriberID follow authorID. recipesLimit caps the recipe preview, negative means no cap.
func (s *SubscriptionService) Subscribe(ctx context.Context, subscriberID, authorID uint, recipesLimit int) (*types.SubscriptionView, error) {
	if subscriberID == 0 {
		return nil, apperr.AuthenticationRequired("authentication required")
	}

	var author *models.User
	err := s.tx.InTx(ctx, func(tx *gorm.DB) error {
		var err error
		author, err = s.users.GetByID(ctx, tx, authorID)
		if err != nil {
			return err
		}
		if subscriberID == authorID {
			return apperr.Validation("you cannot subscribe to yourself")
		}
		exists, err := s.subscriptions.Exists(ctx, tx, subscriberID, authorID)
		if err != nil {
			return err
		}
		if exists {
			return apperr.Conflict("already subscribed to this author")
		}
		if err := s.subscriptions.Create(ctx, tx, subscriberID, authorID); err != nil {
			if database.IsUniqueViolation(err) {
				return apperr.Conflict("already subscribed to this author")
			}
			return err
		}
		return nil
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.Conflict("already subscribed to this author")
		}
		return nil, wrapLookup(err, "failed to subscribe")
	}

	views, err := s.buildViews(ctx, []models.User{*author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	s.log.Info("Subscribed", "subscriber_id", subscriberID, "author_id", authorID)
	return &views[0], nil
}

// Unsubscribe removes the subscription; a missing author or subscription is not found.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, subscriberID, authorID uint) error {
	if subscriberID == 0 {
		return apperr.AuthenticationRequired("authentication required")
	}
	err := s.tx.InTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.users.GetByID(ctx, tx, authorID); err != nil {
			return err
		}
		removed, err := s.subscriptions.Delete(ctx, tx, subscriberID, authorID)
		if err != nil {
			return err
		}
		if removed == 0 {
			return apperr.NotFound("you are not subscribed to this author")
		}
		return nil
	})
	if err != nil {
		return wrapLookup(err, "failed to unsubscribe")
	}
	s.log.Info("Unsubscribed", "subscriber_id", subscriberID, "author_id", authorID)
	return nil
}

// ListSubscriptions returns one page of followed authors with their recipe previews.
func (s *SubscriptionService) ListSubscriptions(ctx context.Context, subscriberID uint, page types.Page, recipesLimit int) ([]types.SubscriptionView, int64, error) {
	if subscriberID == 0 {
		return nil, 0, apperr.AuthenticationRequired("authentication required")
	}
	authors, total, err := s.subscriptions.ListAuthors(ctx, nil, subscriberID, page.Normalize())
	if err != nil {
		return nil, 0, apperr.Internal("failed to list subscriptions", err)
	}
	views, err := s.buildViews(ctx, authors, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// buildViews assumes the requester follows every author passed in.
func (s *SubscriptionService) buildViews(ctx context.Context, authors []models.User, recipesLimit int) ([]types.SubscriptionView, error) {
	ids := make([]uint, 0, len(authors))
	for i := range authors {
		ids = append(ids, authors[i].ID)
	}

	recipes, err := s.recipes.ListByAuthors(ctx, nil, ids)
	if err != nil {
		return nil, apperr.Internal("failed to load author recipes", err)
	}
	counts, err := s.recipes.CountByAuthors(ctx, nil, ids)
	if err != nil {
		return nil, apperr.Internal("failed to count author recipes", err)
	}

	byAuthor := make(map[uint][]types.RecipeShort, len(authors))
	for i := range recipes {
		r := &recipes[i]
		if recipesLimit >= 0 && len(byAuthor[r.AuthorID]) >= recipesLimit {
			continue
		}
		byAuthor[r.AuthorID] = append(byAuthor[r.AuthorID], types.NewRecipeShort(r))
	}

	views := make([]types.SubscriptionView, 0, len(authors))
	for i := range authors {
		a := &authors[i]
		preview := byAuthor[a.ID]
		if preview == nil {
			preview = []types.RecipeShort{}
		}
		views = append(views, types.SubscriptionView{
			UserView:     userView(a, true),
			Recipes:      preview,
			RecipesCount: counts[a.ID],
		})
	}
	return views, nil
}
