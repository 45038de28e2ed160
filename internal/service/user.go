package service

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/types"
)

// UserService serves user profiles as seen by a viewer.
type UserService struct {
	users     repository.UserRepo
	decorator *ViewDecorator
}

func NewUserService(users repository.UserRepo, decorator *ViewDecorator) *UserService {
	return &UserService{users: users, decorator: decorator}
}

func (s *UserService) ListUsers(ctx context.Context, viewerID uint, page types.Page) ([]types.UserView, int64, error) {
	users, total, err := s.users.List(ctx, nil, page.Normalize())
	if err != nil {
		return nil, 0, apperr.Internal("failed to list users", err)
	}
	views, err := s.decorator.DecorateUsers(ctx, users, viewerID)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

func (s *UserService) GetUser(ctx context.Context, viewerID, id uint) (*types.UserView, error) {
	user, err := s.users.GetByID(ctx, nil, id)
	if err != nil {
		return nil, wrapLookup(err, "failed to load user")
	}
	views, err := s.decorator.DecorateUsers(ctx, []models.User{*user}, viewerID)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}
