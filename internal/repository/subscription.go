package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

type SubscriptionRepo interface {
	Exists(ctx context.Context, tx *gorm.DB, subscriberID, authorID uint) (bool, error)
	Create(ctx context.Context, tx *gorm.DB, subscriberID, authorID uint) error
	Delete(ctx context.Context, tx *gorm.DB, subscriberID, authorID uint) (int64, error)
	// SubscribedAmong returns which of authorIDs the subscriber follows, in one query.
	SubscribedAmong(ctx context.Context, tx *gorm.DB, subscriberID uint, authorIDs []uint) (map[uint]struct{}, error)
	ListAuthors(ctx context.Context, tx *gorm.DB, subscriberID uint, page types.Page) ([]models.User, int64, error)
}

type subscriptionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubscriptionRepo(db *gorm.DB, baseLog *logger.Logger) SubscriptionRepo {
	return &subscriptionRepo{db: db, log: baseLog.With("repo", "SubscriptionRepo")}
}

func (r *subscriptionRepo) Exists(ctx context.Context, tx *gorm.DB, subscriberID, authorID uint) (bool, error) {
	var count int64
	err := pick(r.db, tx).WithContext(ctx).
		Model(&models.Subscription{}).
		Where("subscriber_id = ? AND subscribed_to_id = ?", subscriberID, authorID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *subscriptionRepo) Create(ctx context.Context, tx *gorm.DB, subscriberID, authorID uint) error {
	return pick(r.db, tx).WithContext(ctx).
		Omit(clause.Associations).
		Create(&models.Subscription{SubscriberID: subscriberID, SubscribedToID: authorID}).Error
}

func (r *subscriptionRepo) Delete(ctx context.Context, tx *gorm.DB, subscriberID, authorID uint) (int64, error) {
	res := pick(r.db, tx).WithContext(ctx).
		Where("subscriber_id = ? AND subscribed_to_id = ?", subscriberID, authorID).
		Delete(&models.Subscription{})
	return res.RowsAffected, res.Error
}

func (r *subscriptionRepo) SubscribedAmong(ctx context.Context, tx *gorm.DB, subscriberID uint, authorIDs []uint) (map[uint]struct{}, error) {
	if len(authorIDs) == 0 {
		return map[uint]struct{}{}, nil
	}
	var ids []uint
	err := pick(r.db, tx).WithContext(ctx).
		Model(&models.Subscription{}).
		Where("subscriber_id = ? AND subscribed_to_id IN ?", subscriberID, authorIDs).
		Pluck("subscribed_to_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return idSet(ids), nil
}

// ListAuthors returns the users the subscriber follows, most recently followed first.
func (r *subscriptionRepo) ListAuthors(ctx context.Context, tx *gorm.DB, subscriberID uint, page types.Page) ([]models.User, int64, error) {
	base := pick(r.db, tx).WithContext(ctx)

	var total int64
	if err := base.Model(&models.Subscription{}).Where("subscriber_id = ?", subscriberID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := base.
		Joins("JOIN subscriptions ON subscriptions.subscribed_to_id = users.id").
		Where("subscriptions.subscriber_id = ?", subscriberID).
		Order("subscriptions.id DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
