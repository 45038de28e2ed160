package models

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Email        string    `gorm:"size:254;uniqueIndex;not null" json:"email"`
	Username     string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	FirstName    string    `gorm:"size:150;not null" json:"first_name"`
	LastName     string    `gorm:"size:150;not null" json:"last_name"`
	PasswordHash string    `gorm:"not null" json:"-"`
}

// Subscription records that Subscriber follows SubscribedTo's recipes.
type Subscription struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	SubscriberID   uint      `gorm:"not null;uniqueIndex:idx_subscription_pair" json:"subscriber_id"`
	SubscribedToID uint      `gorm:"not null;uniqueIndex:idx_subscription_pair;index" json:"subscribed_to_id"`
	Subscriber     User      `gorm:"foreignKey:SubscriberID;constraint:OnDelete:CASCADE" json:"-"`
	SubscribedTo   User      `gorm:"foreignKey:SubscribedToID;constraint:OnDelete:CASCADE" json:"-"`
}
