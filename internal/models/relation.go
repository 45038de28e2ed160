package models

import "time"

// RelationKind names one of the per-user recipe relation tables.
type RelationKind string

const (
	RelationFavorite     RelationKind = "favorite"
	RelationShoppingCart RelationKind = "shopping_cart"
)

func (k RelationKind) Valid() bool {
	return k == RelationFavorite || k == RelationShoppingCart
}

// Table returns the table backing the relation kind.
func (k RelationKind) Table() string {
	switch k {
	case RelationShoppingCart:
		return ShoppingCartEntry{}.TableName()
	default:
		return FavoriteRecipe{}.TableName()
	}
}

type FavoriteRecipe struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_favorite_pair" json:"user_id"`
	RecipeID  uint      `gorm:"not null;uniqueIndex:idx_favorite_pair;index" json:"recipe_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Recipe    Recipe    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (FavoriteRecipe) TableName() string {
	return "favorite_recipes"
}

type ShoppingCartEntry struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_cart_pair" json:"user_id"`
	RecipeID  uint      `gorm:"not null;uniqueIndex:idx_cart_pair;index" json:"recipe_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Recipe    Recipe    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (ShoppingCartEntry) TableName() string {
	return "shopping_cart_entries"
}
