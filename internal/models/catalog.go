package models

// Tag is reference data; recipes only ever point at existing tags.
type Tag struct {
	ID    uint    `gorm:"primarykey" json:"id"`
	Name  string  `gorm:"size:200;not null" json:"name" validate:"required,max=200"`
	Color *string `gorm:"size:7" json:"color" validate:"omitempty,tagcolor"`
	Slug  string  `gorm:"size:200;uniqueIndex;not null" json:"slug" validate:"required,max=200,slug"`
}

// Ingredient is reference data. The same name may exist with different units.
type Ingredient struct {
	ID              uint   `gorm:"primarykey" json:"id"`
	Name            string `gorm:"size:200;not null;uniqueIndex:idx_ingredient_name_unit" json:"name" validate:"required,max=200"`
	MeasurementUnit string `gorm:"size:200;not null;uniqueIndex:idx_ingredient_name_unit" json:"measurement_unit" validate:"required,max=200"`
}
