package models

import (
	"time"

	"gorm.io/gorm"
)

// One logged meal. CategoryID points at a leaf of the category tree;
// nil means the meal is uncategorized.
type Meal struct {
	gorm.Model
	UserID     uint      `gorm:"index;not null"`
	OccurredAt time.Time `gorm:"index;not null"`
	Notes      string

	CategoryID   *uint
	PortionSize  PortionSize `gorm:"type:varchar(16);default:'unknown'"`
	FatLevel     FatLevel    `gorm:"type:varchar(16);default:'unknown'"`
	PostureAfter Posture     `gorm:"type:varchar(16);default:'unknown'"`
}
