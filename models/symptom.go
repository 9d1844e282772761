package models

import (
	"time"

	"gorm.io/gorm"
)

// A symptom episode. DurationMinutes is nil while the episode is still
// open; only StartedAt matters for window attribution.
type Symptom struct {
	gorm.Model
	UserID          uint        `gorm:"index;not null"`
	SymptomType     SymptomType `gorm:"type:varchar(32);index;not null"`
	Intensity       int         `gorm:"not null"` // 0-10
	StartedAt       time.Time   `gorm:"index;not null"`
	DurationMinutes *int
	Notes           string
}
