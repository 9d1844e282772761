package models

import (
	"time"

	"gorm.io/gorm"
)

type Medication struct {
	gorm.Model
	UserID    uint      `gorm:"index;not null"`
	Name      string    `gorm:"index;not null"`
	Dosage    string    // opaque, e.g. "20mg"
	TakenAt   time.Time `gorm:"index;not null"`
	Scheduled bool
}
