package models

import (
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	TelegramUserID int64  `gorm:"uniqueIndex;not null"`
	Timezone       string `gorm:"default:'Europe/Belgrade'"`
	Language       string `gorm:"default:'en'"`
}
