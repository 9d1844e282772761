package services

import (
	"context"
	"fmt"
	"time"

	"github.com/katchinsky/reflux-tg-bot/models"

	"gorm.io/gorm"
)

type UserService struct{ db *gorm.DB }

func NewUserService(db *gorm.DB) *UserService { return &UserService{db: db} }

type ProfileInput struct {
	Timezone string `json:"timezone"` // IANA name, e.g. "Europe/Belgrade"
	Language string `json:"language"`
}

func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, err
	}
	if in.Timezone != "" {
		if _, err := time.LoadLocation(in.Timezone); err != nil {
			return nil, fmt.Errorf("unknown timezone %q", in.Timezone)
		}
		user.Timezone = in.Timezone
	}
	if in.Language != "" {
		user.Language = in.Language
	}
	if err := s.db.WithContext(ctx).Save(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// EnsureUser finds or creates the user record for a telegram account.
// The bot layer calls this on first contact.
func (s *UserService) EnsureUser(ctx context.Context, telegramUserID int64) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("telegram_user_id = ?", telegramUserID).
		First(&user).Error
	if err == nil {
		return &user, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	user = models.User{TelegramUserID: telegramUserID}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
