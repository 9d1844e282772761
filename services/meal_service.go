// services/meal_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/katchinsky/reflux-tg-bot/models"

	"gorm.io/gorm"
)

type MealService struct {
	db   *gorm.DB
	cats *CategoryService
}

func NewMealService(db *gorm.DB, cats *CategoryService) *MealService {
	return &MealService{db: db, cats: cats}
}

type MealInput struct {
	OccurredAt   time.Time `json:"occurred_at"`
	Notes        string    `json:"notes"`
	CategoryID   *uint     `json:"category_id"`
	PortionSize  string    `json:"portion_size"`
	FatLevel     string    `json:"fat_level"`
	PostureAfter string    `json:"posture_after"`
}

// validate parses the enum fields and checks the category reference.
// Unset enums become the explicit unknown member, never a guess.
func (s *MealService) validate(ctx context.Context, in MealInput) (*models.Meal, error) {
	portion, err := models.ParsePortionSize(in.PortionSize)
	if err != nil {
		return nil, err
	}
	fat, err := models.ParseFatLevel(in.FatLevel)
	if err != nil {
		return nil, err
	}
	posture, err := models.ParsePosture(in.PostureAfter)
	if err != nil {
		return nil, err
	}
	if in.CategoryID != nil {
		ix, err := s.cats.Index(ctx)
		if err != nil {
			return nil, err
		}
		if !ix.Has(*in.CategoryID) {
			return nil, fmt.Errorf("category %d not found", *in.CategoryID)
		}
	}
	return &models.Meal{
		OccurredAt:   in.OccurredAt,
		Notes:        in.Notes,
		CategoryID:   in.CategoryID,
		PortionSize:  portion,
		FatLevel:     fat,
		PostureAfter: posture,
	}, nil
}

func (s *MealService) AddMeal(ctx context.Context, userID uint, in MealInput) (*models.Meal, error) {
	meal, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}
	meal.UserID = userID
	if err := s.db.WithContext(ctx).Create(meal).Error; err != nil {
		return nil, err
	}
	return meal, nil
}

func (s *MealService) UpdateMeal(ctx context.Context, userID, mealID uint, in MealInput) (*models.Meal, error) {
	var meal models.Meal
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", mealID, userID).
		First(&meal).Error; err != nil {
		return nil, err
	}
	updated, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}
	meal.OccurredAt = updated.OccurredAt
	meal.Notes = updated.Notes
	meal.CategoryID = updated.CategoryID
	meal.PortionSize = updated.PortionSize
	meal.FatLevel = updated.FatLevel
	meal.PostureAfter = updated.PostureAfter
	if err := s.db.WithContext(ctx).Save(&meal).Error; err != nil {
		return nil, err
	}
	return &meal, nil
}

func (s *MealService) GetMeal(ctx context.Context, userID, mealID uint) (*models.Meal, error) {
	var meal models.Meal
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", mealID, userID).
		First(&meal).Error
	if err != nil {
		return nil, err // could be ErrRecordNotFound
	}
	return &meal, nil
}

func (s *MealService) ListRecentMeals(ctx context.Context, userID uint, limit int) ([]models.Meal, error) {
	if limit <= 0 {
		limit = 10
	}
	var meals []models.Meal
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&meals).Error
	return meals, err
}

func (s *MealService) DeleteMeal(ctx context.Context, userID, mealID uint) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", mealID, userID).
		Delete(&models.Meal{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
