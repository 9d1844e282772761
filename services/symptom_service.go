package services

import (
	"context"
	"fmt"
	"time"

	"github.com/katchinsky/reflux-tg-bot/models"

	"gorm.io/gorm"
)

type SymptomService struct{ db *gorm.DB }

func NewSymptomService(db *gorm.DB) *SymptomService { return &SymptomService{db: db} }

type SymptomInput struct {
	SymptomType     string    `json:"symptom_type"`
	Intensity       int       `json:"intensity"`
	StartedAt       time.Time `json:"started_at"`
	DurationMinutes *int      `json:"duration_minutes"` // nil = still ongoing
	Notes           string    `json:"notes"`
}

func (s *SymptomService) AddSymptom(ctx context.Context, userID uint, in SymptomInput) (*models.Symptom, error) {
	st, err := models.ParseSymptomType(in.SymptomType)
	if err != nil {
		return nil, err
	}
	if !models.ValidIntensity(in.Intensity) {
		return nil, fmt.Errorf("intensity %d outside %d-%d", in.Intensity, models.IntensityMin, models.IntensityMax)
	}
	if in.DurationMinutes != nil && *in.DurationMinutes < 0 {
		return nil, fmt.Errorf("duration_minutes must be non-negative")
	}
	sym := &models.Symptom{
		UserID:          userID,
		SymptomType:     st,
		Intensity:       in.Intensity,
		StartedAt:       in.StartedAt,
		DurationMinutes: in.DurationMinutes,
		Notes:           in.Notes,
	}
	if err := s.db.WithContext(ctx).Create(sym).Error; err != nil {
		return nil, err
	}
	return sym, nil
}

// Resolve closes an ongoing episode by recording its duration.
func (s *SymptomService) Resolve(ctx context.Context, userID, symptomID uint, durationMinutes int) (*models.Symptom, error) {
	if durationMinutes < 0 {
		return nil, fmt.Errorf("duration_minutes must be non-negative")
	}
	var sym models.Symptom
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", symptomID, userID).
		First(&sym).Error; err != nil {
		return nil, err
	}
	sym.DurationMinutes = &durationMinutes
	if err := s.db.WithContext(ctx).Save(&sym).Error; err != nil {
		return nil, err
	}
	return &sym, nil
}

func (s *SymptomService) ListRecent(ctx context.Context, userID uint, limit int) ([]models.Symptom, error) {
	if limit <= 0 {
		limit = 10
	}
	var syms []models.Symptom
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("started_at DESC").
		Limit(limit).
		Find(&syms).Error
	return syms, err
}

func (s *SymptomService) Delete(ctx context.Context, userID, symptomID uint) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", symptomID, userID).
		Delete(&models.Symptom{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
