package services

import (
	"context"
	"fmt"
	"time"

	"github.com/katchinsky/reflux-tg-bot/models"
)

// AnalyticsService answers the read-only insight queries. Each call
// loads a fresh per-request snapshot and runs a synchronous pass over
// it; there is no shared state between requests, so calls for any mix
// of users may run concurrently.
type AnalyticsService struct {
	timeline *TimelineService
	cats     *CategoryService
}

func NewAnalyticsService(tl *TimelineService, cats *CategoryService) *AnalyticsService {
	return &AnalyticsService{timeline: tl, cats: cats}
}

// CategoryRollup aggregates meals by category at the requested level,
// with each row's symptom-window rate.
func (s *AnalyticsService) CategoryRollup(
	ctx context.Context, userID uint, from, to string, level RollupLevel, windowHours int,
) (*CategoryRollup, error) {
	if windowHours < MinWindowHours || windowHours > MaxWindowHours {
		return nil, fmt.Errorf("%w: window_hours must be %d-%d, got %d",
			ErrInvalidConfiguration, MinWindowHours, MaxWindowHours, windowHours)
	}
	// Symptom load extends by the window so meals near the range end
	// still see their following symptoms.
	snap, err := s.timeline.LoadSnapshot(ctx, userID, from, to, time.Duration(windowHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	ix, err := s.cats.Index(ctx)
	if err != nil {
		return nil, err
	}
	return BuildCategoryRollup(snap, ix, level, windowHours)
}

// SymptomSeries buckets symptom occurrences and intensities over the
// range. Valid even when the user logged no meals at all.
func (s *AnalyticsService) SymptomSeries(
	ctx context.Context, userID uint, from, to string, bucketHours int, typeFilter *models.SymptomType,
) (*SymptomSeries, error) {
	if bucketHours <= 0 {
		return nil, fmt.Errorf("%w: bucket_hours must be positive, got %d", ErrInvalidConfiguration, bucketHours)
	}
	snap, err := s.timeline.LoadSnapshot(ctx, userID, from, to, 0)
	if err != nil {
		return nil, err
	}
	return BuildSymptomSeries(snap, bucketHours, typeFilter)
}

func (s *AnalyticsService) MedicationSummary(
	ctx context.Context, userID uint, from, to string,
) (*MedicationSummary, error) {
	snap, err := s.timeline.LoadSnapshot(ctx, userID, from, to, 0)
	if err != nil {
		return nil, err
	}
	return BuildMedicationSummary(snap), nil
}

// Correlations scores every observed meal feature against the baseline
// symptom-window rate.
func (s *AnalyticsService) Correlations(
	ctx context.Context, userID uint, from, to string, level RollupLevel, windowHours, minSupport int,
) (*Correlations, error) {
	if windowHours < MinWindowHours || windowHours > MaxWindowHours {
		return nil, fmt.Errorf("%w: window_hours must be %d-%d, got %d",
			ErrInvalidConfiguration, MinWindowHours, MaxWindowHours, windowHours)
	}
	snap, err := s.timeline.LoadSnapshot(ctx, userID, from, to, time.Duration(windowHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	ix, err := s.cats.Index(ctx)
	if err != nil {
		return nil, err
	}
	return BuildCorrelations(snap, ix, level, windowHours, minSupport)
}

type TimelineView struct {
	From     string          `json:"from"`
	To       string          `json:"to"`
	Timezone string          `json:"timezone"`
	Events   []TimelineEvent `json:"events"`
}

// Timeline returns the merged chronological event view.
func (s *AnalyticsService) Timeline(
	ctx context.Context, userID uint, from, to string,
) (*TimelineView, error) {
	snap, err := s.timeline.LoadSnapshot(ctx, userID, from, to, 0)
	if err != nil {
		return nil, err
	}
	return &TimelineView{
		From:     snap.FromDate,
		To:       snap.ToDate,
		Timezone: snap.Loc.String(),
		Events:   Events(snap),
	}, nil
}
