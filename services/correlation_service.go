package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/katchinsky/reflux-tg-bot/models"
)

const (
	DefaultWindowHours = 4
	MinWindowHours     = 2
	MaxWindowHours     = 6

	// DefaultMinSupport filters features observed on too few meals to
	// mean anything.
	DefaultMinSupport = 4
)

// FeatureAssociation compares one meal attribute's symptom rate against
// the baseline. Percentages carry full float precision; rounding is the
// caller's presentation concern.
type FeatureAssociation struct {
	FeatureKey     string  `json:"feature_key"`
	Label          string  `json:"label"`
	SupportMeals   int     `json:"support_meals"`
	SymptomRatePct float64 `json:"symptom_rate_pct"`
	DeltaPctPoints float64 `json:"delta_pct_points"`
}

type Correlations struct {
	From               string               `json:"from"`
	To                 string               `json:"to"`
	BaselineRatePct    float64              `json:"baseline_rate_pct"`
	SymptomWindowHours int                  `json:"symptom_window_hours"`
	MinSupport         int                  `json:"min_support"`
	TotalMeals         int                  `json:"total_meals"`
	Features           []FeatureAssociation `json:"features"`
}

// mealSymptomHits marks each meal that has at least one symptom
// starting inside the half-open window [occurred_at, occurred_at+W).
// Multiple symptoms in one window still count as a single hit, and an
// ongoing symptom counts by its start alone; duration never matters.
//
// Both sequences arrive sorted, so a single forward pass suffices: the
// first symptom at or after the meal is the only candidate.
func mealSymptomHits(meals []models.Meal, symptoms []models.Symptom, window time.Duration) map[uint]bool {
	out := make(map[uint]bool, len(meals))
	j := 0
	for _, m := range meals {
		for j < len(symptoms) && symptoms[j].StartedAt.Before(m.OccurredAt) {
			j++
		}
		hit := false
		if j < len(symptoms) {
			hit = symptoms[j].StartedAt.Before(m.OccurredAt.Add(window))
		}
		out[m.ID] = hit
	}
	return out
}

// BuildCorrelations runs the window association over one snapshot.
// Candidate features are only the attribute values actually observed in
// range: category at the requested roll-up level, portion size, fat
// level and posture. Each feature is scored independently; a meal may
// support several features at once.
func BuildCorrelations(
	snap *Snapshot, ix *CategoryIndex, level RollupLevel, windowHours, minSupport int,
) (*Correlations, error) {

	if windowHours < MinWindowHours || windowHours > MaxWindowHours {
		return nil, fmt.Errorf("%w: window_hours must be %d-%d, got %d",
			ErrInvalidConfiguration, MinWindowHours, MaxWindowHours, windowHours)
	}
	if minSupport < 0 {
		return nil, fmt.Errorf("%w: min_support must be non-negative", ErrInvalidConfiguration)
	}
	if len(snap.Meals) == 0 {
		return nil, fmt.Errorf("%w: no meals in range, baseline undefined", ErrInsufficientData)
	}

	window := time.Duration(windowHours) * time.Hour
	hits := mealSymptomHits(snap.Meals, snap.Symptoms, window)

	total := len(snap.Meals)
	withAny := 0
	for _, m := range snap.Meals {
		if hits[m.ID] {
			withAny++
		}
	}
	baseline := float64(withAny) / float64(total)

	// feature value -> supporting meal ids
	type group struct {
		label   string
		mealIDs []uint
	}
	groups := map[string]*group{}
	add := func(key, label string, mealID uint) {
		g, ok := groups[key]
		if !ok {
			g = &group{label: label}
			groups[key] = g
		}
		g.mealIDs = append(g.mealIDs, mealID)
	}

	for _, m := range snap.Meals {
		if m.CategoryID != nil && ix != nil && ix.Has(*m.CategoryID) {
			node := ix.RollupAt(*m.CategoryID, level)
			name := ix.Name(node)
			add("category:"+featureSlug(name), "Category: "+name, m.ID)
		}
		add("portion:"+string(m.PortionSize), "Portion: "+capitalize(string(m.PortionSize)), m.ID)
		add("fat:"+string(m.FatLevel), "Fat: "+capitalize(string(m.FatLevel)), m.ID)
		add("posture:"+string(m.PostureAfter), "Posture: "+capitalize(string(m.PostureAfter)), m.ID)
	}

	features := make([]FeatureAssociation, 0, len(groups))
	for key, g := range groups {
		n := len(g.mealIDs)
		if n < minSupport {
			continue
		}
		withSym := 0
		for _, id := range g.mealIDs {
			if hits[id] {
				withSym++
			}
		}
		rate := float64(withSym) / float64(n)
		features = append(features, FeatureAssociation{
			FeatureKey:     key,
			Label:          g.label,
			SupportMeals:   n,
			SymptomRatePct: rate * 100.0,
			DeltaPctPoints: (rate - baseline) * 100.0,
		})
	}

	sort.Slice(features, func(i, j int) bool {
		if features[i].DeltaPctPoints != features[j].DeltaPctPoints {
			return features[i].DeltaPctPoints > features[j].DeltaPctPoints
		}
		if features[i].SupportMeals != features[j].SupportMeals {
			return features[i].SupportMeals > features[j].SupportMeals
		}
		return features[i].FeatureKey < features[j].FeatureKey
	})

	return &Correlations{
		From:               snap.FromDate,
		To:                 snap.ToDate,
		BaselineRatePct:    baseline * 100.0,
		SymptomWindowHours: windowHours,
		MinSupport:         minSupport,
		TotalMeals:         total,
		Features:           features,
	}, nil
}

func featureSlug(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
