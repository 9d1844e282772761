package services

import (
	"testing"
	"time"

	"github.com/katchinsky/reflux-tg-bot/models"

	"github.com/stretchr/testify/require"
)

var testStart = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func testSnapshot(meals []models.Meal, symptoms []models.Symptom) *Snapshot {
	return &Snapshot{
		UserID:   1,
		FromDate: "2025-03-01",
		ToDate:   "2025-03-10",
		Loc:      time.UTC,
		Start:    testStart,
		End:      testStart.AddDate(0, 0, 10),
		Meals:    meals,
		Symptoms: symptoms,
	}
}

func mealAt(id uint, at time.Time) models.Meal {
	m := models.Meal{
		UserID:       1,
		OccurredAt:   at,
		PortionSize:  models.PortionMedium,
		FatLevel:     models.FatUnknown,
		PostureAfter: models.PostureUnknown,
	}
	m.ID = id
	return m
}

func symptomAt(id uint, at time.Time, intensity int) models.Symptom {
	s := models.Symptom{
		UserID:      1,
		SymptomType: models.SymptomHeartburn,
		Intensity:   intensity,
		StartedAt:   at,
	}
	s.ID = id
	return s
}

func TestMealSymptomHitsHalfOpenWindow(t *testing.T) {
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	sym := symptomAt(1, day.Add(14*time.Hour), 5)
	sym.DurationMinutes = nil // still ongoing; start alone decides

	cases := []struct {
		name   string
		mealAt time.Time
		want   bool
	}{
		{"symptom inside window", day.Add(11 * time.Hour), true},       // 14:00 in [11:00, 15:00)
		{"symptom outside window", day.Add(9 * time.Hour), false},      // 14:00 not in [09:00, 13:00)
		{"symptom exactly at meal time", day.Add(14 * time.Hour), true},
		{"symptom exactly at window end", day.Add(10 * time.Hour), false}, // 14:00 not in [10:00, 14:00)
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hits := mealSymptomHits(
				[]models.Meal{mealAt(1, tc.mealAt)},
				[]models.Symptom{sym},
				4*time.Hour,
			)
			require.Equal(t, tc.want, hits[1])
		})
	}
}

func TestMealSymptomHitsCountOncePerMeal(t *testing.T) {
	day := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	meals := []models.Meal{mealAt(1, day)}
	symptoms := []models.Symptom{
		symptomAt(1, day.Add(30*time.Minute), 4),
		symptomAt(2, day.Add(time.Hour), 6),
		symptomAt(3, day.Add(2*time.Hour), 8),
	}
	hits := mealSymptomHits(meals, symptoms, 4*time.Hour)
	require.Len(t, hits, 1)
	require.True(t, hits[1])
}

// 30 meals, 11 followed by a symptom within 4h; 9 large-portion meals
// of which 6 are followed. Baseline 36.7%, large-portion 66.7%, delta
// +30.0 percentage points.
func TestBuildCorrelationsBaselineScenario(t *testing.T) {
	var meals []models.Meal
	var symptoms []models.Symptom

	// Space meals 5h apart so a symptom 1h after a meal can only land in
	// that meal's 4h window.
	for i := 0; i < 30; i++ {
		m := mealAt(uint(i+1), testStart.Add(time.Duration(i)*5*time.Hour))
		if i < 9 {
			m.PortionSize = models.PortionLarge
		}
		// hits: 6 of the large meals, 5 of the rest
		if i < 6 || (i >= 9 && i < 14) {
			symptoms = append(symptoms, symptomAt(uint(100+i), m.OccurredAt.Add(time.Hour), 5))
		}
		meals = append(meals, m)
	}

	snap := testSnapshot(meals, symptoms)
	out, err := BuildCorrelations(snap, nil, RollupLevel{Lowest: true}, 4, DefaultMinSupport)
	require.NoError(t, err)

	require.InDelta(t, 100.0*11.0/30.0, out.BaselineRatePct, 1e-9)
	require.Equal(t, 30, out.TotalMeals)

	var large *FeatureAssociation
	for i := range out.Features {
		if out.Features[i].FeatureKey == "portion:large" {
			large = &out.Features[i]
		}
	}
	require.NotNil(t, large)
	require.Equal(t, 9, large.SupportMeals)
	require.InDelta(t, 100.0*2.0/3.0, large.SymptomRatePct, 1e-9)
	require.InDelta(t, 30.0, large.DeltaPctPoints, 1e-9)

	// Highest delta ranks first.
	require.Equal(t, "portion:large", out.Features[0].FeatureKey)
}

func TestBuildCorrelationsInsufficientData(t *testing.T) {
	snap := testSnapshot(nil, []models.Symptom{symptomAt(1, testStart.Add(time.Hour), 5)})
	_, err := BuildCorrelations(snap, nil, RollupLevel{Lowest: true}, 4, DefaultMinSupport)
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestBuildCorrelationsWindowBand(t *testing.T) {
	snap := testSnapshot([]models.Meal{mealAt(1, testStart)}, nil)
	for _, w := range []int{0, 1, 7, -3} {
		_, err := BuildCorrelations(snap, nil, RollupLevel{Lowest: true}, w, DefaultMinSupport)
		require.ErrorIs(t, err, ErrInvalidConfiguration, "window %d", w)
	}
	for _, w := range []int{2, 4, 6} {
		_, err := BuildCorrelations(snap, nil, RollupLevel{Lowest: true}, w, DefaultMinSupport)
		require.NoError(t, err, "window %d", w)
	}
}

// Lowering min_support only adds features, never removes one.
func TestBuildCorrelationsMinSupportMonotonic(t *testing.T) {
	var meals []models.Meal
	for i := 0; i < 12; i++ {
		m := mealAt(uint(i+1), testStart.Add(time.Duration(i)*5*time.Hour))
		switch {
		case i < 3:
			m.PortionSize = models.PortionSmall // support 3: filtered at 4
		case i < 8:
			m.PortionSize = models.PortionLarge
		}
		meals = append(meals, m)
	}
	snap := testSnapshot(meals, nil)

	strict, err := BuildCorrelations(snap, nil, RollupLevel{Lowest: true}, 4, 4)
	require.NoError(t, err)
	loose, err := BuildCorrelations(snap, nil, RollupLevel{Lowest: true}, 4, 2)
	require.NoError(t, err)

	looseKeys := map[string]bool{}
	for _, f := range loose.Features {
		looseKeys[f.FeatureKey] = true
	}
	for _, f := range strict.Features {
		require.True(t, looseKeys[f.FeatureKey], "feature %s lost when lowering threshold", f.FeatureKey)
	}
	require.Greater(t, len(loose.Features), len(strict.Features))

	strictKeys := map[string]bool{}
	for _, f := range strict.Features {
		strictKeys[f.FeatureKey] = true
	}
	require.False(t, strictKeys["portion:small"])
	require.True(t, looseKeys["portion:small"])
}

// Equal delta and equal support fall back to feature_key order.
func TestBuildCorrelationsDeterministicTieBreak(t *testing.T) {
	var meals []models.Meal
	for i := 0; i < 8; i++ {
		m := mealAt(uint(i+1), testStart.Add(time.Duration(i)*5*time.Hour))
		if i < 4 {
			m.FatLevel = models.FatHigh
			m.PostureAfter = models.PostureLaying
		} else {
			m.FatLevel = models.FatLow
			m.PostureAfter = models.PostureSitting
		}
		meals = append(meals, m)
	}
	snap := testSnapshot(meals, nil)

	out, err := BuildCorrelations(snap, nil, RollupLevel{Lowest: true}, 4, 4)
	require.NoError(t, err)

	// All features have delta 0; order must be stable and lexicographic
	// within equal support.
	var keys []string
	for _, f := range out.Features {
		keys = append(keys, f.FeatureKey)
	}
	require.Equal(t, []string{"portion:medium", "fat:high", "fat:low", "posture:laying", "posture:sitting"}, keys)
}

func TestBuildCorrelationsCategoryRollupFeature(t *testing.T) {
	// root(1) -> coffee(2) -> espresso(3), latte(4)
	root := models.Category{Name: "Beverages"}
	root.ID = 1
	coffee := models.Category{Name: "Coffee", ParentID: ptr(uint(1))}
	coffee.ID = 2
	espresso := models.Category{Name: "Espresso", ParentID: ptr(uint(2))}
	espresso.ID = 3
	latte := models.Category{Name: "Latte", ParentID: ptr(uint(2))}
	latte.ID = 4

	ix, err := BuildCategoryIndex([]models.Category{root, coffee, espresso, latte})
	require.NoError(t, err)

	var meals []models.Meal
	for i := 0; i < 8; i++ {
		m := mealAt(uint(i+1), testStart.Add(time.Duration(i)*5*time.Hour))
		if i%2 == 0 {
			m.CategoryID = ptr(uint(3))
		} else {
			m.CategoryID = ptr(uint(4))
		}
		meals = append(meals, m)
	}
	snap := testSnapshot(meals, nil)

	out, err := BuildCorrelations(snap, ix, RollupLevel{Depth: 1}, 4, 4)
	require.NoError(t, err)

	var cat *FeatureAssociation
	for i := range out.Features {
		if out.Features[i].FeatureKey == "category:coffee" {
			cat = &out.Features[i]
		}
	}
	require.NotNil(t, cat, "espresso and latte must collapse into one coffee feature")
	require.Equal(t, 8, cat.SupportMeals)
	require.Equal(t, "Category: Coffee", cat.Label)
}

func ptr[T any](v T) *T { return &v }
