package services

import (
	"fmt"
	"sort"
	"time"
)

type CategoryParent struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Level int    `json:"level"`
}

type CategoryRow struct {
	CategoryID           uint             `json:"category_id"`
	Name                 string           `json:"name"`
	Level                int              `json:"level"`
	Parents              []CategoryParent `json:"parents"`
	MealCount            int              `json:"meal_count"`
	SharePct             float64          `json:"share_pct"`
	SymptomWindowRatePct float64          `json:"symptom_window_rate_pct"`
}

type CategoryRollup struct {
	From               string        `json:"from"`
	To                 string        `json:"to"`
	TotalMeals         int           `json:"total_meals"`
	CategoryLevel      string        `json:"category_level"`
	SymptomWindowHours int           `json:"symptom_window_hours"`
	Categories         []CategoryRow `json:"categories"`
}

// BuildCategoryRollup aggregates meals by category at the requested
// level. Sibling leaves under the same requested ancestor collapse into
// one row with combined counts. Uncategorized meals count toward the
// total but get no row. Zero meals is a valid empty roll-up, unlike the
// correlation query where it would poison the baseline.
func BuildCategoryRollup(
	snap *Snapshot, ix *CategoryIndex, level RollupLevel, windowHours int,
) (*CategoryRollup, error) {

	if windowHours < MinWindowHours || windowHours > MaxWindowHours {
		return nil, fmt.Errorf("%w: window_hours must be %d-%d, got %d",
			ErrInvalidConfiguration, MinWindowHours, MaxWindowHours, windowHours)
	}

	window := time.Duration(windowHours) * time.Hour
	hits := mealSymptomHits(snap.Meals, snap.Symptoms, window)
	total := len(snap.Meals)

	grouped := map[uint][]uint{} // roll-up node -> meal ids
	for _, m := range snap.Meals {
		if m.CategoryID == nil || !ix.Has(*m.CategoryID) {
			continue
		}
		node := ix.RollupAt(*m.CategoryID, level)
		grouped[node] = append(grouped[node], m.ID)
	}

	rows := make([]CategoryRow, 0, len(grouped))
	for node, mealIDs := range grouped {
		n := len(mealIDs)
		withSym := 0
		for _, id := range mealIDs {
			if hits[id] {
				withSym++
			}
		}
		parents := []CategoryParent{}
		for i, pid := range ix.Parents(node) {
			if i >= 3 {
				break
			}
			parents = append(parents, CategoryParent{ID: pid, Name: ix.Name(pid), Level: ix.Depth(pid)})
		}
		rows = append(rows, CategoryRow{
			CategoryID:           node,
			Name:                 ix.Name(node),
			Level:                ix.Depth(node),
			Parents:              parents,
			MealCount:            n,
			SharePct:             100.0 * float64(n) / float64(total),
			SymptomWindowRatePct: 100.0 * float64(withSym) / float64(n),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].MealCount != rows[j].MealCount {
			return rows[i].MealCount > rows[j].MealCount
		}
		if rows[i].SymptomWindowRatePct != rows[j].SymptomWindowRatePct {
			return rows[i].SymptomWindowRatePct > rows[j].SymptomWindowRatePct
		}
		return rows[i].Name < rows[j].Name
	})

	levelStr := "lowest"
	if !level.Lowest {
		levelStr = fmt.Sprintf("%d", level.Depth)
	}

	return &CategoryRollup{
		From:               snap.FromDate,
		To:                 snap.ToDate,
		TotalMeals:         total,
		CategoryLevel:      levelStr,
		SymptomWindowHours: windowHours,
		Categories:         rows,
	}, nil
}
