package services

import (
	"context"
	"sort"
	"time"

	"github.com/katchinsky/reflux-tg-bot/models"

	"gorm.io/gorm"
)

type MedicationNameRow struct {
	Name        string    `json:"name"`
	Count       int       `json:"count"`
	SharePct    float64   `json:"share_pct"`
	LastTakenAt time.Time `json:"last_taken_at"` // user-local
}

type MedicationDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type MedicationSummary struct {
	From       string              `json:"from"`
	To         string              `json:"to"`
	TotalTaken int                 `json:"total_taken"`
	Daily      []MedicationDay     `json:"daily"`
	ByName     []MedicationNameRow `json:"by_name"`
}

// BuildMedicationSummary produces per-name intake counts and a filled
// daily series. Medications never participate in window association;
// this is the only place they are aggregated.
func BuildMedicationSummary(snap *Snapshot) *MedicationSummary {
	total := len(snap.Medications)

	byDay := map[string]int{}
	type nameAcc struct {
		count int
		last  time.Time
	}
	byName := map[string]*nameAcc{}
	for _, med := range snap.Medications {
		local := med.TakenAt.In(snap.Loc)
		byDay[local.Format(dateLayout)]++

		name := med.Name
		if name == "" {
			name = "Unknown"
		}
		acc, ok := byName[name]
		if !ok {
			acc = &nameAcc{}
			byName[name] = acc
		}
		acc.count++
		if local.After(acc.last) {
			acc.last = local
		}
	}

	var daily []MedicationDay
	from, _ := time.ParseInLocation(dateLayout, snap.FromDate, snap.Loc)
	to, _ := time.ParseInLocation(dateLayout, snap.ToDate, snap.Loc)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		key := d.Format(dateLayout)
		daily = append(daily, MedicationDay{Date: key, Count: byDay[key]})
	}

	rows := make([]MedicationNameRow, 0, len(byName))
	for name, acc := range byName {
		row := MedicationNameRow{Name: name, Count: acc.count, LastTakenAt: acc.last}
		if total > 0 {
			row.SharePct = 100.0 * float64(acc.count) / float64(total)
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Name < rows[j].Name
	})

	return &MedicationSummary{
		From:       snap.FromDate,
		To:         snap.ToDate,
		TotalTaken: total,
		Daily:      daily,
		ByName:     rows,
	}
}

// ---------- intake log CRUD ----------

type MedicationService struct{ db *gorm.DB }

func NewMedicationService(db *gorm.DB) *MedicationService { return &MedicationService{db: db} }

func (s *MedicationService) Add(ctx context.Context, userID uint, name, dosage string, takenAt time.Time, scheduled bool) (*models.Medication, error) {
	med := &models.Medication{
		UserID:    userID,
		Name:      name,
		Dosage:    dosage,
		TakenAt:   takenAt,
		Scheduled: scheduled,
	}
	if err := s.db.WithContext(ctx).Create(med).Error; err != nil {
		return nil, err
	}
	return med, nil
}

func (s *MedicationService) List(ctx context.Context, userID uint, limit int) ([]models.Medication, error) {
	if limit <= 0 {
		limit = 50
	}
	var meds []models.Medication
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("taken_at DESC").
		Limit(limit).
		Find(&meds).Error
	return meds, err
}

func (s *MedicationService) Delete(ctx context.Context, userID, medID uint) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", medID, userID).
		Delete(&models.Medication{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
