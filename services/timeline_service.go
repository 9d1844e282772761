package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/katchinsky/reflux-tg-bot/models"

	"gorm.io/gorm"
)

// MaxRangeDays caps the inclusive span of a query. Anything longer is a
// caller mistake, not a bigger report.
const MaxRangeDays = 366

const dateLayout = "2006-01-02"

// Snapshot is a read-only view of one user's events for one query.
// All sequences are sorted ascending by their defining timestamp and
// were loaded with a user_id filter, so events never mix across users.
type Snapshot struct {
	UserID   uint
	FromDate string // inclusive calendar date, user-local
	ToDate   string
	Loc      *time.Location
	Start    time.Time // absolute instant of local midnight at FromDate
	End      time.Time // exclusive: local midnight after ToDate

	Meals       []models.Meal
	Symptoms    []models.Symptom // may extend past End by the requested pad
	Medications []models.Medication
}

type TimelineService struct{ db *gorm.DB }

func NewTimelineService(db *gorm.DB) *TimelineService { return &TimelineService{db: db} }

// LoadSnapshot resolves the inclusive [from, to] calendar range in the
// user's timezone to absolute instants and loads the three event
// sequences. symptomPad extends only the symptom load past the range
// end, so a window query can see symptoms that follow the last meals.
//
// Dates are resolved at local midnight boundaries; all later windowing
// arithmetic runs on the absolute instants, so DST shifts inside the
// range cannot move events between buckets.
func (s *TimelineService) LoadSnapshot(
	ctx context.Context, userID uint, from, to string, symptomPad time.Duration,
) (*Snapshot, error) {

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("%w: load user %d: %v", ErrUpstreamLoad, userID, err)
	}

	loc, err := userLocation(user.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: user %d timezone %q: %v", ErrUpstreamLoad, userID, user.Timezone, err)
	}

	dFrom, err := time.ParseInLocation(dateLayout, from, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: bad from date %q", ErrInvalidRange, from)
	}
	dTo, err := time.ParseInLocation(dateLayout, to, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: bad to date %q", ErrInvalidRange, to)
	}
	if dTo.Before(dFrom) {
		return nil, fmt.Errorf("%w: from %s after to %s", ErrInvalidRange, from, to)
	}
	if dTo.After(dFrom.AddDate(0, 0, MaxRangeDays-1)) {
		return nil, fmt.Errorf("%w: span exceeds %d days", ErrInvalidRange, MaxRangeDays)
	}

	start := dFrom
	end := dTo.AddDate(0, 0, 1) // exclusive upper bound

	snap := &Snapshot{
		UserID:   userID,
		FromDate: from,
		ToDate:   to,
		Loc:      loc,
		Start:    start.UTC(),
		End:      end.UTC(),
	}

	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND occurred_at >= ? AND occurred_at < ?", userID, snap.Start, snap.End).
		Order("occurred_at ASC").
		Find(&snap.Meals).Error; err != nil {
		return nil, fmt.Errorf("%w: meals: %v", ErrUpstreamLoad, err)
	}

	symEnd := snap.End.Add(symptomPad)
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND started_at >= ? AND started_at < ?", userID, snap.Start, symEnd).
		Order("started_at ASC").
		Find(&snap.Symptoms).Error; err != nil {
		return nil, fmt.Errorf("%w: symptoms: %v", ErrUpstreamLoad, err)
	}
	for _, sym := range snap.Symptoms {
		if !models.ValidIntensity(sym.Intensity) {
			return nil, fmt.Errorf("%w: symptom %d has intensity %d outside 0-10", ErrUpstreamLoad, sym.ID, sym.Intensity)
		}
	}

	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND taken_at >= ? AND taken_at < ?", userID, snap.Start, snap.End).
		Order("taken_at ASC").
		Find(&snap.Medications).Error; err != nil {
		return nil, fmt.Errorf("%w: medications: %v", ErrUpstreamLoad, err)
	}

	return snap, nil
}

func userLocation(tz string) (*time.Location, error) {
	if tz == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(tz)
}

// ---------- merged chronological view ----------

type TimelineEvent struct {
	Kind string    `json:"kind"` // meal|symptom|medication
	At   time.Time `json:"at"`   // user-local

	MealID   uint               `json:"meal_id,omitempty"`
	Notes    string             `json:"notes,omitempty"`
	Portion  models.PortionSize `json:"portion,omitempty"`
	Fat      models.FatLevel    `json:"fat,omitempty"`
	Posture  models.Posture     `json:"posture,omitempty"`

	SymptomID       uint               `json:"symptom_id,omitempty"`
	SymptomType     models.SymptomType `json:"type,omitempty"`
	Intensity       *int               `json:"intensity,omitempty"`
	DurationMinutes *int               `json:"duration_minutes,omitempty"`

	MedicationID uint   `json:"medication_id,omitempty"`
	Name         string `json:"name,omitempty"`
	Dosage       string `json:"dosage,omitempty"`
}

// Events flattens the snapshot into one ascending event stream, with
// timestamps rendered in the user's timezone. Symptoms past the range
// end (window pad) are excluded.
func Events(snap *Snapshot) []TimelineEvent {
	out := make([]TimelineEvent, 0, len(snap.Meals)+len(snap.Symptoms)+len(snap.Medications))
	for _, m := range snap.Meals {
		out = append(out, TimelineEvent{
			Kind:    "meal",
			At:      m.OccurredAt.In(snap.Loc),
			MealID:  m.ID,
			Notes:   m.Notes,
			Portion: m.PortionSize,
			Fat:     m.FatLevel,
			Posture: m.PostureAfter,
		})
	}
	for _, sym := range snap.Symptoms {
		if !sym.StartedAt.Before(snap.End) {
			continue
		}
		intensity := sym.Intensity
		out = append(out, TimelineEvent{
			Kind:            "symptom",
			At:              sym.StartedAt.In(snap.Loc),
			SymptomID:       sym.ID,
			SymptomType:     sym.SymptomType,
			Intensity:       &intensity,
			DurationMinutes: sym.DurationMinutes,
		})
	}
	for _, med := range snap.Medications {
		out = append(out, TimelineEvent{
			Kind:         "medication",
			At:           med.TakenAt.In(snap.Loc),
			MedicationID: med.ID,
			Name:         med.Name,
			Dosage:       med.Dosage,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out
}
