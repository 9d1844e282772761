package services

import (
	"context"
	"testing"
	"time"

	"github.com/katchinsky/reflux-tg-bot/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func medTaken(id uint, name string, at time.Time) models.Medication {
	m := models.Medication{UserID: 1, Name: name, TakenAt: at}
	m.ID = id
	return m
}

func TestBuildMedicationSummary(t *testing.T) {
	snap := testSnapshot(nil, nil)
	snap.Medications = []models.Medication{
		medTaken(1, "Omeprazole", testStart.Add(9*time.Hour)),
		medTaken(2, "Omeprazole", testStart.AddDate(0, 0, 1).Add(9*time.Hour)),
		medTaken(3, "Omeprazole", testStart.AddDate(0, 0, 2).Add(9*time.Hour)),
		medTaken(4, "Gaviscon", testStart.AddDate(0, 0, 1).Add(22*time.Hour)),
	}

	out := BuildMedicationSummary(snap)
	require.Equal(t, 4, out.TotalTaken)

	// filled daily series: one row per calendar day, inclusive
	require.Len(t, out.Daily, 10)
	require.Equal(t, "2025-03-01", out.Daily[0].Date)
	require.Equal(t, 1, out.Daily[0].Count)
	require.Equal(t, 2, out.Daily[1].Count)
	require.Equal(t, 0, out.Daily[3].Count)

	require.Len(t, out.ByName, 2)
	require.Equal(t, "Omeprazole", out.ByName[0].Name)
	require.Equal(t, 3, out.ByName[0].Count)
	require.InDelta(t, 75.0, out.ByName[0].SharePct, 1e-9)
	require.Equal(t, testStart.AddDate(0, 0, 2).Add(9*time.Hour), out.ByName[0].LastTakenAt.UTC())
	require.Equal(t, "Gaviscon", out.ByName[1].Name)
}

func TestBuildMedicationSummaryUnnamed(t *testing.T) {
	snap := testSnapshot(nil, nil)
	snap.Medications = []models.Medication{medTaken(1, "", testStart.Add(time.Hour))}
	out := BuildMedicationSummary(snap)
	require.Equal(t, "Unknown", out.ByName[0].Name)
	require.InDelta(t, 100.0, out.ByName[0].SharePct, 1e-9)
}

func TestMedicationCRUDIsUserScoped(t *testing.T) {
	db := openTestDB(t)
	userID := seedUser(t, db, 100, "UTC")
	otherID := seedUser(t, db, 200, "UTC")
	svc := NewMedicationService(db)
	ctx := context.Background()

	med, err := svc.Add(ctx, userID, "Omeprazole", "20mg", time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC), false)
	require.NoError(t, err)

	meds, err := svc.List(ctx, userID, 0)
	require.NoError(t, err)
	require.Len(t, meds, 1)

	// another user cannot see or delete it
	meds, err = svc.List(ctx, otherID, 0)
	require.NoError(t, err)
	require.Empty(t, meds)
	require.ErrorIs(t, svc.Delete(ctx, otherID, med.ID), gorm.ErrRecordNotFound)

	require.NoError(t, svc.Delete(ctx, userID, med.ID))
}
