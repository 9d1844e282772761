package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/katchinsky/reflux-tg-bot/models"
)

// DefaultBucketHours is the series bucket width when the caller does
// not pick one.
const DefaultBucketHours = 24

type SeriesBucket struct {
	BucketStart time.Time `json:"bucket_start"` // user-local
	BucketEnd   time.Time `json:"bucket_end"`
	Count       int       `json:"count"`
	// AvgIntensity is nil for an empty bucket. A zero here would be a
	// real zero-intensity average, which "no data" must not mimic.
	AvgIntensity *float64 `json:"avg_intensity"`
}

type TypeCount struct {
	Type         models.SymptomType `json:"type"`
	Count        int                `json:"count"`
	AvgIntensity float64            `json:"avg_intensity"`
}

type HistogramBand struct {
	Band  string `json:"band"`
	Count int    `json:"count"`
}

type SymptomSeries struct {
	From               string          `json:"from"`
	To                 string          `json:"to"`
	BucketHours        int             `json:"bucket_hours"`
	Daily              []SeriesBucket  `json:"daily"`
	ByType             []TypeCount     `json:"by_type"`
	IntensityHistogram []HistogramBand `json:"intensity_histogram"`
}

// Intensity bands are inclusive on both ends and partition 0-10, so
// every symptom lands in exactly one band.
var intensityBands = []struct {
	label  string
	lo, hi int
}{
	{"0-3", 0, 3},
	{"4-6", 4, 6},
	{"7-10", 7, 10},
}

// BuildSymptomSeries partitions the snapshot range into fixed-width
// buckets. Buckets are pure arithmetic offsets from the range start;
// there is no calendar snapping, so a 24h bucket across a DST change is
// still exactly 24 hours. typeFilter narrows the series to one symptom
// type; nil means all.
func BuildSymptomSeries(snap *Snapshot, bucketHours int, typeFilter *models.SymptomType) (*SymptomSeries, error) {
	if bucketHours <= 0 {
		return nil, fmt.Errorf("%w: bucket_hours must be positive, got %d", ErrInvalidConfiguration, bucketHours)
	}

	width := time.Duration(bucketHours) * time.Hour
	span := snap.End.Sub(snap.Start)
	nBuckets := int((span + width - 1) / width)

	syms := make([]models.Symptom, 0, len(snap.Symptoms))
	for _, sym := range snap.Symptoms {
		if typeFilter != nil && sym.SymptomType != *typeFilter {
			continue
		}
		// Drop anything past the range end (window pad from the load).
		if sym.StartedAt.Before(snap.Start) || !sym.StartedAt.Before(snap.End) {
			continue
		}
		syms = append(syms, sym)
	}

	sums := make([]int, nBuckets)
	counts := make([]int, nBuckets)
	for _, sym := range syms {
		i := int(sym.StartedAt.Sub(snap.Start) / width)
		counts[i]++
		sums[i] += sym.Intensity
	}

	daily := make([]SeriesBucket, nBuckets)
	for i := 0; i < nBuckets; i++ {
		bStart := snap.Start.Add(time.Duration(i) * width)
		b := SeriesBucket{
			BucketStart: bStart.In(snap.Loc),
			BucketEnd:   bStart.Add(width).In(snap.Loc),
			Count:       counts[i],
		}
		if counts[i] > 0 {
			avg := float64(sums[i]) / float64(counts[i])
			b.AvgIntensity = &avg
		}
		daily[i] = b
	}

	byType := typeDistribution(syms)

	hist := make([]HistogramBand, len(intensityBands))
	for i, band := range intensityBands {
		hist[i] = HistogramBand{Band: band.label}
	}
	for _, sym := range syms {
		for i, band := range intensityBands {
			if sym.Intensity >= band.lo && sym.Intensity <= band.hi {
				hist[i].Count++
				break
			}
		}
	}

	return &SymptomSeries{
		From:               snap.FromDate,
		To:                 snap.ToDate,
		BucketHours:        bucketHours,
		Daily:              daily,
		ByType:             byType,
		IntensityHistogram: hist,
	}, nil
}

// typeDistribution counts per observed symptom type, sorted by count
// descending with alphabetical tie-break for a stable order.
func typeDistribution(syms []models.Symptom) []TypeCount {
	counts := map[models.SymptomType]int{}
	sums := map[models.SymptomType]int{}
	for _, sym := range syms {
		counts[sym.SymptomType]++
		sums[sym.SymptomType] += sym.Intensity
	}
	out := make([]TypeCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, TypeCount{
			Type:         t,
			Count:        n,
			AvgIntensity: float64(sums[t]) / float64(n),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Type < out[j].Type
	})
	return out
}
