package models

import "fmt"

// Closed enum fields. Free-form input never enters statistical buckets:
// the Parse helpers map "" to the explicit Unknown member and reject
// anything else they don't recognise.

type PortionSize string

const (
	PortionSmall   PortionSize = "small"
	PortionMedium  PortionSize = "medium"
	PortionLarge   PortionSize = "large"
	PortionUnknown PortionSize = "unknown"
)

func ParsePortionSize(s string) (PortionSize, error) {
	switch PortionSize(s) {
	case PortionSmall, PortionMedium, PortionLarge, PortionUnknown:
		return PortionSize(s), nil
	case "":
		return PortionUnknown, nil
	}
	return "", fmt.Errorf("invalid portion_size %q", s)
}

type FatLevel string

const (
	FatLow     FatLevel = "low"
	FatMedium  FatLevel = "medium"
	FatHigh    FatLevel = "high"
	FatUnknown FatLevel = "unknown"
)

func ParseFatLevel(s string) (FatLevel, error) {
	switch FatLevel(s) {
	case FatLow, FatMedium, FatHigh, FatUnknown:
		return FatLevel(s), nil
	case "":
		return FatUnknown, nil
	}
	return "", fmt.Errorf("invalid fat_level %q", s)
}

type Posture string

const (
	PostureLaying   Posture = "laying"
	PostureSitting  Posture = "sitting"
	PostureWalking  Posture = "walking"
	PostureStanding Posture = "standing"
	PostureUnknown  Posture = "unknown"
)

func ParsePosture(s string) (Posture, error) {
	switch Posture(s) {
	case PostureLaying, PostureSitting, PostureWalking, PostureStanding, PostureUnknown:
		return Posture(s), nil
	case "":
		return PostureUnknown, nil
	}
	return "", fmt.Errorf("invalid posture_after %q", s)
}

type SymptomType string

const (
	SymptomHeartburn       SymptomType = "heartburn"
	SymptomRegurgitation   SymptomType = "regurgitation"
	SymptomNausea          SymptomType = "nausea"
	SymptomReflux          SymptomType = "reflux"
	SymptomCoughHoarseness SymptomType = "cough_hoarseness"
	SymptomChestDiscomfort SymptomType = "chest_discomfort"
	SymptomThroatBurn      SymptomType = "throat_burn"
	SymptomBloating        SymptomType = "bloating"
	SymptomStomachPain     SymptomType = "stomach_pain"
	SymptomOther           SymptomType = "other"
)

func ParseSymptomType(s string) (SymptomType, error) {
	switch SymptomType(s) {
	case SymptomHeartburn, SymptomRegurgitation, SymptomNausea, SymptomReflux,
		SymptomCoughHoarseness, SymptomChestDiscomfort, SymptomThroatBurn,
		SymptomBloating, SymptomStomachPain, SymptomOther:
		return SymptomType(s), nil
	case "":
		return SymptomOther, nil
	}
	return "", fmt.Errorf("invalid symptom_type %q", s)
}

const (
	IntensityMin = 0
	IntensityMax = 10
)

// ValidIntensity reports whether a 0-10 intensity is in range.
func ValidIntensity(v int) bool { return v >= IntensityMin && v <= IntensityMax }
