// Package impact turns volunteer hours into the headline numbers shown on
// the impact page.
package impact

import (
	"fmt"
	"math"
)

// Per-hour conversion rates.
const (
	MealsPerHour    = 10
	TrashKgPerHour  = 5
	StudentsPerHour = 3
	TreesPerHour    = 2

	laborRatePerHour = 33.49
)

type Summary struct {
	Hours           float64 `json:"hours"`
	MealsPrepared   int     `json:"mealsPrepared"`
	TrashCollected  int     `json:"trashCollectedKg"`
	StudentsTaught  int     `json:"studentsTaught"`
	TreesPlanted    int     `json:"treesPlanted"`
	PeopleHelped    string  `json:"peopleHelped"`
	LaborCostsSaved int     `json:"laborCostsSaved"`
	Percentile      string  `json:"percentile"`
}

func Calculate(hours float64) Summary {
	return Summary{
		Hours:           hours,
		MealsPrepared:   int(hours * MealsPerHour),
		TrashCollected:  int(hours * TrashKgPerHour),
		StudentsTaught:  int(hours * StudentsPerHour),
		TreesPlanted:    int(hours * TreesPerHour),
		PeopleHelped:    PeopleHelped(hours),
		LaborCostsSaved: int(math.Round(hours * laborRatePerHour)),
		Percentile:      Percentile(hours),
	}
}

// PeopleHelped gives the estimated range of people reached.
func PeopleHelped(hours float64) string {
	return fmt.Sprintf("%d to %d", int(math.Round(hours*5)), int(math.Round(hours*30)))
}

// Percentile buckets the volunteer by z-score against an assumed population
// of mean 50 hours, stddev 20.
func Percentile(hours float64) string {
	z := (hours - 50) / 20
	switch {
	case z < -1:
		return "Below 10"
	case z < 0:
		return "20"
	case z < 1:
		return "50"
	case z < 2:
		return "80"
	default:
		return "90+"
	}
}

// MedalTier maps total hours onto the profile medal.
func MedalTier(hours float64) string {
	switch {
	case hours >= 1000:
		return "1000+ Hours!"
	case hours >= 500:
		return "500+ Hours!"
	case hours >= 250:
		return "250+ Hours!"
	case hours >= 100:
		return "100+ Hours!"
	case hours >= 50:
		return "50+ Hours!"
	case hours >= 25:
		return "25+ Hours!"
	case hours >= 10:
		return "10+ Hours!"
	case hours >= 5:
		return "5+ Hours!"
	default:
		return "N/A"
	}
}
