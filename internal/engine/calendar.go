package engine

import "fmt"

// DaysPerSeason and SeasonsPerYear lay out the city's calendar.
const (
	DaysPerSeason  = 30
	SeasonsPerYear = 4
)

var seasonNames = [SeasonsPerYear]string{"Spring", "Summer", "Autumn", "Winter"}

// Season returns the season index for a 1-based day.
func Season(day int) int {
	if day < 1 {
		day = 1
	}
	return ((day - 1) / DaysPerSeason) % SeasonsPerYear
}

// Calendar returns a human-readable date for a 1-based day counter.
func Calendar(day int) string {
	if day < 1 {
		day = 1
	}
	total := day - 1
	d := total%DaysPerSeason + 1
	seasons := total / DaysPerSeason
	year := seasons/SeasonsPerYear + 1
	return fmt.Sprintf("%s Day %d, Year %d", seasonNames[seasons%SeasonsPerYear], d, year)
}
