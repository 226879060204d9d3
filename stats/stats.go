// Package stats derives monthly completion statistics from a habit list and
// its completed-date sets. Everything here is a pure function of its inputs:
// the figures are cheap to recompute (O(habits × days)), so there is no
// caching and no mutable state.
package stats

import (
	"fmt"
	"math"
	"time"

	"github.com/habitgrid/habitgrid-backend/models"
)

// MonthDate is one calendar day of the selected month.
type MonthDate struct {
	Day      string `json:"day"`       // short weekday name, e.g. "Mon"
	Date     int    `json:"date"`      // day of month, 1-based
	FullDate string `json:"full_date"` // YYYY-MM-DD
}

type HabitStats struct {
	Checked    int `json:"checked"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// OverallStats classifies each day of the month by the fraction of habits
// completed on it. A day between 0% and 50% lands in no bucket; that matches
// the shipped client and keeps server and client totals in agreement.
type OverallStats struct {
	PerfectDays int `json:"perfectDays"`
	HalfDays    int `json:"halfDays"`
	ZeroDays    int `json:"zeroDays"`
}

// BarPoint is one bar-chart row: completed vs remaining days for a habit.
type BarPoint struct {
	Name      string `json:"name"`
	Completed int    `json:"completed"`
	Remaining int    `json:"remaining"`
}

// PiePoint is one pie-chart slice for a single habit's month.
type PiePoint struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// MonthDates expands a "YYYY-MM" selector into the ordered days of that month.
func MonthDates(yearMonth string) ([]MonthDate, error) {
	start, err := time.Parse("2006-01", yearMonth)
	if err != nil {
		return nil, fmt.Errorf("invalid month %q: %w", yearMonth, err)
	}

	year, month := start.Year(), start.Month()
	daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()

	dates := make([]MonthDate, 0, daysInMonth)
	for day := 1; day <= daysInMonth; day++ {
		date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		dates = append(dates, MonthDate{
			Day:      date.Weekday().String()[:3],
			Date:     day,
			FullDate: date.Format("2006-01-02"),
		})
	}
	return dates, nil
}

// ForHabit counts how many of the habit's completed dates fall inside the
// month. Percentage is rounded to the nearest integer and 0 for an empty
// month. Checked never exceeds Total.
func ForHabit(completedDates []string, monthDates []MonthDate) HabitStats {
	total := len(monthDates)
	if total == 0 {
		return HabitStats{}
	}

	inMonth := make(map[string]bool, total)
	for _, d := range monthDates {
		inMonth[d.FullDate] = true
	}

	seen := make(map[string]bool, len(completedDates))
	checked := 0
	for _, d := range completedDates {
		if inMonth[d] && !seen[d] {
			seen[d] = true
			checked++
		}
	}

	return HabitStats{
		Checked:    checked,
		Total:      total,
		Percentage: int(math.Round(float64(checked) / float64(total) * 100)),
	}
}

// Overall buckets each day of the month into perfect (100%), half (>=50%) or
// zero (0%) based on how many habits were completed that day. With no habits
// no day is classified.
func Overall(habits []models.HabitWithDates, monthDates []MonthDate) OverallStats {
	var out OverallStats
	if len(habits) == 0 {
		return out
	}

	completed := make([]map[string]bool, len(habits))
	for i, h := range habits {
		completed[i] = make(map[string]bool, len(h.CompletedDates))
		for _, d := range h.CompletedDates {
			completed[i][d] = true
		}
	}

	for _, d := range monthDates {
		count := 0
		for i := range habits {
			if completed[i][d.FullDate] {
				count++
			}
		}

		percentage := float64(count) / float64(len(habits)) * 100
		switch {
		case percentage == 100:
			out.PerfectDays++
		case percentage >= 50:
			out.HalfDays++
		case percentage == 0:
			out.ZeroDays++
		}
	}

	return out
}

// BarSeries projects the habit list into the completed/remaining bar chart.
func BarSeries(habits []models.HabitWithDates, monthDates []MonthDate) []BarPoint {
	points := make([]BarPoint, 0, len(habits))
	for _, h := range habits {
		s := ForHabit(h.CompletedDates, monthDates)
		points = append(points, BarPoint{
			Name:      truncateTitle(h.Title, 20),
			Completed: s.Checked,
			Remaining: s.Total - s.Checked,
		})
	}
	return points
}

// PieSeries projects a single habit's month into completed/remaining slices.
func PieSeries(habit models.HabitWithDates, monthDates []MonthDate) []PiePoint {
	s := ForHabit(habit.CompletedDates, monthDates)
	return []PiePoint{
		{Name: "Completed", Value: s.Checked},
		{Name: "Remaining", Value: s.Total - s.Checked},
	}
}

func truncateTitle(title string, limit int) string {
	runes := []rune(title)
	if len(runes) <= limit {
		return title
	}
	return string(runes[:limit]) + "..."
}
