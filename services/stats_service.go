package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/habitgrid/habitgrid-backend/cache"
	"github.com/habitgrid/habitgrid-backend/models"
	"github.com/habitgrid/habitgrid-backend/stats"
	"github.com/habitgrid/habitgrid-backend/utils"
	"go.uber.org/zap"
)

type HabitMonthStats struct {
	HabitID uint   `json:"habit_id"`
	Title   string `json:"title"`
	stats.HabitStats
}

type MonthlyStats struct {
	UserID  uint               `json:"user_id"`
	Month   string             `json:"month"`
	Habits  []HabitMonthStats  `json:"habits"`
	Overall stats.OverallStats `json:"overall"`
	Bars    []stats.BarPoint   `json:"bar_series"`
}

const statsCacheTTL = 5 * time.Minute

// MonthlyStatsForUser computes the month's stats server-side. Per-habit
// figures are independent of each other, so one goroutine per habit computes
// them and a channel collects the results. The aggregate is cached under the
// same "habits:<user>" prefix the mutations invalidate.
func MonthlyStatsForUser(userID uint, month string) (*MonthlyStats, error) {
	monthDates, err := stats.MonthDates(month)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	cacheKey := fmt.Sprintf("habits:%d:stats:%s", userID, month)
	var cached MonthlyStats
	if err := cache.Get(cacheKey, &cached); err == nil {
		utils.Logger.Debug("stats_cache_hit", zap.String("key", cacheKey))
		return &cached, nil
	}

	habits, err := ListHabits(userID)
	if err != nil {
		return nil, err
	}

	result := &MonthlyStats{
		UserID: userID,
		Month:  month,
		Habits: make([]HabitMonthStats, 0, len(habits)),
	}

	statsChan := make(chan HabitMonthStats, len(habits))
	var wg sync.WaitGroup

	for _, habit := range habits {
		wg.Add(1)
		go func(h models.HabitWithDates) {
			defer wg.Done()
			statsChan <- HabitMonthStats{
				HabitID:    h.ID,
				Title:      h.Title,
				HabitStats: stats.ForHabit(h.CompletedDates, monthDates),
			}
		}(habit)
	}

	go func() {
		wg.Wait()
		close(statsChan)
	}()

	byID := make(map[uint]HabitMonthStats, len(habits))
	for s := range statsChan {
		byID[s.HabitID] = s
	}
	for _, h := range habits {
		result.Habits = append(result.Habits, byID[h.ID])
	}

	result.Overall = stats.Overall(habits, monthDates)
	result.Bars = stats.BarSeries(habits, monthDates)

	if err := cache.Set(cacheKey, result, statsCacheTTL); err == nil {
		utils.Logger.Debug("stats_cache_set", zap.String("key", cacheKey))
	}

	return result, nil
}
