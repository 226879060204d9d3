package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/habitgrid/habitgrid-backend/cache"
	"github.com/habitgrid/habitgrid-backend/db"
	"github.com/habitgrid/habitgrid-backend/models"
	"github.com/habitgrid/habitgrid-backend/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Error taxonomy. Handlers map these to 400 / 409 / 404; anything else is an
// opaque 500.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
)

func CreateHabit(userID uint, title string) (*models.Habit, error) {
	title = strings.TrimSpace(title)
	if userID == 0 || title == "" {
		return nil, fmt.Errorf("%w: user id and title required", ErrValidation)
	}

	habit := models.Habit{UserID: userID, Title: title}
	if err := db.DB.Create(&habit).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: habit %q already exists", ErrConflict, title)
		}
		return nil, err
	}

	invalidateHabitCache(userID)
	return &habit, nil
}

func RenameHabit(habitID uint, title string) (*models.Habit, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title required", ErrValidation)
	}

	habit, err := findHabit(habitID)
	if err != nil {
		return nil, err
	}

	habit.Title = title
	if err := db.DB.Save(habit).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: habit %q already exists", ErrConflict, title)
		}
		return nil, err
	}

	invalidateHabitCache(habit.UserID)
	return habit, nil
}

// DeleteHabit removes the habit; log rows go with it. The FK is declared ON
// DELETE CASCADE, but the logs are also deleted explicitly so the operation
// does not depend on migrations having created the constraint.
func DeleteHabit(habitID uint) error {
	habit, err := findHabit(habitID)
	if err != nil {
		return err
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("habit_id = ?", habitID).Delete(&models.HabitLog{}).Error; err != nil {
			return err
		}
		return tx.Delete(habit).Error
	})
	if err != nil {
		return err
	}

	invalidateHabitCache(habit.UserID)
	return nil
}

// ListHabits is the single bulk read the client relies on: every habit of the
// user, ordered by id, each carrying the dates where completed = true.
func ListHabits(userID uint) ([]models.HabitWithDates, error) {
	var habits []models.Habit
	err := db.DB.
		Preload("Logs", func(tx *gorm.DB) *gorm.DB {
			return tx.Where("completed = ?", true).Order("log_date ASC")
		}).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&habits).Error
	if err != nil {
		return nil, err
	}

	out := make([]models.HabitWithDates, 0, len(habits))
	for _, h := range habits {
		dates := make([]string, 0, len(h.Logs))
		for _, l := range h.Logs {
			dates = append(dates, l.LogDate)
		}
		out = append(out, models.HabitWithDates{
			ID:             h.ID,
			Title:          h.Title,
			CompletedDates: dates,
		})
	}
	return out, nil
}

// ToggleLog flips the completion flag for (habit, date) and returns the new
// value. First mark for a date means completion. The insert-or-flip runs as
// one statement so concurrent toggles on the same key cannot interleave
// between a read and a write.
func ToggleLog(habitID uint, date string) (bool, error) {
	habit, err := findHabit(habitID)
	if err != nil {
		return false, err
	}

	var completed bool
	err = db.DB.Raw(`
		INSERT INTO habit_logs (habit_id, log_date, completed)
		VALUES (?, ?, ?)
		ON CONFLICT (habit_id, log_date)
		DO UPDATE SET completed = NOT habit_logs.completed
		RETURNING completed`,
		habitID, date, true,
	).Scan(&completed).Error
	if err != nil {
		return false, err
	}

	utils.ToggleCount.WithLabelValues(fmt.Sprintf("%t", completed)).Inc()
	invalidateHabitCache(habit.UserID)
	return completed, nil
}

// OwnerID resolves which user a habit belongs to.
func OwnerID(habitID uint) (uint, error) {
	habit, err := findHabit(habitID)
	if err != nil {
		return 0, err
	}
	return habit.UserID, nil
}

func findHabit(habitID uint) (*models.Habit, error) {
	var habit models.Habit
	if err := db.DB.First(&habit, habitID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: habit %d", ErrNotFound, habitID)
		}
		return nil, err
	}
	return &habit, nil
}

// isUniqueViolation matches both the postgres driver and the sqlite driver
// used in tests; neither surfaces a portable typed error through gorm.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

func invalidateHabitCache(userID uint) {
	if !cache.Enabled() {
		return
	}
	if err := cache.DeletePattern(fmt.Sprintf("habits:%d:*", userID)); err != nil {
		utils.Logger.Warn("habit_cache_invalidate_failed",
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
	}
}
