package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/habitgrid/habitgrid-backend/middleware"
	"github.com/habitgrid/habitgrid-backend/services"
	"github.com/habitgrid/habitgrid-backend/utils"
	"go.uber.org/zap"
)

type createHabitInput struct {
	UserID uint   `json:"userId"`
	Title  string `json:"title"`
}

type renameHabitInput struct {
	Title string `json:"title"`
}

type toggleLogInput struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

func GetHabits(c *gin.Context) {
	userIDStr := c.Query("userId")
	if userIDStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID required"})
		return
	}

	userID, err := strconv.ParseUint(userIDStr, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID required"})
		return
	}

	habits, err := services.ListHabits(uint(userID))
	if err != nil {
		serverError(c, "get_habits", err)
		return
	}

	c.JSON(http.StatusOK, habits)
}

func CreateHabit(c *gin.Context) {
	var input createHabitInput
	if err := c.BindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}

	if input.UserID == 0 || input.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID and title required"})
		return
	}

	if user, ok := middleware.CurrentUser(c); ok && user.ID != input.UserID {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not your habit list"})
		return
	}

	habit, err := services.CreateHabit(input.UserID, input.Title)
	if err != nil {
		respondServiceError(c, "create_habit", err)
		return
	}

	utils.Logger.Info("habit_created",
		zap.Uint("habit_id", habit.ID),
		zap.Uint("user_id", habit.UserID),
	)
	c.JSON(http.StatusCreated, habit)
}

func UpdateHabit(c *gin.Context) {
	habitID, ok := habitIDParam(c)
	if !ok {
		return
	}

	var input renameHabitInput
	if err := c.BindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}

	if !authorizedForHabit(c, habitID) {
		return
	}

	habit, err := services.RenameHabit(habitID, input.Title)
	if err != nil {
		respondServiceError(c, "update_habit", err)
		return
	}

	c.JSON(http.StatusOK, habit)
}

func DeleteHabit(c *gin.Context) {
	habitID, ok := habitIDParam(c)
	if !ok {
		return
	}

	if !authorizedForHabit(c, habitID) {
		return
	}

	if err := services.DeleteHabit(habitID); err != nil {
		respondServiceError(c, "delete_habit", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Habit deleted"})
}

// LogHabit toggles completion for one calendar day. The submitted date string
// is echoed back unmodified.
func LogHabit(c *gin.Context) {
	habitID, ok := habitIDParam(c)
	if !ok {
		return
	}

	var input toggleLogInput
	if err := c.BindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}

	if input.Date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Date is required"})
		return
	}

	if err := middleware.ValidateStruct(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Date must be YYYY-MM-DD"})
		return
	}

	if !authorizedForHabit(c, habitID) {
		return
	}

	completed, err := services.ToggleLog(habitID, input.Date)
	if err != nil {
		respondServiceError(c, "log_habit", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":      input.Date,
		"completed": completed,
	})
}

// GetHabitStats serves the server-side monthly aggregation. Additive: the
// client's own derivation over GET /habits remains the primary path.
func GetHabitStats(c *gin.Context) {
	userIDStr := c.Query("userId")
	if userIDStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID required"})
		return
	}

	userID, err := strconv.ParseUint(userIDStr, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID required"})
		return
	}

	month := c.Query("month")
	if month == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Month is required"})
		return
	}

	result, err := services.MonthlyStatsForUser(uint(userID), month)
	if err != nil {
		respondServiceError(c, "habit_stats", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func habitIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid habit ID"})
		return 0, false
	}
	return uint(id), true
}

// authorizedForHabit enforces ownership only when the request authenticated.
// Tokenless requests keep the reference behavior of trusting the habit id.
func authorizedForHabit(c *gin.Context, habitID uint) bool {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return true
	}

	ownerID, err := services.OwnerID(habitID)
	if err != nil {
		respondServiceError(c, "habit_owner", err)
		return false
	}

	if ownerID != user.ID {
		utils.Logger.Warn("habit_ownership_denied",
			zap.Uint("habit_id", habitID),
			zap.Uint("user_id", user.ID),
		)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not your habit"})
		return false
	}
	return true
}

// respondServiceError maps the service taxonomy onto HTTP statuses.
func respondServiceError(c *gin.Context, handler string, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Habit not found"})
	default:
		serverError(c, handler, err)
	}
}

func serverError(c *gin.Context, handler string, err error) {
	utils.Logger.Error(handler+"_failed", zap.Error(err))
	utils.ErrorCount.WithLabelValues(handler, "db").Inc()
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
}
