package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/habitgrid/habitgrid-backend/db"
	"github.com/habitgrid/habitgrid-backend/models"
	"github.com/habitgrid/habitgrid-backend/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type credentialsInput struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Register creates a user with a bcrypt-hashed password. The raw password is
// never persisted. Duplicate names 409 both on the pre-check and on the
// unique-index violation, so two concurrent registrations still resolve to
// one winner.
func Register(c *gin.Context) {
	var input credentialsInput
	if err := c.BindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" || input.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name and password required"})
		return
	}

	var existing models.User
	if err := db.DB.Where("name = ?", input.Name).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Username already exists"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Logger.Error("register_lookup_failed", zap.Error(err))
		utils.ErrorCount.WithLabelValues("register", "db").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		utils.Logger.Error("password_hash_failed", zap.Error(err))
		utils.ErrorCount.WithLabelValues("register", "hash").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	user := models.User{Name: input.Name, PasswordHash: hash}
	if err := db.DB.Create(&user).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") ||
			strings.Contains(err.Error(), "UNIQUE constraint failed") {
			c.JSON(http.StatusConflict, gin.H{"error": "Username already exists"})
			return
		}
		utils.Logger.Error("register_create_failed", zap.Error(err))
		utils.ErrorCount.WithLabelValues("register", "db").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	token, _ := utils.GenerateToken(user.ID, user.Name)

	utils.Logger.Info("user_registered", zap.Uint("user_id", user.ID))
	c.JSON(http.StatusCreated, gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"token": token,
	})
}

// Login verifies credentials. Unknown name and wrong password return the same
// response so the failure mode does not leak which one it was.
func Login(c *gin.Context) {
	var input credentialsInput
	if err := c.BindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}

	if input.Name == "" || input.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name and password required"})
		return
	}

	var user models.User
	if err := db.DB.Where("name = ?", input.Name).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Logger.Error("login_lookup_failed", zap.Error(err))
			utils.ErrorCount.WithLabelValues("login", "db").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
			return
		}
		utils.Logger.Warn("login_failed", zap.String("name", input.Name))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !utils.CheckPasswordHash(input.Password, user.PasswordHash) {
		utils.Logger.Warn("login_failed", zap.String("name", input.Name))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, _ := utils.GenerateToken(user.ID, user.Name)

	utils.Logger.Info("user_logged_in", zap.Uint("user_id", user.ID))
	c.JSON(http.StatusOK, gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"token": token,
	})
}
