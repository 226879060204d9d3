// Package testutil bootstraps an in-memory database and router for handler
// and service tests. Production runs postgres; tests run the pure-Go sqlite
// driver against the same gorm models and the same SQL.
package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/habitgrid/habitgrid-backend/db"
	"github.com/habitgrid/habitgrid-backend/models"
	"github.com/habitgrid/habitgrid-backend/router"
	"github.com/habitgrid/habitgrid-backend/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbCounter int64

// SetupTestDB points the global connection at a fresh in-memory database and
// migrates the schema. Each call gets an isolated database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	if utils.Logger == nil {
		utils.Logger = zap.NewNop()
	}

	name := fmt.Sprintf("file:habitgrid_test_%d?mode=memory&cache=shared", atomic.AddInt64(&dbCounter, 1))
	gdb, err := gorm.Open(sqlite.Open(name), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&models.User{}, &models.Habit{}, &models.HabitLog{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	db.DB = gdb
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return gdb
}

// NewRouter builds the full engine in test mode.
func NewRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return router.New()
}

// DoJSON issues a request with an optional JSON body and records the response.
func DoJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// DecodeBody unmarshals a recorded JSON response into dest.
func DecodeBody(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dest); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
}

// CreateUser inserts a user directly, bypassing the register endpoint.
func CreateUser(t *testing.T, name string) models.User {
	t.Helper()

	hash, err := utils.HashPassword("password123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := models.User{Name: name, PasswordHash: hash}
	if err := db.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %q: %v", name, err)
	}
	return user
}

// CreateHabit inserts a habit row directly.
func CreateHabit(t *testing.T, userID uint, title string) models.Habit {
	t.Helper()

	habit := models.Habit{UserID: userID, Title: title}
	if err := db.DB.Create(&habit).Error; err != nil {
		t.Fatalf("failed to create habit %q: %v", title, err)
	}
	return habit
}
