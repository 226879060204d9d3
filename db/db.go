package db

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/habitgrid/habitgrid-backend/utils"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect opens the postgres pool, retrying while the database comes up
// (docker-compose starts the API and postgres together).
func Connect() {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_NAME", "habitgrid_db"),
		getEnv("DB_SSLMODE", "disable"),
	)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	maxRetries := 10
	var err error

	for i := 0; i < maxRetries; i++ {
		DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: gormLogger,
			NowFunc: func() time.Time {
				return time.Now().UTC()
			},
			PrepareStmt: true,
		})

		if err == nil {
			sqlDB, dbErr := DB.DB()
			if dbErr == nil && sqlDB.Ping() == nil {
				sqlDB.SetMaxIdleConns(getEnvInt("DB_MAX_IDLE_CONNS", 10))
				sqlDB.SetMaxOpenConns(getEnvInt("DB_MAX_OPEN_CONNS", 50))
				sqlDB.SetConnMaxLifetime(time.Hour)

				utils.Logger.Info("database_connected")
				return
			}
		}

		utils.Logger.Warn("database_not_ready",
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", maxRetries),
		)
		time.Sleep(2 * time.Second)
	}

	utils.Logger.Fatal("database_connect_failed", zap.Error(err))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
