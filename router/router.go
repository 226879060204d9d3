package router

import (
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/habitgrid/habitgrid-backend/handlers"
	"github.com/habitgrid/habitgrid-backend/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// New assembles the engine with the full middleware chain and route table.
func New() *gin.Engine {
	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.SecurityHeaders())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Cache"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", handlers.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := r.Group("/auth")
	auth.Use(middleware.RateLimit(20, time.Minute))
	{
		auth.POST("/register", handlers.Register)
		auth.POST("/login", handlers.Login)
	}

	habits := r.Group("/habits")
	habits.Use(middleware.OptionalAuth())
	{
		habits.GET("", middleware.CacheHabits(30*time.Second), handlers.GetHabits)
		habits.POST("", handlers.CreateHabit)
		habits.PUT("/:id", handlers.UpdateHabit)
		habits.DELETE("/:id", handlers.DeleteHabit)
		habits.POST("/:id/log", handlers.LogHabit)
		habits.GET("/stats", handlers.GetHabitStats)
	}

	return r
}

func allowedOrigins() []string {
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		return strings.Split(origins, ",")
	}
	return []string{"http://localhost:3000", "http://localhost:5173"}
}
