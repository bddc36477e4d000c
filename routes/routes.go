package routes

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"guesthouse-frontend/controllers"
	"guesthouse-frontend/middleware"
	"guesthouse-frontend/services"
)

func parseCorsOrigins() []string {
	raw := strings.TrimSpace(os.Getenv("CORS_ORIGINS"))
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func SetupRouter(
	ac *controllers.AuthController,
	rc *controllers.RoomController,
	bc *controllers.BookingController,
	publicClient *services.APIClient,
	logger *zap.Logger,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Session())

	origins := parseCorsOrigins()
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		backend := "down"
		if publicClient.CheckHealth(c.Request.Context()) {
			backend = "up"
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "backend": backend})
	})

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", ac.Login)
			auth.POST("/register", ac.Register)
			auth.POST("/logout", ac.Logout)
			auth.GET("/me", ac.Me)
			auth.PUT("/profile", ac.UpdateProfile)
		}

		view := api.Group("/view")
		{
			view.GET("/rooms", rc.GetRooms)
			view.POST("/select", bc.SelectRoom)
			view.POST("/book", bc.SubmitBooking)
			view.POST("/cancel", bc.CancelFlow)
			view.GET("/flow", bc.FlowState)
		}

		api.GET("/bookings", bc.MyBookings)
		api.GET("/bookings/:id", bc.MyBooking)
	}

	return r
}
