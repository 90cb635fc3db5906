package routes

import (
	"net/http"

	"github.com/careops/dietary-golang/internal/handlers"
	"github.com/careops/dietary-golang/internal/middleware"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware allows the local frontend dev server to talk to the API.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "http://localhost:5173")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		// Preflight OPTIONS requests get an empty 204.
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func SetupRouter(h *handlers.Handlers) *gin.Engine {
	router := gin.Default()

	// CORS must be the very first thing the router uses.
	router.Use(CORSMiddleware())

	v1 := router.Group("/v1")
	{
		// --- Ping Route (Public) ---
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- Auth Routes (Public) ---
		v1.POST("/login", h.Login)

		// --- Protected Routes (Login Required) ---
		auth := v1.Group("/")
		auth.Use(middleware.AuthMiddleware(h.DB))
		{
			auth.POST("/change-password", h.ChangePassword)

			// --- Dashboard ---
			auth.GET("/dashboard", h.GetDashboardStats)

			// --- Resident Routes ---
			auth.POST("/residents", h.CreateResident)
			auth.GET("/residents", h.GetResidents)
			auth.GET("/residents/:id", h.GetResident)
			auth.PUT("/residents/:id", h.UpdateResident)
			auth.DELETE("/residents/:id", h.DeleteResident)

			// --- Inventory Routes ---
			auth.POST("/inventory", h.CreateInventoryItem)
			auth.GET("/inventory", h.GetInventoryItems)
			auth.GET("/inventory/:id", h.GetInventoryItem)
			auth.PUT("/inventory/:id", h.UpdateInventoryItem)
			auth.POST("/inventory/:id/bump", h.BumpInventoryItem)
			auth.DELETE("/inventory/:id", h.DeleteInventoryItem)

			// --- Menu Catalog Routes ---
			// Authoring is capability-gated inside the handlers.
			auth.POST("/menus", h.CreateMenu)
			auth.GET("/menus", h.GetMenus)
			auth.GET("/menus/:id", h.GetMenu)
			auth.PUT("/menus/:id", h.UpdateMenu)
			auth.DELETE("/menus/:id", h.DeleteMenu)

			// --- Scheduling Routes ---
			auth.POST("/schedule", h.ScheduleMenus)
			auth.GET("/schedule/day", h.GetDaySchedule)
			auth.GET("/schedule/week", h.GetWeekSchedule)
			auth.DELETE("/schedule/:id", h.DeleteSchedule)
		}

		// --- Manager-Only Routes ---
		manager := v1.Group("/staff")
		manager.Use(middleware.AuthMiddleware(h.DB))
		manager.Use(middleware.ManagerMiddleware())
		{
			manager.POST("", h.CreateStaff)
			manager.GET("", h.GetStaff)
			manager.PUT("/:id", h.UpdateStaff)
			manager.DELETE("/:id", h.DeleteStaff)
		}
	}

	return router
}
