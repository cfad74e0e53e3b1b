package router

import (
	"github.com/Devesh-Pathak7/Splite-Eat/controllers"
	"github.com/Devesh-Pathak7/Splite-Eat/middlewares"
	"github.com/Devesh-Pathak7/Splite-Eat/realtime"
	"github.com/Devesh-Pathak7/Splite-Eat/services"
	"github.com/Devesh-Pathak7/Splite-Eat/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter wires the coordinator, its collaborators and the HTTP
// surface. The half-order endpoints are public (customers have no
// accounts); cancel and checkout accept an optional staff token.
func SetupRouter(db *gorm.DB, coordinator *services.HalfOrderService, clock utils.Clock, hub *realtime.Hub) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	orders := services.NewOrderService(db, coordinator, clock, hub)

	userCtrl := controllers.NewUserController(db)
	menuCtrl := controllers.NewMenuController(db)
	halfOrderCtrl := controllers.NewHalfOrderController(coordinator)
	orderCtrl := controllers.NewOrderController(orders)
	wsCtrl := controllers.NewWSController(hub)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Auth, throttled.
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// Real-time event stream for dashboards and customer screens.
	r.GET("/ws/events", middlewares.OptionalAuthMiddleware(), wsCtrl.Events)

	// Customer-facing, no auth required.
	r.GET("/restaurants/:restaurant_id/menu", menuCtrl.GetMenuItems)
	r.GET("/menu-items/:item_id", menuCtrl.GetMenuItem)
	r.GET("/restaurants/:restaurant_id/half-orders", halfOrderCtrl.ListActive)
	r.POST("/half-orders", halfOrderCtrl.CreateSession)
	r.POST("/half-orders/:session_id/join", halfOrderCtrl.Join)

	// Cancel is customer-or-staff: an attached staff token lifts the
	// cancel window restriction.
	r.DELETE("/half-orders/:session_id", middlewares.OptionalAuthMiddleware(), halfOrderCtrl.Cancel)

	// Checkout and order lookup, staff only.
	staff := r.Group("/")
	staff.Use(middlewares.AuthMiddleware(), middlewares.RequireRole("staff"))
	{
		staff.POST("/orders/checkout", orderCtrl.Checkout)
		staff.GET("/orders/:order_id", orderCtrl.GetOrder)
	}

	return r
}
