package routes

import (
	"time"

	"parkinglot/handlers"
	"parkinglot/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterTicketRoutes registers ticket lifecycle endpoints.
func RegisterTicketRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	tickets := api.Group("/tickets")
	{
		tickets.GET("/available", hb.Parking.ListAvailableTicketsHandler)
		tickets.GET("/pending", hb.Parking.ListPendingReviewHandler)
		tickets.GET("/ready-for-exit", hb.Parking.ListReadyForExitHandler)
		tickets.GET("/:code", hb.Parking.GetTicketDetailsHandler)
		tickets.POST("/:code/confirm", hb.Parking.ConfirmParkingHandler)
		tickets.POST("/:code/exit", hb.Parking.ProcessExitHandler)
	}
}

// RegisterVehicleRoutes registers vehicle registration and edit endpoints.
func RegisterVehicleRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	cars := api.Group("/cars")
	{
		cars.POST("", hb.Parking.RegisterVehicleHandler)
		cars.PUT("/:id", hb.Parking.UpdateVehicleHandler)
	}
}

// RegisterPaymentRoutes registers payment submission and review endpoints.
func RegisterPaymentRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	payments := api.Group("/payments")
	{
		payments.POST("", hb.Parking.SubmitPaymentHandler)
		payments.POST("/:id/validate", hb.Parking.ValidatePaymentHandler)
		payments.POST("/:id/reject", hb.Parking.RejectPaymentHandler)
	}
}

func RegisterHistoryRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	history := api.Group("/history")
	{
		history.GET("", hb.Parking.ListHistoryHandler)
		history.GET("/:id", hb.Parking.GetHistoryHandler)
		history.GET("/:id/receipt", hb.Parking.ReceiptHandler)
	}
}

func RegisterSettingsRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	api.GET("/settings", hb.Settings.GetSettingsHandler)
	api.PUT("/settings", hb.Settings.UpdateSettingsHandler)
}

// RegisterStatsRoutes registers the dashboard counters and their SSE stream.
func RegisterStatsRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	api.GET("/stats", hb.Stats.GetStatsHandler)
	api.GET("/stats/stream", hb.Stats.StreamStatsHandler)
}

func RegisterRecognitionRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	recognition := api.Group("/recognition")
	{
		recognition.POST("/plate", hb.Recognition.RecognizePlateHandler)
		recognition.POST("/vehicle", hb.Recognition.RecognizeVehicleHandler)
	}
}

// RegisterAdminRoutes sets up endpoints for maintenance operations.
func RegisterAdminRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	admin := api.Group("/admin")
	{
		admin.POST("/reconcile", hb.Admin.ReconcileHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Cache-Control", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)

	api := r.Group("/api")
	api.Use(middleware.NoCache())
	RegisterTicketRoutes(api, hb)
	RegisterVehicleRoutes(api, hb)
	RegisterPaymentRoutes(api, hb)
	RegisterHistoryRoutes(api, hb)
	RegisterSettingsRoutes(api, hb)
	RegisterStatsRoutes(api, hb)
	RegisterRecognitionRoutes(api, hb)
	RegisterAdminRoutes(api, hb)
}
