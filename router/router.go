package router

import (
	"github.com/gin-gonic/gin"
	"github.com/lengolf/venue-pos/controllers"
	"github.com/lengolf/venue-pos/middlewares"
	"gorm.io/gorm"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	staffCtrl := controllers.NewStaffController(db)
	tableCtrl := controllers.NewTableController(db)
	sessionCtrl := controllers.NewSessionController(db)
	settlementCtrl := controllers.NewSettlementController(db)
	reconCtrl := controllers.NewReconciliationController(db)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/login", staffCtrl.Login)
	}

	// Terminal event stream, token passed as query param on upgrade
	wsGroup := r.Group("/pos/ws")
	wsGroup.Use(middlewares.WebSocketAuthMiddleware())
	{
		wsGroup.GET("", controllers.EventsHandler)
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	pos := r.Group("/pos")
	pos.Use(middlewares.AuthMiddleware())

	pos.GET("/profile", staffCtrl.GetProfile)
	pos.POST("/staff", middlewares.RequireRole("admin"), staffCtrl.Register)

	// TABLES
	pos.GET("/tables", tableCtrl.GetAllTables)
	pos.GET("/tables/:table_id", tableCtrl.GetTableByID)
	pos.POST("/tables/:table_id/open", sessionCtrl.OpenTable)

	// SESSIONS
	pos.GET("/sessions/:session_id", sessionCtrl.GetSession)
	pos.POST("/sessions/:session_id/items", sessionCtrl.AddItems)
	pos.POST("/sessions/:session_id/receipt-discount", sessionCtrl.ApplyReceiptDiscount)
	pos.POST("/sessions/:session_id/confirm", sessionCtrl.ConfirmOrder)
	pos.POST("/sessions/:session_id/cancel", sessionCtrl.Cancel)
	pos.POST("/sessions/:session_id/finalize", sessionCtrl.Finalize)

	// SETTLEMENT
	pos.POST("/sessions/:session_id/settle", settlementCtrl.Settle)
	pos.GET("/transactions/:transaction_id", settlementCtrl.GetTransaction)
	pos.POST("/transactions/:transaction_id/void", settlementCtrl.Void)

	// RECONCILIATION (admin)
	pos.POST("/reconciliation/run", middlewares.RequireRole("admin"), reconCtrl.Run)

	return r
}
