package router

import (
	"github.com/gin-gonic/gin"

	"github.com/satyasricomputers/servicecenter/controllers"
	"github.com/satyasricomputers/servicecenter/middlewares"
	"github.com/satyasricomputers/servicecenter/services"
	"github.com/satyasricomputers/servicecenter/store"
)

func SetupRouter(st store.Store) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	ticketService := services.NewTicketService(st)
	reportService := services.NewReportService(st)

	userCtrl := controllers.NewUserController(st)
	customerCtrl := controllers.NewCustomerController(st)
	ticketCtrl := controllers.NewTicketController(ticketService, st)
	reportCtrl := controllers.NewReportController(reportService)
	messageCtrl := controllers.NewMessageController(st, services.LogNotifier{})

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// login/register carry the strict limiter
	public := r.Group("/api/auth")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	api := r.Group("/api")
	api.Use(middlewares.AuthMiddleware())
	{
		api.POST("/auth/verify", userCtrl.Verify)
		api.POST("/auth/logout", userCtrl.Logout)

		api.GET("/customers",
			middlewares.RequireCapability(middlewares.OpListCustomers), customerCtrl.GetAllCustomers)
		api.POST("/customers",
			middlewares.RequireCapability(middlewares.OpCreateCustomer), customerCtrl.CreateCustomer)

		api.GET("/tickets",
			middlewares.RequireCapability(middlewares.OpListTickets), ticketCtrl.GetAllTickets)
		api.POST("/tickets",
			middlewares.RequireCapability(middlewares.OpCreateTicket), ticketCtrl.CreateTicket)
		api.GET("/tickets/:ticket_id",
			middlewares.RequireCapability(middlewares.OpViewTicket), ticketCtrl.GetTicket)
		api.PATCH("/tickets/:ticket_id/status",
			middlewares.RequireCapability(middlewares.OpUpdateTicketStatus), ticketCtrl.UpdateTicketStatus)

		api.GET("/stats",
			middlewares.RequireCapability(middlewares.OpViewStats), reportCtrl.GetStats)
		api.GET("/reports",
			middlewares.RequireCapability(middlewares.OpViewReports), reportCtrl.GetReports)
		api.GET("/reports/export-pdf",
			middlewares.RequireCapability(middlewares.OpViewReports), reportCtrl.ExportPDF)

		api.POST("/communication/send",
			middlewares.RequireCapability(middlewares.OpSendMessage), messageCtrl.SendMessage)
	}

	ws := r.Group("/ws")
	ws.Use(middlewares.WebSocketAuthMiddleware())
	{
		ws.GET("/:role", controllers.StreamHandler)
	}

	return r
}
