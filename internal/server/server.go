package server

import (
	"context"
	"net/http"
	"time"

	"github.com/Trevolee01/Bui-transport/internal/auth"
	"github.com/Trevolee01/Bui-transport/internal/booking"
	"github.com/Trevolee01/Bui-transport/internal/config"
	"github.com/Trevolee01/Bui-transport/internal/notification"
	"github.com/Trevolee01/Bui-transport/internal/payment"
	"github.com/Trevolee01/Bui-transport/internal/transport"
	"github.com/Trevolee01/Bui-transport/internal/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	router        *gin.Engine
	httpServer    *http.Server
	db            *sqlx.DB
	config        *config.Config
	notifications *notification.Service
}

func New(db *sqlx.DB, cfg *config.Config, notifications *notification.Service) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))

	transportRepo := transport.NewRepository(db)
	paymentRepo := payment.NewRepository(db)
	bookingRepo := booking.NewRepository(db, transportRepo, paymentRepo)
	gateway := payment.NewSandboxGateway()

	userHandler := user.NewHandler(db, cfg.JWTSecret)
	transportHandler := transport.NewHandler(db)
	bookingHandler := booking.NewHandler(db, transportRepo, paymentRepo, notifications, cfg.PlatformFeePercent)
	paymentHandler := payment.NewHandler(db, bookingRepo, transportRepo, gateway, notifications, cfg.MinTopUpAmount, cfg.Currency)

	public := router.Group("/auth")
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.RefreshToken)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)

		protected.GET("/routes", transportHandler.ListRoutes)
		protected.GET("/routes/:routeID", transportHandler.GetRoute)
		protected.GET("/routes/:routeID/updates", transportHandler.ListTripUpdates)
		protected.GET("/routes/:routeID/reviews", transportHandler.ListReviews)

		protected.GET("/payment-methods", paymentHandler.ListPaymentMethods)
		protected.POST("/payment-methods", paymentHandler.AddPaymentMethod)
		protected.DELETE("/payment-methods/:id", paymentHandler.RemovePaymentMethod)
	}

	student := router.Group("/")
	student.Use(authMiddleware, auth.RequireRole(auth.RoleStudent))
	{
		student.POST("/bookings", bookingHandler.CreateBooking)
		student.GET("/bookings", bookingHandler.ListMyBookings)
		student.GET("/bookings/stats", bookingHandler.GetMyStats)
		student.GET("/bookings/:id", bookingHandler.GetBooking)
		student.POST("/bookings/:id/cancel", bookingHandler.CancelBooking)

		student.POST("/routes/:routeID/reviews", transportHandler.CreateReview)

		student.POST("/refunds", bookingHandler.RequestRefund)
		student.GET("/refunds", bookingHandler.ListRefundRequests)
		student.GET("/refunds/:id", bookingHandler.GetRefundRequest)

		student.GET("/wallet", paymentHandler.GetWallet)
		student.POST("/wallet/topup", paymentHandler.TopUpWallet)
		student.GET("/wallet/transactions", paymentHandler.ListWalletTransactions)

		student.POST("/payments", paymentHandler.RecordPayment)
		student.GET("/payments", paymentHandler.ListMyTransactions)
		student.GET("/payments/:id", paymentHandler.GetTransaction)
	}

	organizer := router.Group("/organizer")
	organizer.Use(authMiddleware, auth.RequireRole(auth.RoleOrganizer))
	{
		organizer.POST("/routes", transportHandler.CreateRoute)
		organizer.GET("/routes", transportHandler.ListOwnRoutes)
		organizer.PATCH("/routes/:routeID", transportHandler.UpdateRoute)
		organizer.POST("/routes/:routeID/updates", transportHandler.CreateTripUpdate)

		organizer.GET("/bookings", bookingHandler.ListOrganizerBookings)
		organizer.POST("/bookings/:id/confirm", bookingHandler.ConfirmBooking)
		organizer.POST("/bookings/:id/complete", bookingHandler.CompleteBooking)

		organizer.GET("/refunds", bookingHandler.ListRefundRequests)
		organizer.GET("/refunds/:id", bookingHandler.GetRefundRequest)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/organizers/pending", userHandler.ListPendingOrganizers)
		admin.PATCH("/organizers/:organizerID/approval", userHandler.DecideOrganizerApproval)

		admin.GET("/refunds", bookingHandler.ListRefundRequests)
		admin.GET("/refunds/:id", bookingHandler.GetRefundRequest)
		admin.PATCH("/refunds/:id", bookingHandler.DecideRefundRequest)

		admin.GET("/transactions", paymentHandler.ListAllTransactions)
		admin.GET("/notifications/queue", NotificationQueue(notifications))
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	return &Server{
		router:        router,
		db:            db,
		config:        cfg,
		notifications: notifications,
	}
}

func (s *Server) Start(port string) error {
	s.httpServer = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
