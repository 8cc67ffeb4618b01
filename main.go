package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"kost-service/internal/auth"
	"kost-service/internal/config"
	"kost-service/internal/db"
	grpcserver "kost-service/internal/grpc"
	"kost-service/internal/handlers"
	"kost-service/internal/middleware"
	"kost-service/internal/models"
	"kost-service/internal/observability"
	"kost-service/internal/rabbitmq"
	"kost-service/internal/repositories"
	"kost-service/internal/scheduler"
	"kost-service/internal/services"
	"kost-service/internal/telemetry"
	"kost-service/internal/ws"
)

const serviceName = "kost-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.OTLPEndpoint, serviceName, cfg.Env)
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracer(shutdownCtx)
	}()

	database, err := db.Connect(ctx, cfg.DBDSN, cfg.RealtimeMode == config.RealtimePostgres, logger)
	if err != nil {
		logger.Fatal("failed to connect to db", zap.Error(err))
	}
	defer database.Close()

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, logger)
	defer publisher.Close()
	auditEmitter := telemetry.NewAuditEmitter(publisher, logger, "audit."+serviceName, serviceName, cfg.Env)
	events := telemetry.NewEventEmitter(publisher, logger, serviceName)
	sink := observability.NewEventSink(publisher, logger)

	var roomRepo repositories.RoomRepository = repositories.NewRoomRepo(database)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, room cache will fall back to the database", zap.Error(err))
		}
		roomRepo = repositories.NewCachedRoomRepo(roomRepo, redisClient, cfg.RoomCacheTTL, logger)
	}
	profileRepo := repositories.NewProfileRepo(database)
	bookingRepo := repositories.NewBookingRepo(database)
	paymentRepo := repositories.NewPaymentRepo(database)
	messageRepo := repositories.NewMessageRepo(database)

	hub := ws.NewHub(sink, logger)
	var broadcaster services.Broadcaster = hub
	if cfg.RealtimeMode == config.RealtimePostgres {
		broadcaster = nil
		feed := ws.NewFeed(cfg.DBDSN, hub, logger)
		go func() {
			if err := feed.Run(ctx); err != nil {
				logger.Error("chat feed stopped", zap.Error(err))
			}
		}()
	}

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	authService := services.NewAuthService(profileRepo, issuer, logger)
	bookingService := services.NewBookingService(roomRepo, bookingRepo, events, logger, cfg.RejectOverlappingBookings)
	paymentService := services.NewPaymentService(paymentRepo, bookingRepo, events, logger)
	dashboardService := services.NewDashboardService(roomRepo, bookingRepo, cfg.DashboardRecentLimit)
	chatService := services.NewChatService(profileRepo, messageRepo, broadcaster, events, logger)

	if cfg.AMQPURL != "" {
		consumer, err := rabbitmq.NewConsumer(cfg.AMQPURL, cfg.AMQPExchange, cfg.PaymentQueue, logger)
		if err != nil {
			logger.Warn("payment confirmation consumer disabled", zap.Error(err))
		} else {
			defer consumer.Close()
			go func() {
				if err := consumer.Run(ctx, paymentService.HandleConfirmation); err != nil {
					logger.Error("payment confirmation consumer stopped", zap.Error(err))
				}
			}()
		}
	}

	healthServer := grpcserver.NewHealthServer(logger)
	grpcListener, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		logger.Fatal("failed to listen for grpc", zap.Error(err))
	}
	go func() {
		if err := healthServer.Serve(grpcListener); err != nil {
			logger.Error("grpc server stopped", zap.Error(err))
		}
	}()
	defer healthServer.Stop()

	limiter := middleware.NewIPRateLimiter(cfg.AuthRatePerMin)
	jobs := scheduler.New(cfg.SchedulerSpec, dashboardService, database, healthServer, logger).
		WithLimiterPruning(limiter, cfg.RateLimitIdle)
	if err := jobs.Start(); err != nil {
		logger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer jobs.Stop()

	authHandler := handlers.NewAuthHandler(authService, logger)
	roomHandler := handlers.NewRoomHandler(roomRepo, bookingService, events, auditEmitter, logger)
	bookingHandler := handlers.NewBookingHandler(bookingService, paymentService, auditEmitter, logger)
	paymentHandler := handlers.NewPaymentHandler(paymentService, auditEmitter, logger)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, logger)
	chatHandler := handlers.NewChatHandler(chatService, logger)
	conversationWS := ws.NewConversationWebSocketHandler(hub, profileRepo, issuer, logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxyList()); err != nil {
		logger.Fatal("invalid TRUSTED_PROXIES", zap.Error(err))
	}

	// middlewares
	router.Use(gin.Recovery())
	router.Use(observability.RequestIDMiddleware())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())
	router.Use(cors.New(corsConfig(cfg)))

	router.GET("/healthz", func(c *gin.Context) {
		if err := database.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.POST("/payments/confirmations", middleware.WebhookKeyMiddleware(cfg.PaymentWebhookKey), paymentHandler.Confirm)
	handlers.RegisterDebugRoutes(router, auditEmitter, events, cfg.DebugRoutes)

	api := router.Group("", middleware.APIKeyMiddleware(cfg.PublicAPIKey))
	api.GET("/ws/conversations/:contact_id", conversationWS.Handle)

	authRoutes := api.Group("/auth", limiter.Middleware(logger))
	authRoutes.POST("/signup", authHandler.SignUp)
	authRoutes.POST("/signin", authHandler.SignIn)

	authed := api.Group("", middleware.AuthMiddleware(issuer))
	ownerOnly := middleware.RequireRole(models.RoleOwner)
	tenantOnly := middleware.RequireRole(models.RoleTenant)

	authed.GET("/me", authHandler.Me)

	authed.GET("/rooms", roomHandler.ListRooms)
	authed.GET("/rooms/:room_id", roomHandler.GetRoom)
	authed.POST("/rooms", ownerOnly, roomHandler.CreateRoom)
	authed.PATCH("/rooms/:room_id/availability", ownerOnly, roomHandler.SetAvailability)
	authed.POST("/rooms/:room_id/quote", roomHandler.Quote)

	authed.POST("/bookings", tenantOnly, bookingHandler.CreateBooking)
	authed.GET("/bookings", bookingHandler.ListBookings)
	authed.PATCH("/bookings/:booking_id/status", ownerOnly, bookingHandler.UpdateStatus)
	authed.GET("/bookings/:booking_id/payment", bookingHandler.GetPayment)

	authed.GET("/dashboard", ownerOnly, dashboardHandler.Dashboard)

	authed.GET("/chat/contacts", chatHandler.ListContacts)
	authed.GET("/chat/conversations/:contact_id/messages", chatHandler.GetMessages)
	authed.POST("/chat/conversations/:contact_id/messages", chatHandler.PostMessage)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("http server listening",
			zap.String("addr", srv.Addr),
			zap.String("realtime_mode", cfg.RealtimeMode),
			zap.String("publisher", rabbitmq.PublisherMode(publisher)),
			zap.String("publisher_noop_reason", rabbitmq.PublisherNoopReason(publisher)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
}

func corsConfig(cfg config.Config) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.APIKeyHeader, observability.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", observability.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	origins := cfg.AllowedOrigins()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	return c
}
