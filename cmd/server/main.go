package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/events"
	"storefront/internal/handlers"
	"storefront/internal/logger"
	"storefront/internal/pricing"
	"storefront/internal/redis"
	"storefront/internal/repository"
	"storefront/internal/services"
	"storefront/pkg/mailer"
	"storefront/pkg/razorpay"
	"storefront/pkg/shiprocket"
	"storefront/pkg/whatsapp"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Initialize Redis
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Initialize external clients
	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		log.Info("publishing order events", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}
	defer publisher.Close()

	var messenger services.Messenger
	if cfg.WhatsAppAPIURL != "" {
		messenger = whatsapp.NewClient(cfg.WhatsAppAPIURL, cfg.WhatsAppUsername, cfg.WhatsAppPassword, cfg.WhatsAppPath)
	}

	var shipping services.ShippingClient
	if cfg.ShiprocketEmail != "" {
		shipping = shiprocket.NewClient(shiprocket.Config{
			BaseURL:  cfg.ShiprocketAPIURL,
			Email:    cfg.ShiprocketEmail,
			Password: cfg.ShiprocketPassword,
			TokenTTL: cfg.ShiprocketTokenTTL,
		}, redis.NewTokenCache(redisClient, "shiprocket"))
	} else {
		log.Warn("shiprocket credentials not set, shipping orders will not be created")
	}

	mail := mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
	gateway := razorpay.NewClient(cfg.RazorpayAPIURL, cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	calculator := pricing.NewCalculator(cfg.GSTPercent)

	// Initialize repositories
	productRepo := repository.NewProductRepository(db)
	bundleRepo := repository.NewBundleRepository(db)
	cartRepo := repository.NewCartRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	salesRepo := repository.NewSalesRepository(db)

	// Initialize services
	couponService := services.NewCouponService(couponRepo)
	transformer := services.NewCartTransformer(productRepo, bundleRepo, calculator, log)
	cartService := services.NewCartService(cartRepo, transformer, couponService, calculator, log)
	paymentService := services.NewPaymentService(gateway, redisClient, cfg.PaymentOrderTTL, log)
	notificationService := services.NewNotificationService(mail, messenger, publisher, cfg.AdminEmail)
	orderService := services.NewOrderService(services.OrderDependencies{
		Orders:         orderRepo,
		Products:       productRepo,
		Bundles:        bundleRepo,
		Sales:          salesRepo,
		Cart:           cartRepo,
		Coupons:        couponService,
		Notifications:  notificationService,
		Payments:       paymentService,
		Calculator:     calculator,
		Shipping:       shipping,
		Locker:         redisClient,
		LockTTL:        cfg.CompletionLockTTL,
		PickupLocation: cfg.ShiprocketPickupLocation,
		Log:            log,
	})

	// Initialize handlers
	apiHandler := handlers.NewAPIHandler(cartService, couponService, orderService, log)
	checkoutHandler := handlers.NewCheckoutHandler(cartService, paymentService, orderService, cfg.RazorpayKeyID, log)

	gin.SetMode(gin.ReleaseMode)
	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           handlers.NewRouter(apiHandler, checkoutHandler, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("port", cfg.ServerPort), zap.String("gst_percent", cfg.GSTPercent.String()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	log.Info("server stopped")
}
