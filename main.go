// File: meserte/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meserte/config"
	"meserte/cron"
	"meserte/database"
	bookingRepoPkg "meserte/database/repository/booking"
	invoiceRepoPkg "meserte/database/repository/invoice"
	orderRepoPkg "meserte/database/repository/order"
	roomRepoPkg "meserte/database/repository/room"
	"meserte/handlers"
	"meserte/middleware"
	"meserte/routes"
	"meserte/services/billing"
	"meserte/services/booking"
	"meserte/services/events"
	"meserte/services/payment"
	"meserte/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitEventClient()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	stripe.Key = config.AppConfig.PaymentAPIKey

	// repositories.
	roomRepo := roomRepoPkg.NewMongoRoomRepo()
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	invoiceRepo := invoiceRepoPkg.NewMongoInvoiceRepo()
	orderRepo := orderRepoPkg.NewMongoOrderRepo()

	// services.
	publisher := events.NewRedisPublisher(utils.GetEventClient(), "meserte:events")

	var gateway payment.PaymentGateway
	if config.AppConfig.PaymentAPIKey != "" {
		gateway = payment.NewStripeGateway(config.AppConfig.PaymentCurrency)
	} else {
		logger.Warn("no payment gateway key configured; payment initiation will be refused")
	}

	billingService := &billing.DefaultAggregatorService{
		Invoices:       invoiceRepo,
		Bookings:       bookingRepo,
		Rooms:          roomRepo,
		Orders:         orderRepo,
		Events:         publisher,
		TaxRatePercent: config.AppConfig.TaxRatePercent,
	}

	lifecycleService := &booking.DefaultLifecycleService{
		Rooms:                roomRepo,
		Bookings:             bookingRepo,
		Invoices:             billingService,
		Events:               publisher,
		RefundFeePercent:     config.AppConfig.CancellationFeePct,
		PendingHoldWindowMin: config.AppConfig.PendingHoldWindowMin,
	}

	paymentService := &payment.DefaultReconcilerService{
		Gateway:     gateway,
		Bookings:    bookingRepo,
		Lifecycle:   lifecycleService,
		Currency:    config.AppConfig.PaymentCurrency,
		CallbackURL: config.AppConfig.PaymentCallbackURL,
		Timeout:     time.Duration(config.AppConfig.PaymentTimeoutSec) * time.Second,
	}
	lifecycleService.Refunder = paymentService
	lifecycleService.Prober = paymentService

	// Background reconciliation sweep.
	cron.InitReconcileWorker(lifecycleService)

	// Assemble the handler bundle.
	handlerBundle := &routes.HandlerBundle{
		Booking: handlers.NewBookingHandler(lifecycleService, logger),
		Payment: handlers.NewPaymentHandler(paymentService, logger),
		Billing: handlers.NewBillingHandler(billingService, lifecycleService, logger),
		Room:    handlers.NewRoomHandler(roomRepo),
	}
	routes.RegisterRoutes(router, handlerBundle)

	srv := &http.Server{
		Addr:    ":" + config.AppConfig.AppPort,
		Handler: router,
	}

	go func() {
		logger.Sugar().Infof("main: server listening on port %s", config.AppConfig.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("main: shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: forced shutdown: %v", err)
	}
	logger.Info("main: server exited")
}
