package routes

import (
	"time"

	"meserte/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups the handlers the router needs.
type HandlerBundle struct {
	Booking *handlers.BookingHandler
	Payment *handlers.PaymentHandler
	Billing *handlers.BillingHandler
	Room    *handlers.RoomHandler
}

// RegisterRoutes wires every endpoint onto the router.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	bookings := r.Group("/api/bookings")
	{
		bookings.POST("", hb.Booking.CreateBooking)
		bookings.GET("/:id", hb.Booking.GetBooking)
		bookings.POST("/:id/cancel", hb.Booking.CancelBooking)
		bookings.GET("/:id/bill", hb.Billing.GetBill)
	}

	guests := r.Group("/api/guests")
	{
		guests.GET("/:id/bookings", hb.Booking.ListGuestBookings)
	}

	payments := r.Group("/api/payments")
	{
		payments.POST("/initiate", hb.Payment.InitiatePayment)
		payments.POST("/webhook", hb.Payment.Webhook)
		payments.GET("/verify/:reference", hb.Payment.VerifyPayment)
	}

	invoices := r.Group("/api/invoices")
	{
		invoices.POST("/:id/charges", hb.Billing.AddCharge)
		invoices.POST("/:id/settle", hb.Billing.Checkout)
	}

	rooms := r.Group("/api/rooms")
	{
		rooms.GET("", hb.Room.ListRooms)
		rooms.POST("", hb.Room.CreateRoom)
		rooms.PATCH("/:number/cleanliness", hb.Room.UpdateCleanliness)
	}
}
