package events

import (
	"context"
	"encoding/json"
	"time"

	"meserte/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Event types published by the booking and billing flows.
const (
	TypeBookingCreated   = "booking.created"
	TypeBookingConfirmed = "booking.confirmed"
	TypeBookingCancelled = "booking.cancelled"
	TypeBookingCompleted = "booking.completed"
	TypePaymentFailed    = "payment.failed"
	TypeInvoiceSettled   = "invoice.settled"
)

// Event is a lifecycle notification pushed to interested collaborators
// (dashboards, housekeeping boards, the food-ordering screen).
type Event struct {
	Type       string            `json:"type"`
	BookingID  string            `json:"booking_id,omitempty"`
	RoomNumber string            `json:"room_number,omitempty"`
	Payload    map[string]string `json:"payload,omitempty"`
	At         time.Time         `json:"at"`
}

// Publisher is the explicit event-publishing seam handed to services that need
// to broadcast state changes, instead of a process-wide singleton.
type Publisher interface {
	Publish(event Event)
}

// RedisPublisher broadcasts events on a Redis Pub/Sub channel.
type RedisPublisher struct {
	Client  *redis.Client
	Channel string
}

// NewRedisPublisher creates a Publisher over the given Redis client.
func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = "meserte:events"
	}
	return &RedisPublisher{Client: client, Channel: channel}
}

// Publish sends the event on the channel. Publishing is fire-and-forget: a
// broadcast failure must never fail the state change that triggered it, so the
// error is swallowed after the context expires.
func (p *RedisPublisher) Publish(event Event) {
	if event.At.IsZero() {
		event.At = time.Now()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.Client.Publish(ctx, p.Channel, data).Err(); err != nil {
		utils.GetLogger().Warn("event publish failed",
			zap.String("channel", p.Channel),
			zap.String("type", event.Type),
			zap.Error(err))
	}
}

// NopPublisher discards all events. Used in tests and when Redis is absent.
type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}
