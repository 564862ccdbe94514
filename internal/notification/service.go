package notification

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Trevolee01/Bui-transport/internal/logger"
	"github.com/Trevolee01/Bui-transport/internal/metrics"
)

const (
	queueKey       = "notifications"
	failedQueueKey = "notifications:failed"
	maxTries       = 3
)

// Event types pushed onto the queue.
const (
	EventBookingCreated   = "booking_created"
	EventBookingConfirmed = "booking_confirmed"
	EventBookingCancelled = "booking_cancelled"
	EventBookingCompleted = "booking_completed"
	EventPaymentRecorded  = "payment_recorded"
	EventRefundRequested  = "refund_requested"
	EventRefundDecided    = "refund_decided"
	EventRefundProcessed  = "refund_processed"
	EventWalletTopUp      = "wallet_topup"
)

type Event struct {
	Type    string                 `json:"type"`
	UserID  string                 `json:"user_id"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	Tries   int                    `json:"tries"`
	Created time.Time              `json:"created"`
}

// Service queues notification events in Redis and drains them from a
// background worker. Delivery is a log line here; the queue shape is what
// downstream channels (email, push) would consume.
type Service struct {
	redis *redis.Client
}

func New(redisAddr string) *Service {
	return NewWithClient(redis.NewClient(&redis.Options{
		Addr: redisAddr,
	}))
}

func NewWithClient(client *redis.Client) *Service {
	return &Service{redis: client}
}

func (s *Service) Publish(ctx context.Context, eventType, userID string, payload map[string]interface{}) error {
	event := Event{
		Type:    eventType,
		UserID:  userID,
		Payload: payload,
		Tries:   0,
		Created: time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Errorf("Failed to marshal %s event: %v", eventType, err)
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, data).Err(); err != nil {
		logger.Errorf("Failed to queue %s event for user %s: %v", eventType, userID, err)
		return err
	}

	metrics.RecordNotificationQueued(eventType)
	logger.Infof("Notification queued: %s for user %s", eventType, userID)
	return nil
}

func (s *Service) Start(ctx context.Context) {
	logger.Info("Notification service started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Notification service stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}

	var event Event
	if err := json.Unmarshal([]byte(result[1]), &event); err != nil {
		logger.Errorf("Bad notification data: %v", err)
		return
	}

	event.Tries++
	if err := s.deliver(event); err != nil {
		logger.Errorf("Failed to deliver %s to user %s: %v", event.Type, event.UserID, err)

		if event.Tries < maxTries {
			time.Sleep(5 * time.Second)
			data, _ := json.Marshal(event)
			s.redis.LPush(context.Background(), queueKey, data)
			logger.Infof("Retrying %s for user %s (attempt %d)", event.Type, event.UserID, event.Tries+1)
		} else {
			logger.Errorf("Notification %s for user %s failed after %d attempts", event.Type, event.UserID, maxTries)
			s.saveFailed(event, err)
		}
		return
	}

	logger.Infof("Notification delivered: %s to user %s", event.Type, event.UserID)
}

func (s *Service) deliver(event Event) error {
	logger.WithFields(map[string]interface{}{
		"type":    event.Type,
		"user_id": event.UserID,
		"payload": event.Payload,
	}).Info("notification delivered")
	return nil
}

func (s *Service) saveFailed(event Event, err error) {
	failed := map[string]interface{}{
		"event": event,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.Background(), failedQueueKey, data)
	logger.Errorf("Notification moved to failed queue: %s for user %s", event.Type, event.UserID)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	metrics.NotificationQueueLength.Set(float64(length))
	return length
}

func (s *Service) Close() error {
	return s.redis.Close()
}
