package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// matchEvent decodes the queued payload and checks the fields that matter;
// Created is wall-clock so a byte-exact expectation cannot work.
func matchEvent(eventType, userID string) func(expected, actual []interface{}) error {
	return func(expected, actual []interface{}) error {
		// actual is the full command args: ["lpush", <key>, <value>...]
		if len(actual) != 3 {
			return fmt.Errorf("expected one queued value, got %d args", len(actual))
		}

		data, ok := actual[2].([]byte)
		if !ok {
			return fmt.Errorf("expected []byte payload, got %T", actual[2])
		}

		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			return err
		}
		if event.Type != eventType {
			return fmt.Errorf("expected event type %q, got %q", eventType, event.Type)
		}
		if event.UserID != userID {
			return fmt.Errorf("expected user %q, got %q", userID, event.UserID)
		}
		if event.Tries != 0 {
			return fmt.Errorf("expected a fresh event, got %d tries", event.Tries)
		}
		return nil
	}
}

func TestPublishQueuesEvent(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewWithClient(client)

	mock.CustomMatch(matchEvent(EventBookingCreated, "user-1")).
		ExpectLPush(queueKey, "ignored").
		SetVal(1)

	err := svc.Publish(context.Background(), EventBookingCreated, "user-1", map[string]interface{}{
		"booking_id": "abc",
	})

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPublishRedisDown(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewWithClient(client)

	mock.CustomMatch(matchEvent(EventWalletTopUp, "user-2")).
		ExpectLPush(queueKey, "ignored").
		SetErr(assert.AnError)

	err := svc.Publish(context.Background(), EventWalletTopUp, "user-2", nil)

	assert.Error(t, err)
}

func TestQueueLength(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewWithClient(client)

	mock.ExpectLLen(queueKey).SetVal(7)

	assert.Equal(t, int64(7), svc.QueueLength(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
