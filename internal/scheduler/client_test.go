package scheduler

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
)

type testSchedulerConfig struct {
	redisURL string
	queue    string
	batch    int
}

func (c *testSchedulerConfig) GetRedisURL() string       { return c.redisURL }
func (c *testSchedulerConfig) GetAsynqQueueName() string { return c.queue }
func (c *testSchedulerConfig) GetOutboxBatchSize() int   { return c.batch }

func TestNewClientRequiresRedisURL(t *testing.T) {
	_, err := NewClient(&testSchedulerConfig{})
	if err == nil {
		t.Fatal("expected error for missing redis url, got nil")
	}
}

func TestNewClientRejectsMalformedRedisURL(t *testing.T) {
	_, err := NewClient(&testSchedulerConfig{redisURL: "not-a-url"})
	if err == nil {
		t.Fatal("expected error for malformed redis url, got nil")
	}
}

func TestClientEnqueuesOutboxDelivery(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(&testSchedulerConfig{
		redisURL: "redis://" + mr.Addr(),
		queue:    "notifications",
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	payload := OutboxDeliverPayload{
		OutboxID:       uuid.NewString(),
		RecipientEmail: "staff@example.com",
		Template:       "alert_notification",
		Payload:        json.RawMessage(`{"title":"OUT OF STOCK: Coca-Cola Classic"}`),
		Attempts:       1,
	}

	if err := client.EnqueueOutboxDelivery(context.Background(), payload, time.Now()); err != nil {
		t.Fatalf("EnqueueOutboxDelivery: %v", err)
	}

	var found bool
	for _, key := range mr.Keys() {
		if strings.Contains(key, "notifications") {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("expected a task in the notifications queue, redis keys: %v", mr.Keys())
	}
}

func TestOutboxDeliverPayloadRoundTrip(t *testing.T) {
	payload := OutboxDeliverPayload{
		OutboxID:       uuid.NewString(),
		RecipientEmail: "manager@example.com",
		Template:       "alert_notification",
		Payload:        json.RawMessage(`{"priority":"critical"}`),
		Attempts:       2,
	}

	task, err := NewOutboxDeliverTask(payload)
	if err != nil {
		t.Fatalf("NewOutboxDeliverTask: %v", err)
	}
	if task.Type() != TaskOutboxDeliver {
		t.Fatalf("expected task type %q, got %q", TaskOutboxDeliver, task.Type())
	}

	parsed, err := ParseOutboxDeliverPayload(task)
	if err != nil {
		t.Fatalf("ParseOutboxDeliverPayload: %v", err)
	}
	if parsed.OutboxID != payload.OutboxID {
		t.Fatalf("expected outbox id %q, got %q", payload.OutboxID, parsed.OutboxID)
	}
	if parsed.RecipientEmail != payload.RecipientEmail {
		t.Fatalf("expected recipient %q, got %q", payload.RecipientEmail, parsed.RecipientEmail)
	}
	if parsed.Attempts != 2 {
		t.Fatalf("expected attempts 2, got %d", parsed.Attempts)
	}
}
