package scheduler

import (
	"context"
	"time"

	"shelfsense_backend/internal/notification/outbox"
	"shelfsense_backend/platform/config"
	"shelfsense_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NotificationOutboxDispatcher periodically claims due outbox rows and hands
// them to the worker queue.
type NotificationOutboxDispatcher struct {
	client *Client
	repo   *outbox.Repository
	batch  int
	log    *logger.Logger
}

func NewNotificationOutboxDispatcher(cfg config.SchedulerConfig, pool *pgxpool.Pool, log *logger.Logger) (*NotificationOutboxDispatcher, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	batch := cfg.GetOutboxBatchSize()
	if batch < 1 {
		batch = 50
	}

	return &NotificationOutboxDispatcher{
		client: client,
		repo:   outbox.New(pool),
		batch:  batch,
		log:    log,
	}, nil
}

func (d *NotificationOutboxDispatcher) Close() error {
	if d == nil || d.client == nil {
		return nil
	}
	return d.client.Close()
}

func (d *NotificationOutboxDispatcher) Run(ctx context.Context) {
	if d == nil || d.client == nil || d.repo == nil {
		return
	}

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		records, err := d.repo.ClaimPending(ctx, d.batch)
		if err != nil {
			d.log.Warn("outbox claim failed", "error", err)
			continue
		}

		for _, rec := range records {
			payload := OutboxDeliverPayload{
				OutboxID:       rec.ID.String(),
				RecipientEmail: rec.RecipientEmail,
				Template:       rec.Template,
				Payload:        rec.Payload,
				Attempts:       rec.Attempts,
			}

			if err := d.client.EnqueueOutboxDelivery(ctx, payload, rec.RunAt); err != nil {
				d.log.Warn("outbox enqueue failed", "outboxId", rec.ID, "error", err)
				_ = d.repo.MarkPending(ctx, rec.ID, err.Error())
			}
		}
	}
}
