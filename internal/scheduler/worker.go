package scheduler

import (
	"context"
	"encoding/json"
	"fmt"

	"shelfsense_backend/internal/email"
	"shelfsense_backend/internal/notification/outbox"
	"shelfsense_backend/platform/config"
	"shelfsense_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// maxDeliveryAttempts caps how often one outbox row is retried before the
// dispatcher gives up on it.
const maxDeliveryAttempts = 5

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	repo   *outbox.Repository
	sender email.Sender
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, sender email.Sender, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		repo:   outbox.New(pool),
		sender: sender,
		log:    log,
	}

	mux.HandleFunc(TaskOutboxDeliver, w.handleOutboxDeliver)

	return w, nil
}

func (w *Worker) handleOutboxDeliver(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseOutboxDeliverPayload(task)
	if err != nil {
		return err
	}

	outboxID, err := uuid.Parse(payload.OutboxID)
	if err != nil {
		return err
	}

	var sendErr error
	switch payload.Template {
	case email.TemplateAlertNotification:
		var data email.AlertEmailData
		if err := json.Unmarshal(payload.Payload, &data); err != nil {
			return w.repo.MarkFailed(ctx, outboxID, fmt.Sprintf("malformed payload: %v", err))
		}
		sendErr = w.sender.SendAlertEmail(ctx, payload.RecipientEmail, data)
	default:
		return w.repo.MarkFailed(ctx, outboxID, fmt.Sprintf("unknown template %q", payload.Template))
	}

	if sendErr != nil {
		w.log.Warn("outbox delivery failed", "outboxId", payload.OutboxID,
			"attempts", payload.Attempts, "error", sendErr)
		if payload.Attempts >= maxDeliveryAttempts {
			return w.repo.MarkFailed(ctx, outboxID, sendErr.Error())
		}
		return w.repo.MarkPending(ctx, outboxID, sendErr.Error())
	}

	return w.repo.MarkSucceeded(ctx, outboxID)
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
