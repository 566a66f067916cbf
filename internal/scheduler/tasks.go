package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskOutboxDeliver = "notification.outbox.deliver"

// OutboxDeliverPayload carries everything the worker needs to deliver one
// queued email, so delivery never reads the outbox row back.
type OutboxDeliverPayload struct {
	OutboxID       string          `json:"outboxId"`
	RecipientEmail string          `json:"recipientEmail"`
	Template       string          `json:"template"`
	Payload        json.RawMessage `json:"payload"`
	Attempts       int             `json:"attempts"`
}

func NewOutboxDeliverTask(payload OutboxDeliverPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOutboxDeliver, data), nil
}

func ParseOutboxDeliverPayload(task *asynq.Task) (OutboxDeliverPayload, error) {
	var payload OutboxDeliverPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return OutboxDeliverPayload{}, err
	}
	return payload, nil
}
