package forwarder

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskDeliver = "forwarder.deliver"

// DeliverPayload is the queued form of one webhook delivery. Timestamp is
// fixed when the event is accepted, not when the delivery runs.
type DeliverPayload struct {
	Type      string         `json:"type"`
	Data      map[string]any `json:"data"`
	Timestamp string         `json:"timestamp"`
}

func NewDeliverTask(payload DeliverPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDeliver, data), nil
}

func ParseDeliverPayload(task *asynq.Task) (DeliverPayload, error) {
	var payload DeliverPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return DeliverPayload{}, err
	}
	return payload, nil
}
