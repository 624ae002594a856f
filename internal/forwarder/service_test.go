package forwarder

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nomadtax_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
)

type forwarderConfig struct {
	webhookURL  string
	redisURL    string
	queue       string
	concurrency int
}

func (c forwarderConfig) GetForwardWebhookURL() string { return c.webhookURL }
func (c forwarderConfig) GetRedisURL() string          { return c.redisURL }
func (c forwarderConfig) GetRedisTLSInsecure() bool    { return false }
func (c forwarderConfig) GetAsynqQueueName() string    { return c.queue }
func (c forwarderConfig) GetAsynqConcurrency() int     { return c.concurrency }

func TestForwardSkippedWhenUnconfigured(t *testing.T) {
	svc := New(forwarderConfig{}, nil, logger.New("development"))

	status := svc.Forward(context.Background(), "quiz.session.started", map[string]any{"sessionId": "abc"})
	if status != StatusSkipped {
		t.Fatalf("status = %q, want %q", status, StatusSkipped)
	}
}

func TestForwardDirectDelivery(t *testing.T) {
	received := make(chan DeliverPayload, 1)
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var payload DeliverPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Errorf("unmarshal delivery: %v", err)
		}
		received <- payload
		w.WriteHeader(http.StatusOK)
	}))
	defer webhook.Close()

	svc := New(forwarderConfig{webhookURL: webhook.URL}, nil, logger.New("development"))

	status := svc.Forward(context.Background(), "quiz.lead.submitted", map[string]any{"leadId": "abc"})
	if status != StatusAccepted {
		t.Fatalf("status = %q, want %q", status, StatusAccepted)
	}

	select {
	case payload := <-received:
		if payload.Type != "quiz.lead.submitted" {
			t.Fatalf("type = %q", payload.Type)
		}
		if payload.Data["leadId"] != "abc" {
			t.Fatalf("data = %v", payload.Data)
		}
		if _, err := time.Parse(time.RFC3339, payload.Timestamp); err != nil {
			t.Fatalf("timestamp %q not RFC3339: %v", payload.Timestamp, err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("webhook never received the delivery")
	}
}

func TestDeliverTreatsNon2xxAsError(t *testing.T) {
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer webhook.Close()

	svc := New(forwarderConfig{webhookURL: webhook.URL}, nil, logger.New("development"))

	err := svc.Deliver(context.Background(), DeliverPayload{Type: "x", Timestamp: time.Now().UTC().Format(time.RFC3339)})
	if err == nil {
		t.Fatal("non-2xx webhook response did not error")
	}
}

func TestForwardQueuesWhenRedisConfigured(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := forwarderConfig{
		webhookURL: "http://webhook.invalid",
		redisURL:   "redis://" + mr.Addr(),
		queue:      "forwarding",
	}

	queue, err := NewQueue(cfg)
	if err != nil {
		t.Fatalf("NewQueue: %v", err)
	}
	defer queue.Close()

	svc := New(cfg, queue, logger.New("development"))

	status := svc.Forward(context.Background(), "quiz.session.started", map[string]any{"sessionId": "abc"})
	if status != StatusQueued {
		t.Fatalf("status = %q, want %q", status, StatusQueued)
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: mr.Addr()})
	defer inspector.Close()

	pending, err := inspector.ListPendingTasks("forwarding")
	if err != nil {
		t.Fatalf("ListPendingTasks: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending tasks = %d, want 1", len(pending))
	}
	if pending[0].Type != TaskDeliver {
		t.Fatalf("task type = %q, want %q", pending[0].Type, TaskDeliver)
	}

	payload, err := ParseDeliverPayload(asynq.NewTask(pending[0].Type, pending[0].Payload))
	if err != nil {
		t.Fatalf("ParseDeliverPayload: %v", err)
	}
	if payload.Type != "quiz.session.started" {
		t.Fatalf("payload type = %q", payload.Type)
	}
}
