// Package forwarder ships analytics events to a configured webhook as
// {type, data, timestamp} JSON. With no webhook configured every call is a
// silent no-op; with Redis available deliveries go through the asynq queue
// for retries, otherwise they fire directly in the background.
package forwarder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"nomadtax_backend/platform/config"
	"nomadtax_backend/platform/logger"
)

// Delivery outcomes reported by Forward.
const (
	StatusSkipped  = "skipped"
	StatusQueued   = "queued"
	StatusAccepted = "accepted"
)

const deliverTimeout = 10 * time.Second

// Enqueuer is the queue dependency; nil means no queue is configured.
type Enqueuer interface {
	Enqueue(ctx context.Context, payload DeliverPayload) error
}

type Service struct {
	cfg    config.ForwarderConfig
	queue  Enqueuer
	client *http.Client
	log    *logger.Logger
}

// New creates the forwarder. queue may be nil; deliveries then run as
// fire-and-forget goroutines without retries.
func New(cfg config.ForwarderConfig, queue Enqueuer, log *logger.Logger) *Service {
	return &Service{
		cfg:    cfg,
		queue:  queue,
		client: &http.Client{Timeout: deliverTimeout},
		log:    log,
	}
}

// Forward accepts an event for delivery and returns the outcome status.
// It never blocks on the webhook and never returns an error: forwarding is
// observability plumbing, not business logic.
func (s *Service) Forward(ctx context.Context, eventType string, data map[string]any) string {
	if s.cfg.GetForwardWebhookURL() == "" {
		return StatusSkipped
	}

	payload := DeliverPayload{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if s.queue != nil {
		err := s.queue.Enqueue(ctx, payload)
		if err == nil {
			return StatusQueued
		}
		// fall through to direct delivery
		s.log.ForwardEvent(eventType, "enqueue_failed", err)
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deliverTimeout)
		defer cancel()
		if err := s.Deliver(ctx, payload); err != nil {
			s.log.ForwardEvent(eventType, "failed", err)
			return
		}
		s.log.ForwardEvent(eventType, "delivered", nil)
	}()
	return StatusAccepted
}

// Deliver POSTs one payload to the webhook. Non-2xx responses are errors so
// the queue retries them.
func (s *Service) Deliver(ctx context.Context, payload DeliverPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.GetForwardWebhookURL(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return nil
}
