// Package chat relays visitor conversations to the LLM gateway and streams
// the answer back. The relay is deliberately thin: the system prompt is
// prepended here, everything else passes through verbatim.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"nomadtax_backend/platform/apperr"
	"nomadtax_backend/platform/config"
	"nomadtax_backend/platform/logger"
)

// Message is one transcript entry.
type Message struct {
	Role    string `json:"role" binding:"required,oneof=user assistant"`
	Content string `json:"content" binding:"required,max=4000"`
}

// StreamRequest is the client payload: the transcript so far, oldest first.
type StreamRequest struct {
	Messages []Message `json:"messages" binding:"required,min=1,dive"`
}

// maxTranscriptBytes bounds the total content size across a transcript,
// independent of the per-message and message-count limits.
const maxTranscriptBytes = 64 * 1024

type Service struct {
	cfg    config.ChatConfig
	client *http.Client
	log    *logger.Logger
}

func New(cfg config.ChatConfig, log *logger.Logger) *Service {
	return &Service{
		cfg: cfg,
		// No overall timeout: responses stream for as long as the model
		// generates. Connection setup is still bounded.
		client: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: 30 * time.Second,
			},
		},
		log: log,
	}
}

// Stream opens a streaming completion against the gateway and returns the
// raw response body together with its content type. The caller owns the
// body and must close it.
func (s *Service) Stream(ctx context.Context, req StreamRequest) (io.ReadCloser, string, error) {
	if !s.cfg.IsChatEnabled() {
		return nil, "", apperr.Unavailable("chat is not available right now")
	}
	if max := s.cfg.GetChatMaxMessages(); len(req.Messages) > max {
		return nil, "", apperr.Validation(fmt.Sprintf("conversation exceeds %d messages, start a new chat", max))
	}
	var transcriptBytes int
	for _, m := range req.Messages {
		transcriptBytes += len(m.Content)
	}
	if transcriptBytes > maxTranscriptBytes {
		return nil, "", apperr.Validation("conversation is too long, start a new chat")
	}

	messages := make([]map[string]string, 0, len(req.Messages)+1)
	messages = append(messages, map[string]string{"role": "system", "content": systemPrompt})
	for _, m := range req.Messages {
		messages = append(messages, map[string]string{"role": m.Role, "content": m.Content})
	}

	payload := map[string]interface{}{
		"model":    s.cfg.GetChatModel(),
		"messages": messages,
		"stream":   true,
	}
	jsonBody, _ := json.Marshal(payload)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.cfg.GetChatGatewayURL()+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, "", fmt.Errorf("build gateway request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.cfg.GetChatGatewayKey())
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		s.log.Error("chat gateway unreachable", "error", err)
		return nil, "", apperr.Unavailable("chat is not available right now")
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		s.log.Warn("chat gateway error", "status", resp.StatusCode, "body", string(body))
		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			return nil, "", apperr.RateLimited("too many chat requests, slow down a little")
		case http.StatusPaymentRequired:
			return nil, "", apperr.PaymentRequired("chat is temporarily out of capacity")
		default:
			return nil, "", apperr.Unavailable("chat is not available right now")
		}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/event-stream"
	}
	return resp.Body, contentType, nil
}
