package chat

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"nomadtax_backend/platform/apperr"
	"nomadtax_backend/platform/logger"
)

type chatConfig struct {
	url         string
	key         string
	model       string
	maxMessages int
}

func (c chatConfig) GetChatGatewayURL() string { return c.url }
func (c chatConfig) GetChatGatewayKey() string { return c.key }
func (c chatConfig) GetChatModel() string      { return c.model }
func (c chatConfig) GetChatMaxMessages() int   { return c.maxMessages }
func (c chatConfig) IsChatEnabled() bool       { return c.url != "" }

func testConfig(url string) chatConfig {
	return chatConfig{url: url, key: "test-key", model: "test-model", maxMessages: 10}
}

func oneMessage() StreamRequest {
	return StreamRequest{Messages: []Message{{Role: "user", Content: "Do I need to file an FBAR?"}}}
}

func TestStreamDisabledWhenUnconfigured(t *testing.T) {
	svc := New(chatConfig{}, logger.New("development"))

	_, _, err := svc.Stream(context.Background(), oneMessage())
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("err = %v, want unavailable", err)
	}
}

func TestStreamRejectsOversizedTranscript(t *testing.T) {
	svc := New(testConfig("http://gateway.invalid"), logger.New("development"))

	req := StreamRequest{}
	for i := 0; i < 11; i++ {
		req.Messages = append(req.Messages, Message{Role: "user", Content: "hi"})
	}
	_, _, err := svc.Stream(context.Background(), req)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestStreamRejectsOversizedContent(t *testing.T) {
	svc := New(testConfig("http://gateway.invalid"), logger.New("development"))

	req := StreamRequest{Messages: []Message{
		{Role: "user", Content: strings.Repeat("a", maxTranscriptBytes+1)},
	}}
	_, _, err := svc.Stream(context.Background(), req)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestStreamPrependsSystemPromptAndStreams(t *testing.T) {
	var captured struct {
		Model    string              `json:"model"`
		Messages []map[string]string `json:"messages"`
		Stream   bool                `json:"stream"`
	}

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth header = %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Errorf("unmarshal request: %v", err)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("data: {\"chunk\":1}\n\ndata: [DONE]\n\n"))
	}))
	defer upstream.Close()

	svc := New(testConfig(upstream.URL), logger.New("development"))

	body, contentType, err := svc.Stream(context.Background(), oneMessage())
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	defer body.Close()

	if contentType != "text/event-stream" {
		t.Fatalf("content type = %q", contentType)
	}
	out, _ := io.ReadAll(body)
	if !strings.Contains(string(out), "[DONE]") {
		t.Fatalf("body = %q, want pass-through chunks", out)
	}

	if !captured.Stream {
		t.Fatal("stream flag not set on upstream request")
	}
	if len(captured.Messages) != 2 {
		t.Fatalf("messages = %d, want system + user", len(captured.Messages))
	}
	if captured.Messages[0]["role"] != "system" {
		t.Fatalf("first message role = %q, want system", captured.Messages[0]["role"])
	}
	if captured.Messages[1]["content"] != "Do I need to file an FBAR?" {
		t.Fatalf("user message = %q", captured.Messages[1]["content"])
	}
}

func TestStreamErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantKind apperr.Kind
	}{
		{"rate limited", http.StatusTooManyRequests, apperr.KindRateLimited},
		{"out of credit", http.StatusPaymentRequired, apperr.KindPaymentRequired},
		{"server error", http.StatusInternalServerError, apperr.KindUnavailable},
		{"bad gateway", http.StatusBadGateway, apperr.KindUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer upstream.Close()

			svc := New(testConfig(upstream.URL), logger.New("development"))
			_, _, err := svc.Stream(context.Background(), oneMessage())
			if !apperr.Is(err, tc.wantKind) {
				t.Fatalf("err = %v, want kind %v", err, tc.wantKind)
			}
		})
	}
}

func TestStreamGatewayUnreachable(t *testing.T) {
	svc := New(testConfig("http://127.0.0.1:1"), logger.New("development"))

	_, _, err := svc.Stream(context.Background(), oneMessage())
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("err = %v, want unavailable", err)
	}
}
