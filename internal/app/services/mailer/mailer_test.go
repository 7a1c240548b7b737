package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPSenderPostsPayload(t *testing.T) {
	var got sendRequest
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewHTTPSender(server.URL, "secret-key", "orders@rosewood.example", nil)
	err := sender.Send(context.Background(), Message{
		To:      "jane@example.com",
		Subject: "Order confirmation",
		HTML:    "<p>Thanks!</p>",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if auth != "Bearer secret-key" {
		t.Fatalf("unexpected auth header %q", auth)
	}
	if got.From != "orders@rosewood.example" || got.To != "jane@example.com" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestHTTPSenderProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer server.Close()

	sender := NewHTTPSender(server.URL, "bad-key", "orders@rosewood.example", nil)
	if err := sender.Send(context.Background(), Message{To: "jane@example.com"}); err == nil {
		t.Fatal("expected provider error to surface")
	}
}

func TestNoopSender(t *testing.T) {
	if err := (NoopSender{}).Send(context.Background(), Message{To: "jane@example.com"}); err != nil {
		t.Fatalf("noop send: %v", err)
	}
}
