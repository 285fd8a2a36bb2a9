package email

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendBoost(t *testing.T) {
	var received postmarkEmail
	var gotToken string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Postmark-Server-Token")
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"MessageID": "test-id"}`))
	}))
	defer server.Close()

	client := NewClient("test-token", "noreply@example.com", WithAPIURL(server.URL))

	err := client.SendBoost("alice@example.com", "Due soon: Dishes", "Dishes (due Mon 18:00)")
	if err != nil {
		t.Fatalf("send boost: %v", err)
	}

	if gotToken != "test-token" {
		t.Errorf("server token = %q, want %q", gotToken, "test-token")
	}
	if received.To != "alice@example.com" {
		t.Errorf("To = %q, want %q", received.To, "alice@example.com")
	}
	if received.From != "noreply@example.com" {
		t.Errorf("From = %q, want %q", received.From, "noreply@example.com")
	}
	if received.Subject != "Due soon: Dishes" {
		t.Errorf("Subject = %q, want %q", received.Subject, "Due soon: Dishes")
	}
	if received.TextBody != "Dishes (due Mon 18:00)" {
		t.Errorf("TextBody = %q", received.TextBody)
	}
}

func TestSendBoostUnconfigured(t *testing.T) {
	client := NewClient("", "noreply@example.com")

	err := client.SendBoost("alice@example.com", "subject", "body")
	if err == nil {
		t.Fatal("expected error for unconfigured client")
	}
}

func TestSendBoostAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := NewClient("test-token", "noreply@example.com", WithAPIURL(server.URL))

	err := client.SendBoost("alice@example.com", "subject", "body")
	if err == nil {
		t.Fatal("expected error for API failure")
	}
}

func TestConfigured(t *testing.T) {
	c1 := NewClient("token", "from@test.com")
	if !c1.Configured() {
		t.Error("expected Configured() = true")
	}

	c2 := NewClient("", "from@test.com")
	if c2.Configured() {
		t.Error("expected Configured() = false")
	}
}
