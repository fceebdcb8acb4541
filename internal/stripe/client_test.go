package stripe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCreateIntent_SendsFormEncodedRequest(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/payment_intents" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test_123" {
			t.Errorf("unexpected auth header: %q", got)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("amount"); got != "5000" {
			t.Errorf("expected amount 5000, got %q", got)
		}
		if got := r.PostForm.Get("currency"); got != "usd" {
			t.Errorf("expected currency usd, got %q", got)
		}
		if got := r.PostForm.Get("metadata[projectId]"); got != "P1" {
			t.Errorf("expected metadata[projectId] P1, got %q", got)
		}
		w.Write([]byte(`{"id":"pi_123","client_secret":"pi_123_secret","status":"requires_payment_method"}`))
	}))
	defer srv.Close()

	client := NewClient("sk_test_123", srv.URL, 5*time.Second)
	intent, err := client.CreateIntent(context.Background(), CreateIntentParams{
		AmountMinor: 5000,
		Currency:    "usd",
		Metadata:    map[string]string{"projectId": "P1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if intent.ID != "pi_123" {
		t.Errorf("expected intent id pi_123, got %s", intent.ID)
	}
	if intent.ClientSecret != "pi_123_secret" {
		t.Errorf("expected client secret pi_123_secret, got %s", intent.ClientSecret)
	}
}

func TestCreateIntent_SurfacesAPIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"message":"Your card was declined."}}`))
	}))
	defer srv.Close()

	client := NewClient("sk_test_123", srv.URL, 5*time.Second)
	_, err := client.CreateIntent(context.Background(), CreateIntentParams{AmountMinor: 100, Currency: "usd"})
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "Your card was declined.") {
		t.Errorf("expected processor message in error, got %v", err)
	}
}

func TestCreateIntent_NonJSONErrorBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream unavailable"))
	}))
	defer srv.Close()

	client := NewClient("sk_test_123", srv.URL, 5*time.Second)
	_, err := client.CreateIntent(context.Background(), CreateIntentParams{AmountMinor: 100, Currency: "usd"})
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "status 502") {
		t.Errorf("expected status in error, got %v", err)
	}
}
