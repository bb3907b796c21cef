package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendDeliversMessage(t *testing.T) {
	var got message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"data":{"status":"ok"}}`))
	}))
	defer srv.Close()

	c := NewExpoClient(srv.URL)
	err := c.Send(context.Background(), "ExponentPushToken[abc]", "Booking confirmed",
		"Your booking BKG-1 is confirmed", map[string]string{"booking_id": "b1"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got.To != "ExponentPushToken[abc]" {
		t.Errorf("To = %q", got.To)
	}
	if got.Title != "Booking confirmed" || got.Sound != "default" {
		t.Errorf("unexpected message: %+v", got)
	}
	if got.Data["booking_id"] != "b1" {
		t.Errorf("data not forwarded: %v", got.Data)
	}
}

func TestSendEmptyTokenIsNoop(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewExpoClient(srv.URL)
	if err := c.Send(context.Background(), "", "t", "b", nil); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if called {
		t.Error("gateway should not be called without a token")
	}
}

func TestSendGatewayStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewExpoClient(srv.URL)
	if err := c.Send(context.Background(), "tok", "t", "b", nil); err == nil {
		t.Error("expected error on non-200 status")
	}
}

func TestSendReceiptError(t *testing.T) {
	// Expo reports per-message failures inside a 200 body.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"status":"error","message":"DeviceNotRegistered"}}`))
	}))
	defer srv.Close()

	c := NewExpoClient(srv.URL)
	err := c.Send(context.Background(), "tok", "t", "b", nil)
	if err == nil {
		t.Fatal("expected receipt error")
	}
}
