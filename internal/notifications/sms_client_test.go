package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"playpark/internal/shared/config"
)

func TestNormalizePhone(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		phone string
		want  string
	}{
		{"local with leading zero", "01712345678", "8801712345678"},
		{"already prefixed", "8801712345678", "8801712345678"},
		{"international plus format", "+880 1712-345678", "8801712345678"},
		{"formatted local", "017-1234-5678", "8801712345678"},
		{"bare subscriber number", "1712345678", "8801712345678"},
		{"empty", "", ""},
		{"punctuation only", "+-() ", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizePhone(tc.phone, "880"); got != tc.want {
				t.Fatalf("NormalizePhone(%q) = %q, want %q", tc.phone, got, tc.want)
			}
		})
	}
}

func TestSMSNotification_PartitionKey(t *testing.T) {
	t.Parallel()

	a := NewSMSNotification("01712345678", "hello", "880")
	b := NewSMSNotification("+8801712345678", "world", "880")

	if a.GetPartitionKey() != b.GetPartitionKey() {
		t.Fatalf("expected same partition key for same recipient, got %q and %q",
			a.GetPartitionKey(), b.GetPartitionKey())
	}
	if a.Phone != "8801712345678" {
		t.Fatalf("expected normalized phone, got %q", a.Phone)
	}
}

func TestSMSClient_Send(t *testing.T) {
	t.Parallel()

	t.Run("delivers normalized payload", func(t *testing.T) {
		var got sendSMSRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
				t.Errorf("failed to decode request: %v", err)
			}
			json.NewEncoder(w).Encode(sendSMSResponse{ResponseCode: 202, SuccessMsg: "queued"})
		}))
		defer server.Close()

		sender := NewSMSClient(config.SMSConfig{
			BaseURL:     server.URL,
			APIKey:      "test-key",
			SenderID:    "PlayPark",
			CountryCode: "880",
			Timeout:     5 * time.Second,
		})

		if err := sender.Send(context.Background(), "01712345678", "Your booking is confirmed"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.Number != "8801712345678" {
			t.Fatalf("expected normalized number, got %q", got.Number)
		}
		if got.SenderID != "PlayPark" || got.APIKey != "test-key" {
			t.Fatalf("unexpected request: %+v", got)
		}
	})

	t.Run("gateway rejection surfaces as error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(sendSMSResponse{ResponseCode: 400, ErrorMsg: "invalid number"})
		}))
		defer server.Close()

		sender := NewSMSClient(config.SMSConfig{
			BaseURL:     server.URL,
			CountryCode: "880",
			Timeout:     5 * time.Second,
		})

		if err := sender.Send(context.Background(), "01712345678", "hi"); err == nil {
			t.Fatalf("expected error for rejected message")
		}
	})
}
