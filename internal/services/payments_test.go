package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/medisync-api/internal/models"
)

func TestPaymentClientCreateSession(t *testing.T) {
	var got models.PaymentRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/payments/session", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.PaymentResponse{
			SessionID:  "cs_test_1",
			Status:     "SUCCESS",
			SessionURL: "https://checkout.example/cs_test_1",
		})
	}))
	defer srv.Close()

	client := NewPaymentClient(srv.URL+"/", "", time.Second)
	resp, err := client.CreateSession(context.Background(), models.PaymentRequest{
		Amount:        75,
		Currency:      "usd",
		AppointmentID: "apt-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", resp.SessionID)
	assert.Equal(t, "apt-1", got.AppointmentID)
	assert.Equal(t, 75.0, got.Amount)
}

func TestPaymentClientFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"non-2xx", func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}},
		{"failed status", func(w http.ResponseWriter, _ *http.Request) {
			json.NewEncoder(w).Encode(models.PaymentResponse{Status: "FAILED", Message: "card declined"})
		}},
		{"garbage body", func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("not json"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewPaymentClient(srv.URL, "/custom", time.Second).CreateSession(context.Background(), models.PaymentRequest{})
			assert.Error(t, err)
		})
	}
}

func TestPaymentClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewPaymentClient(url, "", 200*time.Millisecond).CreateSession(context.Background(), models.PaymentRequest{})
	assert.Error(t, err)
}
