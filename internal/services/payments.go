package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/harentsoaR/medisync-api/internal/models"
)

const DefaultPaymentSessionPath = "/payments/session"

// PaymentClient opens checkout sessions on the external payment service.
type PaymentClient struct {
	baseURL     string
	sessionPath string
	client      *http.Client
}

func NewPaymentClient(baseURL, sessionPath string, timeout time.Duration) *PaymentClient {
	if sessionPath == "" {
		sessionPath = DefaultPaymentSessionPath
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PaymentClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		sessionPath: sessionPath,
		client:      &http.Client{Timeout: timeout},
	}
}

// CreateSession posts req and returns the service's session. Transport
// failures, non-2xx answers and sessions reported as failed are all errors.
func (c *PaymentClient) CreateSession(ctx context.Context, req models.PaymentRequest) (*models.PaymentResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode payment request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.sessionPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build payment request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call payment service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("payment service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out models.PaymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode payment response: %w", err)
	}
	switch strings.ToUpper(out.Status) {
	case "FAILED", "FAILURE", "ERROR", "CANCELLED":
		return nil, fmt.Errorf("payment session %q failed: %s", out.SessionID, out.Message)
	}
	return &out, nil
}
