package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const DefaultTextbeltURL = "https://textbelt.com/text"

// TextbeltSender delivers SMS through the Textbelt HTTP API.
type TextbeltSender struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

func NewTextbeltSender(apiKey, endpoint string) *TextbeltSender {
	if endpoint == "" {
		endpoint = DefaultTextbeltURL
	}
	return &TextbeltSender{
		apiKey:   apiKey,
		endpoint: endpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

type textbeltResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (t *TextbeltSender) SendSMS(ctx context.Context, phone, message string) error {
	if phone == "" {
		return errors.New("textbelt: empty phone number")
	}

	body, err := json.Marshal(map[string]string{
		"phone":   phone,
		"message": message,
		"key":     t.apiKey,
	})
	if err != nil {
		return fmt.Errorf("textbelt: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("textbelt: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("textbelt: send: %w", err)
	}
	defer resp.Body.Close()

	var result textbeltResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("textbelt: decode response (status %d): %w", resp.StatusCode, err)
	}
	if !result.Success {
		return fmt.Errorf("textbelt: rejected: %s", result.Error)
	}
	return nil
}
