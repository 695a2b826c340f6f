package razorpay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	ErrInvalidSignature = errors.New("razorpay: invalid payment signature")
	ErrNotConfigured    = errors.New("razorpay: key id or secret not configured")
)

type Client struct {
	BaseURL    string
	KeyID      string
	KeySecret  string
	HTTPClient *http.Client
}

type CreateOrderRequest struct {
	Amount   int64             `json:"amount"` // smallest currency unit (paise)
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func NewClient(baseURL, keyID, keySecret string) *Client {
	return &Client{
		BaseURL:   baseURL,
		KeyID:     keyID,
		KeySecret: keySecret,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) CreateOrder(ctx context.Context, request CreateOrderRequest) (*Order, error) {
	if c.KeyID == "" || c.KeySecret == "" {
		return nil, ErrNotConfigured
	}

	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request data: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/orders", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	auth := base64.StdEncoding.EncodeToString([]byte(c.KeyID + ":" + c.KeySecret))
	req.Header.Set("Authorization", "Basic "+auth)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		var e errorResponse
		_ = json.Unmarshal(body, &e)
		return nil, fmt.Errorf("razorpay: create order failed with %d: %s", resp.StatusCode, e.Error.Description)
	}

	var order Order
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &order, nil
}

// Signature is the hex HMAC-SHA256 of "order_id|payment_id" keyed with the secret.
func (c *Client) Signature(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(c.KeySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func (c *Client) VerifySignature(orderID, paymentID, signature string) error {
	if c.KeySecret == "" {
		return ErrNotConfigured
	}
	expected := c.Signature(orderID, paymentID)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}
