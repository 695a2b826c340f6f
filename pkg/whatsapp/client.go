package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrInvalidPhone = errors.New("whatsapp: invalid phone number")
	ErrRejected     = errors.New("whatsapp: message rejected")
)

type Client struct {
	BaseURL    string
	Username   string
	Password   string
	Path       string
	HTTPClient *http.Client
}

type SendMessageRequest struct {
	Phone       string `json:"phone"`
	Message     string `json:"message"`
	IsForwarded bool   `json:"is_forwarded"`
	Duration    int    `json:"duration"`
}

type SendMessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		MessageID string `json:"message_id"`
		Status    string `json:"status"`
	} `json:"data"`
}

func NewClient(baseURL, username, password, path string) *Client {
	return &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Username: username,
		Password: password,
		Path:     strings.Trim(path, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NormalizePhone converts Indian numbers to the 91XXXXXXXXXX form the gateway
// expects: +91 98765 43210, 098765-43210 and 9876543210 all become 919876543210.
func NormalizePhone(phone string) (string, error) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)

	switch {
	case len(digits) == 10:
		return "91" + digits, nil
	case len(digits) == 11 && digits[0] == '0':
		return "91" + digits[1:], nil
	case len(digits) == 12 && strings.HasPrefix(digits, "91"):
		return digits, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPhone, phone)
}

// SendMessage posts a message to the gateway for the given phone.
func (c *Client) SendMessage(ctx context.Context, phone, message string) (*SendMessageResponse, error) {
	normalized, err := NormalizePhone(phone)
	if err != nil {
		return nil, err
	}

	jsonData, err := json.Marshal(SendMessageRequest{
		Phone:   normalized + "@s.whatsapp.net",
		Message: message,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request data: %w", err)
	}

	url := fmt.Sprintf("%s/%s/send/message", c.BaseURL, c.Path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.Username, c.Password)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var response SendMessageResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= http.StatusBadRequest || !response.Success {
		return &response, fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, response.Message)
	}

	return &response, nil
}

func (c *Client) SendTextMessage(ctx context.Context, phone, message string) error {
	_, err := c.SendMessage(ctx, phone, message)
	return err
}
