package shiprocket

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"
)

var (
	ErrUnauthorized     = errors.New("shiprocket: unauthorized")
	ErrUnexpectedStatus = errors.New("shiprocket: unexpected status")
	ErrNotConfigured    = errors.New("shiprocket: credentials not configured")
)

type Config struct {
	BaseURL  string
	Email    string
	Password string
	TokenTTL time.Duration
	Timeout  time.Duration
}

type Client struct {
	BaseURL    string
	Email      string
	Password   string
	TokenTTL   time.Duration
	HTTPClient *http.Client

	tokens  TokenCache
	logins  singleflight.Group
	breaker *gobreaker.CircuitBreaker[*CreateOrderResponse]
	now     func() time.Time
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type OrderItem struct {
	Name         string  `json:"name"`
	SKU          string  `json:"sku"`
	Units        int     `json:"units"`
	SellingPrice float64 `json:"selling_price"`
}

type OrderPayload struct {
	OrderID             string      `json:"order_id"`
	OrderDate           string      `json:"order_date"`
	PickupLocation      string      `json:"pickup_location"`
	BillingCustomerName string      `json:"billing_customer_name"`
	BillingLastName     string      `json:"billing_last_name"`
	BillingAddress      string      `json:"billing_address"`
	BillingAddress2     string      `json:"billing_address_2,omitempty"`
	BillingCity         string      `json:"billing_city"`
	BillingPincode      string      `json:"billing_pincode"`
	BillingState        string      `json:"billing_state"`
	BillingCountry      string      `json:"billing_country"`
	BillingEmail        string      `json:"billing_email"`
	BillingPhone        string      `json:"billing_phone"`
	ShippingIsBilling   bool        `json:"shipping_is_billing"`
	OrderItems          []OrderItem `json:"order_items"`
	PaymentMethod       string      `json:"payment_method"`
	SubTotal            float64     `json:"sub_total"`
	TotalDiscount       float64     `json:"total_discount"`
	Length              float64     `json:"length"`
	Breadth             float64     `json:"breadth"`
	Height              float64     `json:"height"`
	Weight              float64     `json:"weight"`
}

type CreateOrderResponse struct {
	OrderID    int64  `json:"order_id"`
	ShipmentID int64  `json:"shipment_id"`
	Status     string `json:"status"`
}

func NewClient(cfg Config, tokens TokenCache) *Client {
	if tokens == nil {
		tokens = NewMemoryTokenCache()
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 216 * time.Hour // tokens are issued for 10 days
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		BaseURL:  cfg.BaseURL,
		Email:    cfg.Email,
		Password: cfg.Password,
		TokenTTL: cfg.TokenTTL,
		HTTPClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		tokens: tokens,
		breaker: gobreaker.NewCircuitBreaker[*CreateOrderResponse](gobreaker.Settings{
			Name:    "shiprocket",
			Timeout: time.Minute,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
		now: time.Now,
	}
}

// Token returns a cached token or logs in. Concurrent callers share one login, detached
// from the cancellation of whichever caller started it.
func (c *Client) Token(ctx context.Context) (string, error) {
	if token, ok := c.tokens.Get(ctx); ok {
		return token.Value, nil
	}

	v, err, _ := c.logins.Do("login", func() (interface{}, error) {
		loginCtx := context.WithoutCancel(ctx)
		token, err := c.Login(loginCtx)
		if err != nil {
			return nil, err
		}
		if err := c.tokens.Set(loginCtx, token); err != nil {
			return nil, fmt.Errorf("failed to cache token: %w", err)
		}
		return token.Value, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) Login(ctx context.Context) (Token, error) {
	if c.Email == "" || c.Password == "" {
		return Token{}, ErrNotConfigured
	}

	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", loginRequest{Email: c.Email, Password: c.Password}, &resp); err != nil {
		return Token{}, fmt.Errorf("login failed: %w", err)
	}
	if resp.Token == "" {
		return Token{}, fmt.Errorf("login failed: empty token")
	}

	return Token{Value: resp.Token, ExpiresAt: c.now().Add(c.TokenTTL)}, nil
}

// CreateOrder creates an ad-hoc order. A rejected token is dropped and the call retried once.
func (c *Client) CreateOrder(ctx context.Context, payload OrderPayload) (*CreateOrderResponse, error) {
	return c.breaker.Execute(func() (*CreateOrderResponse, error) {
		resp, err := c.createOrder(ctx, payload)
		if errors.Is(err, ErrUnauthorized) {
			if err := c.tokens.Invalidate(ctx); err != nil {
				return nil, fmt.Errorf("failed to invalidate token: %w", err)
			}
			resp, err = c.createOrder(ctx, payload)
		}
		return resp, err
	})
}

func (c *Client) createOrder(ctx context.Context, payload OrderPayload) (*CreateOrderResponse, error) {
	token, err := c.Token(ctx)
	if err != nil {
		return nil, err
	}

	var resp CreateOrderResponse
	if err := c.do(ctx, http.MethodPost, "/orders/create/adhoc", token, payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body, dest interface{}) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request data: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode >= 300:
		return fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, resp.StatusCode, bytes.TrimSpace(respBody))
	}

	if err := json.Unmarshal(respBody, dest); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
