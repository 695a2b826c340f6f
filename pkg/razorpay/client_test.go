package razorpay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySignature(t *testing.T) {
	client := NewClient("", "rzp_test_key", "shh")

	sig := client.Signature("order_1", "pay_1")
	assert.Equal(t, "11875d078d618316e1bd46ff51229da0ad86d74508c45016b5d47305d5720c53", sig)

	assert.NoError(t, client.VerifySignature("order_1", "pay_1", sig))
	assert.ErrorIs(t, client.VerifySignature("order_1", "pay_2", sig), ErrInvalidSignature)
	assert.ErrorIs(t, client.VerifySignature("order_1", "pay_1", "deadbeef"), ErrInvalidSignature)

	other := NewClient("", "rzp_test_key", "different")
	assert.ErrorIs(t, other.VerifySignature("order_1", "pay_1", sig), ErrInvalidSignature)
}

func TestVerifySignature_NotConfigured(t *testing.T) {
	client := NewClient("", "", "")
	assert.ErrorIs(t, client.VerifySignature("a", "b", "c"), ErrNotConfigured)
}

func TestCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "shh", pass)
		assert.Equal(t, "/orders", r.URL.Path)

		var req CreateOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(Order{ID: "order_XYZ", Amount: req.Amount, Currency: req.Currency, Receipt: req.Receipt, Status: "created"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "rzp_test_key", "shh")
	order, err := client.CreateOrder(context.Background(), CreateOrderRequest{Amount: 212400, Currency: "INR", Receipt: "cart_7"})
	require.NoError(t, err)

	assert.Equal(t, "order_XYZ", order.ID)
	assert.Equal(t, int64(212400), order.Amount)
}

func TestCreateOrder_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount must be at least 100"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "rzp_test_key", "shh")
	_, err := client.CreateOrder(context.Background(), CreateOrderRequest{Amount: 1, Currency: "INR"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount must be at least 100")
}
