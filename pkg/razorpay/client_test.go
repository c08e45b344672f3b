package razorpay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateOrder_SendsAuthAndPayload(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/orders" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "key_id" || pass != "key_secret" {
			t.Errorf("basic auth not forwarded: %q %q %v", user, pass, ok)
		}

		var req CreateOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Amount != 3000 || req.Currency != "INR" || req.Receipt != "tx-1" {
			t.Errorf("unexpected payload: %+v", req)
		}

		json.NewEncoder(w).Encode(Order{
			ID:       "order_123",
			Entity:   "order",
			Amount:   req.Amount,
			Currency: req.Currency,
			Receipt:  req.Receipt,
			Status:   "created",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "key_id", "key_secret")

	order, err := client.CreateOrder(context.Background(), 3000, "INR", "tx-1")
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}
	if order.ID != "order_123" || order.Amount != 3000 || order.Receipt != "tx-1" {
		t.Fatalf("unexpected order: %+v", order)
	}
}

func TestFetchOrder_ReturnsOrder(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/orders/order_456" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(Order{ID: "order_456", Status: OrderStatusPaid, Receipt: "tx-2"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "key_id", "key_secret")

	order, err := client.FetchOrder(context.Background(), "order_456")
	if err != nil {
		t.Fatalf("FetchOrder error: %v", err)
	}
	if order.Status != OrderStatusPaid || order.Receipt != "tx-2" {
		t.Fatalf("unexpected order: %+v", order)
	}
}

func TestCreateOrder_APIErrorIsTyped(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount must be at least 100"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "key_id", "key_secret")

	_, err := client.CreateOrder(context.Background(), 1, "INR", "tx-3")
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}

	var apiErr *ErrorResponse
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *ErrorResponse, got %T: %v", err, err)
	}
	if apiErr.ErrorDetail.Code != "BAD_REQUEST_ERROR" {
		t.Fatalf("unexpected error detail: %+v", apiErr.ErrorDetail)
	}
}

func TestFetchOrder_UnparsableErrorBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "key_id", "key_secret")

	_, err := client.FetchOrder(context.Background(), "order_789")
	if err == nil {
		t.Fatal("expected error for unparsable error body")
	}
	var apiErr *ErrorResponse
	if errors.As(err, &apiErr) {
		t.Fatalf("expected generic error, got typed API error: %v", err)
	}
}
