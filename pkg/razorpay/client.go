/**
 * @description
 * This package provides a client for the Razorpay Orders API. It encapsulates
 * the logic for making authenticated HTTP requests to Razorpay's endpoints,
 * handling request body construction, and parsing responses.
 *
 * @dependencies
 * - bytes, context, encoding/json, fmt, net/http, time: Standard Go libraries.
 */
package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the production Razorpay API host.
const DefaultBaseURL = "https://api.razorpay.com"

// Client is a client for the Razorpay API.
type Client struct {
	BaseURL    string
	KeyID      string
	KeySecret  string
	HTTPClient *http.Client
}

// NewClient creates a new Razorpay API client authenticated with the given
// key pair.
func NewClient(baseURL, keyID, keySecret string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:   baseURL,
		KeyID:     keyID,
		KeySecret: keySecret,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CreateOrderRequest represents the payload for creating a Razorpay order.
// Amount is in the currency's smallest subunit.
type CreateOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// Order is the order resource returned by Razorpay's order endpoints.
type Order struct {
	ID         string `json:"id"`
	Entity     string `json:"entity"`
	Amount     int64  `json:"amount"`
	AmountPaid int64  `json:"amount_paid"`
	AmountDue  int64  `json:"amount_due"`
	Currency   string `json:"currency"`
	Receipt    string `json:"receipt"`
	Status     string `json:"status"` // created | attempted | paid
	CreatedAt  int64  `json:"created_at"`
}

// OrderStatusPaid is the settlement status reported once payment completes.
const OrderStatusPaid = "paid"

// ErrorResponse represents an error from the Razorpay API.
type ErrorResponse struct {
	ErrorDetail struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (e *ErrorResponse) Error() string {
	if e.ErrorDetail.Code != "" || e.ErrorDetail.Description != "" {
		return fmt.Sprintf("razorpay api error: %s - %s", e.ErrorDetail.Code, e.ErrorDetail.Description)
	}
	return "unknown razorpay api error"
}

// CreateOrder asks Razorpay to create a new order. The receipt carries the
// local transaction id so the order can be correlated back at verification.
func (c *Client) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*Order, error) {
	body, err := json.Marshal(CreateOrderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/v1/orders", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.KeyID, c.KeySecret)

	return c.doOrder(req, "create_order")
}

// FetchOrder retrieves the current state of an order by its Razorpay id.
func (c *Client) FetchOrder(ctx context.Context, orderID string) (*Order, error) {
	reqURL := c.BaseURL + "/v1/orders/" + url.PathEscape(orderID)

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetch request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.KeyID, c.KeySecret)

	return c.doOrder(req, "fetch_order")
}

// doOrder executes an order request and decodes the response.
func (c *Client) doOrder(req *http.Request, op string) (*Order, error) {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute %s request: %w", op, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp ErrorResponse
		if err := json.Unmarshal(bodyBytes, &errResp); err != nil {
			log.Printf("level=warn component=razorpay_client op=%s status=%d msg=\"non-2xx response (unparsable error body)\"", op, resp.StatusCode)
			return nil, fmt.Errorf("failed to decode error response (status %d)", resp.StatusCode)
		}
		log.Printf("level=warn component=razorpay_client op=%s status=%d code=%q description=%q", op, resp.StatusCode, errResp.ErrorDetail.Code, errResp.ErrorDetail.Description)
		return nil, &errResp
	}

	var order Order
	if err := json.Unmarshal(bodyBytes, &order); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return &order, nil
}
