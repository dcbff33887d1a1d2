package ims

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

	"github.com/sethvargo/go-retry"

	"github.com/vmshq/vms-backend/pkg/config"
	pkgerrors "github.com/vmshq/vms-backend/pkg/errors"
	"github.com/vmshq/vms-backend/pkg/logger"
	"github.com/vmshq/vms-backend/pkg/metrics"
)

const (
	endpointConfirm  = "orders/confirm"
	endpointToShip   = "orders/ToShip"
	endpointVariants = "variants/receive"
)

var (
	errBaseURLRequired = errors.New("ims base url is required")
	errLoggerRequired  = errors.New("ims logger is required")
)

// Notifier is the outbound surface the order lifecycle depends on.
type Notifier interface {
	SendConfirm(ctx context.Context, orderID string, orderStatus string) error
	SendToShip(ctx context.Context, orderID string) error
	SendDeliveredManifest(ctx context.Context, orderID string, variants []VariantManifest) error
}

// VariantManifest is one serialized unit reported to the external
// inventory-management system when a delivery is committed.
type VariantManifest struct {
	Barcode     string `json:"barcode"`
	ProductCode string `json:"productCode"`
	ProductName string `json:"productName"`
	Category    string `json:"category"`
	Size        string `json:"size"`
}

type confirmPayload struct {
	OrderID     string `json:"orderID"`
	OrderStatus string `json:"orderStatus"`
}

type manifestPayload struct {
	OrderID     string            `json:"orderID"`
	OrderStatus string            `json:"orderStatus"`
	Variants    []VariantManifest `json:"variants"`
}

type ackBody struct {
	Status string `json:"status"`
}

// Client talks to the external inventory-management system over HTTP with
// centralized logging, retries, and error mapping.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	maxAttempts int
	retryDelay  time.Duration
	logger      *logger.Logger
	metrics     *metrics.OrderMetrics
}

// NewClient initializes the IMS wrapper and validates the configuration.
func NewClient(ctx context.Context, cfg config.IMSConfig, logg *logger.Logger, m *metrics.OrderMetrics) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}

	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = 2 * time.Second
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		maxAttempts: attempts,
		retryDelay:  delay,
		logger:      logg,
		metrics:     m,
	}

	logg.Info(ctx, "ims client initialized")
	return c, nil
}

// SendConfirm reports a Confirmed/Rejected decision. A single attempt is made;
// the caller only commits the transition after a successful acknowledgement.
func (c *Client) SendConfirm(ctx context.Context, orderID string, orderStatus string) error {
	payload := confirmPayload{OrderID: orderID, OrderStatus: orderStatus}
	c.log(ctx, "request", endpointConfirm, map[string]any{"order_id": orderID, "order_status": orderStatus})

	status, _, err := c.post(ctx, endpointConfirm, payload)
	if err != nil {
		c.log(ctx, "error", endpointConfirm, map[string]any{"order_id": orderID, "error": err.Error()})
		return pkgerrors.Wrap(pkgerrors.CodeSyncFailure, err, "ims confirm notification failed")
	}
	if !is2xx(status) {
		err := fmt.Errorf("ims responded with status %d", status)
		c.log(ctx, "error", endpointConfirm, map[string]any{"order_id": orderID, "error": err.Error()})
		return pkgerrors.Wrap(pkgerrors.CodeSyncFailure, err, "ims confirm notification failed")
	}

	c.log(ctx, "response", endpointConfirm, map[string]any{"order_id": orderID, "http_status": status})
	return nil
}

// SendToShip reports the To Ship transition after it has been committed. Any
// 2xx response counts as acknowledged.
func (c *Client) SendToShip(ctx context.Context, orderID string) error {
	payload := confirmPayload{OrderID: orderID, OrderStatus: "To Ship"}
	c.log(ctx, "request", endpointToShip, map[string]any{"order_id": orderID})

	status, _, err := c.post(ctx, endpointToShip, payload)
	if err != nil {
		c.log(ctx, "error", endpointToShip, map[string]any{"order_id": orderID, "error": err.Error()})
		return pkgerrors.Wrap(pkgerrors.CodeSyncFailure, err, "ims to-ship notification failed")
	}
	if !is2xx(status) {
		err := fmt.Errorf("ims responded with status %d", status)
		c.log(ctx, "error", endpointToShip, map[string]any{"order_id": orderID, "error": err.Error()})
		return pkgerrors.Wrap(pkgerrors.CodeSyncFailure, err, "ims to-ship notification failed")
	}

	c.log(ctx, "response", endpointToShip, map[string]any{"order_id": orderID, "http_status": status})
	return nil
}

// SendDeliveredManifest reports the allocated serialized units for a delivered
// order. The call is retried with a constant delay and requires the body to
// acknowledge with status "success"; exhaustion maps to CodeSyncExhausted so
// the surrounding transaction can roll back.
func (c *Client) SendDeliveredManifest(ctx context.Context, orderID string, variants []VariantManifest) error {
	payload := manifestPayload{OrderID: orderID, OrderStatus: "Delivered", Variants: variants}
	c.log(ctx, "request", endpointVariants, map[string]any{"order_id": orderID, "variant_count": len(variants)})

	backoff := retry.WithMaxRetries(uint64(c.maxAttempts-1), retry.NewConstant(c.retryDelay))
	attempt := 0

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		status, body, err := c.post(ctx, endpointVariants, payload)
		if err != nil {
			c.recordAttempt(endpointVariants, "failure")
			return retry.RetryableError(err)
		}
		if !is2xx(status) {
			c.recordAttempt(endpointVariants, "failure")
			return retry.RetryableError(fmt.Errorf("ims responded with status %d", status))
		}

		var ack ackBody
		if err := json.Unmarshal(body, &ack); err != nil {
			c.recordAttempt(endpointVariants, "failure")
			return retry.RetryableError(fmt.Errorf("decoding ims ack: %w", err))
		}
		if ack.Status != "success" {
			c.recordAttempt(endpointVariants, "failure")
			return retry.RetryableError(fmt.Errorf("ims ack status %q", ack.Status))
		}

		c.recordAttempt(endpointVariants, "success")
		return nil
	})
	if err != nil {
		c.log(ctx, "error", endpointVariants, map[string]any{
			"order_id": orderID,
			"attempts": attempt,
			"error":    err.Error(),
		})
		return pkgerrors.Wrap(pkgerrors.CodeSyncExhausted, err,
			fmt.Sprintf("ims manifest sync failed after %d attempts", attempt))
	}

	c.log(ctx, "response", endpointVariants, map[string]any{"order_id": orderID, "attempts": attempt})
	return nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload any) (int, []byte, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("encoding ims payload: %w", err)
	}

	url := c.baseURL + "/" + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return 0, nil, fmt.Errorf("building ims request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ObserveSyncDuration(endpoint, time.Since(start))
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("reading ims response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func (c *Client) recordAttempt(endpoint, outcome string) {
	c.metrics.IncSyncAttempt(endpoint, outcome)
}

func (c *Client) log(ctx context.Context, phase, endpoint string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"endpoint": endpoint,
		"phase":    phase,
	}
	for k, v := range fields {
		logFields[k] = v
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("ims %s", endpoint), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("ims %s", phase))
	}
}

func is2xx(status int) bool {
	return status >= 200 && status < 300
}
