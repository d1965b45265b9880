// Package recordstore is the HTTP client for the persistence boundary: a
// record-oriented service exposing intents, charges and orders by id at a
// configured base address. All transport faults are folded into the domain
// error taxonomy before they leave this package.
package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ledgerline/payment-orchestrator/internal/domain/entity"
	apperr "github.com/ledgerline/payment-orchestrator/internal/domain/errors"
)

type Client struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewClient builds a client with distinct connect and read timeouts. The
// dialer bounds connection establishment; the overall client timeout bounds
// the response read, so no call can hang past its budget.
func NewClient(baseURL string, connectTimeout, readTimeout time.Duration, logger *zap.Logger) *Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: connectTimeout,
		}).DialContext,
		ResponseHeaderTimeout: readTimeout,
	}
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Transport: transport,
			Timeout:   connectTimeout + readTimeout,
		},
		logger: logger,
	}
}

// downstreamError is the error body shape the boundary responds with.
type downstreamError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

func (e downstreamError) text() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Error != "":
		return e.Error
	case e.Detail != "":
		return e.Detail
	}
	return "no detail provided"
}

// do issues one request and decodes the response into out (when non-nil).
// Fault translation: timeouts become DOWNSTREAM_TIMEOUT, other transport
// failures DOWNSTREAM_UNREACHABLE, a 404 NOT_FOUND, and any other error
// status DOWNSTREAM_REJECTED carrying the downstream's own message.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperr.NewAppError(apperr.ErrInternal, "failed to encode request", err)
		}
		reader = bytes.NewReader(payload)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return apperr.NewAppError(apperr.ErrInternal, "failed to build request", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return c.translateTransport(method, url, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.translateTransport(method, url, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		var downstream downstreamError
		_ = json.Unmarshal(respBody, &downstream)
		return apperr.NotFound(downstream.text())
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var downstream downstreamError
		_ = json.Unmarshal(respBody, &downstream)
		c.logger.Warn("persistence boundary rejected request",
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("status_code", resp.StatusCode))
		return apperr.NewAppError(apperr.ErrDownstreamRejected,
			fmt.Sprintf("persistence boundary returned %d: %s", resp.StatusCode, downstream.text()), nil)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return apperr.NewAppError(apperr.ErrDownstreamUnreachable,
				"malformed response from persistence boundary", err)
		}
	}
	return nil
}

func (c *Client) translateTransport(method, url string, err error) error {
	c.logger.Warn("persistence boundary call failed",
		zap.String("method", method),
		zap.String("url", url),
		zap.Error(err))

	var netErr net.Error
	if apperr.As(err, &netErr) && netErr.Timeout() {
		return apperr.NewAppError(apperr.ErrDownstreamTimeout, "persistence boundary call timed out", err)
	}
	if apperr.Is(err, context.DeadlineExceeded) {
		return apperr.NewAppError(apperr.ErrDownstreamTimeout, "persistence boundary call timed out", err)
	}
	return apperr.NewAppError(apperr.ErrDownstreamUnreachable, "persistence boundary unreachable", err)
}

func (c *Client) GetIntent(ctx context.Context, id string) (*entity.PaymentIntent, error) {
	var intent entity.PaymentIntent
	if err := c.do(ctx, http.MethodGet, "/intents/"+id, nil, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

func (c *Client) CreateIntent(ctx context.Context, intent *entity.PaymentIntent) (*entity.PaymentIntent, error) {
	var created entity.PaymentIntent
	if err := c.do(ctx, http.MethodPost, "/intents", intent, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateIntent(ctx context.Context, id string, intent *entity.PaymentIntent) (*entity.PaymentIntent, error) {
	var updated entity.PaymentIntent
	if err := c.do(ctx, http.MethodPut, "/intents/"+id, intent, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) ListIntents(ctx context.Context, limit, offset int) ([]*entity.PaymentIntent, error) {
	path := fmt.Sprintf("/intents?limit=%d&offset=%d", limit, offset)
	var intents []*entity.PaymentIntent
	if err := c.do(ctx, http.MethodGet, path, nil, &intents); err != nil {
		return nil, err
	}
	if intents == nil {
		intents = []*entity.PaymentIntent{}
	}
	return intents, nil
}

func (c *Client) GetCharge(ctx context.Context, id string) (*entity.Charge, error) {
	var charge entity.Charge
	if err := c.do(ctx, http.MethodGet, "/charges/"+id, nil, &charge); err != nil {
		return nil, err
	}
	return &charge, nil
}

func (c *Client) CreateCharge(ctx context.Context, charge *entity.Charge) (*entity.Charge, error) {
	var created entity.Charge
	if err := c.do(ctx, http.MethodPost, "/charges", charge, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateCharge(ctx context.Context, id string, charge *entity.Charge) (*entity.Charge, error) {
	var updated entity.Charge
	if err := c.do(ctx, http.MethodPut, "/charges/"+id, charge, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// PutRefundMetadata is the dedicated annotation endpoint; not every boundary
// deployment exposes it, in which case the caller falls back to a full order
// read-modify-write.
func (c *Client) PutRefundMetadata(ctx context.Context, orderID string, meta entity.RefundMetadata) error {
	return c.do(ctx, http.MethodPost, "/orders/"+orderID+"/refund-metadata", meta, nil)
}

func (c *Client) GetOrder(ctx context.Context, id string) (map[string]interface{}, error) {
	var order map[string]interface{}
	if err := c.do(ctx, http.MethodGet, "/orders/"+id, nil, &order); err != nil {
		return nil, err
	}
	return order, nil
}

func (c *Client) UpdateOrder(ctx context.Context, id string, record map[string]interface{}) error {
	return c.do(ctx, http.MethodPut, "/orders/"+id, record, nil)
}
