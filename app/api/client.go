package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vibast-solutions/lib-go-subtrack/app/factory"
	"github.com/vibast-solutions/lib-go-subtrack/app/types"
	"github.com/vibast-solutions/lib-go-subtrack/config"
)

type tokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// Client talks to the remote catalog/subscription API. Every response is
// decoded out of the {success, data, message} envelope and every failure
// is classified into a Kind before it reaches a caller.
type Client struct {
	baseURL              string
	httpClient           *http.Client
	tokens               tokenProvider
	readRetries          int
	mutationRetries      int
	retryInitialInterval time.Duration
	retryMaxInterval     time.Duration
	logger               logrus.FieldLogger
}

func NewClient(cfg config.APIConfig, tokens tokenProvider) *Client {
	return &Client{
		baseURL:              cfg.BaseURL,
		httpClient:           &http.Client{Timeout: cfg.Timeout},
		tokens:               tokens,
		readRetries:          cfg.ReadRetries,
		mutationRetries:      cfg.MutationRetries,
		retryInitialInterval: cfg.RetryInitialInterval,
		retryMaxInterval:     cfg.RetryMaxInterval,
		logger:               factory.NewModuleLogger("api-client"),
	}
}

func (c *Client) ListSubscriptions(ctx context.Context) ([]types.SubscriptionRecord, error) {
	data, err := c.doRequest(ctx, http.MethodGet, "/subscriptions", nil, nil, c.readRetries)
	if err != nil {
		return nil, err
	}
	var items []types.SubscriptionRecord
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode subscriptions: %w", err)
	}
	return items, nil
}

func (c *Client) GetStats(ctx context.Context) (*types.StatsRecord, error) {
	data, err := c.doRequest(ctx, http.MethodGet, "/stats", nil, nil, c.readRetries)
	if err != nil {
		return nil, err
	}
	var stats types.StatsRecord
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("decode stats: %w", err)
	}
	return &stats, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]types.CategoryRecord, error) {
	data, err := c.doRequest(ctx, http.MethodGet, "/categories", nil, nil, c.readRetries)
	if err != nil {
		return nil, err
	}
	var items []types.CategoryRecord
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return items, nil
}

func (c *Client) ListCatalogSubscriptions(ctx context.Context, categoryID uint64) ([]types.CatalogSubscriptionRecord, error) {
	var query url.Values
	if categoryID != 0 {
		query = url.Values{"category_id": []string{fmt.Sprintf("%d", categoryID)}}
	}
	data, err := c.doRequest(ctx, http.MethodGet, "/catalog/subscriptions", query, nil, c.readRetries)
	if err != nil {
		return nil, err
	}
	var items []types.CatalogSubscriptionRecord
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode catalog subscriptions: %w", err)
	}
	return items, nil
}

func (c *Client) GetCatalogSubscription(ctx context.Context, id uint64) (*types.CatalogSubscriptionRecord, error) {
	data, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/catalog/subscriptions/%d", id), nil, nil, c.readRetries)
	if err != nil {
		return nil, err
	}
	var item types.CatalogSubscriptionRecord
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("decode catalog subscription: %w", err)
	}
	return &item, nil
}

func (c *Client) CreatePresetSubscription(ctx context.Context, req *types.CreatePresetRequest) (*types.SubscriptionRecord, error) {
	return c.doSubscriptionMutation(ctx, http.MethodPost, "/subscriptions/preset", req)
}

func (c *Client) CreateCustomSubscription(ctx context.Context, req *types.CreateCustomRequest) (*types.SubscriptionRecord, error) {
	return c.doSubscriptionMutation(ctx, http.MethodPost, "/subscriptions/custom", req)
}

func (c *Client) UpdateSubscription(ctx context.Context, id uint64, req *types.UpdateSubscriptionRequest) (*types.SubscriptionRecord, error) {
	return c.doSubscriptionMutation(ctx, http.MethodPut, fmt.Sprintf("/subscriptions/%d", id), req)
}

func (c *Client) DeleteSubscription(ctx context.Context, id uint64) error {
	_, err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/subscriptions/%d", id), nil, nil, c.mutationRetries)
	return err
}

func (c *Client) doSubscriptionMutation(ctx context.Context, method, path string, body any) (*types.SubscriptionRecord, error) {
	data, err := c.doRequest(ctx, method, path, nil, body, c.mutationRetries)
	if err != nil {
		return nil, err
	}
	var item types.SubscriptionRecord
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("decode subscription: %w", err)
	}
	return &item, nil
}

// doRequest performs one API call with bounded retries. Only network and
// server failures are retried; auth and validation failures surface
// immediately. maxRetries is the number of attempts after the first.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body any, maxRetries int) (json.RawMessage, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil || token == "" {
		return nil, &Error{Kind: KindAuth, Message: "missing token", cause: ErrUnauthenticated}
	}

	var payload []byte
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = c.retryInitialInterval
	expBackoff.MaxInterval = c.retryMaxInterval
	expBackoff.Reset()

	var lastErr error
	for attempt := 0; ; attempt++ {
		data, err := c.doOnce(ctx, method, path, query, payload, token)
		if err == nil {
			return data, nil
		}
		lastErr = err

		if !IsRetryable(err) || attempt >= maxRetries {
			return nil, lastErr
		}
		if ctx.Err() != nil {
			return nil, lastErr
		}

		delay := expBackoff.NextBackOff()
		c.logger.WithError(err).WithFields(logrus.Fields{
			"method":  method,
			"path":    path,
			"attempt": attempt + 1,
			"delay":   delay.String(),
		}).Warn("Retrying API request")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, lastErr
		case <-timer.C:
		}
	}
}

func (c *Client) doOnce(ctx context.Context, method, path string, query url.Values, payload []byte, token string) (json.RawMessage, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", fmt.Sprintf("client-%s", uuid.New().String()))
	if len(payload) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransport(err)
	}

	if resp.StatusCode == http.StatusNoContent || len(raw) == 0 {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil, nil
		}
		return nil, classifyStatus(resp.StatusCode, "")
	}

	var envelope types.Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil, fmt.Errorf("decode envelope: %w", err)
		}
		return nil, classifyStatus(resp.StatusCode, "")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classifyStatus(resp.StatusCode, envelope.Message)
	}
	if !envelope.Success {
		return nil, &Error{Kind: KindServer, StatusCode: resp.StatusCode, Message: envelope.Message}
	}

	return envelope.Data, nil
}
