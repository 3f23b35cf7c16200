package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/autoparts/internal/domain/model"
)

// ErrDisabled is returned when no rate service is configured.
var ErrDisabled = errors.New("rate service disabled")

// ErrInvalidRate indicates the service answered with an unusable rate.
var ErrInvalidRate = errors.New("invalid exchange rate")

// TooManyRequestsError represents rate limiting signal from the rate service.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

// Client exposes operations to query the exchange rate service.
type Client interface {
	Fetch(ctx context.Context, currency string) (*model.ExchangeRate, error)
}

// HTTPClient implements Client via HTTP API.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
}

// response mirrors JSON payload from the rate service.
type response struct {
	Currency string          `json:"currency"`
	Rate     decimal.Decimal `json:"rate"`
	Date     string          `json:"date"`
}

// NewHTTPClient creates HTTP rate client with default timeout.
func NewHTTPClient(baseURL string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse rate service url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("rate service url must be absolute")
	}
	return &HTTPClient{
		baseURL: parsed,
		logger:  logger,
		now:     time.Now,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// Fetch queries the service for the current rate of currency against the base currency.
func (c *HTTPClient) Fetch(ctx context.Context, currency string) (*model.ExchangeRate, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return nil, fmt.Errorf("%w: currency is required", ErrInvalidRate)
	}

	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/api/rates/", currency)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		var data response
		if err := json.Unmarshal(body, &data); err != nil {
			return nil, err
		}
		if !data.Rate.IsPositive() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidRate, data.Rate.String())
		}
		if data.Currency == "" {
			data.Currency = currency
		}
		return &model.ExchangeRate{
			Currency:  strings.ToUpper(data.Currency),
			Rate:      data.Rate,
			FetchedAt: c.fetchedAt(data.Date),
		}, nil
	case http.StatusTooManyRequests:
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		return nil, TooManyRequestsError{RetryAfter: retryAfter}
	default:
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("rate request failed", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return nil, fmt.Errorf("rate service error: %s", resp.Status)
	}
}

func (c *HTTPClient) fetchedAt(date string) time.Time {
	if date != "" {
		if t, err := time.Parse(time.RFC3339, date); err == nil {
			return t.UTC()
		}
		if t, err := time.Parse(time.DateOnly, date); err == nil {
			return t.UTC()
		}
	}
	return c.now().UTC()
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 5 * time.Second
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 5 * time.Second
}

// disabledClient is used when RATE_SERVICE_ADDRESS is empty.
type disabledClient struct{}

func (disabledClient) Fetch(context.Context, string) (*model.ExchangeRate, error) {
	return nil, ErrDisabled
}
