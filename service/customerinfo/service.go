// Package customerinfo fetches subscriber records from the purchases backend.
package customerinfo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/thirukguru/receipt-parser/model"
	"github.com/thirukguru/receipt-parser/service/config"
	"github.com/thirukguru/receipt-parser/service/metrics"
	"github.com/thirukguru/receipt-parser/shared/logger"
	"github.com/thirukguru/receipt-parser/version"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const maxErrorBody = 4 << 10

// Option configures the service.
type Option func(*service)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c HTTPClient) Option {
	return func(s *service) { s.httpClient = c }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *service) { s.logger = l }
}

// NewService creates a customer info client. A non-positive RateLimit disables throttling.
func NewService(cfg config.APIConfig, opts ...Option) Service {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	s := &service{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		userAgent:  "receipt-parser/" + version.Version,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetCustomerInfo fetches the subscriber record for appUserID. Concurrent calls for the
// same id share a single request. Cancelling ctx abandons the wait for this caller only;
// the shared request keeps running for the others.
func (s *service) GetCustomerInfo(ctx context.Context, appUserID string) (*model.CustomerInfo, error) {
	if strings.TrimSpace(appUserID) == "" {
		s.logger.Log(logger.LevelError, logger.IntentRCError, "GetCustomerInfo called without an app user id")
		return nil, ErrMissingAppUserID
	}

	flightCtx := context.WithoutCancel(ctx)
	ch := s.flight.DoChan(appUserID, func() (any, error) {
		info, err := s.fetch(flightCtx, appUserID)
		metrics.ObserveCustomerInfo(err)
		return info, err
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			s.logger.Debug("customer info request shared with an in-flight call", zap.String("app_user_id", appUserID))
		}
		return res.Val.(*model.CustomerInfo), nil
	}
}

func (s *service) fetch(ctx context.Context, appUserID string) (*model.CustomerInfo, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	endpoint := s.baseURL + "/v1/subscribers/" + url.PathEscape(appUserID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", s.userAgent)
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	s.logger.User("fetching customer info", zap.String("app_user_id", appUserID))
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("customer info request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
		s.logger.Log(logger.LevelError, logger.IntentRCError, "customer info request failed",
			zap.String("app_user_id", appUserID), zap.Int("status", resp.StatusCode))
		return nil, apiErr
	}

	var info model.CustomerInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode customer info: %w", err)
	}
	s.logger.RCSuccess("customer info updated from network", zap.String("app_user_id", appUserID))
	return &info, nil
}

// errorMessage extracts {"message": ...} from an error body, falling back to the raw text.
func errorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &payload) == nil && payload.Message != "" {
		return payload.Message
	}
	return strings.TrimSpace(string(raw))
}
