package customerinfo

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/thirukguru/receipt-parser/model"
	"github.com/thirukguru/receipt-parser/shared/logger"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// ErrMissingAppUserID is returned for a blank app user id.
var ErrMissingAppUserID = errors.New("missing app user id")

// APIError is a non-2xx backend response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("customer info request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("customer info request failed with status %d: %s", e.StatusCode, e.Message)
}

// HTTPClient is the part of *http.Client the service uses.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type service struct {
	baseURL    string
	apiKey     string
	userAgent  string
	httpClient HTTPClient
	limiter    *rate.Limiter
	flight     singleflight.Group
	logger     *logger.Logger
}

// Service fetches subscriber records.
type Service interface {
	GetCustomerInfo(ctx context.Context, appUserID string) (*model.CustomerInfo, error)
}
