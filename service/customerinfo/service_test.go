package customerinfo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thirukguru/receipt-parser/service/config"
	"github.com/thirukguru/receipt-parser/shared/logger"
)

const subscriberJSON = `{
  "request_date": "2025-03-01T10:00:00Z",
  "subscriber": {
    "original_app_user_id": "user 1/a",
    "first_seen": "2025-01-01T00:00:00Z",
    "entitlements": {
      "pro": {"product_identifier": "pro.monthly", "purchase_date": "2025-02-01T10:00:00Z", "expires_date": "2099-03-01T10:00:00Z"},
      "legacy": {"product_identifier": "old", "purchase_date": "2020-01-01T00:00:00Z", "expires_date": "2020-02-01T00:00:00Z"}
    },
    "subscriptions": {},
    "non_subscriptions": {}
  }
}`

func newTestService(t *testing.T, url string) Service {
	t.Helper()
	l, _ := logger.NewTest()
	return NewService(config.APIConfig{BaseURL: url + "/", APIKey: "test-key", Timeout: 5 * time.Second}, WithLogger(l))
}

func TestGetCustomerInfo(t *testing.T) {
	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(subscriberJSON))
	}))
	defer server.Close()

	info, err := newTestService(t, server.URL).GetCustomerInfo(context.Background(), "user 1/a")
	require.NoError(t, err)

	assert.Equal(t, "/v1/subscribers/user%201%2Fa", gotPath)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "user 1/a", info.Subscriber.OriginalAppUserID)
	assert.Equal(t, []string{"pro"}, info.ActiveEntitlements(time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)))
}

func TestGetCustomerInfoMissingAppUserID(t *testing.T) {
	l, logs := logger.NewTest()
	svc := NewService(config.APIConfig{BaseURL: "http://unused"}, WithLogger(l))

	_, err := svc.GetCustomerInfo(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrMissingAppUserID)
	assert.Equal(t, 1, logs.FilterMessageSnippet("without an app user id").Len())
}

func TestGetCustomerInfoAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code": 7225, "message": "Invalid API key."}`))
	}))
	defer server.Close()

	_, err := newTestService(t, server.URL).GetCustomerInfo(context.Background(), "user")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid API key.", apiErr.Message)
}

func TestGetCustomerInfoPlainTextError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestService(t, server.URL).GetCustomerInfo(context.Background(), "user")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "upstream down", apiErr.Message)
}

func TestGetCustomerInfoInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{"))
	}))
	defer server.Close()

	_, err := newTestService(t, server.URL).GetCustomerInfo(context.Background(), "user")
	assert.Error(t, err)
}

func TestConcurrentCallsShareRequest(t *testing.T) {
	var requests atomic.Int32
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		<-release
		_, _ = w.Write([]byte(subscriberJSON))
	}))
	defer server.Close()

	svc := newTestService(t, server.URL)

	const callers = 5
	var (
		wg      sync.WaitGroup
		started sync.WaitGroup
		errs    = make(chan error, callers)
	)
	started.Add(callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			started.Done()
			_, err := svc.GetCustomerInfo(context.Background(), "shared-user")
			errs <- err
		}()
	}
	started.Wait()
	// let every caller join the in-flight request before the server answers
	require.Eventually(t, func() bool { return requests.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), requests.Load())
}

func TestRateLimitRespectsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(subscriberJSON))
	}))
	defer server.Close()

	l, _ := logger.NewTest()
	svc := NewService(config.APIConfig{BaseURL: server.URL, RateLimit: 0.001}, WithLogger(l))

	_, err := svc.GetCustomerInfo(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = svc.GetCustomerInfo(ctx, "second")
	assert.Error(t, err, "second call waits for a token and hits the deadline")
}

func TestCancelledCallerDoesNotFailSharedRequest(t *testing.T) {
	var requests atomic.Int32
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		<-release
		_, _ = w.Write([]byte(subscriberJSON))
	}))
	defer server.Close()

	svc := newTestService(t, server.URL)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.GetCustomerInfo(firstCtx, "shared-user")
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return requests.Load() == 1 }, time.Second, 5*time.Millisecond)

	secondErr := make(chan error, 1)
	go func() {
		_, err := svc.GetCustomerInfo(context.Background(), "shared-user")
		secondErr <- err
	}()
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	assert.NoError(t, <-secondErr)
	assert.Equal(t, int32(1), requests.Load())
}
