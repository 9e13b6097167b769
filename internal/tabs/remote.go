package tabs

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Iron-Ham/filterbox/internal/errors"
)

// TabsRoute is the remote endpoint for tab state.
const TabsRoute = "/api/tabs"

// DefaultRemoteTimeout bounds a single remote request.
const DefaultRemoteTimeout = 10 * time.Second

// RemoteStore reads and writes tabs through the remote tab endpoint.
type RemoteStore struct {
	client *resty.Client
}

// NewRemoteStore returns a store for the service at baseURL. A zero timeout
// uses DefaultRemoteTimeout.
func NewRemoteStore(baseURL string, timeout time.Duration) (*RemoteStore, error) {
	if baseURL == "" {
		return nil, errors.NewValidationError("remote URL is required").WithField("tabs.remote_url")
	}
	if timeout <= 0 {
		timeout = DefaultRemoteTimeout
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(2).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(time.Second)
	client.AddRetryCondition(retryCondition)
	return &RemoteStore{client: client}, nil
}

// retryCondition retries reads and writes on transport errors and 5xx.
// Cancellation is never retried.
func retryCondition(r *resty.Response, err error) bool {
	if err != nil {
		return !errors.IsCanceled(err)
	}
	if r == nil {
		return false
	}
	code := r.StatusCode()
	return code >= 500 || code == http.StatusTooManyRequests || code == http.StatusRequestTimeout
}

// Load fetches the saved tabs.
func (s *RemoteStore) Load(ctx context.Context) ([]Tab, error) {
	var tabs []Tab
	resp, err := s.client.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetResult(&tabs).
		Get(TabsRoute)
	if err := s.check(ctx, "load tabs", resp, err); err != nil {
		return nil, err
	}
	return tabs, nil
}

// Save replaces the saved tabs.
func (s *RemoteStore) Save(ctx context.Context, tabs []Tab) error {
	if tabs == nil {
		tabs = []Tab{}
	}
	resp, err := s.client.R().SetContext(ctx).SetBody(tabs).Post(TabsRoute)
	return s.check(ctx, "save tabs", resp, err)
}

func (s *RemoteStore) check(ctx context.Context, op string, resp *resty.Response, err error) error {
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return errors.NewPersistenceError(op, err).WithMode(SavingRemote.String()).WithKey(TabsRoute)
	}
	if resp.IsError() || resp.StatusCode() >= 300 {
		return errors.NewPersistenceError(op+": "+resp.Status(), nil).
			WithMode(SavingRemote.String()).
			WithKey(TabsRoute).
			WithStatusCode(resp.StatusCode())
	}
	return nil
}
