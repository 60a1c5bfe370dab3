package media

import (
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	retryCount       = 3
	retryWaitTime    = 1 * time.Second
	retryMaxWaitTime = 15 * time.Second
)

// newRetryingClient builds the shared transport every concrete backend
// client uses: bounded retries with exponential backoff on transient HTTP
// statuses. Retries never cross the primary/fallback boundary; exhausting
// them surfaces a normal error to the caller.
func newRetryingClient(timeout time.Duration) *resty.Client {
	client := resty.New()
	client.SetHeader("Content-Type", "application/json")
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	client.SetRetryCount(retryCount)
	client.SetRetryWaitTime(retryWaitTime)
	client.SetRetryMaxWaitTime(retryMaxWaitTime)
	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		if err != nil || r == nil {
			return false
		}
		switch r.StatusCode() {
		case 429, 502, 503:
			return true
		}
		return false
	})
	return client
}
