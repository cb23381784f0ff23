// Package httputil provides retry support for repository HTTP clients.
//
// # Retry
//
// [Retry] re-runs an operation that failed with a transient error:
//
//   - connection and timeout errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// The operation marks such failures with [Retryable]; every other error
// stops the loop at once, so a 404 is never retried:
//
//	err := httputil.Retry(ctx, 3, 500*time.Millisecond, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    ...
//	})
//
// The delay doubles after every attempt and waiting stops as soon as the
// context is cancelled.
package httputil
