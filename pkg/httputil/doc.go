// Package httputil provides retry helpers for the remote catalog client.
//
// [Retry] re-runs an operation while it fails with a [RetryableError],
// doubling the delay after each attempt. Transport errors, 5xx and 429
// responses are wrapped as retryable by the client; everything else
// (4xx, decode failures) is returned on the first attempt:
//
//	err := httputil.Retry(ctx, 3, 200*time.Millisecond, func() error {
//	    return client.PostJSON(ctx, url, body, &out)
//	})
package httputil
