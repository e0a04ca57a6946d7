// Package restyutil builds the resty sessions used by the source
// clients. Every session carries the same bounded retry policy: a
// couple of attempts with backoff, applied only to idempotent requests
// and only for the narrow failure set that tends to be transient, so a
// genuine not-found is never masked by retries.
package restyutil

import (
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/go-resty/resty/v2"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

const (
	retryCount   = 2
	retryWait    = time.Millisecond * 500
	retryMaxWait = time.Second * 4
)

// NewClient returns a session for one source: cookie jar, browser
// user-agent, 30s per-request timeout, bounded retry.
func NewClient(baseUrl string) *resty.Client {
	client := resty.New()
	if baseUrl != "" {
		client.SetBaseURL(baseUrl)
	}
	// cookiejar.New cannot fail with nil options
	jar, _ := cookiejar.New(nil)
	client.SetCookieJar(jar)
	client.SetHeader("user-agent", userAgent)
	client.SetTimeout(time.Second * 30)

	client.SetRetryCount(retryCount)
	client.SetRetryWaitTime(retryWait)
	client.SetRetryMaxWaitTime(retryMaxWait)
	client.AddRetryCondition(ShouldRetry)

	return client
}

// ShouldRetry restricts automatic retry to idempotent GET/HEAD requests
// that failed with a connection error, a rate limit or a server error.
func ShouldRetry(res *resty.Response, err error) bool {
	if res == nil || res.Request == nil {
		return false
	}
	method := res.Request.Method
	if method != http.MethodGet && method != http.MethodHead {
		return false
	}
	if err != nil {
		return true
	}
	code := res.StatusCode()
	return code == http.StatusTooManyRequests || code >= 500
}
