package spotify

import (
	"net/http"

	"golang.org/x/time/rate"
)

// limitedTransport delays requests to stay under a shared request rate.
type limitedTransport struct {
	limiter *rate.Limiter
	base    http.RoundTripper
}

func newLimitedTransport(base http.RoundTripper, limit rate.Limit, burst int) *limitedTransport {
	return &limitedTransport{limiter: rate.NewLimiter(limit, burst), base: base}
}

// RoundTrip waits for a token, giving up when the request context ends.
func (t *limitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(req)
}
