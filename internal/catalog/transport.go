package catalog

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/zelena-gryadka/gryadka/internal/logger"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

type loggingTransport struct {
	base http.RoundTripper
}

func (t loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	if req.Header.Get(RequestIDHeader) == "" {
		// RoundTrippers must not mutate the caller's request.
		req = req.Clone(req.Context())
		req.Header.Set(RequestIDHeader, uuid.NewString())
	}

	id := req.Header.Get(RequestIDHeader)

	start := time.Now()
	resp, err := base.RoundTrip(req)
	elapsed := time.Since(start)

	if err != nil {
		logger.Log.Debugf("catalog HTTP %s %s [%s] failed after %s: %v", req.Method, req.URL.String(), id, elapsed, err)

		return nil, err
	}

	logger.Log.Debugf("catalog HTTP %s %s [%s] -> %d (%s)", req.Method, req.URL.String(), id, resp.StatusCode, elapsed)

	return resp, nil
}
