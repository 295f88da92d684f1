package probe

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/hamed0406/pinger/internal/domain"
)

const DefaultTimeout = 10 * time.Second

// Status codes in [minUpStatus, maxUpStatus) count as reachable. 400-404 are
// included on purpose: the server answered.
const (
	minUpStatus = 200
	maxUpStatus = 405
)

type HTTPChecker struct {
	Client  *http.Client
	Timeout time.Duration
}

func NewHTTPChecker(timeout time.Duration) *HTTPChecker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
		DisableKeepAlives:     true,
	}
	return &HTTPChecker{
		Client: &http.Client{
			Timeout:   timeout,
			Transport: tr,
			// A redirect is an answer; don't chase it.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		Timeout: timeout,
	}
}

func (h *HTTPChecker) Check(ctx context.Context, ep domain.Endpoint) (res domain.ProbeResult) {
	defer func() {
		if r := recover(); r != nil {
			res = domain.Down(domain.ErrorNetwork)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, h.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ep.URL, nil)
	if err != nil {
		return domain.Down(domain.ErrorNetwork)
	}

	start := time.Now()
	resp, err := h.Client.Do(req)
	if err != nil {
		return domain.Down(Classify(err))
	}
	latency := time.Since(start).Seconds() * 1000 // ms
	// Only the status line matters; the body is dropped unread.
	_ = resp.Body.Close()

	if IsUpStatus(resp.StatusCode) {
		return domain.Up(latency)
	}
	// 405 and above: the taxonomy has no status-code bucket, so it is
	// reported as network.
	return domain.Down(domain.ErrorNetwork)
}

// IsUpStatus reports whether an HTTP status code counts as reachable.
func IsUpStatus(code int) bool {
	return code >= minUpStatus && code < maxUpStatus
}
