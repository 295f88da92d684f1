package probe

import (
	"context"

	"github.com/hamed0406/pinger/internal/domain"
)

// Checker performs a single check for an endpoint. Failures are reported in
// the returned result, never as a panic or an error.
type Checker interface {
	Check(ctx context.Context, ep domain.Endpoint) domain.ProbeResult
}
