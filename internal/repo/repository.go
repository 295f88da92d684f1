package repo

import (
	"context"
	"errors"
	"time"

	"github.com/hamed0406/pinger/internal/domain"
)

var ErrEndpointNotTracked = errors.New("endpoint not tracked")

// Ports (interfaces) between the scheduler, the API and the stores.

// StateStore owns the live MonitorState of every endpoint. Only the
// scheduler writes; the API reads snapshots.
type StateStore interface {
	Apply(ctx context.Context, url string, res domain.ProbeResult, at time.Time) (domain.MonitorState, error)
	StateReader
}

type StateReader interface {
	Snapshot(ctx context.Context) ([]domain.MonitorState, error)
}

// RecordStore is the append-only history of probe outcomes.
type RecordStore interface {
	Append(ctx context.Context, rec domain.LogRecord) error
}
