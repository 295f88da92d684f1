package domain

import "time"

type Status string

const (
	StatusUnknown Status = "unknown"
	StatusUp      Status = "up"
	StatusDown    Status = "down"
)

// ErrorType tells apart the ways a probe can fail. Every value collapses to
// StatusDown in the state machine.
type ErrorType string

const (
	ErrorNetwork ErrorType = "network"
	ErrorSSL     ErrorType = "ssl"
	ErrorTimeout ErrorType = "timeout"
)

// Endpoint is one monitored URL. It never changes after the registry is built.
type Endpoint struct {
	Name     string `json:"name" yaml:"name" toml:"name"`
	URL      string `json:"url" yaml:"url" toml:"url"`
	Protocol string `json:"protocol" yaml:"protocol" toml:"protocol"`
}

// MonitorState is the live view of one endpoint as served by GET /status.
type MonitorState struct {
	Name        string     `json:"name"`
	URL         string     `json:"url"`
	Protocol    string     `json:"protocol"`
	Status      Status     `json:"status"`
	Latency     *float64   `json:"latency"`
	DownSince   *time.Time `json:"downSince"`
	LastChecked *time.Time `json:"lastChecked"`
	ErrorType   *ErrorType `json:"errorType"`
}

// ProbeResult is produced by a checker and consumed immediately by the cycle.
// LatencyMS is only meaningful when Status is up, ErrorType only when down.
type ProbeResult struct {
	Status    Status
	LatencyMS float64
	ErrorType ErrorType
}

// LogRecord is one line of up.log or down.log.
type LogRecord struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Status   Status `json:"status"`
	Datetime string `json:"datetime"`
}

// DatetimeLayout is the layout used for LogRecord.Datetime.
const DatetimeLayout = time.RFC3339

func NewMonitorState(ep Endpoint) MonitorState {
	return MonitorState{
		Name:     ep.Name,
		URL:      ep.URL,
		Protocol: ep.Protocol,
		Status:   StatusUnknown,
	}
}

func Up(latencyMS float64) ProbeResult {
	return ProbeResult{Status: StatusUp, LatencyMS: latencyMS}
}

func Down(et ErrorType) ProbeResult {
	return ProbeResult{Status: StatusDown, ErrorType: et}
}

// Apply returns the state that follows m once res has been observed at at.
// downSince is kept across consecutive down results and only set when a
// down-streak starts.
func (m MonitorState) Apply(res ProbeResult, at time.Time) MonitorState {
	next := m
	checked := at
	next.LastChecked = &checked

	if res.Status == StatusUp {
		lat := res.LatencyMS
		if lat < 0 {
			lat = 0
		}
		next.Status = StatusUp
		next.Latency = &lat
		next.DownSince = nil
		next.ErrorType = nil
		return next
	}

	et := res.ErrorType
	if et == "" {
		et = ErrorNetwork
	}
	next.Status = StatusDown
	next.Latency = nil
	next.ErrorType = &et
	if m.Status != StatusDown || m.DownSince == nil {
		since := at
		next.DownSince = &since
	}
	return next
}

// NewLogRecord builds the log line for a result observed at at.
func NewLogRecord(ep Endpoint, status Status, at time.Time) LogRecord {
	return LogRecord{
		Name:     ep.Name,
		URL:      ep.URL,
		Status:   status,
		Datetime: at.Format(DatetimeLayout),
	}
}
