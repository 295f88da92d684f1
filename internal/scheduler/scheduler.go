package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hamed0406/pinger/internal/domain"
	"github.com/hamed0406/pinger/internal/probe"
	"github.com/hamed0406/pinger/internal/repo"
)

// Diagnoser explains network failures; see probe.DNSDiagnoser.
type Diagnoser interface {
	Diagnose(ctx context.Context, rawURL string) probe.DNSStatus
}

// Scheduler runs probe cycles over a fixed set of endpoints. Probes may run
// concurrently, but their results are applied one at a time by the cycle's
// own goroutine, and only one cycle runs at a time.
type Scheduler struct {
	Logger      *zap.Logger
	Endpoints   []domain.Endpoint
	Checker     probe.Checker
	States      repo.StateStore
	Records     repo.RecordStore
	Diagnoser   Diagnoser // optional
	Interval    time.Duration
	Timeout     time.Duration
	Concurrency int

	running sync.Mutex
	now     func() time.Time
}

type outcome struct {
	ep  domain.Endpoint
	res domain.ProbeResult
	at  time.Time
	dns *probe.DNSStatus
}

func NewScheduler(
	logger *zap.Logger,
	endpoints []domain.Endpoint,
	checker probe.Checker,
	states repo.StateStore,
	records repo.RecordStore,
	interval time.Duration,
	timeout time.Duration,
	concurrency int,
) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	if interval < 0 {
		interval = 0
	}
	if timeout <= 0 {
		timeout = probe.DefaultTimeout
	}
	return &Scheduler{
		Logger:      logger,
		Endpoints:   endpoints,
		Checker:     checker,
		States:      states,
		Records:     records,
		Interval:    interval,
		Timeout:     timeout,
		Concurrency: concurrency,
		now:         time.Now,
	}
}

// Run does an immediate cycle, then one per tick, until ctx is cancelled.
// Ticks are not delayed by slow cycles; a tick that finds a cycle still
// running is skipped.
func (s *Scheduler) Run(ctx context.Context) {
	if s.Interval == 0 {
		s.Logger.Info("scheduler_disabled")
		return
	}

	var wg sync.WaitGroup
	cycle := func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.RunOnce(ctx)
		}()
	}

	t := time.NewTicker(s.Interval)
	defer t.Stop()

	s.Logger.Info("scheduler_started",
		zap.Duration("interval", s.Interval),
		zap.Duration("timeout", s.Timeout),
		zap.Int("endpoints", len(s.Endpoints)),
		zap.Int("concurrency", s.Concurrency),
	)
	cycle()

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			s.Logger.Info("scheduler_stopped")
			return
		case <-t.C:
			cycle()
		}
	}
}

// RunOnce probes every endpoint once. It reports false when another cycle
// was already running and nothing was done.
func (s *Scheduler) RunOnce(ctx context.Context) bool {
	if !s.running.TryLock() {
		s.Logger.Warn("cycle_skipped", zap.String("reason", "previous cycle still running"))
		return false
	}
	defer s.running.Unlock()

	log := s.Logger.With(zap.String("cycle_id", uuid.NewString()))
	defer func() {
		if r := recover(); r != nil {
			log.Error("cycle_panic", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()

	start := time.Now()
	log.Info("cycle_started", zap.Int("endpoints", len(s.Endpoints)))

	results := make(chan outcome)
	go func() {
		defer close(results)
		var g errgroup.Group
		g.SetLimit(s.Concurrency)
		for _, ep := range s.Endpoints {
			ep := ep
			g.Go(func() error { return s.probe(ctx, ep, results) })
		}
		if err := g.Wait(); err != nil {
			log.Error("probe_task_failed", zap.Error(err))
		}
	}()

	var (
		errs     error
		up, down int
	)
	for o := range results {
		if err := s.apply(ctx, log, o); err != nil {
			errs = multierr.Append(errs, err)
		}
		if o.res.Status == domain.StatusUp {
			up++
		} else {
			down++
		}
	}

	if errs != nil {
		log.Warn("cycle_errors", zap.Int("count", len(multierr.Errors(errs))), zap.Error(errs))
	}
	log.Info("cycle_finished",
		zap.Int("up", up),
		zap.Int("down", down),
		zap.Duration("took", time.Since(start)),
	)
	return true
}

// probe runs one check and hands the result to the cycle. Results that
// arrive after ctx is cancelled are dropped.
func (s *Scheduler) probe(ctx context.Context, ep domain.Endpoint, out chan<- outcome) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("probe %s panicked: %v", ep.URL, r)
		}
	}()
	if ctx.Err() != nil {
		return nil
	}

	pctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()
	res := s.Checker.Check(pctx, ep)
	if ctx.Err() != nil {
		return nil
	}

	o := outcome{ep: ep, res: res, at: s.now()}
	if s.Diagnoser != nil && res.Status == domain.StatusDown && res.ErrorType == domain.ErrorNetwork {
		dns := s.Diagnoser.Diagnose(ctx, ep.URL)
		o.dns = &dns
	}
	out <- o
	return nil
}

func (s *Scheduler) apply(ctx context.Context, log *zap.Logger, o outcome) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("apply %s panicked: %v", o.ep.URL, r)
		}
	}()

	state, err := s.States.Apply(ctx, o.ep.URL, o.res, o.at.UTC())
	if err != nil {
		return fmt.Errorf("update state %s: %w", o.ep.URL, err)
	}

	fields := []zap.Field{
		zap.String("name", o.ep.Name),
		zap.String("url", o.ep.URL),
		zap.String("status", string(state.Status)),
	}
	if state.Latency != nil {
		fields = append(fields, zap.Float64("latency_ms", *state.Latency))
	}
	if state.ErrorType != nil {
		fields = append(fields, zap.String("error_type", string(*state.ErrorType)))
	}
	if state.DownSince != nil {
		fields = append(fields, zap.Time("down_since", *state.DownSince))
	}
	log.Info("probe_result", fields...)

	if o.dns != nil {
		log.Info("dns_check",
			zap.String("url", o.ep.URL),
			zap.String("host", o.dns.Host),
			zap.String("class", string(o.dns.Class)),
			zap.Strings("nameservers", o.dns.Nameservers),
			zap.String("cname", o.dns.CNAME),
			zap.String("resolver_error", o.dns.ResolverError),
		)
	}

	rec := domain.NewLogRecord(o.ep, state.Status, o.at)
	if err := s.Records.Append(ctx, rec); err != nil {
		return fmt.Errorf("record %s: %w", o.ep.URL, err)
	}
	return nil
}
