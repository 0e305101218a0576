// Package executor runs statistic queries on a bounded pool of worker
// goroutines, each task holding one pooled connection for its duration.
package executor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pgEdge/pgedge-tripstats/internal/catalog"
	"github.com/pgEdge/pgedge-tripstats/internal/db"
	"github.com/pgEdge/pgedge-tripstats/internal/logging"
	"github.com/pgEdge/pgedge-tripstats/internal/metrics"
	"github.com/pgEdge/pgedge-tripstats/internal/stats"
)

// maxLatencySamples bounds the latency history kept for summaries.
const maxLatencySamples = 4096

// errClosed is the cause reported for tasks submitted after Close.
var errClosed = errors.New("executor is closed")

// Config holds configuration for the executor.
type Config struct {
	Workers        int
	QueueSize      int
	QueueTimeout   time.Duration
	AcquireTimeout time.Duration
	QueryTimeout   time.Duration
	ReportInterval time.Duration
}

// DefaultConfig returns the executor defaults.
func DefaultConfig() Config {
	return Config{
		Workers:        8,
		QueueSize:      64,
		QueueTimeout:   2 * time.Second,
		AcquireTimeout: 5 * time.Second,
		QueryTimeout:   30 * time.Second,
	}
}

// Executor manages the worker pool.
type Executor struct {
	pool db.Pool
	cfg  Config

	tasks  chan *task
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	stopReporter context.CancelFunc
	reporterDone chan struct{}

	// Metrics
	totalQueries    atomic.Int64
	successQueries  atomic.Int64
	failedQueries   atomic.Int64
	totalDurationNs atomic.Int64
	busyWorkers     atomic.Int64
	startTime       time.Time

	latencyMu sync.Mutex
	latencies []float64 // milliseconds, ring buffer
	latencyAt int

	queryMetrics sync.Map // map[string]*queryMetric
}

type queryMetric struct {
	count      atomic.Int64
	durationNs atomic.Int64
	errors     atomic.Int64
}

type task struct {
	ctx      context.Context
	name     string
	fn       catalog.Task
	enqueued time.Time
	done     chan error
}

// New starts an executor with cfg.Workers workers drawing connections from
// pool.
func New(pool db.Pool, cfg Config) *Executor {
	def := DefaultConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.QueueTimeout <= 0 {
		cfg.QueueTimeout = def.QueueTimeout
	}

	e := &Executor{
		pool:      pool,
		cfg:       cfg,
		tasks:     make(chan *task, cfg.QueueSize),
		startTime: time.Now(),
	}

	logging.Info().
		Int("workers", cfg.Workers).
		Int("queue_size", cfg.QueueSize).
		Dur("acquire_timeout", cfg.AcquireTimeout).
		Dur("query_timeout", cfg.QueryTimeout).
		Msg("Starting query executor")

	for i := 0; i < cfg.Workers; i++ {
		e.wg.Add(1)
		go e.worker(i)
	}

	if cfg.ReportInterval > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		e.stopReporter = cancel
		e.reporterDone = make(chan struct{})
		go e.reporter(ctx)
	}

	return e
}

// Run submits a task and waits for its result. The task runs on a worker
// with a context detached from ctx's cancellation, so a caller that goes
// away does not abort the query; its result is discarded instead.
func (e *Executor) Run(ctx context.Context, name string, fn catalog.Task) error {
	t := &task{
		ctx:      ctx,
		name:     name,
		fn:       fn,
		enqueued: time.Now(),
		done:     make(chan error, 1),
	}

	if err := e.enqueue(ctx, t); err != nil {
		return err
	}

	select {
	case err := <-t.done:
		return err
	case <-ctx.Done():
		logging.Ctx(ctx).Debug().
			Str("statistic", name).
			Msg("Caller went away, result will be discarded")
		return ctx.Err()
	}
}

func (e *Executor) enqueue(ctx context.Context, t *task) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return e.fail(t.name, newError(ErrPoolExhausted, t.name, errClosed))
	}

	// Fast path when the queue has room.
	select {
	case e.tasks <- t:
		return nil
	default:
	}

	timer := time.NewTimer(e.cfg.QueueTimeout)
	defer timer.Stop()

	select {
	case e.tasks <- t:
		return nil
	case <-timer.C:
		return e.fail(t.name, newError(ErrPoolExhausted, t.name,
			fmt.Errorf("task queue full for %s", e.cfg.QueueTimeout)))
	case <-ctx.Done():
		return ctx.Err()
	}
}

// fail records a task that never reached a worker.
func (e *Executor) fail(name string, err *Error) error {
	e.totalQueries.Add(1)
	e.failedQueries.Add(1)
	e.getOrCreateQueryMetric(name).errors.Add(1)
	metrics.RecordQuery(name, KindName(err), 0)
	return err
}

func (e *Executor) worker(id int) {
	defer e.wg.Done()
	logging.Debug().Int("worker_id", id).Msg("Query worker started")

	for t := range e.tasks {
		metrics.QueueWait.Observe(time.Since(t.enqueued).Seconds())
		t.done <- e.execute(t)
	}

	logging.Debug().Int("worker_id", id).Msg("Query worker stopped")
}

// execute acquires a connection, runs the task and always releases the
// connection.
func (e *Executor) execute(t *task) (err error) {
	start := time.Now()
	e.busyWorkers.Add(1)
	metrics.BusyWorkers.Inc()
	defer func() {
		e.busyWorkers.Add(-1)
		metrics.BusyWorkers.Dec()
		e.record(t.ctx, t.name, time.Since(start), err)
	}()

	acquireCtx, cancel := withTimeout(context.WithoutCancel(t.ctx), e.cfg.AcquireTimeout)
	conn, acquireErr := e.pool.Acquire(acquireCtx)
	cancel()
	if acquireErr != nil {
		if errors.Is(acquireErr, context.DeadlineExceeded) {
			return newError(ErrPoolTimeout, t.name, acquireErr)
		}
		return newError(ErrPoolExhausted, t.name, acquireErr)
	}
	defer conn.Release()

	return e.invoke(t, conn)
}

func (e *Executor) invoke(t *task, q db.Querier) (err error) {
	ctx, cancel := withTimeout(context.WithoutCancel(t.ctx), e.cfg.QueryTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = newError(ErrWorkerJoin, t.name, fmt.Errorf("panic: %v", r))
		}
	}()

	if taskErr := t.fn(ctx, q); taskErr != nil {
		return newError(ErrQuery, t.name, taskErr)
	}
	return nil
}

func withTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, d)
}

func (e *Executor) record(ctx context.Context, name string, d time.Duration, err error) {
	e.totalQueries.Add(1)
	e.totalDurationNs.Add(int64(d))

	metric := e.getOrCreateQueryMetric(name)
	metric.count.Add(1)
	metric.durationNs.Add(int64(d))

	kind := ""
	if err != nil {
		kind = KindName(err)
		e.failedQueries.Add(1)
		metric.errors.Add(1)

		var execErr *Error
		if errors.As(err, &execErr) {
			logging.Ctx(ctx).Debug().
				Err(execErr.Cause()).
				Str("statistic", name).
				Str("kind", kind).
				Msg("Statistic task failed")
		}
	} else {
		e.successQueries.Add(1)
	}
	metrics.RecordQuery(name, kind, d)

	e.latencyMu.Lock()
	ms := float64(d) / 1e6
	if len(e.latencies) < maxLatencySamples {
		e.latencies = append(e.latencies, ms)
	} else {
		e.latencies[e.latencyAt] = ms
		e.latencyAt = (e.latencyAt + 1) % maxLatencySamples
	}
	e.latencyMu.Unlock()
}

func (e *Executor) getOrCreateQueryMetric(name string) *queryMetric {
	if m, ok := e.queryMetrics.Load(name); ok {
		return m.(*queryMetric)
	}

	m := &queryMetric{}
	actual, _ := e.queryMetrics.LoadOrStore(name, m)
	return actual.(*queryMetric)
}

// QueueDepth returns the number of tasks waiting for a worker.
func (e *Executor) QueueDepth() int {
	return len(e.tasks)
}

// BusyWorkers returns the number of workers currently running a task.
func (e *Executor) BusyWorkers() int {
	return int(e.busyWorkers.Load())
}

// Close stops accepting tasks, lets queued tasks finish and waits for the
// workers to exit.
func (e *Executor) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	close(e.tasks)
	e.mu.Unlock()

	e.wg.Wait()

	if e.stopReporter != nil {
		e.stopReporter()
		<-e.reporterDone
	}
}

func (e *Executor) reporter(ctx context.Context) {
	defer close(e.reporterDone)

	ticker := time.NewTicker(e.cfg.ReportInterval)
	defer ticker.Stop()

	var lastTotal int64
	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			total := e.totalQueries.Load()
			durationNs := e.totalDurationNs.Load()

			elapsed := now.Sub(lastTime).Seconds()
			rate := float64(total-lastTotal) / elapsed

			var avgLatencyMs float64
			if total > 0 {
				avgLatencyMs = float64(durationNs) / float64(total) / 1e6
			}

			logging.Info().
				Int64("total", total).
				Int64("success", e.successQueries.Load()).
				Int64("failed", e.failedQueries.Load()).
				Float64("rate_qps", rate).
				Float64("avg_latency_ms", avgLatencyMs).
				Int("queue_depth", e.QueueDepth()).
				Int("busy_workers", e.BusyWorkers()).
				Msg("Statistics")

			lastTotal = total
			lastTime = now
		}
	}
}

// StatisticSummary holds per-statistic counters.
type StatisticSummary struct {
	Name         string
	Count        int64
	Errors       int64
	AvgLatencyMs float64
}

// Summary holds executor totals since start.
type Summary struct {
	Duration     time.Duration
	Total        int64
	Successful   int64
	Failed       int64
	AvgLatencyMs float64
	P50LatencyMs float64
	P95LatencyMs float64
	Statistics   []StatisticSummary
}

// Summary returns the executor totals.
func (e *Executor) Summary() Summary {
	total := e.totalQueries.Load()
	s := Summary{
		Duration:   time.Since(e.startTime),
		Total:      total,
		Successful: e.successQueries.Load(),
		Failed:     e.failedQueries.Load(),
	}
	if total > 0 {
		s.AvgLatencyMs = float64(e.totalDurationNs.Load()) / float64(total) / 1e6
	}

	e.latencyMu.Lock()
	sorted := make([]float64, len(e.latencies))
	copy(sorted, e.latencies)
	e.latencyMu.Unlock()
	sort.Float64s(sorted)
	s.P50LatencyMs = stats.PercentileCont(sorted, 0.50)
	s.P95LatencyMs = stats.PercentileCont(sorted, 0.95)

	e.queryMetrics.Range(func(key, value any) bool {
		m := value.(*queryMetric)
		st := StatisticSummary{
			Name:   key.(string),
			Count:  m.count.Load(),
			Errors: m.errors.Load(),
		}
		if st.Count > 0 {
			st.AvgLatencyMs = float64(m.durationNs.Load()) / float64(st.Count) / 1e6
		}
		s.Statistics = append(s.Statistics, st)
		return true
	})
	sort.Slice(s.Statistics, func(i, j int) bool {
		return s.Statistics[i].Name < s.Statistics[j].Name
	})

	return s
}

// PrintSummary logs the executor totals and per-statistic counters.
func (e *Executor) PrintSummary() {
	s := e.Summary()

	logging.Info().
		Dur("duration", s.Duration).
		Int64("total_queries", s.Total).
		Int64("successful", s.Successful).
		Int64("failed", s.Failed).
		Float64("avg_latency_ms", s.AvgLatencyMs).
		Float64("p50_latency_ms", s.P50LatencyMs).
		Float64("p95_latency_ms", s.P95LatencyMs).
		Msg("Final summary")

	for _, st := range s.Statistics {
		logging.Info().
			Str("statistic", st.Name).
			Int64("count", st.Count).
			Int64("errors", st.Errors).
			Float64("avg_latency_ms", st.AvgLatencyMs).
			Msg("")
	}
}
