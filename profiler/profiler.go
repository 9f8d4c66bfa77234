// Package profiler - per-stage timing of the capture pipeline.
package profiler

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultMaxSamples is the number of durations kept per operation.
const DefaultMaxSamples = 600

// Profiler records how long named operations take (frame grab, inference, annotation,
// encoding) and can periodically log a report.
//
// All methods are safe for concurrent use.
type Profiler struct {
	reportInterval time.Duration
	maxSamples     int
	logger         *zap.SugaredLogger

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.RWMutex
	startTime time.Time
	running   bool

	operationTimes map[string]*timeTracker
}

type timeTracker struct {
	durations []time.Duration
	totalTime time.Duration
	minTime   time.Duration
	maxTime   time.Duration
	count     int64
}

// Options configures the profiler.
type Options struct {
	// ReportInterval specifies how often Start logs a report (default: 1m).
	ReportInterval time.Duration
	// MaxSamples specifies the maximum number of durations kept per operation (default: 600).
	MaxSamples int
}

// OperationStats summarizes the retained durations of one operation.
type OperationStats struct {
	Name    string        `json:"name"`
	Count   int64         `json:"count"`
	Samples int           `json:"samples"`
	Avg     time.Duration `json:"avg_ns"`
	Min     time.Duration `json:"min_ns"`
	Max     time.Duration `json:"max_ns"`
	Last    time.Duration `json:"last_ns"`
}

// Stats is a point-in-time snapshot of the profiler.
type Stats struct {
	Uptime     time.Duration    `json:"uptime_ns"`
	Goroutines int              `json:"goroutines"`
	HeapAlloc  uint64           `json:"heap_alloc"`
	Operations []OperationStats `json:"operations"`
}

// New creates a profiler.
//
// Arguments:
// - opts: Configuration options for the profiler.
// - logger: Receives the periodic reports; nil disables them.
//
// Returns:
// - A configured Profiler instance.
func New(opts Options, logger *zap.SugaredLogger) *Profiler {
	if opts.ReportInterval <= 0 {
		opts.ReportInterval = time.Minute
	}
	if opts.MaxSamples <= 0 {
		opts.MaxSamples = DefaultMaxSamples
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Profiler{
		reportInterval: opts.ReportInterval,
		maxSamples:     opts.MaxSamples,
		logger:         logger,
		ctx:            ctx,
		cancel:         cancel,
		startTime:      time.Now(),
		operationTimes: make(map[string]*timeTracker),
	}
}

// Start begins logging a report every ReportInterval until Stop is called.
// Calling Start on a running profiler does nothing.
func (p *Profiler) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return
	}
	p.running = true

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ticker := time.NewTicker(p.reportInterval)
		defer ticker.Stop()

		for {
			select {
			case <-p.ctx.Done():
				return
			case <-ticker.C:
				p.report()
			}
		}
	}()
}

// Stop stops the reporting goroutine and waits for it to exit.
func (p *Profiler) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
}

// StartOperation begins timing an operation.
//
// Arguments:
// - name: The name of the operation to track.
//
// Returns:
// - A function to call when the operation completes; it returns the measured duration.
//
// @example
// done := p.StartOperation("inference")
// dets, err := detector.Detect(ctx, frame)
// elapsed := done()
func (p *Profiler) StartOperation(name string) func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		duration := time.Since(start)
		p.Record(name, duration)
		return duration
	}
}

// Record adds a completed duration for the named operation.
func (p *Profiler) Record(name string, duration time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tracker, exists := p.operationTimes[name]
	if !exists {
		tracker = &timeTracker{minTime: duration, maxTime: duration}
		p.operationTimes[name] = tracker
	}

	tracker.durations = append(tracker.durations, duration)
	if len(tracker.durations) > p.maxSamples {
		tracker.totalTime -= tracker.durations[0]
		tracker.durations = tracker.durations[1:]
	}

	tracker.totalTime += duration
	tracker.count++

	if duration < tracker.minTime {
		tracker.minTime = duration
	}
	if duration > tracker.maxTime {
		tracker.maxTime = duration
	}
}

// Stats returns a snapshot of all recorded operations sorted by name.
func (p *Profiler) Stats() Stats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	p.mu.RLock()
	defer p.mu.RUnlock()

	ops := make([]OperationStats, 0, len(p.operationTimes))
	for name, t := range p.operationTimes {
		n := len(t.durations)
		if n == 0 {
			continue
		}
		ops = append(ops, OperationStats{
			Name:    name,
			Count:   t.count,
			Samples: n,
			Avg:     t.totalTime / time.Duration(n),
			Min:     t.minTime,
			Max:     t.maxTime,
			Last:    t.durations[n-1],
		})
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i].Name < ops[j].Name })

	return Stats{
		Uptime:     time.Since(p.startTime),
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  mem.HeapAlloc,
		Operations: ops,
	}
}

func (p *Profiler) report() {
	s := p.Stats()
	p.logger.Infow("profiler report",
		"uptime", s.Uptime.Truncate(time.Second),
		"goroutines", s.Goroutines,
		"heap_alloc", s.HeapAlloc,
	)
	for _, op := range s.Operations {
		p.logger.Infow("operation timing",
			"operation", op.Name,
			"avg", op.Avg.Truncate(time.Microsecond),
			"min", op.Min.Truncate(time.Microsecond),
			"max", op.Max.Truncate(time.Microsecond),
			"count", op.Count,
		)
	}
}
