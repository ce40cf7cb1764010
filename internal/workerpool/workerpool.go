// Package workerpool runs a batch of Decode/Encode jobs with bounded
// concurrency, the same semaphore-channel discipline used to cap
// simultaneous connections elsewhere in this stack — here capping
// simultaneous descriptor.Decode/descriptor.Encode calls instead.
package workerpool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oarkflow/smpp-codec/internal/obslog"
	"github.com/oarkflow/smpp-codec/internal/obsmetrics"
	"github.com/oarkflow/smpp-codec/pkg/codecevents"
	"github.com/oarkflow/smpp-codec/pkg/descriptor"
)

// Op selects whether a Job decodes or encodes.
type Op int

const (
	OpDecode Op = iota
	OpEncode
)

// Job is one unit of codec work: decode Input against Descriptor, or
// encode Value against Descriptor. DescriptorName is used only for
// logging, metrics labels and event annotation.
type Job struct {
	ID             string
	Op             Op
	Descriptor     descriptor.Descriptor
	DescriptorName string
	Input          []byte
	Value          any
}

// JobResult is the outcome of running a Job: Value holds the decoded
// value (OpDecode) or encoded bytes (OpEncode); Remainder holds the
// unconsumed input tail for OpDecode.
type JobResult struct {
	JobID     string
	Value     any
	Remainder []byte
	Err       error
}

// Config bounds a Pool's concurrency.
type Config struct {
	MaxWorkers int
}

// DefaultConfig returns a modestly sized pool configuration.
func DefaultConfig() Config {
	return Config{MaxWorkers: 8}
}

// Pool runs Jobs with at most Config.MaxWorkers active at once.
type Pool struct {
	config  Config
	logger  obslog.Logger
	metrics obsmetrics.Collector
	events  *codecevents.Bus
}

// New builds a Pool. A nil logger/metrics/events is replaced with a
// no-op implementation so callers may omit observability wiring.
func New(config Config, logger obslog.Logger, metrics obsmetrics.Collector, events *codecevents.Bus) *Pool {
	if config.MaxWorkers <= 0 {
		config.MaxWorkers = 1
	}
	if logger == nil {
		logger = obslog.NoOp{}
	}
	if metrics == nil {
		metrics = obsmetrics.NoOp{}
	}
	return &Pool{config: config, logger: logger, metrics: metrics, events: events}
}

// Run executes every job in jobs, returning one JobResult per job in the
// same order, with at most Config.MaxWorkers running concurrently. Run
// blocks until all jobs complete or ctx is cancelled; a cancelled context
// causes any job not yet started to be skipped with ctx.Err() as its
// error, while in-flight jobs still run to completion.
func (p *Pool) Run(ctx context.Context, jobs []Job) []JobResult {
	results := make([]JobResult, len(jobs))
	semaphore := make(chan struct{}, p.config.MaxWorkers)
	var wg sync.WaitGroup

	p.metrics.SetGauge("job_queue_depth", float64(len(jobs)), map[string]string{"pool": "default"})

	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			results[i] = JobResult{JobID: job.ID, Err: err}
			continue
		}
		select {
		case semaphore <- struct{}{}:
		case <-ctx.Done():
			results[i] = JobResult{JobID: job.ID, Err: ctx.Err()}
			continue
		}

		wg.Add(1)
		go func(i int, job Job) {
			defer wg.Done()
			defer func() { <-semaphore }()
			p.metrics.SetGauge("worker_pool_occupancy", float64(len(semaphore)), map[string]string{"pool": "default"})
			results[i] = p.runOne(ctx, job)
		}(i, job)
	}

	wg.Wait()
	return results
}

func (p *Pool) runOne(ctx context.Context, job Job) JobResult {
	start := time.Now()
	opName := "decode_total"
	if job.Op == OpEncode {
		opName = "encode_total"
	}

	p.publish(ctx, startEventFor(job), job, 0, nil)

	var result JobResult
	switch job.Op {
	case OpDecode:
		v, rest, err := descriptor.Decode(job.Input, job.Descriptor)
		result = JobResult{JobID: job.ID, Value: v, Remainder: rest, Err: err}
	case OpEncode:
		b, err := descriptor.Encode(job.Value, job.Descriptor)
		result = JobResult{JobID: job.ID, Value: b, Err: err}
	default:
		result = JobResult{JobID: job.ID, Err: fmt.Errorf("workerpool: unknown op %v", job.Op)}
	}

	duration := time.Since(start)
	labels := map[string]string{"descriptor": job.DescriptorName, "result": outcomeLabel(result.Err)}
	p.metrics.IncCounter(opName, labels)
	if job.Op == OpDecode {
		p.metrics.RecordDuration("decode_duration", duration, map[string]string{"descriptor": job.DescriptorName})
	} else {
		p.metrics.RecordDuration("encode_duration", duration, map[string]string{"descriptor": job.DescriptorName})
	}

	if result.Err != nil {
		p.logger.Warn("job failed", "job_id", job.ID, "descriptor", job.DescriptorName, "error", result.Err)
		p.publish(ctx, failEventFor(job), job, duration, result.Err)
	} else {
		p.publish(ctx, succeedEventFor(job), job, duration, nil)
	}
	return result
}

func outcomeLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func startEventFor(job Job) codecevents.EventType {
	if job.Op == OpEncode {
		return codecevents.EventEncodeStarted
	}
	return codecevents.EventDecodeStarted
}

func succeedEventFor(job Job) codecevents.EventType {
	if job.Op == OpEncode {
		return codecevents.EventEncodeSucceeded
	}
	return codecevents.EventDecodeSucceeded
}

func failEventFor(job Job) codecevents.EventType {
	if job.Op == OpEncode {
		return codecevents.EventEncodeFailed
	}
	return codecevents.EventDecodeFailed
}

func (p *Pool) publish(ctx context.Context, eventType codecevents.EventType, job Job, duration time.Duration, err error) {
	if p.events == nil {
		return
	}
	p.events.Publish(ctx, codecevents.NewEvent(eventType, job.DescriptorName, job.ID, duration, err))
}
