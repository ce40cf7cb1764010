// Command smppcodec decodes and encodes SMPP v5.0 PDUs against the
// descriptor catalog, standalone or in rate-limited batches, dispatching
// its subcommands from os.Args by hand in the same bootstrap style the
// teacher's examples/full-server/main.go uses rather than a subcommand
// framework.
package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/oarkflow/smpp-codec/internal/appconfig"
	"github.com/oarkflow/smpp-codec/internal/flowcontrol"
	"github.com/oarkflow/smpp-codec/internal/obslog"
	"github.com/oarkflow/smpp-codec/internal/obsmetrics"
	"github.com/oarkflow/smpp-codec/internal/ratelimit"
	"github.com/oarkflow/smpp-codec/internal/workerpool"
	"github.com/oarkflow/smpp-codec/pkg/catalog"
	"github.com/oarkflow/smpp-codec/pkg/codecevents"
	"github.com/oarkflow/smpp-codec/pkg/descriptor"
	"github.com/oarkflow/smpp-codec/pkg/registry"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "decode":
		err = runDecode(os.Args[2:])
	case "encode":
		err = runEncode(os.Args[2:])
	case "batch":
		err = runBatch(os.Args[2:])
	case "init-config":
		err = runInitConfig(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "smppcodec:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: smppcodec <decode|encode|batch|init-config> [args]")
	fmt.Fprintln(os.Stderr, "  decode <pdu-name> <hex-bytes>")
	fmt.Fprintln(os.Stderr, "  encode <pdu-name> <json-value>")
	fmt.Fprintln(os.Stderr, "  batch <config-path> <jobs.json>")
	fmt.Fprintln(os.Stderr, "  init-config <path>")
}

// lookupDescriptor resolves a PDU name against reg first and, failing
// that, against the built-in catalog, storing a catalog hit into reg
// under name so later lookups of that name in the same registry find it
// there. Only the requested descriptor is stored, not the whole catalog.
func lookupDescriptor(ctx context.Context, reg registry.Store, name string) (descriptor.Descriptor, error) {
	if d, err := reg.Get(ctx, name); err == nil {
		return d, nil
	}
	d, ok := catalog.ByName[name]
	if !ok {
		return nil, fmt.Errorf("unknown PDU %q", name)
	}
	if err := reg.Put(ctx, name, d); err != nil {
		return nil, fmt.Errorf("register %q: %w", name, err)
	}
	return d, nil
}

func runDecode(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("decode requires <pdu-name> <hex-bytes>")
	}
	name, hexInput := args[0], args[1]

	data, err := hex.DecodeString(hexInput)
	if err != nil {
		return fmt.Errorf("decode hex input: %w", err)
	}

	reg := registry.NewMemoryStore(nil)
	ctx := context.Background()
	d, err := lookupDescriptor(ctx, reg, name)
	if err != nil {
		return err
	}

	value, remainder, err := descriptor.Decode(data, d)
	if err != nil {
		return explainMismatch(err)
	}

	out, err := json.MarshalIndent(toJSON(value), "", "  ")
	if err != nil {
		return fmt.Errorf("render decoded value: %w", err)
	}
	fmt.Println(string(out))
	if len(remainder) > 0 {
		fmt.Fprintf(os.Stderr, "%d unconsumed trailing byte(s): %s\n", len(remainder), hex.EncodeToString(remainder))
	}
	return nil
}

func runEncode(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("encode requires <pdu-name> <json-value>")
	}
	name, jsonInput := args[0], args[1]

	var raw any
	if err := json.Unmarshal([]byte(jsonInput), &raw); err != nil {
		if data, readErr := os.ReadFile(jsonInput); readErr == nil {
			if err := json.Unmarshal(data, &raw); err != nil {
				return fmt.Errorf("parse json value from %s: %w", jsonInput, err)
			}
		} else {
			return fmt.Errorf("parse json value: %w", err)
		}
	}

	reg := registry.NewMemoryStore(nil)
	ctx := context.Background()
	d, err := lookupDescriptor(ctx, reg, name)
	if err != nil {
		return err
	}

	value, err := fromJSON(d, raw)
	if err != nil {
		return fmt.Errorf("convert json value: %w", err)
	}

	encoded, err := descriptor.Encode(value, d)
	if err != nil {
		return explainMismatch(err)
	}
	fmt.Println(hex.EncodeToString(encoded))
	return nil
}

func explainMismatch(err error) error {
	mismatch, ok := err.(*descriptor.TypeMismatch)
	if !ok {
		return err
	}
	path := descriptor.Flatten(mismatch)
	fmt.Fprintln(os.Stderr, "rejection path (root to leaf):")
	for i, d := range path {
		fmt.Fprintf(os.Stderr, "  %d: %T\n", i, d)
	}
	fmt.Fprintf(os.Stderr, "priority: %d\n", descriptor.Priority(mismatch))
	return err
}

func runInitConfig(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("init-config requires <path>")
	}
	return appconfig.CreateDefaultConfigFile(args[0])
}

// batchJob is one element of a batch file's JSON array: either an Op "decode" with Input
// given as a hex string, or an Op "encode" with Value given as a raw
// JSON value to convert against Descriptor.
type batchJob struct {
	ID         string `json:"id"`
	Op         string `json:"op"`
	Descriptor string `json:"descriptor"`
	Input      string `json:"input,omitempty"`
	Value      any    `json:"value,omitempty"`
}

type batchResult struct {
	ID        string `json:"id"`
	Value     any    `json:"value,omitempty"`
	Remainder string `json:"remainder,omitempty"`
	Error     string `json:"error,omitempty"`
}

func runBatch(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("batch requires <config-path> <jobs.json>")
	}
	configPath, jobsPath := args[0], args[1]

	cfgManager := appconfig.NewManager(configPath)
	cfg, err := cfgManager.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := obslog.New(cfg.Logging.Level)

	var metrics obsmetrics.Collector = obsmetrics.NoOp{}
	if cfg.Metrics.Enabled {
		collector := obsmetrics.NewPrometheusCollector(cfg.Metrics.Port)
		defer collector.Stop()
		metrics = collector
	}

	events := codecevents.NewBusWithBurstLimit(logger, true, codecevents.DefaultBurstConfig())
	events.Subscribe(codecevents.EventDecodeFailed, &codecevents.LoggingHandler{ID: "batch-decode-failed-logger", Logger: logger})
	events.Subscribe(codecevents.EventEncodeFailed, &codecevents.LoggingHandler{ID: "batch-encode-failed-logger", Logger: logger})

	var reg registry.Store
	if cfg.Registry.Type == "file" {
		reg, err = registry.NewFileStore(cfg.Registry.DataDir, logger)
		if err != nil {
			return fmt.Errorf("open file registry: %w", err)
		}
	} else {
		reg = registry.NewMemoryStore(logger)
	}

	rawJobs, err := os.ReadFile(jobsPath)
	if err != nil {
		return fmt.Errorf("read jobs file: %w", err)
	}
	var specs []batchJob
	if err := json.Unmarshal(rawJobs, &specs); err != nil {
		return fmt.Errorf("parse jobs file: %w", err)
	}

	batchKey := "batch-" + uuid.New().String()
	limiter := ratelimit.NewLimiter()
	flowController := flowcontrol.NewController(flowcontrol.WindowConfig{
		MaxOutstanding: cfg.FlowControl.MaxOutstanding,
		WindowSize:     cfg.FlowControl.WindowSize,
		MaxRetries:     cfg.FlowControl.MaxRetries,
		RetryDelay:     50 * time.Millisecond,
	})

	ctx := context.Background()
	jobs := make([]workerpool.Job, 0, len(specs))
	for _, spec := range specs {
		d, err := lookupDescriptor(ctx, reg, spec.Descriptor)
		if err != nil {
			logger.Error("unresolved descriptor in batch job", "job_id", spec.ID, "descriptor", spec.Descriptor, "error", err)
			continue
		}

		// Both checks are weighted by the descriptor's structural
		// complexity rather than counting every job as one unit: a
		// batch of deeply nested PDUs drains the rate budget and backs
		// off between flow-control retries faster than a batch of bare
		// integers would.
		if cfg.RateLimit.Enabled && !limiter.AllowDescriptor(batchKey, d, cfg.RateLimit.RequestsPerMinute) {
			logger.Warn("job rejected by rate limiter", "job_id", spec.ID, "descriptor", spec.Descriptor)
			continue
		}
		if err := flowController.AcquireDescriptor(ctx, batchKey, d); err != nil {
			logger.Warn("job rejected by flow control", "job_id", spec.ID, "descriptor", spec.Descriptor, "error", err)
			continue
		}

		job := workerpool.Job{ID: spec.ID, DescriptorName: spec.Descriptor, Descriptor: d}
		switch spec.Op {
		case "decode":
			input, err := hex.DecodeString(spec.Input)
			if err != nil {
				logger.Error("invalid hex input in batch job", "job_id", spec.ID, "error", err)
				flowController.Release(batchKey)
				continue
			}
			job.Op = workerpool.OpDecode
			job.Input = input
		case "encode":
			value, err := fromJSON(d, spec.Value)
			if err != nil {
				logger.Error("invalid value in batch job", "job_id", spec.ID, "error", err)
				flowController.Release(batchKey)
				continue
			}
			job.Op = workerpool.OpEncode
			job.Value = value
		default:
			logger.Error("unknown batch job op", "job_id", spec.ID, "op", spec.Op)
			flowController.Release(batchKey)
			continue
		}
		jobs = append(jobs, job)
	}

	pool := workerpool.New(workerpool.Config{MaxWorkers: cfg.Worker.MaxWorkers}, logger, metrics, events)
	results := pool.Run(ctx, jobs)
	for range jobs {
		flowController.Release(batchKey)
	}

	rendered := make([]batchResult, len(results))
	for i, r := range results {
		rr := batchResult{ID: r.JobID}
		if r.Err != nil {
			rr.Error = r.Err.Error()
		} else {
			rr.Value = toJSON(r.Value)
			if len(r.Remainder) > 0 {
				rr.Remainder = hex.EncodeToString(r.Remainder)
			}
		}
		rendered[i] = rr
	}

	out, err := json.MarshalIndent(rendered, "", "  ")
	if err != nil {
		return fmt.Errorf("render batch results: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
