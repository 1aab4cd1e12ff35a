/*
 * Copyright 2025 SREDiag Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package stress hammers a single atomic cell from many goroutines and checks
// that no update was lost: every fetch-before value an operation returned must
// be accounted for exactly once, and the final value must match the number of
// operations.
package stress

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	queuepkg "github.com/Workiva/go-datastructures/queue"
	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/srediag/atomicx/api"
	"github.com/srediag/atomicx/internal/logger"
	"github.com/srediag/atomicx/pkg/atomicx"
	"github.com/srediag/atomicx/pkg/registry"
)

// ctxCheckEvery is how many operations a worker runs between context checks.
const ctxCheckEvery = 1024

var internalLogger = logger.New("stress", nil)

type options struct {
	tracer trace.Tracer
	cell   api.Word
}

// Option configures Run.
type Option func(*options)

// WithTracer wraps each run in a span from t.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// WithCell stresses c instead of a fresh cell, e.g. one in a shared region or
// a registry. Run resets c to the scenario's start value first.
func WithCell(c api.Word) Option {
	return func(o *options) { o.cell = c }
}

// scenario binds an operation to a cell. apply performs one operation and
// returns its fetch-before value encoded as an int64.
type scenario struct {
	start    uint64
	apply    func() int64
	counting bool
	// For counting scenarios: the observation that comes first in the
	// alternation, which must account for ceil(n/2) of all observations.
	first    int64
	expected func(n int) string
	final    func() string
}

func newScenario(cfg *Config, cell api.Word) (*scenario, error) {
	switch c := cell.(type) {
	case *atomicx.IntCell:
		sc := &scenario{
			final:    c.String,
			expected: func(n int) string { return strconv.Itoa(n) },
		}
		switch cfg.Op {
		case OpInc:
			sc.apply = c.Inc
		case OpAdd:
			sc.apply = func() int64 { return c.Add(1) }
		case OpDec:
			sc.apply = func() int64 { return -c.Dec() }
			sc.expected = func(n int) string { return strconv.Itoa(-n) }
		case OpCAS:
			sc.apply = func() int64 { return casIncrement(c) }
		case OpMul:
			sc.start = 1
			sc.counting = true
			sc.first = 1
			sc.apply = func() int64 { return c.Mul(-1) }
			sc.expected = func(n int) string {
				if n%2 == 0 {
					return "1"
				}
				return "-1"
			}
		}
		return sc, nil
	case *atomicx.FloatCell:
		return &scenario{
			apply:    func() int64 { return int64(c.Add(1)) },
			final:    c.String,
			expected: func(n int) string { return strconv.FormatFloat(float64(n), 'g', -1, 64) },
		}, nil
	case *atomicx.BoolCell:
		return &scenario{
			counting: true,
			first:    0,
			apply: func() int64 {
				if c.Flip() {
					return 1
				}
				return 0
			},
			final:    c.String,
			expected: func(n int) string { return strconv.FormatBool(n%2 == 1) },
		}, nil
	}
	return nil, fmt.Errorf("%w: unsupported cell %T", ErrInvalidConfig, cell)
}

// casIncrement increments with a compare-exchange loop and returns the value
// the winning attempt replaced.
func casIncrement(c *atomicx.IntCell) int64 {
	cur := c.Load()
	for {
		ok, seen := c.CompareExchange(cur, cur+1)
		if ok {
			return cur
		}
		cur = seen
	}
}

// Run executes the scenario in cfg and reports what it observed. An error is
// returned only when the run could not complete; lost updates are reported in
// the Report, see Report.OK.
func Run(ctx context.Context, cfg *Config, opts ...Option) (*Report, error) {
	if err := VerifyConfig(cfg); err != nil {
		return nil, err
	}
	o := options{tracer: noop.NewTracerProvider().Tracer("")}
	for _, opt := range opts {
		opt(&o)
	}
	if o.cell == nil {
		c, err := registry.NewCell(cfg.Kind)
		if err != nil {
			return nil, err
		}
		o.cell = c
	} else if k, err := registry.KindOf(o.cell); err != nil || k != cfg.Kind {
		return nil, fmt.Errorf("%w: cell %T does not match kind %v", ErrInvalidConfig, o.cell, cfg.Kind)
	}
	sc, err := newScenario(cfg, o.cell)
	if err != nil {
		return nil, err
	}

	total := cfg.Workers * cfg.OpsPerWorker
	ctx, span := o.tracer.Start(ctx, "stress.Run", trace.WithAttributes(
		attribute.String("atomicx.kind", cfg.Kind.String()),
		attribute.String("atomicx.op", cfg.Op),
		attribute.Int("atomicx.workers", cfg.Workers),
		attribute.Int("atomicx.ops", total),
	))
	defer span.End()

	report, err := run(ctx, cfg, sc, o.cell)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("atomicx.lost", report.Lost),
		attribute.Int("atomicx.duplicates", report.Duplicates),
	)
	if !report.OK() {
		span.SetStatus(codes.Error, "lost updates")
		internalLogger.Errorf("%v %s: %s", cfg.Kind, cfg.Op, report)
	} else {
		internalLogger.Infof("%v %s: %s", cfg.Kind, cfg.Op, report)
	}
	return report, nil
}

func run(ctx context.Context, cfg *Config, sc *scenario, cell api.Word) (*Report, error) {
	pool, err := ants.NewPool(cfg.PoolSize)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	defer pool.Release()

	q := queuepkg.New(int64(cfg.Workers))
	defer q.Dispose()

	cell.ImportBits(sc.start)
	began := time.Now()

	var (
		wg        sync.WaitGroup
		submitErr error
	)
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			seen := make([]int64, 0, cfg.OpsPerWorker)
			for j := 0; j < cfg.OpsPerWorker; j++ {
				if j%ctxCheckEvery == 0 && ctx.Err() != nil {
					break
				}
				seen = append(seen, sc.apply())
			}
			_ = q.Put(seen)
		})
		if err != nil {
			wg.Done()
			submitErr = fmt.Errorf("submit worker %d: %w", i, err)
			break
		}
	}
	wg.Wait()
	elapsed := time.Since(began)
	if submitErr != nil {
		return nil, submitErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batches := make([][]int64, 0, cfg.Workers)
	for len(batches) < cfg.Workers {
		items, err := q.Get(int64(cfg.Workers - len(batches)))
		if err != nil {
			return nil, fmt.Errorf("drain observations: %w", err)
		}
		for _, it := range items {
			batches = append(batches, it.([]int64))
		}
	}

	total := cfg.Workers * cfg.OpsPerWorker
	r := &Report{
		Kind:     cfg.Kind,
		Op:       cfg.Op,
		Ops:      total,
		Expected: sc.expected(total),
		Final:    sc.final(),
		Elapsed:  elapsed,
	}
	if sc.counting {
		r.Lost, r.Duplicates = checkAlternation(batches, total, sc.first)
	} else {
		r.Lost, r.Duplicates, err = checkPermutation(batches, total)
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}

var errTooManyOps = errors.New("too many operations to verify")

// checkPermutation expects the observations to be exactly 0..n-1. Lost counts
// values never observed; duplicates counts repeated or out-of-range ones.
func checkPermutation(batches [][]int64, n int) (lost, duplicates int, err error) {
	if uint64(n) > math.MaxUint32 {
		return 0, 0, errTooManyOps
	}
	seen := newSeenSet(uint64(n))
	distinct := 0
	for _, batch := range batches {
		for _, v := range batch {
			if v < 0 || v >= int64(n) || seen.has(uint64(v)) {
				duplicates++
				continue
			}
			seen.add(uint64(v))
			distinct++
		}
	}
	return n - distinct, duplicates, nil
}

// checkAlternation expects a two-valued alternation that starts with first:
// first appears ceil(n/2) times and the other value floor(n/2) times.
func checkAlternation(batches [][]int64, n int, first int64) (lost, duplicates int) {
	var firsts, others int
	for _, batch := range batches {
		for _, v := range batch {
			if v == first {
				firsts++
			} else {
				others++
			}
		}
	}
	want := (n + 1) / 2
	if firsts > want {
		duplicates = firsts - want
	} else {
		lost = want - firsts
	}
	return lost, duplicates
}
