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

// Command atomicx-stress hammers one atomic cell from many goroutines and
// reports whether any update was lost.
//
//	atomicx-stress -kind int -op cas -workers 32 -ops 100000
//	atomicx-stress -config stress.json -region stress -listen :9464
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/srediag/atomicx/api"
	"github.com/srediag/atomicx/internal/logger"
	"github.com/srediag/atomicx/pkg/atomicx"
	"github.com/srediag/atomicx/pkg/health"
	"github.com/srediag/atomicx/pkg/metrics"
	"github.com/srediag/atomicx/pkg/registry"
	"github.com/srediag/atomicx/pkg/shm"
	"github.com/srediag/atomicx/pkg/stress"
)

const (
	cellName   = "stress"
	failedName = "stress_failed"
	namespace  = "atomicx"
)

var internalLogger = logger.New("atomicx-stress", nil)

type cliOptions struct {
	config *stress.Config
	region string
	listen string
}

func main() {
	os.Exit(realMain())
}

func realMain() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, os.Args[1:], os.Stdout)
}

// parseOptions layers defaults, the JSON file named by -config, the
// environment and finally explicitly set flags.
func parseOptions(args []string) (*cliOptions, error) {
	fs := flag.NewFlagSet("atomicx-stress", flag.ContinueOnError)
	var (
		configPath = fs.String("config", "", "JSON file with kind, op, workers, ops_per_worker and pool_size")
		kind       = fs.String("kind", "", "cell kind: int, bool or float")
		op         = fs.String("op", "", "operation: inc, dec, add, cas, mul or flip")
		workers    = fs.Int("workers", 0, "number of workers")
		ops        = fs.Int("ops", 0, "operations per worker")
		pool       = fs.Int("pool", 0, "goroutine pool size")
		region     = fs.String("region", "", "stress slot 0 of this shared memory region instead of a private cell")
		listen     = fs.String("listen", "", "serve /metrics, /live and /ready on this address after the run")
	)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := stress.DefaultConfig()
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := stress.LoadConfig(data, cfg); err != nil {
			return nil, err
		}
	}
	if err := stress.ApplyEnv(cfg); err != nil {
		return nil, err
	}

	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "kind":
			k, err := registry.ParseKind(*kind)
			if err != nil {
				flagErr = errors.Join(flagErr, err)
				return
			}
			cfg.Kind = k
		case "op":
			cfg.Op = *op
		case "workers":
			cfg.Workers = *workers
		case "ops":
			cfg.OpsPerWorker = *ops
		case "pool":
			cfg.PoolSize = *pool
		}
	})
	if flagErr != nil {
		return nil, flagErr
	}
	if err := stress.VerifyConfig(cfg); err != nil {
		return nil, err
	}
	return &cliOptions{config: cfg, region: *region, listen: *listen}, nil
}

func regionCell(r *shm.Region, k registry.Kind) (api.Word, error) {
	switch k {
	case registry.KindInt:
		return r.Int(0)
	case registry.KindBool:
		return r.Bool(0)
	case registry.KindFloat:
		return r.Float(0)
	}
	return nil, fmt.Errorf("%w: %v", registry.ErrUnknownKind, k)
}

func run(ctx context.Context, args []string, out io.Writer) int {
	opts, err := parseOptions(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		internalLogger.Errorf("%v", err)
		return 2
	}
	cfg := opts.config

	var cell api.Word
	if opts.region != "" {
		r, err := shm.Open(ctx, shm.OpenOptions{Name: opts.region, Slots: 1, Create: true})
		if err != nil {
			internalLogger.Errorf("open region %s: %v", opts.region, err)
			return 1
		}
		defer r.Close()
		if cell, err = regionCell(r, cfg.Kind); err != nil {
			internalLogger.Errorf("%v", err)
			return 1
		}
		internalLogger.Infof("stressing slot 0 of %s", r.Path())
	} else if cell, err = registry.NewCell(cfg.Kind); err != nil {
		internalLogger.Errorf("%v", err)
		return 1
	}

	reg := registry.New()
	if err := reg.Register(cellName, cell); err != nil {
		internalLogger.Errorf("%v", err)
		return 1
	}
	failed, err := reg.Bool(failedName, false)
	if err != nil {
		internalLogger.Errorf("%v", err)
		return 1
	}

	report, err := stress.Run(ctx, cfg, stress.WithCell(cell))
	if err != nil {
		internalLogger.Errorf("run: %v", err)
		return 1
	}
	fmt.Fprintln(out, report)
	failed.Store(!report.OK())

	if opts.listen != "" {
		if err := serve(ctx, opts.listen, reg, failed); err != nil {
			internalLogger.Errorf("serve %s: %v", opts.listen, err)
			return 1
		}
	}
	if !report.OK() {
		return 1
	}
	return 0
}

// serve exposes the registry until ctx is done.
func serve(ctx context.Context, addr string, reg *registry.Registry, failed *atomicx.BoolCell) error {
	pr := prometheus.NewRegistry()
	if err := pr.Register(metrics.NewCollector(reg, namespace)); err != nil {
		return err
	}
	hc := health.NewHandler()
	hc.AddReadinessCheck("no-lost-updates", health.FlagCheck(failed, "lost updates detected"))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(pr, promhttp.HandlerOpts{}))
	mux.HandleFunc("/live", hc.LiveEndpoint)
	mux.HandleFunc("/ready", hc.ReadyEndpoint)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	internalLogger.Infof("serving on %s", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
