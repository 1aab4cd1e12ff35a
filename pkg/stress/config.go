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

package stress

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/buger/jsonparser"
	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/srediag/atomicx/pkg/registry"
)

// Operations a scenario can hammer a cell with.
const (
	OpInc  = "inc"
	OpDec  = "dec"
	OpAdd  = "add"
	OpCAS  = "cas"
	OpMul  = "mul"
	OpFlip = "flip"
)

const (
	defaultWorkers      = 10
	defaultOpsPerWorker = 1000

	envKind    = "ATOMICX_STRESS_KIND"
	envOp      = "ATOMICX_STRESS_OP"
	envWorkers = "ATOMICX_STRESS_WORKERS"
	envOps     = "ATOMICX_STRESS_OPS"
	envPool    = "ATOMICX_STRESS_POOL"
)

// ErrInvalidConfig is returned by VerifyConfig, LoadConfig and ApplyEnv.
var ErrInvalidConfig = errors.New("invalid stress config")

var opsByKind = map[registry.Kind][]string{
	registry.KindInt:   {OpInc, OpDec, OpAdd, OpCAS, OpMul},
	registry.KindBool:  {OpFlip},
	registry.KindFloat: {OpAdd},
}

// Config describes one stress scenario: Workers goroutines, each running
// OpsPerWorker operations of Op on a cell of Kind, scheduled on a pool of
// PoolSize goroutines.
type Config struct {
	Kind         registry.Kind
	Op           string
	Workers      int
	OpsPerWorker int
	PoolSize     int
}

// DefaultConfig increments an integer cell from one worker per logical CPU.
func DefaultConfig() *Config {
	pool, err := cpu.Counts(true)
	if err != nil || pool <= 0 {
		pool = runtime.NumCPU()
	}
	return &Config{
		Kind:         registry.KindInt,
		Op:           OpInc,
		Workers:      defaultWorkers,
		OpsPerWorker: defaultOpsPerWorker,
		PoolSize:     pool,
	}
}

// VerifyConfig rejects non-positive sizes and operations the kind lacks.
func VerifyConfig(c *Config) error {
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.OpsPerWorker <= 0 {
		return fmt.Errorf("%w: ops per worker must be positive, got %d", ErrInvalidConfig, c.OpsPerWorker)
	}
	if c.PoolSize <= 0 {
		return fmt.Errorf("%w: pool size must be positive, got %d", ErrInvalidConfig, c.PoolSize)
	}
	ops, ok := opsByKind[c.Kind]
	if !ok {
		return fmt.Errorf("%w: unknown kind %v", ErrInvalidConfig, c.Kind)
	}
	for _, op := range ops {
		if op == c.Op {
			return nil
		}
	}
	return fmt.Errorf("%w: %v cells do not support %q (have %v)", ErrInvalidConfig, c.Kind, c.Op, ops)
}

// LoadConfig overlays the fields present in a JSON document onto c:
//
//	{"kind": "int", "op": "inc", "workers": 8, "ops_per_worker": 1000, "pool_size": 4}
func LoadConfig(data []byte, c *Config) error {
	if s, err := jsonparser.GetString(data, "kind"); err == nil {
		k, err := registry.ParseKind(s)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		c.Kind = k
	} else if !errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return fmt.Errorf("%w: kind: %v", ErrInvalidConfig, err)
	}
	if s, err := jsonparser.GetString(data, "op"); err == nil {
		c.Op = s
	} else if !errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return fmt.Errorf("%w: op: %v", ErrInvalidConfig, err)
	}
	for _, f := range []struct {
		key string
		dst *int
	}{
		{"workers", &c.Workers},
		{"ops_per_worker", &c.OpsPerWorker},
		{"pool_size", &c.PoolSize},
	} {
		n, err := jsonparser.GetInt(data, f.key)
		if errors.Is(err, jsonparser.KeyPathNotFoundError) {
			continue
		}
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, f.key, err)
		}
		*f.dst = int(n)
	}
	return nil
}

// ApplyEnv overlays ATOMICX_STRESS_{KIND,OP,WORKERS,OPS,POOL} onto c.
func ApplyEnv(c *Config) error {
	if s := os.Getenv(envKind); s != "" {
		k, err := registry.ParseKind(s)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, envKind, err)
		}
		c.Kind = k
	}
	if s := os.Getenv(envOp); s != "" {
		c.Op = s
	}
	for _, f := range []struct {
		env string
		dst *int
	}{
		{envWorkers, &c.Workers},
		{envOps, &c.OpsPerWorker},
		{envPool, &c.PoolSize},
	} {
		s := os.Getenv(f.env)
		if s == "" {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, f.env, err)
		}
		*f.dst = n
	}
	return nil
}
