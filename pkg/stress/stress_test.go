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
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/srediag/atomicx/pkg/atomicx"
	"github.com/srediag/atomicx/pkg/registry"
)

type StressTestSuite struct {
	suite.Suite
}

func (s *StressTestSuite) config(kind registry.Kind, op string) *Config {
	return &Config{Kind: kind, Op: op, Workers: 8, OpsPerWorker: 500, PoolSize: 4}
}

func (s *StressTestSuite) TestEveryScenarioIsClean() {
	for _, tc := range []struct {
		kind  registry.Kind
		op    string
		final string
	}{
		{registry.KindInt, OpInc, "4000"},
		{registry.KindInt, OpAdd, "4000"},
		{registry.KindInt, OpDec, "-4000"},
		{registry.KindInt, OpCAS, "4000"},
		{registry.KindInt, OpMul, "1"},
		{registry.KindFloat, OpAdd, "4000"},
		{registry.KindBool, OpFlip, "false"},
	} {
		report, err := Run(context.Background(), s.config(tc.kind, tc.op))
		s.Require().NoError(err, "%v/%s", tc.kind, tc.op)
		s.True(report.OK(), report.String())
		s.Equal(tc.final, report.Final, "%v/%s", tc.kind, tc.op)
		s.Equal(4000, report.Ops)
	}
}

func (s *StressTestSuite) TestOddOperationCount() {
	cfg := &Config{Kind: registry.KindBool, Op: OpFlip, Workers: 3, OpsPerWorker: 7, PoolSize: 2}
	report, err := Run(context.Background(), cfg)
	s.Require().NoError(err)
	s.True(report.OK(), report.String())
	s.Equal("true", report.Final)

	cfg = &Config{Kind: registry.KindInt, Op: OpMul, Workers: 3, OpsPerWorker: 7, PoolSize: 2}
	report, err = Run(context.Background(), cfg)
	s.Require().NoError(err)
	s.True(report.OK(), report.String())
	s.Equal("-1", report.Final)
}

func (s *StressTestSuite) TestWithCellResetsAndUsesCell() {
	c := atomicx.NewInt(99)
	report, err := Run(context.Background(), s.config(registry.KindInt, OpInc),
		WithCell(c), WithTracer(noop.NewTracerProvider().Tracer("test")))
	s.Require().NoError(err)
	s.True(report.OK())
	s.Equal(int64(4000), c.Load())
}

func (s *StressTestSuite) TestWithCellKindMismatch() {
	_, err := Run(context.Background(), s.config(registry.KindInt, OpInc), WithCell(atomicx.NewFloat(0)))
	s.ErrorIs(err, ErrInvalidConfig)
}

func (s *StressTestSuite) TestInvalidConfig() {
	_, err := Run(context.Background(), &Config{Kind: registry.KindInt, Op: OpInc})
	s.ErrorIs(err, ErrInvalidConfig)
}

func (s *StressTestSuite) TestCanceled() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, s.config(registry.KindInt, OpInc))
	s.ErrorIs(err, context.Canceled)
}

func (s *StressTestSuite) TestCheckPermutationDetectsLostUpdate() {
	// Two workers both observed 1: one increment was lost and 3 never appeared.
	lost, dup, err := checkPermutation([][]int64{{0, 1}, {1, 2}}, 4)
	s.Require().NoError(err)
	s.Equal(1, lost)
	s.Equal(1, dup)

	lost, dup, err = checkPermutation([][]int64{{3, 1}, {0, 2}}, 4)
	s.Require().NoError(err)
	s.Zero(lost)
	s.Zero(dup)

	_, dup, err = checkPermutation([][]int64{{-1, 4}}, 4)
	s.Require().NoError(err)
	s.Equal(2, dup)
}

func (s *StressTestSuite) TestCheckAlternation() {
	lost, dup := checkAlternation([][]int64{{0, 1}, {0}}, 3, 0)
	s.Zero(lost)
	s.Zero(dup)

	lost, dup = checkAlternation([][]int64{{0, 0}, {0, 1}}, 4, 0)
	s.Zero(lost)
	s.Equal(1, dup)

	lost, _ = checkAlternation([][]int64{{1, 1}, {0, 1}}, 4, 0)
	s.Equal(1, lost)
}

func (s *StressTestSuite) TestReportString() {
	r := &Report{Kind: registry.KindInt, Op: OpInc, Ops: 10, Expected: "10", Final: "9", Lost: 1}
	s.False(r.OK())
	out := r.String()
	s.True(strings.HasPrefix(out, "FAILED int/inc"), out)
	s.Contains(out, "lost=1")

	r.Final, r.Lost = "10", 0
	s.True(strings.HasPrefix(r.String(), "ok int/inc"))
}

func TestStressTestSuite(t *testing.T) {
	suite.Run(t, new(StressTestSuite))
}
