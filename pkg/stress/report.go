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
	"fmt"
	"time"

	"github.com/valyala/bytebufferpool"

	"github.com/srediag/atomicx/pkg/registry"
)

// Report is the outcome of one Run.
type Report struct {
	Kind registry.Kind
	Op   string
	Ops  int
	// Expected and Final are the cell's rendered value as predicted from
	// Ops and as read after the run.
	Expected string
	Final    string
	// Lost counts updates that left no trace; Duplicates counts
	// fetch-before values that were seen more often than possible.
	Lost       int
	Duplicates int
	Elapsed    time.Duration
}

// OK reports whether the run lost no updates.
func (r *Report) OK() bool {
	return r.Lost == 0 && r.Duplicates == 0 && r.Expected == r.Final
}

func (r *Report) String() string {
	b := bytebufferpool.Get()
	defer bytebufferpool.Put(b)
	status := "ok"
	if !r.OK() {
		status = "FAILED"
	}
	_, _ = fmt.Fprintf(b, "%s %v/%s ops=%d final=%s expected=%s lost=%d duplicates=%d elapsed=%s",
		status, r.Kind, r.Op, r.Ops, r.Final, r.Expected, r.Lost, r.Duplicates, r.Elapsed)
	if r.Elapsed > 0 {
		_, _ = fmt.Fprintf(b, " rate=%.0f/s", float64(r.Ops)/r.Elapsed.Seconds())
	}
	return b.String()
}
