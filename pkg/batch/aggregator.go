// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package batch

import (
	"sync/atomic"
)

// Progress is a point in time view of a running batch
type Progress struct {
	Total        int
	Succeeded    int
	Failed       int
	NotAttempted int
}

// Done is the number of requests that reached a terminal outcome
func (p Progress) Done() int {
	return p.Succeeded + p.Failed + p.NotAttempted
}

// 📈 Aggregator folds outcomes into a Report. Consume must be called from a
// single goroutine; Snapshot may be called concurrently with it.
type Aggregator struct {
	// OnOutcome, when set, sees every outcome in arrival order
	OnOutcome func(Outcome)

	total        int
	succeeded    atomic.Int64
	failed       atomic.Int64
	notAttempted atomic.Int64
}

// NewAggregator creates an Aggregator expecting total outcomes
func NewAggregator(total int) *Aggregator {
	return &Aggregator{total: total}
}

// Consume drains outcomes until the channel is closed and returns the
// accumulated report. Failed outcomes are recorded as data and never
// returned as errors.
func (a *Aggregator) Consume(outcomes <-chan Outcome) *Report {
	report := &Report{Failures: []Failure{}}

	for outcome := range outcomes {
		switch outcome.Status {
		case StatusSucceeded:
			report.Succeeded++
			report.Bytes += outcome.Result.Size
			a.succeeded.Add(1)
		case StatusFailed:
			report.Failed++
			report.Failures = append(report.Failures, outcome.Failure())
			a.failed.Add(1)
		case StatusNotAttempted:
			report.NotAttempted++
			report.Cancelled = true
			a.notAttempted.Add(1)
		}

		if a.OnOutcome != nil {
			a.OnOutcome(outcome)
		}
	}

	report.Total = report.Succeeded + report.Failed + report.NotAttempted
	return report
}

// Snapshot returns the running counters
func (a *Aggregator) Snapshot() Progress {
	return Progress{
		Total:        a.total,
		Succeeded:    int(a.succeeded.Load()),
		Failed:       int(a.failed.Load()),
		NotAttempted: int(a.notAttempted.Load()),
	}
}
