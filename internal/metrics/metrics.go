/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package metrics

import "time"

// Posting outcomes used as the outcome label.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Recorder collects ledger and HTTP metrics.
// Implementations can export to any backend; NoOpRecorder is the default.
type Recorder interface {
	// Ledger operations
	RecordPosting(txType string, outcome string, duration time.Duration)
	RecordRegistration(outcome string)

	// HTTP surface
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
}

// NoOpRecorder is used when metrics are not needed.
type NoOpRecorder struct{}

func (NoOpRecorder) RecordPosting(txType string, outcome string, duration time.Duration) {}

func (NoOpRecorder) RecordRegistration(outcome string) {}

func (NoOpRecorder) RecordHTTPRequest(method, route string, status int, duration time.Duration) {}
