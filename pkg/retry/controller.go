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

// Package retry wraps a flatten attempt with a fixed-delay retry budget for
// transient failures.
package retry

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/flatten/pkg/cancel"
	"github.com/walteh/flatten/pkg/flatten"
)

const (
	DefaultMaxRetries = 3
	DefaultDelay      = 10 * time.Second
)

// 🔁 AttemptFunc performs one flatten attempt
type AttemptFunc func(ctx context.Context, path string) flatten.Result

// 💤 SleepFunc waits for d or until the gate closes; it reports whether the full delay elapsed
type SleepFunc func(ctx context.Context, gate *cancel.Gate, d time.Duration) bool

// 🔧 Policy is the retry budget
type Policy struct {
	MaxRetries int
	Delay      time.Duration
}

// DefaultPolicy is 3 retries (4 attempts) ten seconds apart
func DefaultPolicy() Policy {
	return Policy{MaxRetries: DefaultMaxRetries, Delay: DefaultDelay}
}

// 📋 Report describes how an item finished
type Report struct {
	flatten.Result
	Attempts  int
	Exhausted bool // transient failure outlasted the retry budget
}

// 🎮 Controller runs attempts under a Policy
type Controller struct {
	policy Policy
	gate   *cancel.Gate
	sleep  SleepFunc
}

// 🏭 New creates a controller. A nil sleep uses a timer that the gate can interrupt.
func New(policy Policy, gate *cancel.Gate, sleep SleepFunc) *Controller {
	if sleep == nil {
		sleep = Sleep
	}
	if policy.MaxRetries < 0 {
		policy.MaxRetries = 0
	}
	return &Controller{policy: policy, gate: gate, sleep: sleep}
}

// 🔄 Do runs attempt until it stops returning a retryable failure, the budget
// runs out, or the gate closes. The returned outcome is never retryable.
func (c *Controller) Do(ctx context.Context, path string, attempt AttemptFunc) Report {
	logger := zerolog.Ctx(ctx).With().Str("path", path).Logger()

	var rep Report
	for n := 0; n <= c.policy.MaxRetries; n++ {
		if n > 0 && c.gate.IsCancelled() {
			return cancelled(rep)
		}

		rep.Result = attempt(ctx, path)
		rep.Attempts = n + 1
		if rep.Outcome != flatten.OutcomeRetryableFailure {
			return rep
		}

		if n == c.policy.MaxRetries {
			break
		}

		if c.gate.IsCancelled() {
			return cancelled(rep)
		}

		logger.Warn().Err(rep.Err).Int("attempt", rep.Attempts).Dur("delay", c.policy.Delay).
			Msg("network error, waiting before trying again")

		if !c.sleep(ctx, c.gate, c.policy.Delay) {
			return cancelled(rep)
		}
	}

	logger.Error().Err(rep.Err).Int("attempts", rep.Attempts).Msg("retries exceeded")
	rep.Outcome = flatten.OutcomeFatalFailure
	rep.Exhausted = true
	return rep
}

func cancelled(rep Report) Report {
	rep.Outcome = flatten.OutcomeCancelled
	return rep
}

// 💤 Sleep waits for d, returning false early if the gate closes or ctx is done
func Sleep(ctx context.Context, gate *cancel.Gate, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-gate.Done():
		return false
	case <-ctx.Done():
		return false
	}
}
