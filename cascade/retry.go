// Copyright 2025 Poiesic Systems
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


package cascade

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Retry runs backend calls with exponential backoff: the wait after the
// n-th failed attempt is Delay * 2^(n-1).
type Retry struct {
	Attempts int
	Delay    time.Duration
	Logger   *slog.Logger
}

type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks err as not worth another attempt. Do stops at once and
// returns err itself.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do calls fn until it succeeds, returns a Permanent error, the attempts
// run out or ctx ends. call names the backend operation in log lines.
func (r Retry) Do(ctx context.Context, stage Stage, call string, fn func() error) error {
	if r.Attempts <= 0 {
		return ErrInvalidMaxAttempts
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("stage", stage.String(), "call", call)

	var err error
	for attempt := 1; attempt <= r.Attempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		err = fn()
		if err == nil {
			if attempt > 1 {
				logger.Info("backend recovered", "attempt", attempt)
			}
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			logger.Debug("backend error is permanent", "attempt", attempt, "err", perm.err)
			return perm.err
		}

		logger.Debug("backend call failed", "attempt", attempt, "max_attempts", r.Attempts, "err", err)
		if attempt == r.Attempts {
			break
		}

		timer := time.NewTimer(r.Delay << (attempt - 1))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return err
}
