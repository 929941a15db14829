package cascade

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetry_Do(t *testing.T) {
	errTransient := errors.New("502 bad gateway")

	tests := []struct {
		name         string
		failures     int
		maxAttempts  int
		wantErr      error
		wantAttempts int
	}{
		{"first try", 0, 3, nil, 1},
		{"recovers on third attempt", 2, 5, nil, 3},
		{"gives up after max attempts", 10, 3, errTransient, 3},
		{"zero attempts", 0, 0, ErrInvalidMaxAttempts, 0},
		{"negative attempts", 0, -1, ErrInvalidMaxAttempts, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			r := Retry{Attempts: tt.maxAttempts, Delay: time.Millisecond}
			err := r.Do(context.Background(), StageTextSearch, "SearchText", func() error {
				attempts++
				if attempts <= tt.failures {
					return errTransient
				}
				return nil
			})

			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, tt.wantAttempts, attempts)
		})
	}
}

func TestRetry_PermanentStops(t *testing.T) {
	errBadKey := errors.New("401 invalid api key")
	attempts := 0
	r := Retry{Attempts: 5, Delay: time.Millisecond}

	err := r.Do(context.Background(), StageFallback, "SuggestRetailers", func() error {
		attempts++
		return Permanent(errBadKey)
	})

	assert.Same(t, errBadKey, err)
	assert.Equal(t, 1, attempts)
	assert.NoError(t, Permanent(nil))
}

func TestRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	r := Retry{Attempts: 10, Delay: time.Millisecond}
	err := r.Do(ctx, StageImageSearch, "SearchImage", func() error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return errors.New("timeout")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, attempts)
}

func TestRetry_DelayGrows(t *testing.T) {
	var gaps []time.Duration
	last := time.Now()
	attempts := 0

	r := Retry{Attempts: 5, Delay: 10 * time.Millisecond}
	err := r.Do(context.Background(), StageTextSearch, "SearchText", func() error {
		attempts++
		if attempts > 1 {
			gaps = append(gaps, time.Since(last))
		}
		last = time.Now()
		if attempts < 4 {
			return errors.New("busy")
		}
		return nil
	})

	require.NoError(t, err)
	require.Len(t, gaps, 3)
	assert.GreaterOrEqual(t, gaps[0], 10*time.Millisecond)
	assert.GreaterOrEqual(t, gaps[1], 20*time.Millisecond)
	assert.GreaterOrEqual(t, gaps[2], 40*time.Millisecond)
}

func TestRetry_LogsStageAndCall(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r := Retry{Attempts: 2, Delay: time.Millisecond, Logger: logger}

	_ = r.Do(context.Background(), StageImageSearch, "SearchImage", func() error {
		return errors.New("lens quota exceeded")
	})

	out := buf.String()
	assert.Contains(t, out, "stage=IMAGE_SEARCH")
	assert.Contains(t, out, "call=SearchImage")
	assert.Contains(t, out, "attempt=2")
}
