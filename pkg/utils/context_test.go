package utils_test

import (
	"context"
	"testing"
	"time"

	"github.com/robalyx/deeplweb/pkg/utils"
)

func TestContextSleep(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		duration       time.Duration
		cancelAfter    time.Duration
		expectedResult utils.SleepResult
	}{
		{
			name:           "sleep completes normally",
			duration:       10 * time.Millisecond,
			cancelAfter:    0, // no cancellation
			expectedResult: utils.SleepCompleted,
		},
		{
			name:           "context cancelled before sleep completes",
			duration:       100 * time.Millisecond,
			cancelAfter:    10 * time.Millisecond,
			expectedResult: utils.SleepCancelled,
		},
		{
			name:           "zero duration sleep",
			duration:       0,
			cancelAfter:    0,
			expectedResult: utils.SleepCompleted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx, cancel := context.WithCancel(t.Context())
			defer cancel()

			if tt.cancelAfter > 0 {
				go func() {
					time.Sleep(tt.cancelAfter)
					cancel()
				}()
			}

			result := utils.ContextSleep(ctx, tt.duration)
			if result != tt.expectedResult {
				t.Errorf("ContextSleep() = %v, want %v", result, tt.expectedResult)
			}
		})
	}
}

func TestContextGuard(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		cancelContext  bool
		expectedResult bool
	}{
		{
			name:           "context not cancelled",
			cancelContext:  false,
			expectedResult: false,
		},
		{
			name:           "context cancelled",
			cancelContext:  true,
			expectedResult: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx, cancel := context.WithCancel(t.Context())
			defer cancel()

			if tt.cancelContext {
				cancel()
			}

			result := utils.ContextGuard(ctx)
			if result != tt.expectedResult {
				t.Errorf("ContextGuard() = %v, want %v", result, tt.expectedResult)
			}
		})
	}
}
