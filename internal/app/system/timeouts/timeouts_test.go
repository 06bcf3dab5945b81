package timeouts

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestConfigure(t *testing.T) {
	t.Cleanup(Reset)

	Configure(Config{Short: 7 * time.Second})
	if Short() != 7*time.Second {
		t.Errorf("Short() = %v, want 7s", Short())
	}
	if Medium() != DefaultMedium {
		t.Errorf("Medium() = %v, want default %v", Medium(), DefaultMedium)
	}

	Configure(Config{Short: -1, Long: time.Minute})
	if Short() != 7*time.Second {
		t.Errorf("negative value should be ignored, Short() = %v", Short())
	}
	if Long() != time.Minute {
		t.Errorf("Long() = %v, want 1m", Long())
	}

	Reset()
	if got := Current(); got != Defaults() {
		t.Errorf("Current() after Reset = %+v", got)
	}
}

func TestConfigure_Concurrent(t *testing.T) {
	t.Cleanup(Reset)
	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(2)
		go func(d time.Duration) {
			defer wg.Done()
			Configure(Config{Short: d})
		}(time.Duration(i) * time.Second)
		go func() {
			defer wg.Done()
			if Short() <= 0 {
				t.Error("Short() should never be zero")
			}
		}()
	}
	wg.Wait()
}

func TestWithTimeout_LogsDeadline(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	ctx, cancel := WithTimeout(context.Background(), time.Millisecond, zap.New(core), "count demo data")
	<-ctx.Done()
	cancel()

	if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
		t.Errorf("ctx.Err() = %v, want DeadlineExceeded", ctx.Err())
	}
	if logs.FilterMessage("operation timed out").Len() != 1 {
		t.Errorf("expected one timeout warning, got %d", logs.Len())
	}
}

func TestWithTimeout_CancelledEarlyIsQuiet(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	_, cancel := WithTimeout(context.Background(), time.Hour, zap.New(core), "show post")
	cancel()
	if logs.Len() != 0 {
		t.Errorf("early cancel should not log, got %d entries", logs.Len())
	}
}
