// Package timeouts holds the context deadlines handlers put around
// database and outbound calls.
//
// Handlers pick a deadline by the shape of the work:
//
//	Short   one document (show, submit, update, delete, login)
//	Medium  a page of documents, a count, an upload
//	Long    demo seeding, SMTP delivery
//	Ping    readiness probes
package timeouts

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Defaults used until Configure is called.
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
)

// Config is a full set of deadlines.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

// Defaults returns the built-in deadlines.
func Defaults() Config {
	return Config{Ping: DefaultPing, Short: DefaultShort, Medium: DefaultMedium, Long: DefaultLong}
}

var current atomic.Pointer[Config]

func init() { Reset() }

func load() Config { return *current.Load() }

// Ping returns the deadline for readiness probes.
func Ping() time.Duration { return load().Ping }

// Short returns the deadline for single-document reads and writes.
func Short() time.Duration { return load().Short }

// Medium returns the deadline for list queries, counts and uploads.
func Medium() time.Duration { return load().Medium }

// Long returns the deadline for demo seeding and SMTP delivery.
func Long() time.Duration { return load().Long }

// Current returns the deadlines in effect.
func Current() Config { return load() }

// Configure replaces the deadlines set in cfg. Zero or negative fields
// keep their current value.
func Configure(cfg Config) {
	next := load()
	keep := func(dst *time.Duration, v time.Duration) {
		if v > 0 {
			*dst = v
		}
	}
	keep(&next.Ping, cfg.Ping)
	keep(&next.Short, cfg.Short)
	keep(&next.Medium, cfg.Medium)
	keep(&next.Long, cfg.Long)
	current.Store(&next)
}

// Reset restores the built-in deadlines.
func Reset() {
	d := Defaults()
	current.Store(&d)
}

// WithTimeout derives a context bounded by timeout. Its cancel func logs
// a warning when the deadline was the reason the work stopped.
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if log != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
