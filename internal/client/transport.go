package client

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// loggingTransport logs every outbound request with its status and latency.
// The Authorization header is never logged.
type loggingTransport struct {
	base   http.RoundTripper
	logger *zap.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	start := time.Now()
	resp, err := base.RoundTrip(req)
	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Duration("elapsed", time.Since(start)),
		zap.Bool("authenticated", req.Header.Get("Authorization") != ""),
	}
	if err != nil {
		t.logger.Warn("api request failed", append(fields, zap.Error(err))...)
		return nil, err
	}
	fields = append(fields, zap.Int("status", resp.StatusCode))
	if resp.StatusCode >= 500 {
		t.logger.Warn("api request", fields...)
	} else {
		t.logger.Debug("api request", fields...)
	}
	return resp, nil
}
