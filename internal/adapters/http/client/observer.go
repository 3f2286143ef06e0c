package client

import (
	"context"
	"strconv"
	"time"

	"github.com/okian/kampus/pkg/logger"
	"github.com/okian/kampus/pkg/metrics"
)

// Operation names reported in events, logs and metrics.
const (
	OpListProdi       = "list_prodi"
	OpListMahasiswa   = "list_mahasiswa"
	OpGetMahasiswa    = "get_mahasiswa"
	OpCreateMahasiswa = "create_mahasiswa"
	OpUpdateMahasiswa = "update_mahasiswa"
	OpDeleteMahasiswa = "delete_mahasiswa"
	OpUploadFoto      = "upload_foto"
)

// Event describes one finished request.
type Event struct {
	Operation  string
	Method     string
	Path       string
	RequestID  string
	StatusCode int // 0 when no response was received
	BytesSent  int
	Duration   time.Duration
	Err        error
}

// StartHook is called synchronously before every request, in registration
// order. Only Operation, Method, Path, RequestID and BytesSent are set.
type StartHook func(ctx context.Context, ev Event)

// Observer is called synchronously after every request, in registration order.
type Observer func(ctx context.Context, ev Event)

// LogErrors logs each failed request once at error level.
func LogErrors(l logger.Logger) Observer {
	return func(ctx context.Context, ev Event) {
		if ev.Err == nil {
			return
		}
		l.Error(ctx, "backend request failed",
			logger.String("operation", ev.Operation),
			logger.String("method", ev.Method),
			logger.String("path", ev.Path),
			logger.String("request_id", ev.RequestID),
			logger.Int("status", ev.StatusCode),
			logger.String("kind", errorKind(ev.Err)),
			logger.Duration("duration", ev.Duration),
			logger.Error(ev.Err))
	}
}

// LogRequests logs every request at debug level.
func LogRequests(l logger.Logger) Observer {
	return func(ctx context.Context, ev Event) {
		l.Debug(ctx, "backend request",
			logger.String("operation", ev.Operation),
			logger.String("method", ev.Method),
			logger.String("path", ev.Path),
			logger.String("request_id", ev.RequestID),
			logger.Int("status", ev.StatusCode),
			logger.Duration("duration", ev.Duration))
	}
}

// RecordMetrics feeds the package-level Prometheus recorders for finished
// requests. WithMetrics also maintains the in-flight gauge.
func RecordMetrics() Observer {
	return func(_ context.Context, ev Event) {
		status := "none"
		if ev.StatusCode > 0 {
			status = strconv.Itoa(ev.StatusCode)
		}
		metrics.RecordRequest(ev.Operation, ev.Method, status)
		metrics.RecordRequestDuration(ev.Operation, ev.Method, float64(ev.Duration.Microseconds())/1000)
		if ev.Err != nil {
			metrics.RecordError(ev.Operation, errorKind(ev.Err))
			return
		}
		if ev.Operation == OpUploadFoto {
			metrics.RecordUploadBytes(ev.BytesSent)
		}
	}
}
