package canonical

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	licerrors "licseal/internal/errors"
)

const meterName = "licseal/canonical"

// hashMetrics holds the engine's OpenTelemetry instruments. Failure to
// create an instrument leaves the corresponding field nil and hashing
// proceeds unrecorded.
type hashMetrics struct {
	hashes   metric.Int64Counter
	failures metric.Int64Counter
	duration metric.Float64Histogram
}

func newHashMetrics() *hashMetrics {
	meter := otel.Meter(meterName)
	m := &hashMetrics{}
	m.hashes, _ = meter.Int64Counter("canonical.hash.count",
		metric.WithDescription("Number of file hash operations"))
	m.failures, _ = meter.Int64Counter("canonical.hash.failures",
		metric.WithDescription("Number of failed file hash operations"))
	m.duration, _ = meter.Float64Histogram("canonical.hash.duration_ms",
		metric.WithDescription("Canonicalize-and-hash duration in milliseconds"))
	return m
}

var sharedMetrics = newHashMetrics()

// HashBytes returns the lowercase hex SHA-256 digest of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashFile reads the file at path and returns the lowercase hex SHA-256
// digest of its canonical form. When a canonicalizer claims the file's
// extension the digest covers the canonical text, otherwise the raw
// bytes. A nonexistent path is a MissingFile error.
func (e *Engine) HashFile(ctx context.Context, path string) (string, error) {
	start := time.Now()

	data, err := os.ReadFile(path)
	if err != nil {
		if sharedMetrics.failures != nil {
			sharedMetrics.failures.Add(ctx, 1)
		}
		if os.IsNotExist(err) {
			return "", licerrors.MissingFile(path, err)
		}
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	canonicalized := false
	if c, ok := e.ForPath(path); ok {
		data = []byte(c.Canonicalize(string(data)))
		canonicalized = true
	}
	digest := HashBytes(data)

	elapsed := time.Since(start)
	if sharedMetrics.hashes != nil {
		sharedMetrics.hashes.Add(ctx, 1,
			metric.WithAttributes(attribute.Bool("canonicalized", canonicalized)))
	}
	if sharedMetrics.duration != nil {
		sharedMetrics.duration.Record(ctx, float64(elapsed.Microseconds())/1000.0)
	}

	e.logger.Debug("file hashed",
		slog.String("path", path),
		slog.Bool("canonicalized", canonicalized),
		slog.Duration("duration", elapsed))
	return digest, nil
}
