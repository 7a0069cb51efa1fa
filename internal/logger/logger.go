package logger

import (
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CorrelationIDHeader carries the request correlation identifier.
const CorrelationIDHeader = "X-Correlation-ID"

const correlationKey = "correlationID"

// Init builds a JSON production logger honouring LOG_LEVEL.
func Init() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(os.Getenv("LOG_LEVEL")))
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

func parseLevel(raw string) zapcore.Level {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(raw)))); err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// Middleware tags each request with a correlation ID and logs its completion.
func Middleware(log *zap.Logger) gin.HandlerFunc {
	l := log
	if l == nil {
		l = zap.NewNop()
	}
	return func(c *gin.Context) {
		id := c.GetHeader(CorrelationIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(correlationKey, id)
		c.Header(CorrelationIDHeader, id)

		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("correlation_id", id),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case c.Writer.Status() >= 500:
			l.Error("request", fields...)
		case c.Writer.Status() >= 400:
			l.Warn("request", fields...)
		default:
			l.Info("request", fields...)
		}
	}
}

// CorrelationID returns the identifier assigned by Middleware.
func CorrelationID(c *gin.Context) string {
	return c.GetString(correlationKey)
}

// FromContext returns log enriched with the request correlation ID.
func FromContext(c *gin.Context, log *zap.Logger) *zap.Logger {
	if id := CorrelationID(c); id != "" {
		return log.With(zap.String("correlation_id", id))
	}
	return log
}
