// Package logging builds the per-rank structured loggers used across
// the core. Grounded on arx-os-arxos/arx-backend/gateway_integration.go,
// which wraps zap.NewProduction()/zap.NewDevelopment() and attaches
// request-scoped fields with zap.String/zap.Error; here the
// rank-scoped field plays the same role spec.md §7 assigns to "every
// rank reports configuration errors, rank 0 only reports warnings".
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a logger tagged with the owning rank. debug enables
// human-readable development encoding (console, not JSON); production
// runs default to JSON for log aggregation.
func New(rank int, debug bool) *zap.Logger {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	logger, err := cfg.Build()
	if err != nil {
		// Config-time failure to build the logger itself is the one
		// place a plain panic is appropriate: there is no logger yet
		// to report it through.
		panic(err)
	}
	return logger.With(zap.Int("rank", rank))
}

// Nop returns a logger that discards everything, for tests that don't
// want log noise.
func Nop() *zap.Logger {
	return zap.NewNop()
}

// ConfigError logs a configuration error. Per spec.md §7 this is
// reported by every rank (no rank-0 gate), since every rank validates
// its own copy of the parsed configuration independently.
func ConfigError(log *zap.Logger, msg string, fields ...zap.Field) {
	log.Error(msg, fields...)
}

// Warning logs a runtime-invariant warning. Per spec.md §7 only rank 0
// reports these; callers are expected to already be on rank 0 when
// they call this (the function does not re-check rank, since the
// caller already knows it).
func Warning(log *zap.Logger, msg string, fields ...zap.Field) {
	log.Warn(msg, fields...)
}

// Fatal logs a fatal error and aborts the process. internal/comm has
// no abort operation, so Fatal exits the whole process at once;
// callers only call it from the rank that detected the condition,
// matching spec.md §7's
// "Fatal errors invoke an MPI abort from the detecting rank".
func Fatal(log *zap.Logger, msg string, fields ...zap.Field) {
	log.Fatal(msg, fields...)
}
