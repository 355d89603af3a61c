// Package logger builds the zap logger shared by the server, the ingest loop
// and the build workers.
//
// Level "debug" selects zap's development preset; every other level uses the
// production preset. Format "console" switches to colored console output
// without stack traces.
//
// Handlers derive a per-request logger with WithRayID:
//
//	l := logger.WithRayID(log, c)
//	l.Warn("match failed", zap.Error(err))
package logger
