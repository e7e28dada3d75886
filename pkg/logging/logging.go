// Package logging builds the application logger.
package logging

import (
	"encoding/json"

	"github.com/Gobusters/ectologger"
	"go.uber.org/zap"
)

// New returns an application logger that forwards every entry to a
// production zap logger as structured JSON.
func New(service string) ectologger.Logger {
	zapLogger, err := zap.NewProduction()
	if err != nil {
		zapLogger = zap.NewNop()
	}
	sink := zapLogger.With(zap.String("service", service))

	return ectologger.NewEctoLogger(func(msg ectologger.EctoLogMessage) {
		entry, err := json.Marshal(msg)
		if err != nil {
			sink.Error("failed to encode log entry", zap.Error(err))
			return
		}
		sink.Info("log", zap.ByteString("entry", entry))
	})
}

// NewNop returns a logger that discards everything. Used in tests.
func NewNop() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}
