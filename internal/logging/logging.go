// Package logging builds the process-wide zap logger and masking helpers.
package logging

import "go.uber.org/zap"

// New returns a production logger in production, a development logger otherwise.
func New(production bool) *zap.Logger {
	var logger *zap.Logger
	var err error
	if production {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// Mask shortens a token or credential so it can appear in logs without
// being replayable. Everything past the first six characters is dropped.
func Mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 6 {
		return "******"
	}
	return secret[:6] + "..."
}
