// Package logger builds the application's structured zap logger.
//
// New derives a development or production base configuration from the
// configured level and switches the encoding between console and JSON.
// Every command and feature receives the resulting *zap.Logger at
// construction time; per-unit scan and fetch failures log at Warn, dropped
// or skipped units at Debug/Info.
//
// # Request correlation
//
// On the serve surface each request carries a ray id, stamped onto the
// Fiber context by middleware. WithRayID returns a logger carrying that id
// as a field so every log line of one request can be correlated.
//
// # Usage
//
//	l, err := logger.New(&logger.Config{Level: "info", Format: "json"})
//	if err != nil {
//	    return err
//	}
//
//	// In a request handler:
//	logger.WithRayID(l, c).Warn("scan failed", zap.Error(err))
package logger
