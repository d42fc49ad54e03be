// Package record assembles complete media records and runs the generation
// loop over the configured tenant, property and device hierarchy.
package record

import "github.com/tphakala/mediaseed/internal/logger"

// GetLogger returns the record package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("generator")
}
