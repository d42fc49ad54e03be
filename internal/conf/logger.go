// Package conf loads, validates and persists mediaseed configuration.
package conf

import "github.com/tphakala/mediaseed/internal/logger"

// GetLogger returns the config package logger. It is resolved on each call
// so that it follows the global logger once it has been configured.
func GetLogger() logger.Logger {
	return logger.Global().Module("config")
}
