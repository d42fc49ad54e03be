// Package indexer loads generated records into per-tenant Elasticsearch
// indices with create-only bulk requests.
package indexer

import "github.com/tphakala/mediaseed/internal/logger"

// GetLogger returns the indexer module logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("indexer")
}
