// Package storage selects and constructs the configured storage backend.
package storage

import (
	"fmt"

	"github.com/abriltello/portafolioAI/internal/common"
	"github.com/abriltello/portafolioAI/internal/interfaces"
	"github.com/abriltello/portafolioAI/internal/storage/filestore"
	"github.com/abriltello/portafolioAI/internal/storage/surrealdb"
)

// Backend type constants.
const (
	BackendSurrealDB = "surrealdb"
	BackendFile      = "file"
)

// NewStorageManager creates the storage manager named by config.Storage.Backend.
func NewStorageManager(logger *common.Logger, config *common.Config) (interfaces.StorageManager, error) {
	switch config.Storage.Backend {
	case BackendSurrealDB, "":
		return surrealdb.NewManager(logger, config)
	case BackendFile:
		return filestore.NewManager(logger, config.Storage.DataPath)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: surrealdb, file)", config.Storage.Backend)
	}
}
