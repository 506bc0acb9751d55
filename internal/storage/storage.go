// Package storage provides the generation audit store.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/good-yellow-bee/grantdoc/internal/models"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Storage is the main interface for database operations.
type Storage interface {
	// Open initializes the database connection.
	Open() error
	// Close closes the database connection.
	Close() error
	// Migrate runs database migrations.
	Migrate() error
	// Ping checks the connection.
	Ping(ctx context.Context) error

	Generations() GenerationRepository
}

// GenerationFilter narrows a listing.
type GenerationFilter struct {
	UniqueID string
	Status   models.GenerationStatus
	Limit    int
	Offset   int
}

// GenerationStats summarizes the audit log.
type GenerationStats struct {
	Total     int64 `json:"total"`
	Succeeded int64 `json:"succeeded"`
	Failed    int64 `json:"failed"`
}

// GenerationRepository defines operations on generation audit records.
type GenerationRepository interface {
	Create(ctx context.Context, rec *models.GenerationRecord) error
	GetByID(ctx context.Context, id string) (*models.GenerationRecord, error)
	List(ctx context.Context, filter GenerationFilter) ([]*models.GenerationRecord, int64, error)
	Stats(ctx context.Context) (*GenerationStats, error)
	// DeleteBefore removes records created before t and returns how many.
	DeleteBefore(ctx context.Context, t time.Time) (int64, error)
}
