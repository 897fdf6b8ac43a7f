// Package store defines the storage interface for the alert journal.
package store

import (
	"context"
	"time"

	"github.com/scbrown/newman/internal/model"
)

// Store is the persistence interface for alerts.
type Store interface {
	// RecordAlert persists a single alert.
	RecordAlert(ctx context.Context, a model.Alert) error

	// ListAlerts returns alerts matching the given filter options, newest first.
	ListAlerts(ctx context.Context, opts ListOpts) ([]model.Alert, error)

	// Stats returns summary statistics about stored alerts.
	Stats(ctx context.Context) (Stats, error)

	// Close releases any resources held by the store.
	Close() error
}

// ListOpts controls filtering for ListAlerts.
type ListOpts struct {
	Since     time.Time // Only alerts after this time.
	Severity  string    // Filter by severity.
	Namespace string    // Filter by namespace.
	Operation string    // Filter by operation.
	Limit     int       // Maximum results; 0 means no limit.
}

// NameCount pairs a name with its occurrence count.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Stats holds summary statistics about stored alerts.
type Stats struct {
	Total         int            `json:"total"`
	BySeverity    map[string]int `json:"by_severity"`
	TopOperations []NameCount    `json:"top_operations"`
	Earliest      time.Time      `json:"earliest"`
	Latest        time.Time      `json:"latest"`
	Last24h       int            `json:"last_24h"`
}
