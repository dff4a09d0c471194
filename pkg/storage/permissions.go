package storage

import (
	"context"

	"github.com/chris/ethicalbank/pkg/models"
)

// PermissionStore defines the interface for a user's data-access permissions.
type PermissionStore interface {
	// GetPermissions retrieves a user's permissions document, or ErrNotFound.
	GetPermissions(ctx context.Context, userID string) (*models.DataAccessPermissions, error)

	// PutPermissions writes a user's permissions document if the stored one is still at
	// readVersion. A readVersion of zero means the document must not exist yet.
	// Returns ErrVersionConflict when another writer got there first.
	PutPermissions(ctx context.Context, permissions *models.DataAccessPermissions, readVersion int64) error
}
