package storage

import (
	"context"
	"time"

	"github.com/chris/ethicalbank/pkg/models"
)

// ConsentReader defines the interface for reading consent records.
type ConsentReader interface {
	// GetConsent retrieves a consent record by its ID.
	GetConsent(ctx context.Context, consentID string) (*models.ConsentRecord, error)

	// ListConsentsByUserID retrieves a user's consent history, newest first.
	ListConsentsByUserID(ctx context.Context, userID string, limit int32) ([]models.ConsentRecord, error)

	// FindGrantedConsent returns the user's granted consent of the given type, or ErrNotFound.
	FindGrantedConsent(ctx context.Context, userID, consentType string) (*models.ConsentRecord, error)

	// ListLapsedConsents retrieves granted consents whose expiry is before the cutoff.
	ListLapsedConsents(ctx context.Context, cutoff time.Time) ([]models.ConsentRecord, error)
}

// ConsentManager defines the interface for the consent lifecycle.
type ConsentManager interface {
	// CreateConsent stores a new granted consent. It returns ErrAlreadyExists if the user
	// already holds a granted consent of the same type.
	CreateConsent(ctx context.Context, record *models.ConsentRecord) error

	// TransitionConsent persists a record leaving the given status.
	// Leaving GRANTED releases the one-granted-per-type slot in the same write.
	TransitionConsent(ctx context.Context, record *models.ConsentRecord, from models.ConsentStatus) error

	// ReplaceConsent atomically moves previous out of GRANTED and stores next as the granted record.
	ReplaceConsent(ctx context.Context, previous, next *models.ConsentRecord) error

	// DeleteConsent hard-deletes a record, guarded by its current status.
	DeleteConsent(ctx context.Context, consentID string, status models.ConsentStatus) error
}

// ConsentStore combines the reader and manager interfaces.
type ConsentStore interface {
	ConsentReader
	ConsentManager
}
