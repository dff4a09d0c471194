package consent

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrConsentNotFound    = errors.New("consent not found")
	ErrAlreadyRevoked     = errors.New("consent already revoked")
	ErrAlreadyWithdrawn   = errors.New("consent already withdrawn")
	ErrNotGranted         = errors.New("consent is not granted")
	ErrCannotDeleteActive = errors.New("cannot delete an active consent, revoke or withdraw it first")
	ErrDuplicateGrant     = errors.New("an active consent of this type already exists")
	ErrInvalidAction      = errors.New("invalid action, must be 'revoke' or 'withdraw'")
	ErrConcurrentUpdate   = errors.New("consent was modified concurrently, please retry")
)
