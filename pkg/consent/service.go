// Package consent tracks the grant, revoke and withdraw lifecycle of user consent records.
package consent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chris/ethicalbank/pkg/auth"
	"github.com/chris/ethicalbank/pkg/events"
	"github.com/chris/ethicalbank/pkg/ids"
	"github.com/chris/ethicalbank/pkg/models"
	"github.com/chris/ethicalbank/pkg/storage"
)

// Action is a user-initiated transition.
type Action string

const (
	ActionRevoke   Action = "revoke"
	ActionWithdraw Action = "withdraw"
)

const (
	DefaultVersion          = "1.0"
	DefaultSource           = "web"
	DefaultRevokeReason     = "User requested revocation"
	DefaultWithdrawalReason = "User requested withdrawal"
	UserRequestMethod       = "user_request"

	DefaultListLimit = 50
	MaxListLimit     = 200

	maxAttempts = 3
)

// GrantRequest describes a consent to record.
type GrantRequest struct {
	ConsentType string
	Purpose     string
	DataTypes   []string
	Version     string
	Source      string
	ExpiresAt   *time.Time
}

// StatusChangedData is the payload of a ConsentStatusChanged event.
type StatusChangedData struct {
	ConsentId   string               `json:"consent_id"`
	ConsentType string               `json:"consent_type"`
	From        models.ConsentStatus `json:"from,omitempty"`
	To          models.ConsentStatus `json:"to,omitempty"`
	Reason      string               `json:"reason,omitempty"`
	Deleted     bool                 `json:"deleted,omitempty"`
}

// Service implements the consent state tracker.
type Service struct {
	store     storage.ConsentStore
	publisher events.Publisher
	metrics   *Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a new Service. metrics may be nil; a nil publisher disables events.
func NewService(store storage.ConsentStore, publisher events.Publisher, metrics *Metrics, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.NoOpPublisher{}
	}
	return &Service{
		store:     store,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Grant records a new granted consent. A user holds at most one granted consent per type;
// a granted record that has already lapsed is expired to make room.
func (s *Service) Grant(ctx context.Context, p auth.Principal, req GrantRequest) (*models.ConsentRecord, error) {
	record, err := s.grant(ctx, p, req)
	s.metrics.IncTransition("grant", err)
	return record, err
}

func (s *Service) grant(ctx context.Context, p auth.Principal, req GrantRequest) (*models.ConsentRecord, error) {
	if p.UserID == "" {
		return nil, auth.ErrUnauthenticated
	}
	now := s.now()
	record, err := s.newRecord(p, req, now)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.FindGrantedConsent(ctx, p.UserID, record.ConsentType)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("failed to check for an existing consent: %w", err)
	case existing.IsLapsed(now):
		if err := s.expire(ctx, existing, now); err != nil && !errors.Is(err, storage.ErrVersionConflict) {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%s consent %s: %w", existing.ConsentType, existing.Id, ErrDuplicateGrant)
	}

	if err := s.store.CreateConsent(ctx, record); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s consent: %w", record.ConsentType, ErrDuplicateGrant)
		}
		return nil, fmt.Errorf("failed to create consent: %w", err)
	}

	s.logger.InfoContext(ctx, "consent granted", "consent_id", record.Id, "user_id", p.UserID, "consent_type", record.ConsentType)
	s.publish(ctx, record, "", models.GRANTED, "", false)
	return record, nil
}

// Replace grants req and, when the user already holds a granted consent of that type, revokes the
// old one with reason in the same write.
func (s *Service) Replace(ctx context.Context, p auth.Principal, req GrantRequest, reason string) (*models.ConsentRecord, error) {
	if p.UserID == "" {
		return nil, auth.ErrUnauthenticated
	}

	var next *models.ConsentRecord
	var previous *models.ConsentRecord
	err := s.withRetry(ctx, "replace "+req.ConsentType+" consent", func() error {
		now := s.now()
		record, err := s.newRecord(p, req, now)
		if err != nil {
			return err
		}

		existing, err := s.store.FindGrantedConsent(ctx, p.UserID, record.ConsentType)
		if errors.Is(err, storage.ErrNotFound) {
			if err := s.store.CreateConsent(ctx, record); err != nil {
				if errors.Is(err, storage.ErrAlreadyExists) {
					return fmt.Errorf("replace consent: %w", storage.ErrVersionConflict)
				}
				return fmt.Errorf("failed to create consent: %w", err)
			}
			next, previous = record, nil
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to check for an existing consent: %w", err)
		}

		revokeRecord(existing, p, reason, "system", now)
		if err := s.store.ReplaceConsent(ctx, existing, record); err != nil {
			if errors.Is(err, storage.ErrVersionConflict) {
				return err
			}
			return fmt.Errorf("failed to replace consent: %w", err)
		}
		next, previous = record, existing
		return nil
	})
	s.metrics.IncTransition("replace", err)
	if err != nil {
		return nil, err
	}

	if previous != nil {
		s.publish(ctx, previous, models.GRANTED, models.REVOKED, reason, false)
	}
	s.publish(ctx, next, "", models.GRANTED, "", false)
	return next, nil
}

// RevokeGranted revokes the caller's granted consent of consentType, if there is one.
// It reports whether a record was revoked.
func (s *Service) RevokeGranted(ctx context.Context, p auth.Principal, consentType, reason string) (bool, error) {
	if p.UserID == "" {
		return false, auth.ErrUnauthenticated
	}
	existing, err := s.store.FindGrantedConsent(ctx, p.UserID, consentType)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check for an existing consent: %w", err)
	}
	if _, err := s.Revoke(ctx, p, existing.Id, reason); err != nil {
		if errors.Is(err, ErrAlreadyRevoked) || errors.Is(err, ErrNotGranted) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Get returns one of the caller's consent records.
func (s *Service) Get(ctx context.Context, p auth.Principal, consentID string) (*models.ConsentRecord, error) {
	if p.UserID == "" {
		return nil, auth.ErrUnauthenticated
	}
	record, err := s.store.GetConsent(ctx, consentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("consent %s: %w", consentID, ErrConsentNotFound)
		}
		return nil, fmt.Errorf("failed to load consent: %w", err)
	}
	if record.UserId != p.UserID {
		return nil, fmt.Errorf("consent %s: %w", consentID, ErrConsentNotFound)
	}
	return record, nil
}

// List returns the caller's consent history, newest first. A zero limit means DefaultListLimit.
func (s *Service) List(ctx context.Context, p auth.Principal, limit int) ([]models.ConsentRecord, error) {
	if p.UserID == "" {
		return nil, auth.ErrUnauthenticated
	}
	if limit == 0 {
		limit = DefaultListLimit
	}
	if limit < 1 || limit > MaxListLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrValidation, MaxListLimit)
	}
	records, err := s.store.ListConsentsByUserID(ctx, p.UserID, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list consents: %w", err)
	}
	return records, nil
}

// ApplyAction dispatches a revoke or withdraw request.
func (s *Service) ApplyAction(ctx context.Context, p auth.Principal, consentID string, action Action, reason string) (*models.ConsentRecord, error) {
	switch action {
	case ActionRevoke:
		return s.Revoke(ctx, p, consentID, reason)
	case ActionWithdraw:
		return s.Withdraw(ctx, p, consentID, reason)
	default:
		s.metrics.IncTransition("unknown", ErrInvalidAction)
		return nil, fmt.Errorf("action %q: %w", action, ErrInvalidAction)
	}
}

// Revoke moves a granted consent to revoked.
func (s *Service) Revoke(ctx context.Context, p auth.Principal, consentID, reason string) (*models.ConsentRecord, error) {
	if strings.TrimSpace(reason) == "" {
		reason = DefaultRevokeReason
	}
	record, err := s.terminate(ctx, p, consentID, models.REVOKED, reason)
	s.metrics.IncTransition(string(ActionRevoke), err)
	return record, err
}

// Withdraw moves a granted consent to withdrawn.
func (s *Service) Withdraw(ctx context.Context, p auth.Principal, consentID, reason string) (*models.ConsentRecord, error) {
	if strings.TrimSpace(reason) == "" {
		reason = DefaultWithdrawalReason
	}
	record, err := s.terminate(ctx, p, consentID, models.WITHDRAWN, reason)
	s.metrics.IncTransition(string(ActionWithdraw), err)
	return record, err
}

func (s *Service) terminate(ctx context.Context, p auth.Principal, consentID string, to models.ConsentStatus, reason string) (*models.ConsentRecord, error) {
	var record *models.ConsentRecord
	err := s.withRetry(ctx, "update consent "+consentID, func() error {
		current, err := s.Get(ctx, p, consentID)
		if err != nil {
			return err
		}
		if err := checkTransition(current.Status, to); err != nil {
			return fmt.Errorf("consent %s: %w", consentID, err)
		}

		now := s.now()
		if to == models.REVOKED {
			revokeRecord(current, p, reason, UserRequestMethod, now)
		} else {
			current.Status = models.WITHDRAWN
			current.WithdrawnAt = &now
			current.WithdrawalReason = reason
			current.RevocationMethod = methodSnapshot(p, UserRequestMethod, now)
			current.UpdatedAt = now
		}

		if err := s.store.TransitionConsent(ctx, current, models.GRANTED); err != nil {
			if errors.Is(err, storage.ErrVersionConflict) {
				return err
			}
			return fmt.Errorf("failed to update consent: %w", err)
		}
		record = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "consent terminated", "consent_id", consentID, "user_id", p.UserID, "status", to)
	s.publish(ctx, record, models.GRANTED, to, reason, false)
	return record, nil
}

// Delete hard-deletes a consent record that is no longer granted.
func (s *Service) Delete(ctx context.Context, p auth.Principal, consentID string) error {
	var deleted *models.ConsentRecord
	err := s.withRetry(ctx, "delete consent "+consentID, func() error {
		current, err := s.Get(ctx, p, consentID)
		if err != nil {
			return err
		}
		if current.Status == models.GRANTED {
			return fmt.Errorf("consent %s: %w", consentID, ErrCannotDeleteActive)
		}
		if err := s.store.DeleteConsent(ctx, consentID, current.Status); err != nil {
			if errors.Is(err, storage.ErrVersionConflict) {
				return err
			}
			return fmt.Errorf("failed to delete consent: %w", err)
		}
		deleted = current
		return nil
	})
	s.metrics.IncTransition("delete", err)
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "consent deleted", "consent_id", consentID, "user_id", p.UserID)
	s.publish(ctx, deleted, deleted.Status, "", "", true)
	return nil
}

// ExpireLapsed moves every granted consent whose expiry is at or before now to expired.
// Records that change concurrently are skipped. It returns how many records were expired.
func (s *Service) ExpireLapsed(ctx context.Context, now time.Time) (int, error) {
	lapsed, err := s.store.ListLapsedConsents(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list lapsed consents: %w", err)
	}

	var errs []error
	expired := 0
	for i := range lapsed {
		err := s.expire(ctx, &lapsed[i], now)
		switch {
		case err == nil:
			expired++
		case errors.Is(err, storage.ErrVersionConflict):
			s.logger.DebugContext(ctx, "consent changed before it could be expired", "consent_id", lapsed[i].Id)
		default:
			s.metrics.IncSweepError()
			errs = append(errs, err)
		}
	}

	s.logger.InfoContext(ctx, "consent expiry sweep finished", "lapsed", len(lapsed), "expired", expired, "failed", len(errs))
	return expired, errors.Join(errs...)
}

func (s *Service) expire(ctx context.Context, record *models.ConsentRecord, now time.Time) error {
	record.Status = models.EXPIRED
	record.ExpiredAt = &now
	record.UpdatedAt = now
	if err := s.store.TransitionConsent(ctx, record, models.GRANTED); err != nil {
		if errors.Is(err, storage.ErrVersionConflict) {
			return err
		}
		return fmt.Errorf("failed to expire consent %s: %w", record.Id, err)
	}
	s.metrics.IncExpired()
	s.publish(ctx, record, models.GRANTED, models.EXPIRED, "", false)
	return nil
}

func (s *Service) newRecord(p auth.Principal, req GrantRequest, now time.Time) (*models.ConsentRecord, error) {
	consentType := strings.ToLower(strings.TrimSpace(req.ConsentType))
	if !validConsentType(consentType) {
		return nil, fmt.Errorf("%w: consentType must be 1-64 characters of a-z, 0-9, '_' or '-'", ErrValidation)
	}
	purpose := strings.TrimSpace(req.Purpose)
	if purpose == "" {
		return nil, fmt.Errorf("%w: purpose is required", ErrValidation)
	}
	dataTypes := make([]string, 0, len(req.DataTypes))
	for _, dt := range req.DataTypes {
		if dt = strings.TrimSpace(dt); dt != "" {
			dataTypes = append(dataTypes, dt)
		}
	}
	if len(dataTypes) == 0 {
		return nil, fmt.Errorf("%w: at least one data type is required", ErrValidation)
	}
	if req.ExpiresAt != nil && !req.ExpiresAt.After(now) {
		return nil, fmt.Errorf("%w: expiresAt must be in the future", ErrValidation)
	}

	version := req.Version
	if version == "" {
		version = DefaultVersion
	}
	source := req.Source
	if source == "" {
		source = DefaultSource
	}

	var expiresAt *time.Time
	if req.ExpiresAt != nil {
		t := req.ExpiresAt.UTC()
		expiresAt = &t
	}

	return &models.ConsentRecord{
		Id:          ids.New(),
		UserId:      p.UserID,
		ConsentType: consentType,
		Status:      models.GRANTED,
		Purpose:     purpose,
		DataTypes:   dataTypes,
		Version:     version,
		Metadata: models.ConsentMetadata{
			Source:    source,
			IPAddress: orUnknown(p.IPAddress),
			UserAgent: orUnknown(p.UserAgent),
		},
		ExpiresAt: expiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// withRetry reruns attempt while the record keeps changing underneath it.
func (s *Service) withRetry(ctx context.Context, op string, attempt func() error) error {
	for i := 1; ; i++ {
		err := attempt()
		if !errors.Is(err, storage.ErrVersionConflict) {
			return err
		}
		if i >= maxAttempts {
			s.logger.WarnContext(ctx, "giving up after concurrent updates", "operation", op, "attempts", i)
			return fmt.Errorf("%s: %w", op, ErrConcurrentUpdate)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s: %w", op, ctxErr)
		}
		s.logger.DebugContext(ctx, "retrying after concurrent update", "operation", op, "attempt", i)
	}
}

func (s *Service) publish(ctx context.Context, record *models.ConsentRecord, from, to models.ConsentStatus, reason string, deleted bool) {
	event := events.New(events.ConsentStatusChanged, record.UserId, StatusChangedData{
		ConsentId:   record.Id,
		ConsentType: record.ConsentType,
		From:        from,
		To:          to,
		Reason:      reason,
		Deleted:     deleted,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish consent event", "error", err, "consent_id", record.Id)
	}
}

// checkTransition allows only granted records to move to a terminal state.
func checkTransition(from, to models.ConsentStatus) error {
	switch {
	case from == models.GRANTED:
		return nil
	case from == to && to == models.REVOKED:
		return ErrAlreadyRevoked
	case from == to && to == models.WITHDRAWN:
		return ErrAlreadyWithdrawn
	default:
		return ErrNotGranted
	}
}

func revokeRecord(record *models.ConsentRecord, p auth.Principal, reason, method string, now time.Time) {
	record.Status = models.REVOKED
	record.RevokedAt = &now
	record.RevocationReason = reason
	record.RevocationMethod = methodSnapshot(p, method, now)
	record.UpdatedAt = now
}

func methodSnapshot(p auth.Principal, method string, now time.Time) *models.RevocationMethod {
	return &models.RevocationMethod{
		Method:    method,
		IPAddress: orUnknown(p.IPAddress),
		UserAgent: orUnknown(p.UserAgent),
		Timestamp: now,
	}
}

func validConsentType(t string) bool {
	if t == "" || len(t) > 64 {
		return false
	}
	for _, r := range t {
		if !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') && r != '_' && r != '-' {
			return false
		}
	}
	return true
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
