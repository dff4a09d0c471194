// Package privacy manages which personal data attributes automated decisions may read,
// and scores how restrictive a user's choices are.
package privacy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/chris/ethicalbank/pkg/auth"
	"github.com/chris/ethicalbank/pkg/consent"
	"github.com/chris/ethicalbank/pkg/models"
	"github.com/chris/ethicalbank/pkg/storage"
)

const (
	// PermissionsConsentType is the consent recorded whenever a user changes their permissions.
	PermissionsConsentType = "data_access_permissions"
	PermissionsPurpose     = "AI decision making and recommendations"
	SupersededReason       = "Superseded by updated permissions"
	AllDeniedReason        = "All data attributes denied"

	maxScore    = 100
	maxAttempts = 3
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrConcurrentUpdate = errors.New("permissions were modified concurrently, please retry")
)

// ConsentRecorder is the part of the consent tracker used to audit permission changes.
type ConsentRecorder interface {
	Replace(ctx context.Context, p auth.Principal, req consent.GrantRequest, reason string) (*models.ConsentRecord, error)
	RevokeGranted(ctx context.Context, p auth.Principal, consentType, reason string) (bool, error)
}

// PermissionUpdate sets one attribute's flag.
type PermissionUpdate struct {
	AttributeId string
	Allowed     bool
}

// Permissions is a user's permission document with its totals.
type Permissions struct {
	UserId          string
	Permissions     map[string]bool
	LastUpdated     time.Time
	TotalAllowed    int
	TotalAttributes int
}

// Score is a privacy score and whether it was served from the cache.
type Score struct {
	models.PrivacyScore
	Cached   bool
	CacheAge time.Duration
}

type Service struct {
	store    storage.PermissionStore
	consents ConsentRecorder
	cache    ScoreCache
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a new Service. A nil cache disables score caching.
func NewService(store storage.PermissionStore, consents ConsentRecorder, cache ScoreCache, logger *slog.Logger) *Service {
	if cache == nil {
		cache = NoOpScoreCache{}
	}
	return &Service{
		store:    store,
		consents: consents,
		cache:    cache,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GetPermissions returns the caller's permissions, creating the all-allowed default on first use.
func (s *Service) GetPermissions(ctx context.Context, p auth.Principal) (*Permissions, error) {
	if p.UserID == "" {
		return nil, auth.ErrUnauthenticated
	}

	doc, err := s.store.GetPermissions(ctx, p.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		now := s.now()
		doc = &models.DataAccessPermissions{
			UserId:      p.UserID,
			Permissions: DefaultPermissions(),
			Version:     1,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		err = s.store.PutPermissions(ctx, doc, 0)
		if errors.Is(err, storage.ErrVersionConflict) {
			// Someone else created the document first; theirs wins.
			doc, err = s.store.GetPermissions(ctx, p.UserID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create default permissions: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to load permissions: %w", err)
	}

	return summarize(doc), nil
}

// UpdatePermissions merges updates into the caller's permissions and records the
// resulting allowed set as a data_access_permissions consent.
func (s *Service) UpdatePermissions(ctx context.Context, p auth.Principal, updates []PermissionUpdate) (*Permissions, error) {
	if p.UserID == "" {
		return nil, auth.ErrUnauthenticated
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: at least one permission is required", ErrValidation)
	}
	var unknown []string
	for _, u := range updates {
		if !KnownAttribute(u.AttributeId) {
			unknown = append(unknown, u.AttributeId)
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: unknown data attributes: %s", ErrValidation, strings.Join(unknown, ", "))
	}

	var doc *models.DataAccessPermissions
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var err error
		doc, err = s.mergeAndSave(ctx, p.UserID, updates)
		if err == nil {
			break
		}
		if !errors.Is(err, storage.ErrVersionConflict) {
			return nil, err
		}
		if attempt >= maxAttempts {
			s.logger.WarnContext(ctx, "giving up after concurrent permission updates", "user_id", p.UserID, "attempts", attempt)
			return nil, fmt.Errorf("update permissions: %w", ErrConcurrentUpdate)
		}
		s.logger.DebugContext(ctx, "permissions changed underneath us, retrying", "user_id", p.UserID, "attempt", attempt)
	}

	if err := s.cache.Invalidate(ctx, p.UserID); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate privacy score cache", "error", err, "user_id", p.UserID)
	}

	if err := s.recordConsent(ctx, p, allowedAttributes(doc.Permissions)); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "data access permissions updated", "user_id", p.UserID, "changed", len(updates))
	return summarize(doc), nil
}

// mergeAndSave applies updates to the stored document and writes it back, conditional on the
// document not having changed since it was read.
func (s *Service) mergeAndSave(ctx context.Context, userID string, updates []PermissionUpdate) (*models.DataAccessPermissions, error) {
	now := s.now()
	doc, err := s.store.GetPermissions(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		doc = &models.DataAccessPermissions{
			UserId:      userID,
			Permissions: DefaultPermissions(),
			CreatedAt:   now,
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to load permissions: %w", err)
	}
	if doc.Permissions == nil {
		doc.Permissions = make(map[string]bool, len(updates))
	}

	for _, u := range updates {
		doc.Permissions[u.AttributeId] = u.Allowed
	}
	readVersion := doc.Version
	doc.Version = readVersion + 1
	doc.UpdatedAt = now

	if err := s.store.PutPermissions(ctx, doc, readVersion); err != nil {
		if errors.Is(err, storage.ErrVersionConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to save permissions: %w", err)
	}
	return doc, nil
}

func (s *Service) recordConsent(ctx context.Context, p auth.Principal, allowed []string) error {
	if len(allowed) == 0 {
		if _, err := s.consents.RevokeGranted(ctx, p, PermissionsConsentType, AllDeniedReason); err != nil {
			return fmt.Errorf("failed to revoke data access consent: %w", err)
		}
		return nil
	}

	_, err := s.consents.Replace(ctx, p, consent.GrantRequest{
		ConsentType: PermissionsConsentType,
		Purpose:     PermissionsPurpose,
		DataTypes:   allowed,
		Version:     consent.DefaultVersion,
		Source:      consent.DefaultSource,
	}, SupersededReason)
	if err != nil {
		return fmt.Errorf("failed to record data access consent: %w", err)
	}
	return nil
}

// PrivacyScore returns the share of catalog attributes the caller has denied, as a percentage.
// Scores are cached; refresh bypasses the cache.
func (s *Service) PrivacyScore(ctx context.Context, p auth.Principal, refresh bool) (*Score, error) {
	if p.UserID == "" {
		return nil, auth.ErrUnauthenticated
	}

	now := s.now()
	if !refresh {
		cached, err := s.cache.Get(ctx, p.UserID)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to read privacy score cache", "error", err, "user_id", p.UserID)
		} else if cached != nil {
			return &Score{PrivacyScore: cached.Score, Cached: true, CacheAge: now.Sub(cached.ComputedAt)}, nil
		}
	}

	perms := DefaultPermissions()
	doc, err := s.store.GetPermissions(ctx, p.UserID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("failed to load permissions: %w", err)
	default:
		for id, allowed := range doc.Permissions {
			if KnownAttribute(id) {
				perms[id] = allowed
			}
		}
	}

	score := computeScore(perms)
	if err := s.cache.Set(ctx, p.UserID, CachedScore{Score: score, ComputedAt: now}); err != nil {
		s.logger.WarnContext(ctx, "failed to cache privacy score", "error", err, "user_id", p.UserID)
	}
	return &Score{PrivacyScore: score}, nil
}

func computeScore(perms map[string]bool) models.PrivacyScore {
	total := len(perms)
	denied := 0
	for _, allowed := range perms {
		if !allowed {
			denied++
		}
	}
	score := 0
	if total > 0 {
		score = denied * maxScore / total
	}
	return models.PrivacyScore{
		Score:             score,
		MaxScore:          maxScore,
		AllowedAttributes: total - denied,
		DeniedAttributes:  denied,
		TotalAttributes:   total,
		Message:           fmt.Sprintf("%d of %d attributes restricted", denied, total),
	}
}

func summarize(doc *models.DataAccessPermissions) *Permissions {
	allowed := 0
	for _, ok := range doc.Permissions {
		if ok {
			allowed++
		}
	}
	return &Permissions{
		UserId:          doc.UserId,
		Permissions:     doc.Permissions,
		LastUpdated:     doc.UpdatedAt,
		TotalAllowed:    allowed,
		TotalAttributes: len(doc.Permissions),
	}
}

func allowedAttributes(perms map[string]bool) []string {
	allowed := make([]string, 0, len(perms))
	for id, ok := range perms {
		if ok {
			allowed = append(allowed, id)
		}
	}
	sort.Strings(allowed)
	return allowed
}
