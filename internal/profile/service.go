// File: internal/profile/service.go
package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"riverrevive_backend/internal/common"
	"riverrevive_backend/internal/config"
	"riverrevive_backend/internal/identity"
	"riverrevive_backend/internal/notification"
	"riverrevive_backend/internal/shared"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines profile business logic, including the admin approval
// workflow on top of the shared.ProfileService contract.
type Service interface {
	shared.ProfileService

	UpdateOwnProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*shared.Profile, error)
	ListPending(ctx context.Context, page, pageSize int) ([]shared.Profile, *common.Pagination, error)
	Approve(ctx context.Context, id uuid.UUID) (*shared.Profile, error)
	Reject(ctx context.Context, id uuid.UUID) (*shared.Profile, error)
	AwardPoints(ctx context.Context, id uuid.UUID, points int, reason string) error
}

// ServiceImplementation implements the Service interface.
type ServiceImplementation struct {
	repo     Repository
	notifier notification.Service
	cfg      *config.Config
	logger   *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)
var _ shared.ProfileService = (*ServiceImplementation)(nil)

// NewService creates a new profile service.
func NewService(
	repo Repository,
	notifier notification.Service,
	cfg *config.Config,
	logger *zap.Logger,
) *ServiceImplementation {
	return &ServiceImplementation{
		repo:     repo,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}
}

// initialApproval returns the approval fields for a brand-new profile under
// the configured policy.
func (s *ServiceImplementation) initialApproval() (approved bool, status string) {
	if s.cfg.ApprovalPolicy == config.ApprovalPolicyAuto {
		return true, shared.StatusApproved
	}
	return false, shared.StatusPending
}

// CreateForSignup creates the profile row for a freshly signed-up identity.
func (s *ServiceImplementation) CreateForSignup(ctx context.Context, ident *identity.Identity, role string, fields shared.SignupFields) (*shared.Profile, error) {
	if !common.IsValidRole(role) {
		return nil, common.ErrBadRequest.WithDetails(fmt.Sprintf("Unknown role %q.", role))
	}

	approved, status := s.initialApproval()
	now := time.Now()
	dbProfile := &Profile{
		BaseModel: common.BaseModel{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ProviderUID: ident.UID,
		Role:        role,
		Approved:    approved,
		Status:      status,
	}
	if ident.Email != "" {
		emailCopy := strings.ToLower(strings.TrimSpace(ident.Email))
		dbProfile.Email = &emailCopy
	}
	if fields.FullName != "" {
		nameCopy := fields.FullName
		dbProfile.FullName = &nameCopy
	}
	if fields.Phone != "" {
		phoneCopy := fields.Phone
		dbProfile.Phone = &phoneCopy
	}
	if fields.Location != "" {
		locationCopy := fields.Location
		dbProfile.Location = &locationCopy
	}
	if fields.Organization != "" {
		orgCopy := fields.Organization
		dbProfile.Organization = &orgCopy
	}

	if err := s.repo.Create(ctx, dbProfile); err != nil {
		s.logger.Error("Failed to create profile at signup",
			zap.Error(err), zap.String("providerUID", ident.UID))
		if apiErr, ok := common.IsAPIError(err); ok && apiErr.StatusCode == common.ErrConflict.StatusCode {
			// Another signup or first login won the race; the existing row is
			// the authoritative one.
			return s.GetByProviderUID(ctx, ident.UID)
		}
		return nil, common.ErrProfileCreateFailed.WithDetails(err.Error())
	}

	s.logger.Info("Profile created at signup",
		zap.String("profileID", dbProfile.ID.String()),
		zap.String("role", role),
		zap.String("status", status))
	return DBToShared(dbProfile), nil
}

// GetOrCreateFromToken resolves the profile for a verified token, creating
// one lazily when the signup-time insert never happened. The unique index on
// provider_uid guarantees at most one row even under concurrent first logins.
func (s *ServiceImplementation) GetOrCreateFromToken(ctx context.Context, token *identity.Token) (*shared.Profile, bool, error) {
	dbProfile, err := s.repo.FindByProviderUID(ctx, token.UID)
	if err == nil {
		now := time.Now()
		dbProfile.LastLoginAt = &now
		if updateErr := s.repo.Update(ctx, dbProfile); updateErr != nil {
			// Not critical for resolution; log and proceed.
			s.logger.Error("Failed to update last login time", zap.Error(updateErr), zap.String("profileID", dbProfile.ID.String()))
		}
		return DBToShared(dbProfile), false, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		s.logger.Error("Error fetching profile by provider UID", zap.Error(err), zap.String("providerUID", token.UID))
		return nil, false, common.ErrProfileFetchFailed.WithDetails(err.Error())
	}

	// No row yet: lazy-create from token metadata.
	role := token.Metadata[identity.MetadataRole]
	if !common.IsValidRole(role) {
		role = common.RoleCitizen
	}

	approved, status := s.initialApproval()
	now := time.Now()
	newProfile := &Profile{
		BaseModel: common.BaseModel{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ProviderUID: token.UID,
		Role:        role,
		Approved:    approved,
		Status:      status,
		LastLoginAt: &now,
	}
	if token.Email != "" {
		emailCopy := strings.ToLower(strings.TrimSpace(token.Email))
		newProfile.Email = &emailCopy
	}
	if name := token.Metadata[identity.MetadataFullName]; name != "" {
		nameCopy := name
		newProfile.FullName = &nameCopy
	}

	if err := s.repo.Create(ctx, newProfile); err != nil {
		if apiErr, ok := common.IsAPIError(err); ok && apiErr.StatusCode == common.ErrConflict.StatusCode {
			// Lost the insert race: fetch the winner's row.
			existing, refetchErr := s.repo.FindByProviderUID(ctx, token.UID)
			if refetchErr != nil {
				return nil, false, common.ErrProfileFetchFailed.WithDetails(refetchErr.Error())
			}
			return DBToShared(existing), false, nil
		}
		s.logger.Error("Failed to lazily create profile", zap.Error(err), zap.String("providerUID", token.UID))
		return nil, false, common.ErrProfileCreateFailed.WithDetails(err.Error())
	}

	s.logger.Info("Profile lazily created on first login",
		zap.String("profileID", newProfile.ID.String()),
		zap.String("role", role))
	return DBToShared(newProfile), true, nil
}

// GetByProviderUID fetches the profile for an identity provider UID.
func (s *ServiceImplementation) GetByProviderUID(ctx context.Context, providerUID string) (*shared.Profile, error) {
	dbProfile, err := s.repo.FindByProviderUID(ctx, providerUID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, common.ErrProfileFetchFailed.WithDetails(err.Error())
	}
	return DBToShared(dbProfile), nil
}

// GetByID fetches a profile by its local ID.
func (s *ServiceImplementation) GetByID(ctx context.Context, id uuid.UUID) (*shared.Profile, error) {
	dbProfile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return DBToShared(dbProfile), nil
}

// UpdateOwnProfile applies a self-service update to the caller's profile.
func (s *ServiceImplementation) UpdateOwnProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*shared.Profile, error) {
	dbProfile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ApplyUpdateRequest(&req, dbProfile)
	if err := s.repo.Update(ctx, dbProfile); err != nil {
		s.logger.Error("Failed to update profile", zap.Error(err), zap.String("profileID", id.String()))
		return nil, err
	}
	return DBToShared(dbProfile), nil
}

// ListPending returns the page of profiles awaiting an approval decision.
func (s *ServiceImplementation) ListPending(ctx context.Context, page, pageSize int) ([]shared.Profile, *common.Pagination, error) {
	offset := (page - 1) * pageSize
	if offset < 0 {
		offset = 0
	}
	dbProfiles, total, err := s.repo.ListByStatus(ctx, shared.StatusPending, offset, pageSize)
	if err != nil {
		return nil, nil, err
	}

	profiles := make([]shared.Profile, 0, len(dbProfiles))
	for i := range dbProfiles {
		profiles = append(profiles, *DBToShared(&dbProfiles[i]))
	}
	return profiles, common.NewPagination(total, page, pageSize), nil
}

func (s *ServiceImplementation) decide(ctx context.Context, id uuid.UUID, approve bool) (*shared.Profile, error) {
	status := shared.StatusApproved
	notifType := notification.ProfileApproved
	message := "Your account has been approved. Welcome to RiverRevive!"
	if !approve {
		status = shared.StatusRejected
		notifType = notification.ProfileRejected
		message = "Your account registration was rejected. Contact an administrator for details."
	}

	if err := s.repo.SetApproval(ctx, id, approve, status); err != nil {
		s.logger.Error("Failed to set profile approval",
			zap.Error(err), zap.String("profileID", id.String()), zap.Bool("approve", approve))
		return nil, err
	}

	if err := s.notifier.Notify(ctx, id, notifType, message, nil, nil); err != nil {
		// The decision stuck; a lost notification is not worth failing over.
		s.logger.Warn("Approval decision notification failed", zap.Error(err), zap.String("profileID", id.String()))
	}

	s.logger.Info("Profile approval decision recorded",
		zap.String("profileID", id.String()), zap.String("status", status))
	return s.GetByID(ctx, id)
}

// Approve marks a profile approved.
func (s *ServiceImplementation) Approve(ctx context.Context, id uuid.UUID) (*shared.Profile, error) {
	return s.decide(ctx, id, true)
}

// Reject marks a profile rejected.
func (s *ServiceImplementation) Reject(ctx context.Context, id uuid.UUID) (*shared.Profile, error) {
	return s.decide(ctx, id, false)
}

// AwardPoints credits points to a profile and notifies the owner.
func (s *ServiceImplementation) AwardPoints(ctx context.Context, id uuid.UUID, points int, reason string) error {
	if points <= 0 {
		return nil
	}
	if err := s.repo.AddPoints(ctx, id, points); err != nil {
		s.logger.Error("Failed to award points", zap.Error(err), zap.String("profileID", id.String()), zap.Int("points", points))
		return err
	}
	message := fmt.Sprintf("You earned %d points: %s", points, reason)
	if err := s.notifier.Notify(ctx, id, notification.PointsEarned, message, nil, nil); err != nil {
		s.logger.Warn("Points notification failed", zap.Error(err), zap.String("profileID", id.String()))
	}
	return nil
}
