package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/claimsaver/go-services/internal/identity"
	"github.com/claimsaver/go-services/internal/models"
	"github.com/claimsaver/go-services/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrNotFound = errors.New("user not found")

// ProfileFetcher loads profile attributes from the identity provider's
// Backend API. Satisfied by *identity.Client and by test fakes.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, clerkID string) (*identity.Profile, error)
}

// Service encapsulates user-related business logic
type Service struct {
	repo UserRepository
	idp  ProfileFetcher
}

// NewService creates a user service. idp may be nil when no Backend API key is
// configured; provisioning then relies on token claims alone.
func NewService(r UserRepository, idp ProfileFetcher) *Service {
	return &Service{repo: r, idp: idp}
}

// EnsureFromClaims idempotently ensures a local record exists for an
// authenticated external identity. On a miss the profile is completed from the
// identity provider before the upsert so the stored email is populated. A
// record provisioned without an email (Backend API outage, sparse token) is
// repaired here on the next request instead of staying incomplete forever.
func (s *Service) EnsureFromClaims(ctx context.Context, claims map[string]interface{}) (*models.User, error) {
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, nil
	}

	existing, err := s.repo.GetByClerkID(ctx, sub)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Email != "" {
		return existing, nil
	}

	u := &models.User{ClerkID: sub}
	u.Email, _ = claims["email"].(string)
	u.FirstName, _ = claims["first_name"].(string)
	u.LastName, _ = claims["last_name"].(string)

	if u.Email == "" && s.idp != nil {
		p, err := s.idp.FetchProfile(ctx, sub)
		if err != nil {
			logger.Warnf("profile fetch for %s failed: %v", sub, err)
		} else if p != nil {
			u.Email = p.Email
			if u.FirstName == "" {
				u.FirstName = p.FirstName
			}
			if u.LastName == "" {
				u.LastName = p.LastName
			}
		}
	}

	if existing != nil {
		// still no email to repair with; keep the stored record untouched and
		// retry on a later request
		if u.Email == "" {
			return existing, nil
		}
		if u.FirstName == "" {
			u.FirstName = existing.FirstName
		}
		if u.LastName == "" {
			u.LastName = existing.LastName
		}
	}

	return s.repo.EnsureByClerkID(ctx, u)
}

// UpsertFromWebhook applies a user.created/user.updated event payload.
func (s *Service) UpsertFromWebhook(ctx context.Context, p *identity.Profile) (*models.User, error) {
	if p == nil || p.ID == "" {
		return nil, fmt.Errorf("webhook payload missing user id")
	}
	u := &models.User{
		ClerkID:   p.ID,
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
	}
	return s.repo.EnsureByClerkID(ctx, u)
}

// DeactivateFromWebhook soft-deactivates the user on a user.deleted event.
// Claims and documents are intentionally left in place (no cascade).
func (s *Service) DeactivateFromWebhook(ctx context.Context, clerkID string) error {
	return s.repo.DeactivateByClerkID(ctx, clerkID)
}

func (s *Service) GetByClerkID(ctx context.Context, clerkID string) (*models.User, error) {
	return s.repo.GetByClerkID(ctx, clerkID)
}

// List returns a page of users with the total count, newest first.
func (s *Service) List(ctx context.Context, page, limit int64) ([]models.User, int64, error) {
	return s.repo.List(ctx, page, limit)
}

func (s *Service) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

// Create inserts a user record directly (admin back-office path).
func (s *Service) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if u.ClerkID == "" || u.Email == "" {
		return nil, fmt.Errorf("clerkId and email are required")
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	u.IsActive = true
	if err := s.repo.Insert(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// UserUpdate carries the admin-editable fields; nil means "leave unchanged".
type UserUpdate struct {
	Role        *models.Role        `json:"role,omitempty"`
	IsActive    *bool               `json:"isActive,omitempty"`
	FirstName   *string             `json:"firstName,omitempty"`
	LastName    *string             `json:"lastName,omitempty"`
	Permissions *models.Permissions `json:"permissions,omitempty"`
}

// Update applies an admin edit and returns the stored record, or ErrNotFound.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, upd UserUpdate) (*models.User, error) {
	set := bson.M{}
	if upd.Role != nil {
		switch *upd.Role {
		case models.RoleUser, models.RoleAdmin, models.RoleSuperAdmin:
		default:
			return nil, fmt.Errorf("invalid role %q", *upd.Role)
		}
		set["role"] = *upd.Role
	}
	if upd.IsActive != nil {
		set["isActive"] = *upd.IsActive
	}
	if upd.FirstName != nil {
		set["firstName"] = *upd.FirstName
	}
	if upd.LastName != nil {
		set["lastName"] = *upd.LastName
	}
	if upd.Permissions != nil {
		set["permissions"] = *upd.Permissions
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}
	u, err := s.repo.Update(ctx, id, set)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.Delete(ctx, id)
}

// NoteClaimAdded bumps the owner's claims counter. Best effort; a failed
// counter update never fails the claim write.
func (s *Service) NoteClaimAdded(ctx context.Context, clerkID string) {
	if err := s.repo.IncCounters(ctx, clerkID, 1, 0); err != nil {
		logger.Warnf("failed to bump claims counter for %s: %v", clerkID, err)
	}
}

// NoteDocumentAdded bumps the owner's documents counter (delta may be -1 on delete).
func (s *Service) NoteDocumentAdded(ctx context.Context, clerkID string, delta int) {
	if err := s.repo.IncCounters(ctx, clerkID, 0, delta); err != nil {
		logger.Warnf("failed to bump documents counter for %s: %v", clerkID, err)
	}
}
