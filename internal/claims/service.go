package claims

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/claimsaver/go-services/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrNotFound = errors.New("claim not found")

// highPriorityThreshold: submissions above this estimated value are marked high.
const highPriorityThreshold = 10000

// claimNumberAttempts bounds retries when a generated number collides with the
// unique index.
const claimNumberAttempts = 5

// Service wraps repository operations with the claim submission rules.
type Service struct {
	repo ClaimRepository
	now  func() time.Time
}

func NewService(r ClaimRepository) *Service {
	return &Service{repo: r, now: time.Now}
}

// NewClaimNumber derives a claim number from the given date plus a 4-digit
// random suffix: CS<YY><MM>-<NNNN>. Uniqueness is enforced by the claims
// collection's unique index; Submit retries on collision.
func NewClaimNumber(t time.Time) string {
	return fmt.Sprintf("CS%02d%02d-%04d", t.Year()%100, int(t.Month()), rand.IntN(10000))
}

// NormalizeInjuries coerces the variably-shaped injuries form field into a
// fixed slice. The field arrives as a JSON array, as a JSON-encoded string
// (older form clients double-encode it), or not at all.
func NormalizeInjuries(raw interface{}) []models.Injury {
	switch v := raw.(type) {
	case nil:
		return []models.Injury{}
	case string:
		if v == "" {
			return []models.Injury{}
		}
		var out []models.Injury
		if err := json.Unmarshal([]byte(v), &out); err != nil {
			// a bare string becomes a single description-only entry
			return []models.Injury{{Description: v}}
		}
		return out
	case []interface{}:
		out := make([]models.Injury, 0, len(v))
		for _, item := range v {
			b, err := json.Marshal(item)
			if err != nil {
				continue
			}
			var inj models.Injury
			if err := json.Unmarshal(b, &inj); err != nil {
				continue
			}
			out = append(out, inj)
		}
		return out
	default:
		return []models.Injury{}
	}
}

// Submit persists a new claim: status pending, priority derived from the
// estimated value, claim number regenerated when the unique index rejects a
// collision.
func (s *Service) Submit(ctx context.Context, c *models.Claim, rawInjuries interface{}) (*models.Claim, error) {
	if c.UserID == "" {
		return nil, fmt.Errorf("claim missing owning user")
	}
	c.Status = models.ClaimStatusPending
	c.Priority = models.ClaimPriorityMedium
	if c.EstimatedValue > highPriorityThreshold {
		c.Priority = models.ClaimPriorityHigh
	}
	c.Injuries = NormalizeInjuries(rawInjuries)
	if c.Notes == nil {
		c.Notes = []models.Note{}
	}

	var err error
	for attempt := 0; attempt < claimNumberAttempts; attempt++ {
		c.ClaimNumber = NewClaimNumber(s.now())
		err = s.repo.Insert(ctx, c)
		if err == nil {
			return c, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("claim number collision persisted after %d attempts: %w", claimNumberAttempts, err)
}

func (s *Service) ListMine(ctx context.Context, userID string) ([]models.Claim, error) {
	return s.repo.ListByUser(ctx, userID)
}

// GetMine returns the user's claim or ErrNotFound, also when the id exists but
// is owned by a different user.
func (s *Service) GetMine(ctx context.Context, id primitive.ObjectID, userID string) (*models.Claim, error) {
	c, err := s.repo.GetByIDForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.Claim, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]models.Claim, int64, error) {
	return s.repo.List(ctx, f)
}

// AdminUpdate carries the admin-editable claim fields; nil means unchanged.
type AdminUpdate struct {
	Status           *models.ClaimStatus   `json:"status,omitempty"`
	Priority         *models.ClaimPriority `json:"priority,omitempty"`
	SettlementAmount *float64              `json:"settlementAmount,omitempty"`
	Note             *string               `json:"note,omitempty"`
}

// Update applies an admin edit, optionally appending a note attributed to author.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, upd AdminUpdate, author string) (*models.Claim, error) {
	set := bson.M{}
	if upd.Status != nil {
		switch *upd.Status {
		case models.ClaimStatusPending, models.ClaimStatusReview, models.ClaimStatusApproved,
			models.ClaimStatusRejected, models.ClaimStatusSettled:
		default:
			return nil, fmt.Errorf("invalid status %q", *upd.Status)
		}
		set["status"] = *upd.Status
	}
	if upd.Priority != nil {
		switch *upd.Priority {
		case models.ClaimPriorityMedium, models.ClaimPriorityHigh:
		default:
			return nil, fmt.Errorf("invalid priority %q", *upd.Priority)
		}
		set["priority"] = *upd.Priority
	}
	if upd.SettlementAmount != nil {
		set["settlementAmount"] = *upd.SettlementAmount
	}
	var note *models.Note
	if upd.Note != nil && *upd.Note != "" {
		note = &models.Note{Author: author, Text: *upd.Note, CreatedAt: s.now().UTC()}
	}
	if len(set) == 0 && note == nil {
		return nil, fmt.Errorf("no fields to update")
	}
	c, err := s.repo.Update(ctx, id, set, note)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) error {
	err := s.repo.Delete(ctx, id)
	if err == mongo.ErrNoDocuments {
		return ErrNotFound
	}
	return err
}
