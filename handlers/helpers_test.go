package handlers

import (
	"context"
	"sync"

	"github.com/claimsaver/go-services/internal/claims"
	"github.com/claimsaver/go-services/internal/models"
	"github.com/claimsaver/go-services/pkg/middleware"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// asUser bypasses the auth chain and plants the user directly, so handler
// tests exercise the handler logic and not the middleware (covered in
// pkg/middleware tests).
func asUser(u *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, u)
		c.Next()
	}
}

func testUser(clerkID string) *models.User {
	return &models.User{
		ID:        primitive.NewObjectID(),
		ClerkID:   clerkID,
		Email:     clerkID + "@example.com",
		FirstName: "Test",
		LastName:  "User",
		Role:      models.RoleUser,
		IsActive:  true,
	}
}

// memClaimRepo is an in-memory ClaimRepository.
type memClaimRepo struct {
	mu    sync.Mutex
	store map[primitive.ObjectID]*models.Claim
}

func newMemClaimRepo() *memClaimRepo {
	return &memClaimRepo{store: map[primitive.ObjectID]*models.Claim{}}
}

func (r *memClaimRepo) Insert(ctx context.Context, c *models.Claim) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.store {
		if existing.ClaimNumber == c.ClaimNumber {
			return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
		}
	}
	c.ID = primitive.NewObjectID()
	r.store[c.ID] = c
	return nil
}

func (r *memClaimRepo) GetByIDForUser(ctx context.Context, id primitive.ObjectID, userID string) (*models.Claim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.store[id]
	if !ok || c.UserID != userID {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *memClaimRepo) ListByUser(ctx context.Context, userID string) ([]models.Claim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Claim{}
	for _, c := range r.store {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *memClaimRepo) Get(ctx context.Context, id primitive.ObjectID) (*models.Claim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.store[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *memClaimRepo) List(ctx context.Context, f claims.ListFilter) ([]models.Claim, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Claim{}
	for _, c := range r.store {
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.Priority != "" && c.Priority != f.Priority {
			continue
		}
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *memClaimRepo) Update(ctx context.Context, id primitive.ObjectID, set bson.M, note *models.Note) (*models.Claim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.store[id]
	if !ok {
		return nil, nil
	}
	if v, ok := set["status"]; ok {
		c.Status = v.(models.ClaimStatus)
	}
	if v, ok := set["priority"]; ok {
		c.Priority = v.(models.ClaimPriority)
	}
	if v, ok := set["settlementAmount"]; ok {
		c.SettlementAmount = v.(float64)
	}
	if note != nil {
		c.Notes = append(c.Notes, *note)
	}
	cp := *c
	return &cp, nil
}

func (r *memClaimRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.store[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(r.store, id)
	return nil
}

// memDocRepo is an in-memory DocumentRepository.
type memDocRepo struct {
	mu    sync.Mutex
	store map[primitive.ObjectID]*models.Document
}

func newMemDocRepo() *memDocRepo {
	return &memDocRepo{store: map[primitive.ObjectID]*models.Document{}}
}

func (r *memDocRepo) Insert(ctx context.Context, d *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d.ID = primitive.NewObjectID()
	r.store[d.ID] = d
	return nil
}

func (r *memDocRepo) GetByIDForUser(ctx context.Context, id primitive.ObjectID, userID string) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.store[id]
	if !ok || d.UserID != userID {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (r *memDocRepo) Get(ctx context.Context, id primitive.ObjectID) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.store[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (r *memDocRepo) ListByUser(ctx context.Context, userID string) ([]models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Document{}
	for _, d := range r.store {
		if d.UserID == userID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *memDocRepo) UpdateMeta(ctx context.Context, id primitive.ObjectID, userID string, set bson.M) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.store[id]
	if !ok || d.UserID != userID {
		return nil, nil
	}
	if v, ok := set["name"]; ok {
		d.Name = v.(string)
	}
	if v, ok := set["description"]; ok {
		d.Description = v.(string)
	}
	if v, ok := set["category"]; ok {
		d.Category = v.(models.DocumentCategory)
	}
	cp := *d
	return &cp, nil
}

func (r *memDocRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.store[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(r.store, id)
	return nil
}

// memUserRepo is an in-memory UserRepository covering what the handler tests
// touch.
type memUserRepo struct {
	mu    sync.Mutex
	store map[string]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{store: map[string]*models.User{}}
}

func (r *memUserRepo) EnsureByClerkID(ctx context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.store[u.ClerkID]; ok {
		if u.Email != "" {
			existing.Email = u.Email
		}
		existing.FirstName = u.FirstName
		existing.LastName = u.LastName
		cp := *existing
		return &cp, nil
	}
	u.ID = primitive.NewObjectID()
	u.Role = models.RoleUser
	u.IsActive = true
	r.store[u.ClerkID] = u
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByClerkID(ctx context.Context, clerkID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.store[clerkID]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.store {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) List(ctx context.Context, page, limit int64) ([]models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.User{}
	for _, u := range r.store {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (r *memUserRepo) Insert(ctx context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.store[u.ClerkID]; ok {
		return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
	}
	u.ID = primitive.NewObjectID()
	r.store[u.ClerkID] = u
	return nil
}

func (r *memUserRepo) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.store {
		if u.ID != id {
			continue
		}
		if v, ok := set["role"]; ok {
			u.Role = v.(models.Role)
		}
		if v, ok := set["isActive"]; ok {
			u.IsActive = v.(bool)
		}
		if v, ok := set["firstName"]; ok {
			u.FirstName = v.(string)
		}
		if v, ok := set["lastName"]; ok {
			u.LastName = v.(string)
		}
		if v, ok := set["permissions"]; ok {
			u.Permissions = v.(models.Permissions)
		}
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *memUserRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, u := range r.store {
		if u.ID == id {
			delete(r.store, k)
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (r *memUserRepo) DeactivateByClerkID(ctx context.Context, clerkID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.store[clerkID]; ok {
		u.IsActive = false
	}
	return nil
}

func (r *memUserRepo) IncCounters(ctx context.Context, clerkID string, claims, documents int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.store[clerkID]; ok {
		u.ClaimsCount += claims
		u.DocumentsCount += documents
	}
	return nil
}
