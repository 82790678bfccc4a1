package handlers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/claimsaver/go-services/internal/models"
	"github.com/claimsaver/go-services/internal/users"
	"github.com/claimsaver/go-services/internal/webhooks"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var testSigningKey = []byte("0123456789abcdef0123456789abcdef")

func testSigningSecret() string {
	return "whsec_" + base64.StdEncoding.EncodeToString(testSigningKey)
}

// signDelivery produces the svix header triplet for a payload.
func signDelivery(id string, payload []byte) http.Header {
	ts := fmt.Sprintf("%d", time.Now().Unix())
	mac := hmac.New(sha256.New, testSigningKey)
	mac.Write([]byte(id + "." + ts + "." + string(payload)))
	sig := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	h := http.Header{}
	h.Set("svix-id", id)
	h.Set("svix-timestamp", ts)
	h.Set("svix-signature", "v1,"+sig)
	return h
}

// mapDeduper implements webhooks.Deduper
type mapDeduper struct{ seen map[string]bool }

func (d *mapDeduper) Seen(ctx context.Context, id string) (bool, error) {
	if d.seen[id] {
		return true, nil
	}
	d.seen[id] = true
	return false, nil
}

func (d *mapDeduper) Forget(ctx context.Context, id string) error {
	delete(d.seen, id)
	return nil
}

func webhookRouter(t *testing.T, repo *memUserRepo, dedup webhooks.Deduper) *gin.Engine {
	t.Helper()
	h, err := NewWebhooksHandler(users.NewService(repo, nil), testSigningSecret(), dedup)
	require.NoError(t, err)
	g := gin.New()
	h.Register(g.Group("/api"))
	return g
}

func deliver(g *gin.Engine, id string, payload []byte, signed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/clerk", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if signed {
		for k, vs := range signDelivery(id, payload) {
			for _, v := range vs {
				req.Header.Set(k, v)
			}
		}
	}
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)
	return rw
}

const userCreatedPayload = `{
  "type": "user.created",
  "data": {
    "id": "user_abc",
    "first_name": "Jane",
    "last_name": "Doe",
    "primary_email_address_id": "em_1",
    "email_addresses": [
      {"id": "em_0", "email_address": "old@example.com"},
      {"id": "em_1", "email_address": "jane@example.com"}
    ]
  }
}`

func TestWebhookUserCreated(t *testing.T) {
	repo := newMemUserRepo()
	g := webhookRouter(t, repo, nil)

	rw := deliver(g, "msg_1", []byte(userCreatedPayload), true)
	require.Equal(t, http.StatusOK, rw.Code)
	require.Contains(t, rw.Body.String(), "received")

	u, err := repo.GetByClerkID(t.Context(), "user_abc")
	require.NoError(t, err)
	require.NotNil(t, u)
	require.Equal(t, "jane@example.com", u.Email)
	require.Equal(t, "Jane", u.FirstName)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	repo := newMemUserRepo()
	g := webhookRouter(t, repo, nil)

	rw := deliver(g, "msg_1", []byte(userCreatedPayload), false)
	require.Equal(t, http.StatusBadRequest, rw.Code)

	u, err := repo.GetByClerkID(t.Context(), "user_abc")
	require.NoError(t, err)
	require.Nil(t, u)
}

func TestWebhookUserDeletedDeactivates(t *testing.T) {
	repo := newMemUserRepo()
	g := webhookRouter(t, repo, nil)

	require.Equal(t, http.StatusOK, deliver(g, "msg_1", []byte(userCreatedPayload), true).Code)

	payload := []byte(`{"type": "user.deleted", "data": {"id": "user_abc"}}`)
	require.Equal(t, http.StatusOK, deliver(g, "msg_2", payload, true).Code)

	u, err := repo.GetByClerkID(t.Context(), "user_abc")
	require.NoError(t, err)
	require.NotNil(t, u)
	require.False(t, u.IsActive)
}

func TestWebhookDuplicateDeliverySkipped(t *testing.T) {
	repo := newMemUserRepo()
	dedup := &mapDeduper{seen: map[string]bool{}}
	g := webhookRouter(t, repo, dedup)

	require.Equal(t, http.StatusOK, deliver(g, "msg_1", []byte(userCreatedPayload), true).Code)

	// same delivery id retried: acknowledged but not reprocessed
	payload := []byte(`{"type": "user.deleted", "data": {"id": "user_abc"}}`)
	// re-sign under the same delivery id
	rw := deliver(g, "msg_1", payload, true)
	require.Equal(t, http.StatusOK, rw.Code)

	u, err := repo.GetByClerkID(t.Context(), "user_abc")
	require.NoError(t, err)
	require.NotNil(t, u)
	require.True(t, u.IsActive)
}

func TestWebhookUnknownEventIgnored(t *testing.T) {
	g := webhookRouter(t, newMemUserRepo(), nil)

	payload := []byte(`{"type": "session.created", "data": {"id": "sess_1"}}`)
	rw := deliver(g, "msg_9", payload, true)
	require.Equal(t, http.StatusOK, rw.Code)
	require.Contains(t, rw.Body.String(), "received")
}

// flakyUserRepo fails upserts until healed.
type flakyUserRepo struct {
	*memUserRepo
	fail bool
}

func (r *flakyUserRepo) EnsureByClerkID(ctx context.Context, u *models.User) (*models.User, error) {
	if r.fail {
		return nil, fmt.Errorf("connection refused")
	}
	return r.memUserRepo.EnsureByClerkID(ctx, u)
}

func TestWebhookRetryAfterFailureNotDeduped(t *testing.T) {
	repo := &flakyUserRepo{memUserRepo: newMemUserRepo(), fail: true}
	dedup := &mapDeduper{seen: map[string]bool{}}
	h, err := NewWebhooksHandler(users.NewService(repo, nil), testSigningSecret(), dedup)
	require.NoError(t, err)
	g := gin.New()
	h.Register(g.Group("/api"))

	// first delivery fails in the handler but is still acknowledged
	rw := deliver(g, "msg_1", []byte(userCreatedPayload), true)
	require.Equal(t, http.StatusOK, rw.Code)
	u, err := repo.GetByClerkID(t.Context(), "user_abc")
	require.NoError(t, err)
	require.Nil(t, u)

	// the failed delivery must not consume the id: the provider's retry
	// under the same id is processed once the store recovers
	repo.fail = false
	rw = deliver(g, "msg_1", []byte(userCreatedPayload), true)
	require.Equal(t, http.StatusOK, rw.Code)
	u, err = repo.GetByClerkID(t.Context(), "user_abc")
	require.NoError(t, err)
	require.NotNil(t, u)
	require.Equal(t, "jane@example.com", u.Email)

	// a successful delivery keeps the id: a further replay is skipped
	payload := []byte(`{"type": "user.deleted", "data": {"id": "user_abc"}}`)
	require.Equal(t, http.StatusOK, deliver(g, "msg_1", payload, true).Code)
	u, err = repo.GetByClerkID(t.Context(), "user_abc")
	require.NoError(t, err)
	require.True(t, u.IsActive)
}
