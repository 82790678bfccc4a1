package esign

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/claimsaver/go-services/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubClient(baseURL string) *DocuSignClient {
	c := NewDocuSignClient(config.DocuSignConfig{
		BaseURL:   baseURL,
		AccountID: "acct-1",
	})
	c.accessToken = "test-token"
	c.tokenExp = time.Now().Add(time.Hour)
	return c
}

func TestCreateEnvelope(t *testing.T) {
	var gotAuth string
	var gotPayload map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v2.1/accounts/acct-1/envelopes", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Envelope{EnvelopeID: "env-42", Status: "sent"})
	}))
	defer srv.Close()

	c := stubClient(srv.URL)
	env, err := c.CreateEnvelope(context.Background(), EnvelopeInput{
		Subject:        "Retainer agreement",
		DocumentName:   "retainer.pdf",
		DocumentBytes:  []byte("%PDF-1.4 fake"),
		RecipientName:  "Ana Diaz",
		RecipientEmail: "ana@example.com",
	})
	require.NoError(t, err)
	require.NotNil(t, env)
	assert.Equal(t, "env-42", env.EnvelopeID)
	assert.Equal(t, "sent", env.Status)
	assert.Equal(t, "Bearer test-token", gotAuth)

	assert.Equal(t, "sent", gotPayload["status"])
	docs := gotPayload["documents"].([]interface{})
	require.Len(t, docs, 1)
	doc := docs[0].(map[string]interface{})
	assert.Equal(t, "retainer.pdf", doc["name"])
	assert.Equal(t, "pdf", doc["fileExtension"])
	raw, err := base64.StdEncoding.DecodeString(doc["documentBase64"].(string))
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 fake"), raw)

	signers := gotPayload["recipients"].(map[string]interface{})["signers"].([]interface{})
	require.Len(t, signers, 1)
	signer := signers[0].(map[string]interface{})
	assert.Equal(t, "ana@example.com", signer["email"])
	assert.Equal(t, "Ana Diaz", signer["name"])
}

func TestCreateEnvelopeValidation(t *testing.T) {
	c := stubClient("http://unused")

	_, err := c.CreateEnvelope(context.Background(), EnvelopeInput{
		DocumentName:  "x.pdf",
		DocumentBytes: []byte("x"),
	})
	assert.Error(t, err)

	_, err = c.CreateEnvelope(context.Background(), EnvelopeInput{
		RecipientName:  "Ana Diaz",
		RecipientEmail: "ana@example.com",
		DocumentName:   "x.pdf",
	})
	assert.Error(t, err)
}

func TestEnvelopeStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2.1/accounts/acct-1/envelopes/env-42":
			json.NewEncoder(w).Encode(Envelope{EnvelopeID: "env-42", Status: "completed"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := stubClient(srv.URL)

	env, err := c.EnvelopeStatus(context.Background(), "env-42")
	require.NoError(t, err)
	require.NotNil(t, env)
	assert.Equal(t, "completed", env.Status)

	env, err = c.EnvelopeStatus(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, env)
}

func TestEnvelopeStatusServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := stubClient(srv.URL).EnvelopeStatus(context.Background(), "env-42")
	assert.Error(t, err)
}
