package esign

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/claimsaver/go-services/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

// EnvelopeInput describes one signature request.
type EnvelopeInput struct {
	Subject        string
	DocumentName   string
	DocumentBytes  []byte
	RecipientName  string
	RecipientEmail string
}

// Envelope is the created signature envelope.
type Envelope struct {
	EnvelopeID string `json:"envelopeId"`
	Status     string `json:"status"`
}

// EnvelopeSender creates envelopes and reports their status.
// Satisfied by *DocuSignClient and by test fakes.
type EnvelopeSender interface {
	CreateEnvelope(ctx context.Context, in EnvelopeInput) (*Envelope, error)
	EnvelopeStatus(ctx context.Context, envelopeID string) (*Envelope, error)
}

// DocuSignClient talks to the DocuSign eSignature REST API using the JWT
// grant. Access tokens are cached until shortly before expiry.
type DocuSignClient struct {
	cfg  config.DocuSignConfig
	http *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExp    time.Time
}

func NewDocuSignClient(cfg config.DocuSignConfig) *DocuSignClient {
	return &DocuSignClient{cfg: cfg, http: &http.Client{Timeout: 30 * time.Second}}
}

// token returns a cached access token or runs the JWT grant exchange.
func (c *DocuSignClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken != "" && time.Now().Before(c.tokenExp) {
		return c.accessToken, nil
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(c.cfg.PrivateKeyPEM))
	if err != nil {
		return "", fmt.Errorf("parse docusign private key: %w", err)
	}
	now := time.Now()
	assertion := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":   c.cfg.IntegrationKey,
		"sub":   c.cfg.UserID,
		"aud":   c.cfg.AuthServer,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
		"scope": "signature impersonation",
	})
	signed, err := assertion.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign docusign assertion: %w", err)
	}

	form := url.Values{}
	form.Set("grant_type", "urn:ietf:params:oauth:grant-type:jwt-bearer")
	form.Set("assertion", signed)
	tokenURL := "https://" + c.cfg.AuthServer + "/oauth/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("docusign token request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("docusign token endpoint returned %d: %s", resp.StatusCode, string(b))
	}
	var tr struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", err
	}
	c.accessToken = tr.AccessToken
	c.tokenExp = now.Add(time.Duration(tr.ExpiresIn-60) * time.Second)
	return c.accessToken, nil
}

func (c *DocuSignClient) CreateEnvelope(ctx context.Context, in EnvelopeInput) (*Envelope, error) {
	if in.RecipientEmail == "" || in.RecipientName == "" {
		return nil, fmt.Errorf("recipient name and email are required")
	}
	if len(in.DocumentBytes) == 0 {
		return nil, fmt.Errorf("document bytes are required")
	}
	tok, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	ext := "pdf"
	if i := strings.LastIndex(in.DocumentName, "."); i >= 0 && i < len(in.DocumentName)-1 {
		ext = in.DocumentName[i+1:]
	}
	payload := map[string]interface{}{
		"emailSubject": in.Subject,
		"status":       "sent",
		"documents": []map[string]string{{
			"documentBase64": base64.StdEncoding.EncodeToString(in.DocumentBytes),
			"name":           in.DocumentName,
			"fileExtension":  ext,
			"documentId":     "1",
		}},
		"recipients": map[string]interface{}{
			"signers": []map[string]string{{
				"email":        in.RecipientEmail,
				"name":         in.RecipientName,
				"recipientId":  "1",
				"routingOrder": "1",
			}},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/v2.1/accounts/%s/envelopes", strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.AccountID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("docusign envelope create: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("docusign envelope endpoint returned %d: %s", resp.StatusCode, string(b))
	}
	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, err
	}
	return &env, nil
}

func (c *DocuSignClient) EnvelopeStatus(ctx context.Context, envelopeID string) (*Envelope, error) {
	tok, err := c.token(ctx)
	if err != nil {
		return nil, err
	}
	u := fmt.Sprintf("%s/v2.1/accounts/%s/envelopes/%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.AccountID, url.PathEscape(envelopeID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+tok)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("docusign envelope status: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("docusign envelope endpoint returned %d: %s", resp.StatusCode, string(b))
	}
	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, err
	}
	return &env, nil
}
