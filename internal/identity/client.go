package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Profile is the subset of the identity provider's user object that local
// provisioning needs.
type Profile struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
}

// Client talks to the identity provider's Backend API. It is only used when
// token claims are missing profile attributes (Clerk session tokens carry the
// subject but not always email/name).
type Client struct {
	baseURL   string
	secretKey string
	http      *http.Client
}

// NewClient creates a Backend API client. baseURL is e.g. https://api.clerk.com/v1.
func NewClient(baseURL, secretKey string) *Client {
	return &Client{
		baseURL:   baseURL,
		secretKey: secretKey,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
}

// clerkUser mirrors the provider's user payload.
type clerkUser struct {
	ID             string `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	PrimaryEmailID string `json:"primary_email_address_id"`
	EmailAddresses []struct {
		ID           string `json:"id"`
		EmailAddress string `json:"email_address"`
	} `json:"email_addresses"`
}

// FetchProfile loads the user's profile from the Backend API.
func (c *Client) FetchProfile(ctx context.Context, clerkID string) (*Profile, error) {
	url := c.baseURL + "/users/" + clerkID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity api request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("identity api returned %d: %s", resp.StatusCode, string(b))
	}

	var cu clerkUser
	if err := json.NewDecoder(resp.Body).Decode(&cu); err != nil {
		return nil, err
	}

	p := &Profile{ID: cu.ID, FirstName: cu.FirstName, LastName: cu.LastName}
	for _, e := range cu.EmailAddresses {
		if e.ID == cu.PrimaryEmailID || p.Email == "" {
			p.Email = e.EmailAddress
		}
	}
	return p, nil
}
