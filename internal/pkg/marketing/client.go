// Package marketing syncs subscribers into the marketing contact list.
// Best-effort from the caller's point of view: failures are logged upstream
// and never block reconciliation.
package marketing

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/viniciusbm/onboardly/internal/pkg/env"
)

var ErrNotConfigured = errors.New("marketing list sync not configured")

// Client talks to a Brevo-style contacts API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClientFromEnv builds a client from MARKETING_API_KEY / MARKETING_API_URL.
func NewClientFromEnv() *Client {
	return &Client{
		apiKey:  env.GetEnv("MARKETING_API_KEY", ""),
		baseURL: env.GetEnv("MARKETING_API_URL", "https://api.brevo.com/v3"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// IsConfigured reports whether an API key is present.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

type addContactRequest struct {
	Email         string            `json:"email"`
	Attributes    map[string]string `json:"attributes,omitempty"`
	UpdateEnabled bool              `json:"updateEnabled"`
}

// AddContact registers a contact. Re-adding an existing contact updates it,
// so repeat calls for the same email are safe.
func (c *Client) AddContact(name, email string) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}

	reqBody := addContactRequest{
		Email:         email,
		UpdateEnabled: true,
	}
	if name != "" {
		reqBody.Attributes = map[string]string{"NAME": name}
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/contacts", bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// 204 on update of an existing contact, 201 on create.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("contact sync failed: status code %d", resp.StatusCode)
	}
	return nil
}
