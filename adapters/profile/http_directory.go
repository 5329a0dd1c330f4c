// Package profile looks up public account profiles from the chain API.
package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/guildpost/guildpost/ports"
)

// HTTPDirectory fetches account profiles from the public chain API. The
// client carries a hard timeout so a slow upstream cannot stall a login.
type HTTPDirectory struct {
	baseURL string
	client  *http.Client
}

// NewHTTPDirectory creates a directory backed by the given API base URL.
func NewHTTPDirectory(baseURL string, timeout time.Duration) *HTTPDirectory {
	return &HTTPDirectory{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type accountResponse struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// Lookup fetches the profile for a wallet address. A 404 from the upstream
// means the address has no registered profile and yields (nil, nil).
func (d *HTTPDirectory) Lookup(ctx context.Context, address string) (*ports.Profile, error) {
	url := d.baseURL + "/accounts/" + address

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build profile request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("profile lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("profile lookup returned status %d", resp.StatusCode)
	}

	var account accountResponse
	if err := json.NewDecoder(resp.Body).Decode(&account); err != nil {
		return nil, fmt.Errorf("failed to decode profile response: %w", err)
	}

	return &ports.Profile{
		Handle:    account.Username,
		AvatarURL: account.Avatar,
	}, nil
}
