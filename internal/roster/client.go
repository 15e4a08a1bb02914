// Package roster fetches team membership from the board service. Membership
// is owned elsewhere; this client consumes it read-only.
package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Member is one team member as the board service reports it.
type Member struct {
	ID       int64  `json:"id"`
	Nickname string `json:"nickname"`
}

// Client calls the board service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a roster client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// TeamMembers returns the members of a team. The bearer token is the caller's
// credential, passed through unchanged.
func (c *Client) TeamMembers(ctx context.Context, teamID, bearerToken string) ([]Member, error) {
	url := fmt.Sprintf("%s/api/board/post/%s/team-members", c.baseURL, teamID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build roster request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+bearerToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch team members: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch team members: unexpected status %d", resp.StatusCode)
	}

	var members []Member
	if err := json.NewDecoder(resp.Body).Decode(&members); err != nil {
		return nil, fmt.Errorf("decode team members: %w", err)
	}
	return members, nil
}
