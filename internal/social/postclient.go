package social

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// PostOwner is the descriptor returned by the post service, used to
// address notifications.
type PostOwner struct {
	OwnerID  string `json:"ownerId"`
	Username string `json:"username"`
	Caption  string `json:"caption"`
}

// PostClient looks up post ownership over HTTP. Lookup failures are
// soft: a notification that cannot be addressed is suppressed, the
// mutation that triggered it stands.
type PostClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewPostClient(baseURL string) *PostClient {
	return &PostClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// GetOwner returns (nil, nil) when the post does not exist.
func (c *PostClient) GetOwner(ctx context.Context, postID int64) (*PostOwner, error) {
	url := fmt.Sprintf("%s/api/posts/%d", c.baseURL, postID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("post service error: %d", resp.StatusCode)
	}

	var owner PostOwner
	if err := json.NewDecoder(resp.Body).Decode(&owner); err != nil {
		return nil, err
	}
	return &owner, nil
}
