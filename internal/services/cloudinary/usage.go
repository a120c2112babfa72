package cloudinary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Usage queries the account's consumption for the current reset period.
func (c *Client) Usage(ctx context.Context) (*UsageResult, error) {
	url := fmt.Sprintf("%s/%s/usage", c.apiBase, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create usage request: %w", err)
	}
	req.SetBasicAuth(c.apiKey, c.apiSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("usage request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read usage response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("usage query rejected: status %d", resp.StatusCode)
	}

	var result UsageResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode usage response: %w", err)
	}
	return &result, nil
}
