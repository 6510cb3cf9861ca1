/**
 * @description
 * This package provides a client for communicating with the holder-service.
 * The account-service uses it to confirm a holder exists before opening an
 * account on a direct create call.
 */
package holderclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client is a client for the holder service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new holder service client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// HolderExists checks whether a holder is registered for the given CPF.
// A 404 means the holder does not exist; any other non-2xx status is an
// upstream failure and is returned as an error.
func (c *Client) HolderExists(ctx context.Context, cpf string) (bool, error) {
	if c.baseURL == "" {
		return false, fmt.Errorf("holder service base url is empty")
	}

	url := fmt.Sprintf("%s/holders/%s", c.baseURL, cpf)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to execute request to holder service: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode >= 400:
		return false, fmt.Errorf("holder service returned status %d", resp.StatusCode)
	default:
		return true, nil
	}
}
