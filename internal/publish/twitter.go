package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bryan-buckman/syndicate/internal/model"
)

const defaultTwitterURL = "https://api.twitter.com/2"

// TwitterClient publishes tweets through the Twitter v2 API using an
// OAuth2 user-context token.
type TwitterClient struct {
	client *http.Client
	apiURL string
}

// NewTwitterClient creates a client. apiURL may be empty for the
// public endpoint; tests point it at a local server.
func NewTwitterClient(apiURL string) *TwitterClient {
	if apiURL == "" {
		apiURL = defaultTwitterURL
	}
	return &TwitterClient{
		client: &http.Client{Timeout: 30 * time.Second},
		apiURL: strings.TrimRight(apiURL, "/"),
	}
}

// Publish creates one tweet. Twitter attaches images by upload id, not
// URL, so imageURL is ignored here; the link survives inside the text
// when the transformer included one.
func (c *TwitterClient) Publish(ctx context.Context, text, imageURL string, cred model.Credential) error {
	if cred.AccessToken == "" {
		return errors.New("twitter: missing credential")
	}

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("twitter: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/tweets", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("twitter: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("twitter: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("twitter: status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}
