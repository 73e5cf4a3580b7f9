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

const defaultLinkedInURL = "https://api.linkedin.com/v2"

// LinkedInClient publishes UGC posts through the LinkedIn REST API.
type LinkedInClient struct {
	client *http.Client
	apiURL string
}

// NewLinkedInClient creates a client. apiURL may be empty for the
// public endpoint; tests point it at a local server.
func NewLinkedInClient(apiURL string) *LinkedInClient {
	if apiURL == "" {
		apiURL = defaultLinkedInURL
	}
	return &LinkedInClient{
		client: &http.Client{Timeout: 30 * time.Second},
		apiURL: strings.TrimRight(apiURL, "/"),
	}
}

// Publish creates one UGC post authored by the credential's member.
func (c *LinkedInClient) Publish(ctx context.Context, text, imageURL string, cred model.Credential) error {
	if cred.AccessToken == "" || cred.MemberID == "" {
		return errors.New("linkedin: missing credential")
	}

	media := "NONE"
	if imageURL != "" {
		media = "ARTICLE"
	}
	body := map[string]any{
		"author":         "urn:li:person:" + cred.MemberID,
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]any{
			"com.linkedin.ugc.ShareContent": shareContent(text, imageURL, media),
		},
		"visibility": map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("linkedin: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/ugcPosts", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("linkedin: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("linkedin: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("linkedin: status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}

func shareContent(text, imageURL, media string) map[string]any {
	content := map[string]any{
		"shareCommentary":    map[string]string{"text": text},
		"shareMediaCategory": media,
	}
	if imageURL != "" {
		content["media"] = []map[string]any{{
			"status":      "READY",
			"originalUrl": imageURL,
		}}
	}
	return content
}
