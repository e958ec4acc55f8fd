package uploads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Storage is the media store the service talks to.
type Storage interface {
	CreateSignedUploadURL(ctx context.Context, bucket, path string) (string, error)
	Upload(ctx context.Context, bucket, path, contentType string, body []byte) error
}

// HTTPClient is a Storage backed by a Supabase-compatible storage HTTP API.
type HTTPClient struct {
	BaseURL   string
	SecretKey string
	Client    *http.Client
}

type signedUploadResponse struct {
	SignedURL      string `json:"signedUrl"`
	SignedURLSnake string `json:"signed_url"`
	URL            string `json:"url"` // relative path returned by upload/sign
	Path           string `json:"path"`
}

func (c *HTTPClient) httpClient() *http.Client {
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 30 * time.Second}
	}
	return c.Client
}

func (c *HTTPClient) configured() error {
	if c.BaseURL == "" {
		return fmt.Errorf("storage: STORAGE_URL is not set")
	}
	if c.SecretKey == "" {
		return fmt.Errorf("storage: STORAGE_SECRET_KEY is not set")
	}
	return nil
}

func (c *HTTPClient) authorize(req *http.Request) {
	req.Header.Set("apikey", c.SecretKey)
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)
}

func (c *HTTPClient) CreateSignedUploadURL(ctx context.Context, bucket, path string) (string, error) {
	if err := c.configured(); err != nil {
		return "", err
	}
	base := strings.TrimRight(c.BaseURL, "/")
	url := fmt.Sprintf("%s/storage/v1/object/upload/sign/%s/%s", base, bucket, path)

	bodyBytes, _ := json.Marshal(map[string]interface{}{
		"expiresIn": 3600,
		"upsert":    false,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", err
	}
	c.authorize(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("storage request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("storage error: status %d body: %s", resp.StatusCode, string(respBody))
	}

	var data signedUploadResponse
	if err := json.Unmarshal(respBody, &data); err != nil {
		return "", fmt.Errorf("storage response decode: %w", err)
	}
	switch {
	case data.SignedURL != "":
		return data.SignedURL, nil
	case data.SignedURLSnake != "":
		return data.SignedURLSnake, nil
	case data.URL != "":
		u := data.URL
		if u[0] != '/' {
			u = "/" + u
		}
		return base + "/storage/v1" + strings.TrimPrefix(u, "/storage/v1"), nil
	}
	return "", fmt.Errorf("storage returned no signed URL, body: %s", string(respBody))
}

// Upload writes body to bucket/path, failing if the object already exists.
func (c *HTTPClient) Upload(ctx context.Context, bucket, path, contentType string, body []byte) error {
	if err := c.configured(); err != nil {
		return err
	}
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", strings.TrimRight(c.BaseURL, "/"), bucket, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	c.authorize(req)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "false")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("storage request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("storage upload: status %d body: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
