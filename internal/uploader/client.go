package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/blackpiratelive/gallery-app/internal/models"
)

// APIError is a non-2xx answer from the gallery server or the object store
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status %d", e.Status)
	}
	return fmt.Sprintf("status %d: %s", e.Status, e.Message)
}

// UploadTarget is a presigned PUT for an original and the URL it will be served from
type UploadTarget struct {
	URL       string `json:"url"`
	PublicURL string `json:"publicUrl"`
}

// StoredThumbnail is the server's answer to a thumbnail upload
type StoredThumbnail struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// Client talks to the gallery admin API
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a client for the server at baseURL authenticating with the admin token
func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Minute}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    httpClient,
	}
}

// UploadURL asks the server for a presigned PUT for key in the originals bucket
func (c *Client) UploadURL(ctx context.Context, key string) (*UploadTarget, error) {
	q := url.Values{"type": {"r2"}, "filename": {key}}
	req, err := c.newRequest(ctx, http.MethodGet, "/api/upload-url?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var target UploadTarget
	if err := c.do(req, &target); err != nil {
		return nil, err
	}
	if target.URL == "" {
		return nil, fmt.Errorf("server returned an empty upload URL")
	}
	return &target, nil
}

// PutObject uploads data to a presigned URL
func (c *Client) PutObject(ctx context.Context, presignedURL string, data []byte, contentType string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, presignedURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.ContentLength = int64(len(data))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.do(req, nil)
}

// UploadThumbnail posts a thumbnail to the blob store as a multipart form
func (c *Client) UploadThumbnail(ctx context.Context, name string, data []byte) (*StoredThumbnail, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/upload-url?type=blob", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var stored StoredThumbnail
	if err := c.do(req, &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

// CreateImage persists image metadata and returns the new image id
func (c *Client) CreateImage(ctx context.Context, in models.ImageInput) (string, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("failed to encode metadata: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/metadata", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var resp struct {
		ID      string `json:"id"`
		Success bool   `json:"success"`
	}
	if err := c.do(req, &resp); err != nil {
		return "", err
	}
	if !resp.Success {
		return "", fmt.Errorf("server did not confirm metadata for %q", in.Title)
	}
	return resp.ID, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	return req, nil
}

// do sends req and decodes a JSON body into out when out is not nil
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(body, &e) != nil {
			e.Error = strings.TrimSpace(string(body))
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", req.URL.Path, err)
	}
	return nil
}
