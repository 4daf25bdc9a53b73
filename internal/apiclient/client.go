// Package apiclient talks to the dataset backend over HTTP.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"eiractl/internal/models"
)

const defaultTimeout = 10 * time.Minute

// ErrEmptyBaseURL is returned by New when no server URL is configured.
var ErrEmptyBaseURL = errors.New("server base URL is empty")

// APIError is a non-success response from the backend, or a success status
// whose body does not describe a result.
type APIError struct {
	StatusCode int
	Message    string
	// Undecodable is set when the body could not be read as JSON at all.
	Undecodable bool
}

func (e *APIError) Error() string {
	return e.Message
}

// Client sends requests to the backend. It holds no per-request state, so
// concurrent calls are independent and uncoordinated.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

const unknownError = "Unknown error"

// copyResponse accepts both shapes a fetch reply can take. Copied is a
// pointer so a missing key can be told apart from an empty list.
type copyResponse struct {
	Status    string    `json:"status"`
	Copied    *[]string `json:"copied"`
	SubBucket string    `json:"sub_bucket"`
	Error     string    `json:"error"`
}

func New(baseURL, token string) (*Client, error) {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrEmptyBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", baseURL, err)
	}

	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// CopyDataset asks the backend to copy one dataset into its sub bucket.
// The type is passed through unvalidated. A 2xx reply carrying an error, or
// lacking the copied list, is returned as an *APIError.
func (c *Client) CopyDataset(ctx context.Context, datasetType string) (*models.CopyResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/fetch/"+url.PathEscape(datasetType), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	var resp copyResponse
	status, err := c.do(req, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, &APIError{StatusCode: status, Message: resp.Error}
	}
	if resp.Copied == nil {
		return nil, &APIError{StatusCode: status, Message: "malformed response: missing copied list"}
	}
	return &models.CopyResult{
		Status:    resp.Status,
		Copied:    *resp.Copied,
		SubBucket: resp.SubBucket,
	}, nil
}

// UploadTxt posts a local file as the multipart field "file".
func (c *Client) UploadTxt(ctx context.Context, path string) (*models.UploadResponse, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload-txt", &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var result models.UploadResponse
	if _, err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Status fetches the current processing snapshot.
func (c *Client) Status(ctx context.Context) (*models.StatusSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	var snapshot models.StatusSnapshot
	if _, err := c.do(req, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// do sends req and decodes a 2xx body into out. It returns the status code.
func (c *Client) do(req *http.Request, out any) (int, error) {
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, newAPIError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}

func newAPIError(status int, body []byte) *APIError {
	var payload models.APIError
	if err := json.Unmarshal(body, &payload); err != nil {
		return &APIError{StatusCode: status, Message: unknownError, Undecodable: true}
	}
	if payload.Error == "" {
		return &APIError{StatusCode: status, Message: unknownError}
	}
	return &APIError{StatusCode: status, Message: payload.Error}
}
