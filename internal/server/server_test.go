package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"eiractl/internal/datasets"
	"eiractl/internal/models"
)

type fakeCopier struct {
	mu     sync.Mutex
	called []datasets.Descriptor
	copied []string
	err    error
}

func (f *fakeCopier) CopyDataset(ctx context.Context, d datasets.Descriptor) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called = append(f.called, d)
	return f.copied, f.err
}

type fakeBatches struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (f *fakeBatches) Start(ctx context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, path)
	return f.err
}

type fixedStatus models.StatusSnapshot

func (s fixedStatus) Snapshot() models.StatusSnapshot { return models.StatusSnapshot(s) }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, opts Options) (*httptest.Server, Options) {
	t.Helper()
	if opts.Datasets == nil {
		opts.Datasets = datasets.Builtin()
	}
	if opts.Copier == nil {
		opts.Copier = &fakeCopier{}
	}
	if opts.Batches == nil {
		opts.Batches = &fakeBatches{}
	}
	if opts.Status == nil {
		opts.Status = fixedStatus{}
	}
	if opts.UploadDir == "" {
		opts.UploadDir = t.TempDir()
	}
	if opts.Logger == nil {
		opts.Logger = quietLogger()
	}

	srv := httptest.NewServer(New(opts).Handler())
	t.Cleanup(srv.Close)
	return srv, opts
}

func decodeError(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body models.APIError
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error
}

func TestFetchCopiesDataset(t *testing.T) {
	copier := &fakeCopier{copied: []string{"a.wav", "b.wav"}}
	srv, _ := newTestServer(t, Options{Copier: copier})

	resp, err := http.Post(srv.URL+"/fetch/audio", "application/json", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var result models.CopyResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Status != "success" || result.SubBucket != "eira1-audio-datasets" || len(result.Copied) != 2 {
		t.Errorf("unexpected result: %+v", result)
	}
	if len(copier.called) != 1 || copier.called[0].Prefix != "audio/" {
		t.Errorf("copier called with %+v", copier.called)
	}
	if resp.Header.Get(requestIDHeader) == "" {
		t.Error("expected request id header")
	}
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		copyErr    error
		wantStatus int
		wantError  string
	}{
		{"unknown dataset", "/fetch/nope", nil, http.StatusBadRequest, "Invalid dataset"},
		{"copy failure", "/fetch/video", errors.New("access denied"), http.StatusInternalServerError, "access denied"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, Options{Copier: &fakeCopier{err: tt.copyErr}})

			resp, err := http.Post(srv.URL+tt.path, "application/json", nil)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if got := decodeError(t, resp); got != tt.wantError {
				t.Errorf("error = %q, want %q", got, tt.wantError)
			}
		})
	}
}

func TestFetchMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	resp, err := http.Get(srv.URL + "/fetch/audio")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}

func TestFetchRequireToken(t *testing.T) {
	srv, _ := newTestServer(t, Options{Token: "secret", RequireToken: true})

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong", "Bearer other", http.StatusUnauthorized},
		{"valid", "Bearer secret", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodPost, srv.URL+"/fetch/audio", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if filename == "" {
		if err := writer.WriteField(field, content); err != nil {
			t.Fatal(err)
		}
	} else {
		part, err := writer.CreateFormFile(field, filename)
		if err != nil {
			t.Fatal(err)
		}
		part.Write([]byte(content))
	}
	writer.Close()
	return body, writer.FormDataContentType()
}

func TestUploadTxtStartsBatch(t *testing.T) {
	batches := &fakeBatches{}
	srv, opts := newTestServer(t, Options{Batches: batches})

	body, contentType := multipartBody(t, "file", "my links.txt", "https://a\nhttps://b\n")
	resp, err := http.Post(srv.URL+"/upload-txt", contentType, body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var result models.UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Message != "File my_links.txt uploaded. Processing started." {
		t.Errorf("message = %q", result.Message)
	}

	wantPath := filepath.Join(opts.UploadDir, "my_links.txt")
	if len(batches.paths) != 1 || batches.paths[0] != wantPath {
		t.Errorf("batch started with %v, want %s", batches.paths, wantPath)
	}
	data, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("saved file: %v", err)
	}
	if string(data) != "https://a\nhttps://b\n" {
		t.Errorf("saved content = %q", data)
	}
}

func TestUploadTxtRejects(t *testing.T) {
	tests := []struct {
		name      string
		field     string
		filename  string
		wantError string
	}{
		{"wrong field", "other", "links.txt", "No file part"},
		{"no filename", "file", "", "No selected file"},
		{"not txt", "file", "links.csv", "Only .txt files allowed"},
		{"uppercase extension", "file", "links.TXT", "Only .txt files allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batches := &fakeBatches{}
			srv, _ := newTestServer(t, Options{Batches: batches})

			body, contentType := multipartBody(t, tt.field, tt.filename, "https://a")
			resp, err := http.Post(srv.URL+"/upload-txt", contentType, body)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			if got := decodeError(t, resp); got != tt.wantError {
				t.Errorf("error = %q, want %q", got, tt.wantError)
			}
			if len(batches.paths) != 0 {
				t.Errorf("batch should not start, got %v", batches.paths)
			}
		})
	}
}

func TestUploadTxtNotMultipart(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	resp, err := http.Post(srv.URL+"/upload-txt", "text/plain", bytes.NewBufferString("x"))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if got := decodeError(t, resp); got != "No file part" {
		t.Errorf("error = %q, want No file part", got)
	}
}

func TestStatus(t *testing.T) {
	snap := fixedStatus{Total: 4, Current: 1, Logs: []string{"[10:00:00] started"}}
	srv, _ := newTestServer(t, Options{Status: snap})

	resp, err := http.Get(srv.URL + "/status")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var got models.StatusSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Total != 4 || got.Current != 1 || len(got.Logs) != 1 {
		t.Errorf("snapshot = %+v", got)
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "ok\n" {
		t.Errorf("healthz = %d %q", resp.StatusCode, body)
	}
}

func TestSecureFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"links.txt", "links.txt"},
		{"my links.txt", "my_links.txt"},
		{"../../etc/passwd.txt", "passwd.txt"},
		{`C:\Users\me\links.txt`, "links.txt"},
		{".hidden.txt", "hidden.txt"},
		{"ünïcode.txt", "ncode.txt"},
		{".txt", "upload.txt"},
	}

	for _, tt := range tests {
		if got := SecureFilename(tt.in); got != tt.want {
			t.Errorf("SecureFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRequestIDPropagated(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if got := resp.Header.Get(requestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q, want abc-123", got)
	}
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestUploadTxtLogsSavedSize(t *testing.T) {
	var logOutput lockedBuffer
	logger := slog.New(slog.NewTextHandler(&logOutput, nil))
	srv, _ := newTestServer(t, Options{Logger: logger})

	content := strings.Repeat("https://example.com/watch?v=abcdef\n", 50)
	body, contentType := multipartBody(t, "file", "links.txt", content)
	resp, err := http.Post(srv.URL+"/upload-txt", contentType, body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	output := logOutput.String()
	if !strings.Contains(output, "link file saved") || !strings.Contains(output, "size=\"1.7 KB\"") {
		t.Errorf("log output = %s", output)
	}
}
