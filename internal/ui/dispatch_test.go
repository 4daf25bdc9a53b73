package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"eiractl/internal/apiclient"
	"eiractl/internal/models"
)

type fakeCopier struct {
	result *models.CopyResult
	err    error
	types  []string
}

func (f *fakeCopier) CopyDataset(ctx context.Context, datasetType string) (*models.CopyResult, error) {
	f.types = append(f.types, datasetType)
	return f.result, f.err
}

func TestCopyDatasetSuccess(t *testing.T) {
	copier := &fakeCopier{result: &models.CopyResult{
		Copied:    []string{"1.wav", "2.wav", "3.wav", "4.wav", "5.wav", "6.wav", "7.wav"},
		SubBucket: "eira1-audio-datasets",
	}}

	result := CopyDataset(context.Background(), copier, "audio")

	if !strings.HasPrefix(result, "Copied 7 files to eira1-audio-datasets") {
		t.Errorf("CopyDataset() = %q", result)
	}
	if !strings.Contains(result, "Sample files:") {
		t.Errorf("CopyDataset() missing sample header: %q", result)
	}
	if !strings.Contains(result, "5.wav") || strings.Contains(result, "6.wav") {
		t.Errorf("CopyDataset() should list exactly five samples: %q", result)
	}
	if len(copier.types) != 1 || copier.types[0] != "audio" {
		t.Errorf("copier called with %v", copier.types)
	}
}

func TestCopyDatasetNoFiles(t *testing.T) {
	copier := &fakeCopier{result: &models.CopyResult{Copied: []string{}, SubBucket: "dst"}}

	result := CopyDataset(context.Background(), copier, "video")
	if result != "Copied 0 files to dst" {
		t.Errorf("CopyDataset() = %q", result)
	}
}

func TestCopyDatasetFailuresBecomeErrorStrings(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"API error", &apiclient.APIError{StatusCode: 400, Message: "Invalid dataset"}, "Error: Invalid dataset"},
		{"Unknown API error", &apiclient.APIError{StatusCode: 500, Message: "Unknown error"}, "Error: Unknown error"},
		{"Network", fmt.Errorf("request failed: %w", errors.New("connection refused")), "Error: request failed: connection refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CopyDataset(context.Background(), &fakeCopier{err: tt.err}, "audio")
			if !strings.HasPrefix(result, "Error:") {
				t.Fatalf("CopyDataset() = %q, want Error: prefix", result)
			}
			if result != tt.expected {
				t.Errorf("CopyDataset() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestCopyDatasetUnvalidatedType(t *testing.T) {
	copier := &fakeCopier{err: &apiclient.APIError{StatusCode: 400, Message: "Invalid dataset"}}

	CopyDataset(context.Background(), copier, "not-a-dataset")
	if len(copier.types) != 1 || copier.types[0] != "not-a-dataset" {
		t.Errorf("unknown type not passed through: %v", copier.types)
	}
}

func TestFormatCopyResultNil(t *testing.T) {
	if got := FormatCopyResult(nil); !strings.HasPrefix(got, "Error:") {
		t.Errorf("FormatCopyResult(nil) = %q", got)
	}
}

func TestCopyDatasetErrorOnSuccessStatus(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{"Error body", `{"error":"Invalid dataset"}`, "Error: Invalid dataset"},
		{"Missing copied list", `{"status":"success"}`, "Error: malformed response: missing copied list"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, tt.body)
			}))
			defer server.Close()

			client, err := apiclient.New(server.URL, "token")
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			if got := CopyDataset(context.Background(), client, "nope"); got != tt.expected {
				t.Errorf("CopyDataset() = %q, want %q", got, tt.expected)
			}
		})
	}
}
