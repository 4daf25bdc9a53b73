// Package ui turns backend calls into display strings. Nothing here returns
// an error to its caller: failures become text the user can read.
package ui

import (
	"context"
	"fmt"
	"strings"

	"eiractl/internal/models"
)

// maxSampleFiles caps the file names listed under a copy result.
const maxSampleFiles = 5

type Copier interface {
	CopyDataset(ctx context.Context, datasetType string) (*models.CopyResult, error)
}

type Uploader interface {
	UploadTxt(ctx context.Context, path string) (*models.UploadResponse, error)
}

type StatusFetcher interface {
	Status(ctx context.Context) (*models.StatusSnapshot, error)
}

// CopyDataset issues one copy request and returns the text to show for it.
// Any failure yields a string starting with "Error:".
func CopyDataset(ctx context.Context, copier Copier, datasetType string) string {
	result, err := copier.CopyDataset(ctx, datasetType)
	if err != nil {
		return "Error: " + err.Error()
	}
	return FormatCopyResult(result)
}

func FormatCopyResult(result *models.CopyResult) string {
	if result == nil {
		return "Error: empty response"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Copied %d files to %s", len(result.Copied), result.SubBucket)
	if len(result.Copied) > 0 {
		b.WriteString("\nSample files:")
		sample := result.Copied
		if len(sample) > maxSampleFiles {
			sample = sample[:maxSampleFiles]
		}
		for _, name := range sample {
			b.WriteString("\n  - ")
			b.WriteString(name)
		}
	}
	return b.String()
}
