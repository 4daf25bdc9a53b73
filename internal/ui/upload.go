package ui

import (
	"context"
	"errors"
	"strings"

	"eiractl/internal/apiclient"
)

// State tells the renderer how to color a status line.
type State string

const (
	StateInfo  State = "info"
	StateError State = "error"
)

// UploadStatus is the text and state of the upload status line.
type UploadStatus struct {
	Text  string
	State State
}

const (
	msgSelectTxt     = "Please select a .txt file."
	msgUploadPending = "Uploading and processing..."
	msgUploadFailed  = "Upload failed."
	msgUploadError   = "Error uploading file."
)

// UploadPending is shown while the upload request is in flight.
var UploadPending = UploadStatus{Text: msgUploadPending, State: StateInfo}

// AcceptsFile reports whether a path passes the client-side extension check.
func AcceptsFile(path string) bool {
	return path != "" && strings.HasSuffix(path, ".txt")
}

// Upload validates the extension locally and, if it passes, sends the file.
// A rejected file never reaches the server.
func Upload(ctx context.Context, uploader Uploader, path string) UploadStatus {
	if !AcceptsFile(path) {
		return UploadStatus{Text: msgSelectTxt, State: StateError}
	}

	resp, err := uploader.UploadTxt(ctx, path)
	if err != nil {
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) && !apiErr.Undecodable {
			text := apiErr.Message
			if text == "" || text == "Unknown error" {
				text = msgUploadFailed
			}
			return UploadStatus{Text: text, State: StateError}
		}
		return UploadStatus{Text: msgUploadError, State: StateError}
	}

	return UploadStatus{Text: resp.Message, State: StateInfo}
}
