package models

// CopyResult is the body of a successful POST /fetch/{type}.
type CopyResult struct {
	Status    string   `json:"status,omitempty"`
	Copied    []string `json:"copied"`
	SubBucket string   `json:"sub_bucket"`
}

// StatusSnapshot is the body of GET /status. Each poll replaces the previous one.
type StatusSnapshot struct {
	Total   int      `json:"total"`
	Current int      `json:"current"`
	Logs    []string `json:"logs"`
}

type UploadResponse struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message"`
}

// APIError is the {error} body the backend returns on failures.
type APIError struct {
	Error string `json:"error"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
	Command   string `json:"command"`
}
