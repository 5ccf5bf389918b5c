package models

// UploadMetadata is the service-extracted metadata returned after an upload.
type UploadMetadata struct {
	Department string   `json:"department,omitempty"`
	Year       Year     `json:"year,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// UploadOutcome is either UploadSuccess or UploadFailure.
type UploadOutcome interface {
	Succeeded() bool
}

// UploadSuccess is a document accepted and classified by the service.
type UploadSuccess struct {
	Category string          `json:"category"`
	Summary  string          `json:"summary"`
	Metadata *UploadMetadata `json:"metadata,omitempty"`
}

// Succeeded is always true.
func (UploadSuccess) Succeeded() bool { return true }

// UploadFailure carries the message shown to the user.
type UploadFailure struct {
	ErrorMessage string `json:"error"`
}

// Succeeded is always false.
func (UploadFailure) Succeeded() bool { return false }
