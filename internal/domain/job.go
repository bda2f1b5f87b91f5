package domain

import "time"

// JobKind enumerates supported generation paths.
type JobKind string

const (
	JobKindTemplateVideo JobKind = "template_video"
	JobKindECardImage    JobKind = "ecard_image"
	JobKindECardPDF      JobKind = "ecard_pdf"
	JobKindNFCCard       JobKind = "nfc_card"
)

// Valid reports whether the kind names a known generation path.
func (k JobKind) Valid() bool {
	switch k {
	case JobKindTemplateVideo, JobKindECardImage, JobKindECardPDF, JobKindNFCCard:
		return true
	}
	return false
}

// JobStatus enumerates the generation lifecycle states.
type JobStatus string

const (
	JobStatusIdle    JobStatus = "idle"
	JobStatusLoading JobStatus = "loading"
	JobStatusSuccess JobStatus = "success"
	JobStatusError   JobStatus = "error"
)

// GenerationJob tracks a single generation attempt from submission to a
// terminal state. Attempts counts remote status checks for the template
// video path; it stays zero for synchronous compose paths.
type GenerationJob struct {
	ID           string    `json:"id"`
	Kind         JobKind   `json:"kind"`
	Status       JobStatus `json:"status"`
	Attempts     int       `json:"attempts"`
	ArtifactURL  string    `json:"artifact_url,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
