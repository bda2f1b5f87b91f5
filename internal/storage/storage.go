// Package storage uploads finished artifacts to object storage under a
// deterministic, namespaced key and returns a stable public URL.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"evideo/internal/domain"
)

// MediaKind constrains the content type tag attached to the stored object.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
	MediaAudio MediaKind = "audio"
	MediaPDF   MediaKind = "pdf"
)

// ContentType maps a media kind to its content type. Unsupported kinds
// fail before any network call.
func ContentType(kind MediaKind) (string, error) {
	switch kind {
	case MediaImage:
		return "image/png", nil
	case MediaVideo:
		return "video/mp4", nil
	case MediaAudio:
		return "audio/wav", nil
	case MediaPDF:
		return "application/pdf", nil
	}
	return "", fmt.Errorf("%w: unsupported media kind %q", domain.ErrUpload, kind)
}

// Backend writes one object and returns its public URL. A failed write
// leaves no object; a successful write is immediately durable.
type Backend interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Scope namespaces uploads per project and employee.
type Scope struct {
	ProjectSlug string
	EmployeeID  string
}

// UploadedFile is the only durable output of an upload.
type UploadedFile struct {
	Key       string
	PublicURL string
}

// Service derives object keys and delegates writes to the configured
// backend.
type Service struct {
	backend Backend
	root    string
	now     func() time.Time
}

// NewService wraps a backend with the key scheme rooted at root
// (e.g. "production/photos").
func NewService(backend Backend, root string) *Service {
	return &Service{
		backend: backend,
		root:    strings.Trim(root, "/"),
		now:     time.Now,
	}
}

// Upload validates the media kind, derives the destination key and writes
// the artifact with public-read visibility.
func (s *Service) Upload(ctx context.Context, data []byte, fileName string, kind MediaKind, scope Scope) (UploadedFile, error) {
	contentType, err := ContentType(kind)
	if err != nil {
		return UploadedFile{}, err
	}
	if len(data) == 0 {
		return UploadedFile{}, fmt.Errorf("%w: empty artifact", domain.ErrUpload)
	}
	if strings.TrimSpace(fileName) == "" {
		return UploadedFile{}, fmt.Errorf("%w: file name is required", domain.ErrUpload)
	}
	if scope.ProjectSlug == "" || scope.EmployeeID == "" {
		return UploadedFile{}, fmt.Errorf("%w: upload scope is incomplete", domain.ErrUpload)
	}

	key := s.objectKey(fileName, scope)
	url, err := s.backend.Put(ctx, key, data, contentType)
	if err != nil {
		return UploadedFile{}, fmt.Errorf("%w: %s", domain.ErrUpload, err)
	}
	return UploadedFile{Key: key, PublicURL: url}, nil
}

// objectKey derives <root>/<year>/<month>/<project-slug>/<employee-id>/<fileName>.
func (s *Service) objectKey(fileName string, scope Scope) string {
	now := s.now()
	return fmt.Sprintf("%s/%d/%02d/%s/%s/%s",
		s.root, now.Year(), int(now.Month()), scope.ProjectSlug, scope.EmployeeID, fileName)
}
