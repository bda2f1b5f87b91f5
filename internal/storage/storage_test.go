package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"evideo/internal/domain"
)

type recordingBackend struct {
	calls       int
	key         string
	data        []byte
	contentType string
}

func (r *recordingBackend) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	r.calls++
	r.key = key
	r.data = append([]byte(nil), data...)
	r.contentType = contentType
	return "https://cdn.example.com/" + key, nil
}

func fixedTime(t *testing.T, s *Service) {
	t.Helper()
	s.now = func() time.Time {
		return time.Date(2026, time.March, 7, 12, 0, 0, 0, time.UTC)
	}
}

func TestUploadDerivesKey(t *testing.T) {
	backend := &recordingBackend{}
	svc := NewService(backend, "production/photos")
	fixedTime(t, svc)

	got, err := svc.Upload(context.Background(), []byte("png-bytes"), "jane-roe-eCard.png", MediaImage, Scope{
		ProjectSlug: "greetings-2026",
		EmployeeID:  "emp-7f3a",
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	wantKey := "production/photos/2026/03/greetings-2026/emp-7f3a/jane-roe-eCard.png"
	if got.Key != wantKey {
		t.Fatalf("key = %q, want %q", got.Key, wantKey)
	}
	if got.PublicURL != "https://cdn.example.com/"+wantKey {
		t.Fatalf("url = %q", got.PublicURL)
	}
	if backend.contentType != "image/png" {
		t.Fatalf("content type = %q", backend.contentType)
	}
}

func TestUploadUnsupportedKindFailsFast(t *testing.T) {
	backend := &recordingBackend{}
	svc := NewService(backend, "production/photos")

	_, err := svc.Upload(context.Background(), []byte("x"), "f.bin", MediaKind("unsupported"), Scope{
		ProjectSlug: "p", EmployeeID: "e",
	})
	if !errors.Is(err, domain.ErrUpload) {
		t.Fatalf("err = %v, want ErrUpload", err)
	}
	if backend.calls != 0 {
		t.Fatalf("backend called %d times, want no network call", backend.calls)
	}
}

func TestUploadRejectsIncompleteScope(t *testing.T) {
	backend := &recordingBackend{}
	svc := NewService(backend, "production/photos")
	if _, err := svc.Upload(context.Background(), []byte("x"), "f.png", MediaImage, Scope{}); !errors.Is(err, domain.ErrUpload) {
		t.Fatalf("err = %v, want ErrUpload", err)
	}
	if backend.calls != 0 {
		t.Fatal("backend must not be called")
	}
}

func TestContentTypes(t *testing.T) {
	cases := map[MediaKind]string{
		MediaImage: "image/png",
		MediaVideo: "video/mp4",
		MediaAudio: "audio/wav",
		MediaPDF:   "application/pdf",
	}
	for kind, want := range cases {
		got, err := ContentType(kind)
		if err != nil || got != want {
			t.Fatalf("ContentType(%q) = (%q, %v), want %q", kind, got, err, want)
		}
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir, "http://localhost:8080/static")
	if err != nil {
		t.Fatal(err)
	}

	payload := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}
	url, err := fs.Put(context.Background(), "production/photos/2026/03/p/e/card.png", payload, "image/png")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if url != "http://localhost:8080/static/production/photos/2026/03/p/e/card.png" {
		t.Fatalf("url = %q", url)
	}

	stored, err := os.ReadFile(filepath.Join(dir, "production", "photos", "2026", "03", "p", "e", "card.png"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !bytes.Equal(stored, payload) {
		t.Fatalf("stored bytes differ from artifact")
	}
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	fs, err := NewFileStore(t.TempDir(), "http://localhost")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fs.Put(context.Background(), "../escape.png", []byte("x"), "image/png"); err == nil {
		t.Fatal("expected traversal key to be rejected")
	}
}

func TestFileStoreUploadThroughService(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir, "http://localhost:8080/static")
	if err != nil {
		t.Fatal(err)
	}
	svc := NewService(fs, "production/photos")
	fixedTime(t, svc)

	artifact := []byte("artifact-bytes")
	got, err := svc.Upload(context.Background(), artifact, "card.pdf", MediaPDF, Scope{ProjectSlug: "p", EmployeeID: "e"})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	stored, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(got.Key)))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !bytes.Equal(stored, artifact) {
		t.Fatal("upload is not content-preserving")
	}
}
