// Package platform is the client for the vendor project backend: project
// configuration, employee login, doctor records, approval workflow and the
// generation tracking beacon.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"evideo/internal/domain"
	"evideo/internal/infra"
)

// Options configures the backend client.
type Options struct {
	BaseURL         string
	TrackingBaseURL string
	HTTPClient      *http.Client
	Logger          *infra.Logger
	RequestTimeout  time.Duration
}

// Client performs JSON-over-HTTP calls against the project backend.
type Client struct {
	baseURL     string
	trackingURL string
	httpClient  *http.Client
	logger      *infra.Logger
}

// SaveResult is the normalized outcome of a contact save.
type SaveResult struct {
	Hash string
	Name string
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		return nil, errors.New("platform: base url is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		baseURL:     baseURL,
		trackingURL: strings.TrimRight(opts.TrackingBaseURL, "/"),
		httpClient:  httpClient,
		logger:      logger,
	}, nil
}

// ProjectInfo fetches the project configuration by its public hash.
func (c *Client) ProjectInfo(ctx context.Context, projectHash string) (*domain.ProjectInfo, error) {
	var info domain.ProjectInfo
	path := fmt.Sprintf("/project/%s/info", projectHash)
	if err := c.post(ctx, path, map[string]any{}, &info); err != nil {
		return nil, fmt.Errorf("platform: project info: %w", err)
	}
	return &info, nil
}

// Login authenticates an employee code against the project.
func (c *Client) Login(ctx context.Context, projectHash, code string) (*domain.Employee, error) {
	if strings.TrimSpace(code) == "" {
		return nil, errors.New("platform: employee code is required")
	}
	var decoded struct {
		Error string          `json:"error"`
		Data  domain.Employee `json:"data"`
	}
	payload := map[string]any{"project_hash": projectHash, "code": code}
	if err := c.post(ctx, "/employee/login", payload, &decoded); err != nil {
		return nil, fmt.Errorf("platform: login: %w", err)
	}
	if decoded.Error != "" {
		return nil, fmt.Errorf("platform: login: %s", decoded.Error)
	}
	return &decoded.Data, nil
}

// Contacts lists the doctors registered by an employee.
func (c *Client) Contacts(ctx context.Context, employeeHash string) ([]domain.ContactDetails, error) {
	var decoded struct {
		Data []domain.ContactDetails `json:"data"`
	}
	path := fmt.Sprintf("/employee/%s/contact/list", employeeHash)
	if err := c.post(ctx, path, map[string]any{}, &decoded); err != nil {
		return nil, fmt.Errorf("platform: contact list: %w", err)
	}
	return decoded.Data, nil
}

// ContactDetail fetches one doctor record.
func (c *Client) ContactDetail(ctx context.Context, employeeHash, contactHash string) (*domain.ContactDetails, error) {
	var decoded struct {
		Data domain.ContactDetails `json:"data"`
	}
	path := fmt.Sprintf("/employee/%s/contact/%s", employeeHash, contactHash)
	if err := c.post(ctx, path, map[string]any{"id": contactHash}, &decoded); err != nil {
		return nil, fmt.Errorf("platform: contact detail: %w", err)
	}
	return &decoded.Data, nil
}

// SaveContact persists the final doctor record after artifact generation.
// Form values are mapped through the project's field definitions to their
// backend identifiers; the photo is referenced by its storage key relative
// to the production root.
func (c *Client) SaveContact(ctx context.Context, employeeHash, contactHash string, project domain.ProjectInfo, snap domain.FormSnapshot) (*SaveResult, error) {
	values := make(map[string]string)
	for _, field := range project.Fields {
		if v := snap.Contact.Field(field.Name); v != "" {
			values[field.ID] = v
		}
	}

	payload := map[string]any{
		"id":      contactHash,
		"name":    snap.Contact.Name,
		"mobile":  snap.Contact.ContactNo,
		"photo":   photoStorageKey(snap.Contact.Photo),
		"values":  values,
		"ai_data": snap,
	}

	var decoded struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Data    struct {
			Contact SaveResult `json:"contact"`
		} `json:"data"`
	}
	path := fmt.Sprintf("/employee/%s/contact/save", employeeHash)
	if err := c.post(ctx, path, payload, &decoded); err != nil {
		return nil, fmt.Errorf("platform: contact save: %w", err)
	}
	if decoded.Message != "" && !decoded.Success {
		return nil, fmt.Errorf("platform: contact save: %s", decoded.Message)
	}
	return &decoded.Data.Contact, nil
}

// ApproveArtwork marks a contact's generated artwork as approved.
func (c *Client) ApproveArtwork(ctx context.Context, employeeHash, contactHash string) error {
	path := fmt.Sprintf("/employee/%s/contact/%s/approve", employeeHash, contactHash)
	if err := c.post(ctx, path, map[string]any{}, &json.RawMessage{}); err != nil {
		return fmt.Errorf("platform: approve artwork: %w", err)
	}
	return nil
}

// DeclineArtwork rejects a contact's generated artwork with a reviewer comment.
func (c *Client) DeclineArtwork(ctx context.Context, employeeHash, contactHash, comment string) error {
	path := fmt.Sprintf("/employee/%s/contact/%s/decline", employeeHash, contactHash)
	if err := c.post(ctx, path, map[string]any{"comment": comment}, &json.RawMessage{}); err != nil {
		return fmt.Errorf("platform: decline artwork: %w", err)
	}
	return nil
}

// TrackVideoGenerated fires the generation analytics beacon. Callers treat
// failures as non-critical; this method only reports them.
func (c *Client) TrackVideoGenerated(ctx context.Context, subDomain, projectSlug, contactHash string) error {
	if c.trackingURL == "" {
		return nil
	}
	url := fmt.Sprintf("%s/company/%s/project/%s/video-generated/%s",
		c.trackingURL, subDomain, projectSlug, contactHash)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return fmt.Errorf("platform: build tracking request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("platform: tracking request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("platform: tracking status %d", resp.StatusCode)
	}
	return nil
}

// photoStorageKey trims a public photo URL down to its storage key below
// the production root.
func photoStorageKey(photoURL string) string {
	if _, after, found := strings.Cut(photoURL, "production/"); found {
		return after
	}
	return photoURL
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
