// Package render is the client for the remote template-video renderer.
package render

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

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("render: api key is required")

// Options configures the renderer client.
type Options struct {
	APIKey         string
	BaseURL        string
	Function       string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls to the external video render service.
type Client struct {
	apiKey     string
	baseURL    string
	function   string
	httpClient *http.Client
	logger     *infra.Logger
}

// Result is a single status check outcome. Only {Status:"OK", URL set} is
// terminal success; any other shape means the job is still processing.
type Result struct {
	Status string `json:"status"`
	URL    string `json:"url"`
}

// Terminal reports whether the result carries a finished artifact.
func (r Result) Terminal() bool {
	return r.Status == "OK" && r.URL != ""
}

type submitRequest struct {
	Function string         `json:"function"`
	VideoID  string         `json:"videoId"`
	Props    map[string]any `json:"props"`
}

type submitResponse struct {
	RenderID string `json:"renderId"`
	Message  string `json:"message"`
}

type statusRequest struct {
	RenderID string `json:"renderId"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 45 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		return nil, errors.New("render: base url is required")
	}
	function := strings.TrimSpace(opts.Function)
	if function == "" {
		function = "propmotion"
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
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		function:   function,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// StartRender submits one render job and returns its opaque handle. It
// performs exactly one request; callers must not retry automatically.
func (c *Client) StartRender(ctx context.Context, videoID string, props map[string]any) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}
	if strings.TrimSpace(videoID) == "" {
		return "", fmt.Errorf("%w: no video template id", domain.ErrSubmission)
	}
	payload := submitRequest{Function: c.function, VideoID: videoID, Props: props}
	var decoded submitResponse
	if err := c.post(ctx, "/video-processor", payload, &decoded); err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrSubmission, err)
	}
	if decoded.RenderID == "" {
		if decoded.Message != "" {
			return "", fmt.Errorf("%w: %s", domain.ErrSubmission, decoded.Message)
		}
		return "", fmt.Errorf("%w: empty render id", domain.ErrSubmission)
	}
	c.logger.Debug().
		Str("video_id", videoID).
		Str("render_id", decoded.RenderID).
		Msg("render: job submitted")
	return decoded.RenderID, nil
}

// PollStatus performs a single status check with no internal retrying; the
// caller owns the polling cadence.
func (c *Client) PollStatus(ctx context.Context, renderID string) (Result, error) {
	if strings.TrimSpace(renderID) == "" {
		return Result{}, errors.New("render: render id is required")
	}
	var decoded Result
	if err := c.post(ctx, "/check-video", statusRequest{RenderID: renderID}, &decoded); err != nil {
		return Result{}, err
	}
	return decoded, nil
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
	req.Header.Set("X-API-KEY", c.apiKey)

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
