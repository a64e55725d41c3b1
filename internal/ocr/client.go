// Package ocr talks to the external text-recognition provider: it submits an
// image byte stream, receives an operation handle, and polls the handle until
// the recognition reaches a terminal state.
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Sourabsb/tbi-hackathon/internal/common"
)

// ErrPollTimeout marks a file whose recognition never reached a terminal
// state within the attempt cap. Callers skip the file, they do not fail the job.
var ErrPollTimeout = errors.New("text recognition timed out")

const readPath = "vision/v3.2/read/analyze"

// Client is the recognition-provider HTTP client.
type Client struct {
	endpoint     string
	apiKey       string
	http         *http.Client
	pollInterval time.Duration
	maxAttempts  int
	logger       *slog.Logger
}

// NewClient validates provider configuration up front. A placeholder endpoint
// is a pipeline-fatal misconfiguration, reported with a typed failure kind.
func NewClient(cfg common.OCRConfig, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.Contains(cfg.Endpoint, common.EndpointPlaceholder) {
		return nil, common.NewProviderError(common.FailureEndpointConfig, "ocr.client.init",
			fmt.Errorf("endpoint still contains %q", common.EndpointPlaceholder))
	}
	if cfg.Endpoint == "" {
		return nil, common.NewProviderError(common.FailureEndpointConfig, "ocr.client.init",
			errors.New("endpoint not configured"))
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.PollMaxAttempts <= 0 {
		cfg.PollMaxAttempts = 60
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		endpoint:     strings.TrimRight(cfg.Endpoint, "/") + "/",
		apiKey:       cfg.APIKey,
		http:         &http.Client{Timeout: cfg.Timeout},
		pollInterval: cfg.PollInterval,
		maxAttempts:  cfg.PollMaxAttempts,
		logger:       logger,
	}, nil
}

type readResult struct {
	Status        string `json:"status"`
	AnalyzeResult struct {
		ReadResults []struct {
			Lines []struct {
				Text string `json:"text"`
			} `json:"lines"`
		} `json:"readResults"`
	} `json:"analyzeResult"`
}

// RecognizeText runs the full submit-then-poll exchange for one image and
// returns the recognized lines in reading order, newline separated. A
// recognition that terminates unsuccessfully yields empty text, not an error.
func (c *Client) RecognizeText(ctx context.Context, data []byte, filename string) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("ocr.read.submit", "req_id", rid, "filename", filename, "bytes", len(data))

	opURL, err := c.submit(ctx, data)
	if err != nil {
		return "", err
	}

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		res, err := c.pollOnce(ctx, opURL)
		if err != nil {
			return "", err
		}
		switch res.Status {
		case "notStarted", "running":
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.pollInterval):
			}
		case "succeeded":
			var b strings.Builder
			for _, page := range res.AnalyzeResult.ReadResults {
				for _, line := range page.Lines {
					b.WriteString(line.Text)
					b.WriteString("\n")
				}
			}
			c.logger.Info("ocr.read.ok",
				"req_id", rid,
				"filename", filename,
				"attempts", attempt,
				"text_len", b.Len(),
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return b.String(), nil
		default:
			// Terminal but not succeeded: treat as no text extracted.
			c.logger.Warn("ocr.read.not_succeeded",
				"req_id", rid, "filename", filename, "status", res.Status)
			return "", nil
		}
	}

	c.logger.Warn("ocr.read.poll_timeout",
		"req_id", rid, "filename", filename, "attempts", c.maxAttempts)
	return "", fmt.Errorf("%w after %d attempts", ErrPollTimeout, c.maxAttempts)
}

func (c *Client) submit(ctx context.Context, data []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+readPath, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("build read request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", common.NewProviderError(common.FailureInternal, "ocr.read.submit", err)
	}
	defer closeBody(resp.Body, c.logger)

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", common.NewProviderError(common.FailureAuth, "ocr.read.submit",
			fmt.Errorf("provider rejected credentials: status %d", resp.StatusCode))
	}
	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", common.NewProviderError(common.FailureInternal, "ocr.read.submit",
			fmt.Errorf("status %d: %s", resp.StatusCode, body))
	}

	opURL := resp.Header.Get("Operation-Location")
	if opURL == "" {
		return "", common.NewProviderError(common.FailureInternal, "ocr.read.submit",
			errors.New("no Operation-Location header in response"))
	}
	return opURL, nil
}

func (c *Client) pollOnce(ctx context.Context, opURL string) (*readResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build poll request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, common.NewProviderError(common.FailureInternal, "ocr.read.poll", err)
	}
	defer closeBody(resp.Body, c.logger)

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, common.NewProviderError(common.FailureAuth, "ocr.read.poll",
			fmt.Errorf("provider rejected credentials: status %d", resp.StatusCode))
	}
	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, common.NewProviderError(common.FailureInternal, "ocr.read.poll",
			fmt.Errorf("status %d: %s", resp.StatusCode, body))
	}

	var res readResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, common.NewProviderError(common.FailureInternal, "ocr.read.poll", err)
	}
	return &res, nil
}

func closeBody(body io.ReadCloser, logger *slog.Logger) {
	if err := body.Close(); err != nil {
		logger.Warn("ocr.http.response_body_close_error", "error", err)
	}
}
