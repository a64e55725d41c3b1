// Package llm talks to the external structuring provider, turning raw
// recognized text into candidate event records.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Sourabsb/tbi-hackathon/internal/common"
	"github.com/Sourabsb/tbi-hackathon/internal/record"
)

// Client implements RecordExtractor against the generative-language API.
type Client struct {
	cfg    common.LLMConfig
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg common.LLMConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// ExtractRecords sends the extraction prompt and normalizes the returned
// rows. Rows that fail the event schema are dropped with a warning rather
// than failing the whole file.
func (c *Client) ExtractRecords(ctx context.Context, req ExtractRequest) ([]record.Record, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"filename", req.Filename,
		"text_len", len(req.Text),
	)

	body := generateRequest{
		Contents: []content{{Parts: []part{{Text: BuildExtractionPrompt(req.Text, req.Filename)}}}},
	}
	raw, err := c.post(ctx, body)
	if err != nil {
		c.logger.Error("llm.extract.http_error",
			"req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, err
	}

	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return nil, fmt.Errorf("decode generate response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		c.logger.Warn("llm.extract.no_candidates", "req_id", rid, "raw_bytes", len(raw))
		return nil, nil
	}

	rows, err := ExtractJSONArray(gr.Candidates[0].Content.Parts[0].Text)
	if err != nil {
		return nil, err
	}

	schema := BuildEventJSONSchema()
	out := make([]record.Record, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		b, err := json.Marshal(row)
		if err != nil {
			dropped++
			continue
		}
		if err := ValidateJSONAgainstSchema(schema, b); err != nil {
			c.logger.Warn("llm.extract.row_rejected", "req_id", rid, "error", err)
			dropped++
			continue
		}
		r := record.Normalize(row)
		if r.Filename == "" {
			r.Filename = req.Filename
		}
		out = append(out, r)
	}

	c.logger.Info("llm.extract.ok",
		"req_id", rid,
		"filename", req.Filename,
		"records", len(out),
		"dropped", dropped,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

func (c *Client) post(ctx context.Context, body any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Model, c.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generate http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.logger.Warn("llm.http.response_body_close_error", "error", err)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, common.NewProviderError(common.FailureLLMAuth, "llm.generate",
			fmt.Errorf("provider rejected credentials: status %d", resp.StatusCode))
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("generate status %d: %s", resp.StatusCode, truncate(string(raw), 2<<10))
	}
	return raw, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
