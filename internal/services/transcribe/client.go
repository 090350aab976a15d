// Package transcribe calls the speech-to-text service that converts lecture
// audio into timed transcript segments.
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lectern/internal/align"
	"lectern/internal/services"
)

const defaultHTTPTimeout = 5 * time.Minute

// Config captures the runtime settings for the transcription service.
type Config struct {
	BaseURL        string
	Model          string
	Language       string
	TimeoutSeconds int
	RetryAttempts  int
}

// Client wraps the transcription HTTP API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	retrier    services.Retrier
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetrier overrides the retry policy.
func WithRetrier(retrier services.Retrier) Option {
	return func(c *Client) {
		c.retrier = retrier
	}
}

// NewClient constructs a transcription client.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			Model:          strings.TrimSpace(cfg.Model),
			Language:       strings.TrimSpace(cfg.Language),
			TimeoutSeconds: cfg.TimeoutSeconds,
			RetryAttempts:  cfg.RetryAttempts,
		},
		httpClient: &http.Client{Timeout: timeout},
		retrier:    services.NewRetrier(cfg.RetryAttempts),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type transcriptionResponse struct {
	Segments []align.TranscriptSegment `json:"segments"`
	Error    string                    `json:"error"`
}

// Transcribe uploads the audio file and returns its transcript segments in
// ascending start order as produced by the service.
func (c *Client) Transcribe(ctx context.Context, audioPath string) ([]align.TranscriptSegment, error) {
	if c.cfg.BaseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "transcribe", "request", "base URL required", nil)
	}

	body, contentType, err := c.encodeRequest(audioPath)
	if err != nil {
		return nil, err
	}

	var segments []align.TranscriptSegment
	err = c.retrier.Do(ctx, "transcribe "+filepath.Base(audioPath), func() error {
		result, err := c.sendOnce(ctx, body, contentType)
		if err != nil {
			return err
		}
		segments = result
		return nil
	})
	if err != nil {
		return nil, services.Wrap(services.ErrExternalService, "transcribe", "request", filepath.Base(audioPath), err)
	}
	return segments, nil
}

func (c *Client) encodeRequest(audioPath string) ([]byte, string, error) {
	audio, err := os.Open(audioPath)
	if err != nil {
		return nil, "", services.Wrap(services.ErrValidation, "transcribe", "open audio", filepath.Base(audioPath), err)
	}
	defer audio.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, "", services.Wrap(services.ErrExternalService, "transcribe", "encode request", "", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, "", services.Wrap(services.ErrExternalService, "transcribe", "encode request", "", err)
	}
	if c.cfg.Model != "" {
		if err := writer.WriteField("model", c.cfg.Model); err != nil {
			return nil, "", services.Wrap(services.ErrExternalService, "transcribe", "encode request", "", err)
		}
	}
	if c.cfg.Language != "" {
		if err := writer.WriteField("language", c.cfg.Language); err != nil {
			return nil, "", services.Wrap(services.ErrExternalService, "transcribe", "encode request", "", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", services.Wrap(services.ErrExternalService, "transcribe", "encode request", "", err)
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}

func (c *Client) sendOnce(ctx context.Context, body []byte, contentType string) ([]align.TranscriptSegment, error) {
	endpoint := c.cfg.BaseURL + "/v1/transcribe"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := services.ParseRetryAfter(resp.Header.Get("Retry-After"))
		return nil, &services.HTTPStatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(payload)),
			RetryAfter: retryAfter,
		}
	}

	var decoded transcriptionResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if decoded.Error != "" {
		return nil, fmt.Errorf("service error: %s", decoded.Error)
	}
	return decoded.Segments, nil
}
