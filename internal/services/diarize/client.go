// Package diarize calls the speaker-diarization service that labels who is
// speaking when in a lecture recording.
package diarize

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

// Config captures the runtime settings for the diarization service.
type Config struct {
	BaseURL        string
	HFToken        string
	TimeoutSeconds int
	RetryAttempts  int
}

// Client wraps the diarization HTTP API.
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

// NewClient constructs a diarization client.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			HFToken:        strings.TrimSpace(cfg.HFToken),
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

type diarizationResponse struct {
	Turns []align.SpeakerTurn `json:"turns"`
	Error string              `json:"error"`
}

// Diarize uploads the audio file and returns the speaker turns detected in
// it. An empty turn list is a valid result; alignment then labels every
// segment with the unknown-speaker sentinel.
func (c *Client) Diarize(ctx context.Context, audioPath string) ([]align.SpeakerTurn, error) {
	if c.cfg.BaseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "diarize", "request", "base URL required", nil)
	}

	body, contentType, err := c.encodeRequest(audioPath)
	if err != nil {
		return nil, err
	}

	var turns []align.SpeakerTurn
	err = c.retrier.Do(ctx, "diarize "+filepath.Base(audioPath), func() error {
		result, err := c.sendOnce(ctx, body, contentType)
		if err != nil {
			return err
		}
		turns = result
		return nil
	})
	if err != nil {
		return nil, services.Wrap(services.ErrExternalService, "diarize", "request", filepath.Base(audioPath), err)
	}
	return turns, nil
}

func (c *Client) encodeRequest(audioPath string) ([]byte, string, error) {
	audio, err := os.Open(audioPath)
	if err != nil {
		return nil, "", services.Wrap(services.ErrValidation, "diarize", "open audio", filepath.Base(audioPath), err)
	}
	defer audio.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, "", services.Wrap(services.ErrExternalService, "diarize", "encode request", "", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, "", services.Wrap(services.ErrExternalService, "diarize", "encode request", "", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", services.Wrap(services.ErrExternalService, "diarize", "encode request", "", err)
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}

func (c *Client) sendOnce(ctx context.Context, body []byte, contentType string) ([]align.SpeakerTurn, error) {
	endpoint := c.cfg.BaseURL + "/v1/diarize"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if c.cfg.HFToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.HFToken)
	}

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

	var decoded diarizationResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if decoded.Error != "" {
		return nil, fmt.Errorf("service error: %s", decoded.Error)
	}
	return decoded.Turns, nil
}
