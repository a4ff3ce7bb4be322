// Package synth talks to the external neural text-to-speech provider and
// turns its MP3 byte stream into validated synthesis results.
package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/upskill-audio/text-to-audio-service/internal/core"
)

// API endpoints and paths.
const (
	apiSynthesize = "/v1/synthesize"
	apiVoices     = "/v1/voices"
	apiHealth     = "/health"
)

// HTTP headers.
const (
	headerContentType = "Content-Type"
	headerAccept      = "Accept"
	contentTypeJSON   = "application/json"
	contentTypeMP3    = "audio/mpeg"
)

// Static errors.
var (
	// ErrTextEmpty is returned when a request carries no text to speak.
	ErrTextEmpty = errors.New("text cannot be empty")

	// ErrVoiceEmpty is returned when a request names no voice.
	ErrVoiceEmpty = errors.New("voice cannot be empty")

	// ErrEmptyAudio is returned when the provider responds with zero bytes.
	ErrEmptyAudio = errors.New("received empty audio data")
)

// Error messages.
const (
	errUnexpectedContentType   = "unexpected content type: expected audio/mpeg, got %s"
	errFmtServiceErrorWithCode = "synthesis service error (%s): %s (code: %s)"
	errFmtServiceNonOKStatus   = "synthesis service returned non-OK status: %s, body: %s"
)

// HTTPClient is a client for the provider's synthesis HTTP API. It
// encapsulates the HTTP configuration and exposes speech generation,
// voice listing, and health monitoring.
type HTTPClient struct {
	httpClient *http.Client
	baseURL    string
}

// synthesizePayload is the JSON body for a synthesis request. Rate and
// Volume are signed percentage offsets from the provider's neutral
// baseline, e.g. "+12%" and "-50%".
type synthesizePayload struct {
	Text   string `json:"text"`
	Voice  string `json:"voice"`
	Rate   string `json:"rate"`
	Volume string `json:"volume"`
}

// errorResponse is the provider's structured error body.
type errorResponse struct {
	Detail    string `json:"detail"`
	ErrorCode string `json:"error_code,omitempty"`
}

// NewHTTPClient creates and configures an HTTP client for the synthesis
// provider. The baseURL should include protocol and port, e.g.
// "https://tts.example.com". The timeout applies to every request made
// by this client.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GenerateSpeech sends one synthesis request and returns the raw MP3
// bytes. Input is validated at the boundary; the response content type
// and non-emptiness are validated before the bytes are returned.
func (c *HTTPClient) GenerateSpeech(ctx context.Context, req core.SynthesisRequest) ([]byte, error) {
	if req.Text == "" {
		return nil, ErrTextEmpty
	}

	if req.Voice == "" {
		return nil, ErrVoiceEmpty
	}

	requestBody, err := json.Marshal(synthesizePayload{
		Text:   req.Text,
		Voice:  req.Voice,
		Rate:   req.Rate,
		Volume: req.Volume,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+apiSynthesize,
		bytes.NewBuffer(requestBody),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set(headerContentType, contentTypeJSON)
	httpReq.Header.Set(headerAccept, contentTypeMP3)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to send request to synthesis service at %s: %w",
			c.baseURL,
			err,
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	contentType := resp.Header.Get(headerContentType)
	if contentType != contentTypeMP3 {
		return nil, fmt.Errorf(errUnexpectedContentType, contentType)
	}

	audioData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}

	if len(audioData) == 0 {
		return nil, ErrEmptyAudio
	}

	return audioData, nil
}

// ListVoices fetches the provider's full voice catalog. The response is
// a JSON array of voice descriptors.
func (c *HTTPClient) ListVoices(ctx context.Context) ([]core.Voice, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		c.baseURL+apiVoices,
		http.NoBody,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create voice list request: %w", err)
	}

	req.Header.Set(headerAccept, contentTypeJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to fetch voice list from %s: %w",
			c.baseURL,
			err,
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	var catalog []core.Voice

	err = json.NewDecoder(resp.Body).Decode(&catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to decode voice list: %w", err)
	}

	return catalog, nil
}

// HealthCheck verifies that the synthesis provider is reachable and
// reports healthy. It is a lightweight probe suitable for failing fast
// before accepting work.
func (c *HTTPClient) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		c.baseURL+apiHealth,
		http.NoBody,
	)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf(
			"health check failed for service at %s: %w",
			c.baseURL,
			err,
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status: %s", resp.Status)
	}

	return nil
}

// parseErrorResponse attempts to decode a structured JSON error from the
// provider, falling back to the raw body so diagnostics are never lost.
func (c *HTTPClient) parseErrorResponse(resp *http.Response) error {
	var errorResp errorResponse

	err := json.NewDecoder(resp.Body).Decode(&errorResp)
	if err == nil {
		return fmt.Errorf(errFmtServiceErrorWithCode,
			resp.Status, errorResp.Detail, errorResp.ErrorCode)
	}

	body, _ := io.ReadAll(resp.Body)

	return fmt.Errorf(
		errFmtServiceNonOKStatus,
		resp.Status,
		string(body),
	)
}
