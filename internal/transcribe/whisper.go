package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// WhisperClient calls an OpenAI-compatible /v1/audio/transcriptions endpoint.
type WhisperClient struct {
	url      string
	model    string
	language string
	timeout  time.Duration
	client   *http.Client
}

// whisperResponse is the parsed response from the Whisper API (json format).
type whisperResponse struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
}

// NewWhisperClient creates a new Whisper HTTP client.
func NewWhisperClient(url, model, language string, timeout time.Duration) *WhisperClient {
	return &WhisperClient{
		url:      url,
		model:    model,
		language: language,
		timeout:  timeout,
		client:   &http.Client{Timeout: timeout},
	}
}

// Name returns the provider name.
func (wc *WhisperClient) Name() string { return "whisper" }

// Model returns the configured model identifier.
func (wc *WhisperClient) Model() string { return wc.model }

// Transcribe uploads the captured audio and returns the result. Vocabulary
// phrases are sent both as hotwords and as the initial prompt, covering
// servers that implement either biasing mechanism. Only non-default
// parameters are sent, so this works with speaches or any OpenAI-compatible
// endpoint.
func (wc *WhisperClient) Transcribe(ctx context.Context, req Request) (*Response, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	// Audio file field
	part, err := w.CreateFormFile("file", "capture.wav")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(req.WAV); err != nil {
		return nil, fmt.Errorf("copy audio data: %w", err)
	}

	// Model
	if wc.model != "" {
		w.WriteField("model", wc.model)
	}

	if wc.language != "" {
		w.WriteField("language", wc.language)
	}
	w.WriteField("temperature", "0.00")
	w.WriteField("response_format", "json")

	// Vocabulary biasing
	if len(req.Vocabulary) > 0 {
		terms := strings.Join(req.Vocabulary, ", ")
		w.WriteField("hotwords", terms)
		w.WriteField("prompt", terms)
	}

	if req.MaxNewTokens > 0 {
		w.WriteField("max_new_tokens", fmt.Sprintf("%d", req.MaxNewTokens))
	}

	w.Close()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, wc.url, &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := wc.client.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError("whisper", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusServiceUnavailable {
		return nil, fmt.Errorf("%w: whisper returned 503: %s", ErrModelNotLoaded, string(body))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("whisper API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result whisperResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &Response{
		Text:     strings.TrimSpace(result.Text),
		Language: result.Language,
		Duration: result.Duration,
	}, nil
}

// Warm sends a short silent capture through the endpoint so the server loads
// its model before the first real session.
func (wc *WhisperClient) Warm(ctx context.Context) error {
	wav, err := silentWAV(16000, 200*time.Millisecond)
	if err != nil {
		return err
	}
	_, err = wc.Transcribe(ctx, Request{WAV: wav, SampleRate: 16000})
	return err
}

// classifyTransportError maps transport-level failures onto the provider
// failure kinds the controller makes decisions on.
func classifyTransportError(provider string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %v", ErrTimeout, provider, err)
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %s: %v", ErrTimeout, provider, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	// Connection refused and friends: the backend is not up.
	return fmt.Errorf("%w: %s: %v", ErrModelNotLoaded, provider, err)
}
