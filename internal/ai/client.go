package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// httpClient is the shared plumbing for both AI services: JSON POST with a
// per-call timeout and an optional client-side token bucket so a burst of
// cache misses cannot flood the AI backend.
type httpClient struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

func newHTTPClient(baseURL string, timeout time.Duration, ratePerSec float64, burst int) *httpClient {
	var limiter *rate.Limiter
	if ratePerSec > 0 && burst > 0 {
		limiter = rate.NewLimiter(rate.Limit(ratePerSec), burst)
	}
	return &httpClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		limiter: limiter,
	}
}

func (c *httpClient) postJSON(ctx context.Context, path string, reqBody, respBody any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("call %s: status %d: %s", path, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// TranslationClient is the HTTP client for the translation engine.
type TranslationClient struct {
	*httpClient
}

// NewTranslationClient builds a client for the translation engine at baseURL.
func NewTranslationClient(baseURL string, timeout time.Duration, ratePerSec float64, burst int) *TranslationClient {
	return &TranslationClient{httpClient: newHTTPClient(baseURL, timeout, ratePerSec, burst)}
}

type translateRequest struct {
	Content        string `json:"content"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
}

type translateResponse struct {
	Content string `json:"content"`
}

// TranslateStructured translates lesson content preserving its structure.
func (c *TranslationClient) TranslateStructured(ctx context.Context, content, sourceLang, targetLang string) (string, error) {
	var resp translateResponse
	err := c.postJSON(ctx, "/v1/translate", translateRequest{
		Content:        content,
		SourceLanguage: sourceLang,
		TargetLanguage: targetLang,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("translate %s -> %s: %w", sourceLang, targetLang, err)
	}
	return resp.Content, nil
}

// GenerationClient is the HTTP client for the generation pipeline.
type GenerationClient struct {
	*httpClient
}

// NewGenerationClient builds a client for the generation pipeline at baseURL.
func NewGenerationClient(baseURL string, timeout time.Duration, ratePerSec float64, burst int) *GenerationClient {
	return &GenerationClient{httpClient: newHTTPClient(baseURL, timeout, ratePerSec, burst)}
}

type generateResponse struct {
	Content string `json:"content"`
}

// Generate synthesizes lesson content from scratch in the requested language.
func (c *GenerationClient) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	var resp generateResponse
	if err := c.postJSON(ctx, "/v1/generate", req, &resp); err != nil {
		return "", fmt.Errorf("generate %s %s for lesson %d: %w", req.ContentType, req.Language, req.LessonID, err)
	}
	return resp.Content, nil
}
