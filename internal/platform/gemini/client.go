package gemini

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

	"github.com/jengzang/healthtwin-backend/internal/platform/logger"
)

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("gemini: empty response")

// Config configures the generateContent client.
type Config struct {
	BaseURL         string
	Model           string
	Timeout         time.Duration
	Temperature     float64
	TopK            int
	TopP            float64
	MaxOutputTokens int
}

// Client calls the Gemini generateContent REST endpoint.
type Client struct {
	log        *logger.Logger
	cfg        Config
	keys       *KeyManager
	httpClient *http.Client
}

// New creates a client. keys must hold at least one key for Generate to succeed.
func New(log *logger.Logger, cfg Config, keys *KeyManager) *Client {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.TopK == 0 {
		cfg.TopK = 40
	}
	if cfg.TopP == 0 {
		cfg.TopP = 0.95
	}
	if cfg.MaxOutputTokens == 0 {
		cfg.MaxOutputTokens = 1024
	}
	return &Client{
		log:        log.With("client", "GeminiClient"),
		cfg:        cfg,
		keys:       keys,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Keys exposes the rotation manager for status reporting.
func (c *Client) Keys() *KeyManager {
	return c.keys
}

// --- wire types ---

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
	SafetySettings   []safetySetting  `json:"safetySettings"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

var safetySettings = []safetySetting{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
}

// HTTPError is a non-2xx generateContent response.
type HTTPError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gemini http %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gemini http %d", e.StatusCode)
}

func (e *HTTPError) HTTPStatusCode() int { return e.StatusCode }

// RateLimited reports whether the failure was a quota or rate limit.
func (e *HTTPError) RateLimited() bool {
	msg := strings.ToLower(e.Message)
	return e.StatusCode == http.StatusTooManyRequests ||
		e.Status == "RESOURCE_EXHAUSTED" ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "rate")
}

// Generate sends prompt as a single user turn and returns the first
// candidate's text. A rate-limited key is retried once with the next key.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.keys == nil || c.keys.Len() == 0 {
		return "", ErrNoKeys
	}

	body := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     c.cfg.Temperature,
			TopK:            c.cfg.TopK,
			TopP:            c.cfg.TopP,
			MaxOutputTokens: c.cfg.MaxOutputTokens,
		},
		SafetySettings: safetySettings,
	}

	key, idx, err := c.keys.Next()
	if err != nil {
		return "", err
	}
	text, err := c.generateOnce(ctx, key, body)
	if err == nil {
		c.keys.ReportSuccess(idx)
		return text, nil
	}
	c.keys.ReportError(idx)

	var he *HTTPError
	if !errors.As(err, &he) || !he.RateLimited() {
		return "", err
	}

	retryKey, retryIdx, nextErr := c.keys.Next()
	if nextErr != nil || retryIdx == idx {
		return "", err
	}
	c.log.Warn("Gemini key rate limited, retrying with next key", "key_index", idx, "retry_index", retryIdx)

	text, err = c.generateOnce(ctx, retryKey, body)
	if err != nil {
		c.keys.ReportError(retryIdx)
		return "", err
	}
	c.keys.ReportSuccess(retryIdx)
	return text, nil
}

func (c *Client) generateOnce(ctx context.Context, key string, body generateRequest) (string, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.cfg.BaseURL, c.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		he := &HTTPError{StatusCode: resp.StatusCode}
		var er errorResponse
		if json.Unmarshal(raw, &er) == nil {
			he.Message = er.Error.Message
			he.Status = er.Error.Status
		}
		return "", he
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("gemini: decode response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
