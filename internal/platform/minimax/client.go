// Package minimax is an HTTP client for the MiniMax chat-completion and
// image-generation APIs, with adapters for recommend.Provider and
// generation.Generator.
package minimax

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

	"github.com/hashicorp/go-cleanhttp"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("minimax: api key is required")

// ErrAPI is wrapped by every error the API reports in its response body.
var ErrAPI = errors.New("minimax: api error")

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 4 << 20

// Options configures the MiniMax client.
type Options struct {
	APIKey         string
	BaseURL        string
	ChatModel      string
	ImageModel     string
	HTTPClient     *http.Client
	Logger         *slog.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls to the MiniMax API.
type Client struct {
	apiKey     string
	baseURL    string
	chatModel  string
	imageModel string
	httpClient *http.Client
	logger     *slog.Logger
}

// ContentPart is one element of a multimodal chat message.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL points at an image by URL or data URL.
type ImageURL struct {
	URL string `json:"url"`
}

// Message is one chat message.
type Message struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

// SubjectReference anchors generated images to a person in a photo.
type SubjectReference struct {
	Type      string `json:"type"`
	ImageFile string `json:"image_file"`
}

// ImageRequest captures the inputs for image generation.
type ImageRequest struct {
	Prompt           string
	AspectRatio      string
	N                int
	SubjectReference []SubjectReference
}

type baseResponse struct {
	StatusCode int    `json:"status_code"`
	StatusMsg  string `json:"status_msg"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	BaseResp baseResponse `json:"base_resp"`
}

type imageGenerationRequest struct {
	Model            string             `json:"model"`
	Prompt           string             `json:"prompt"`
	AspectRatio      string             `json:"aspect_ratio,omitempty"`
	ResponseFormat   string             `json:"response_format"`
	N                int                `json:"n"`
	PromptOptimizer  bool               `json:"prompt_optimizer"`
	SubjectReference []SubjectReference `json:"subject_reference,omitempty"`
}

type imageGenerationResponse struct {
	ID   string `json:"id"`
	Data struct {
		ImageURLs []string `json:"image_urls"`
	} `json:"data"`
	BaseResp baseResponse `json:"base_resp"`
}

// NewClient constructs a client with defaults for every unset option.
func NewClient(opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = cleanhttp.DefaultPooledClient()
		httpClient.Timeout = timeout
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.minimax.io/v1"
	}
	chatModel := strings.TrimSpace(opts.ChatModel)
	if chatModel == "" {
		chatModel = "MiniMax-Text-01"
	}
	imageModel := strings.TrimSpace(opts.ImageModel)
	if imageModel == "" {
		imageModel = "image-01"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		chatModel:  chatModel,
		imageModel: imageModel,
		httpClient: httpClient,
		logger:     logger.With("component", "minimax_client"),
	}, nil
}

// ChatModel returns the configured chat model identifier.
func (c *Client) ChatModel() string {
	return c.chatModel
}

// ImageModel returns the configured image model identifier.
func (c *Client) ImageModel() string {
	return c.imageModel
}

// ChatCompletion sends messages and returns the text of the first choice.
func (c *Client) ChatCompletion(ctx context.Context, messages []Message, temperature float64) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("minimax: at least one message is required")
	}

	var decoded chatResponse
	err := c.post(ctx, "/text/chatcompletion_v2", chatRequest{
		Model:       c.chatModel,
		Messages:    messages,
		Temperature: temperature,
	}, &decoded)
	if err != nil {
		return "", err
	}
	if err := decoded.BaseResp.err(); err != nil {
		return "", err
	}
	if len(decoded.Choices) == 0 {
		return "", errors.New("minimax: no choices in response")
	}

	c.logger.DebugContext(ctx, "chat completion finished",
		"model", c.chatModel,
		"finish_reason", decoded.Choices[0].FinishReason)
	return decoded.Choices[0].Message.Content, nil
}

// GenerateImages invokes the image API and returns the image URLs.
func (c *Client) GenerateImages(ctx context.Context, req ImageRequest) ([]string, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, errors.New("minimax: prompt is required")
	}
	n := req.N
	if n <= 0 {
		n = 1
	}
	aspect := req.AspectRatio
	if aspect == "" {
		aspect = "1:1"
	}

	var decoded imageGenerationResponse
	err := c.post(ctx, "/image_generation", imageGenerationRequest{
		Model:            c.imageModel,
		Prompt:           prompt,
		AspectRatio:      aspect,
		ResponseFormat:   "url",
		N:                n,
		PromptOptimizer:  true,
		SubjectReference: req.SubjectReference,
	}, &decoded)
	if err != nil {
		return nil, err
	}
	if err := decoded.BaseResp.err(); err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(decoded.Data.ImageURLs))
	for _, u := range decoded.Data.ImageURLs {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	if len(urls) == 0 {
		return nil, errors.New("minimax: empty image urls")
	}

	c.logger.DebugContext(ctx, "generated images",
		"model", c.imageModel,
		"request_id", decoded.ID,
		"count", len(urls))
	return urls, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("minimax: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("minimax: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("minimax: http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("minimax: read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		var detail struct {
			BaseResp baseResponse `json:"base_resp"`
		}
		if err := json.Unmarshal(raw, &detail); err == nil && detail.BaseResp.StatusMsg != "" {
			return fmt.Errorf("%w: %s (%d)", ErrAPI, detail.BaseResp.StatusMsg, detail.BaseResp.StatusCode)
		}
		return fmt.Errorf("%w: status %d: %s", ErrAPI, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("minimax: decode response: %w", err)
	}
	return nil
}

func (b baseResponse) err() error {
	if b.StatusCode == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s (%d)", ErrAPI, b.StatusMsg, b.StatusCode)
}
