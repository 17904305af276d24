package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"genconsole/internal/infra"
)

// Options controls how the Gemini client is configured. The client carries no
// API key or model of its own: the dispatcher supplies both per call so keys
// can rotate and models can fall back without rebuilding the client.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client is a lightweight facade over the Gemini generative API covering the
// three request classes the console uses: text, image, and long-running video.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

// ImageRequest represents the information required to generate images.
type ImageRequest struct {
	Prompt      string
	Quantity    int
	AspectRatio string
	// Reference is an optional inline image payload. Enhancement (upscale)
	// passes the previous artifact here.
	Reference     []byte
	ReferenceMIME string
}

// VideoRequest represents the information required to start a video operation.
type VideoRequest struct {
	Prompt      string
	AspectRatio string
}

// ImageAsset is the normalized representation returned by the client.
type ImageAsset struct {
	Data   []byte
	MIME   string
	URL    string
	Width  int
	Height int
}

// Operation is the opaque handle for an asynchronous video job.
type Operation struct {
	Name string
	Done bool
	// URIs locate the generated videos once Done is true.
	URIs []string
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts,omitempty"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
	FileData   *geminiFileData   `json:"fileData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type geminiFileData struct {
	MimeType string `json:"mimeType,omitempty"`
	FileURI  string `json:"fileUri,omitempty"`
}

type geminiGenerationConfig struct {
	CandidateCount     int      `json:"candidateCount,omitempty"`
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type geminiGenerateContentRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiGenerateContentResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiVideoParameters struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type geminiPredictLongRunningRequest struct {
	Instances  []map[string]any       `json:"instances"`
	Parameters *geminiVideoParameters `json:"parameters,omitempty"`
}

type geminiOperation struct {
	Name  string `json:"name"`
	Done  bool   `json:"done"`
	Error *struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
		Status  string `json:"status,omitempty"`
	} `json:"error,omitempty"`
	Response *struct {
		GenerateVideoResponse struct {
			GeneratedSamples []struct {
				Video struct {
					URI string `json:"uri,omitempty"`
				} `json:"video"`
			} `json:"generatedSamples"`
		} `json:"generateVideoResponse"`
	} `json:"response,omitempty"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
		Status  string `json:"status,omitempty"`
	} `json:"error"`
}

// NewClient constructs a Gemini client with sane defaults. Callers may provide
// a nil HTTP client; a reusable one with sensible timeouts will be created.
func NewClient(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}

	return &Client{baseURL: baseURL, httpClient: client, logger: logger}
}

// GenerateText returns the first candidate's text for a prompt.
func (c *Client) GenerateText(ctx context.Context, key, model, prompt string) (string, error) {
	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: prompt}},
		}},
	}
	var response geminiGenerateContentResponse
	path := fmt.Sprintf("/models/%s:generateContent", url.PathEscape(model))
	if err := c.invoke(ctx, key, path, payload, &response); err != nil {
		return "", err
	}
	for _, candidate := range response.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				return part.Text, nil
			}
		}
	}
	return "", fmt.Errorf("no text content returned")
}

// GenerateImages returns up to req.Quantity image assets for a prompt.
func (c *Client) GenerateImages(ctx context.Context, key, model string, req ImageRequest) ([]ImageAsset, error) {
	quantity := clampQuantity(req.Quantity)
	parts := []geminiPart{{Text: buildImagePrompt(req)}}
	if len(req.Reference) > 0 {
		mime := req.ReferenceMIME
		if mime == "" {
			mime = "image/png"
		}
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{
			MimeType: mime,
			Data:     base64.StdEncoding.EncodeToString(req.Reference),
		}})
	}
	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{{Role: "user", Parts: parts}},
		GenerationConfig: &geminiGenerationConfig{
			CandidateCount:     quantity,
			ResponseModalities: []string{"IMAGE"},
		},
	}

	var response geminiGenerateContentResponse
	path := fmt.Sprintf("/models/%s:generateContent", url.PathEscape(model))
	if err := c.invoke(ctx, key, path, payload, &response); err != nil {
		return nil, err
	}

	var assets []ImageAsset
	for _, candidate := range response.Candidates {
		for _, part := range candidate.Content.Parts {
			asset, err := c.decodePart(ctx, key, part)
			if err != nil || len(asset.Data) == 0 {
				continue
			}
			if asset.MIME == "" {
				asset.MIME = "image/png"
			}
			asset.Width, asset.Height = decodeImageDimensions(asset.Data)
			assets = append(assets, asset)
			if len(assets) >= quantity {
				break
			}
		}
		if len(assets) >= quantity {
			break
		}
	}
	if len(assets) == 0 {
		return nil, fmt.Errorf("no image content returned")
	}

	c.logger.Debug().
		Str("model", model).
		Int("quantity", len(assets)).
		Msg("genai: generated image assets")

	return assets, nil
}

// StartVideo submits a long-running video generation and returns its handle.
func (c *Client) StartVideo(ctx context.Context, key, model string, req VideoRequest) (*Operation, error) {
	payload := geminiPredictLongRunningRequest{
		Instances: []map[string]any{{"prompt": req.Prompt}},
	}
	if req.AspectRatio != "" {
		payload.Parameters = &geminiVideoParameters{AspectRatio: req.AspectRatio}
	}
	var op geminiOperation
	path := fmt.Sprintf("/models/%s:predictLongRunning", url.PathEscape(model))
	if err := c.invoke(ctx, key, path, payload, &op); err != nil {
		return nil, err
	}
	if op.Name == "" {
		return nil, fmt.Errorf("no operation handle returned")
	}
	return operationFromWire(op)
}

// GetOperation fetches the current state of a video operation handle.
func (c *Client) GetOperation(ctx context.Context, key, name string) (*Operation, error) {
	var op geminiOperation
	if err := c.get(ctx, key, "/"+strings.TrimLeft(name, "/"), &op); err != nil {
		return nil, err
	}
	return operationFromWire(op)
}

func operationFromWire(op geminiOperation) (*Operation, error) {
	if op.Error != nil && op.Error.Message != "" {
		return nil, fmt.Errorf("gemini operation %s: %s", op.Error.Status, op.Error.Message)
	}
	out := &Operation{Name: op.Name, Done: op.Done}
	if op.Response != nil {
		for _, sample := range op.Response.GenerateVideoResponse.GeneratedSamples {
			if sample.Video.URI != "" {
				out.URIs = append(out.URIs, sample.Video.URI)
			}
		}
	}
	return out, nil
}

// Download fetches the bytes behind a result locator.
func (c *Client) Download(ctx context.Context, key, uri string) ([]byte, string, error) {
	target := uri
	if !strings.HasPrefix(uri, "http://") && !strings.HasPrefix(uri, "https://") {
		target = c.baseURL + "/" + strings.TrimLeft(uri, "/")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create download request: %w", err)
	}
	if key != "" {
		req.Header.Set("x-goog-api-key", key)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return nil, "", fmt.Errorf("download file status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read file: %w", err)
	}
	return blob, resp.Header.Get("Content-Type"), nil
}

func (c *Client) invoke(ctx context.Context, key, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("x-goog-api-key", key)
	}
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, key, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if key != "" {
		req.Header.Set("x-goog-api-key", key)
	}
	return c.do(req, out)
}

// do executes the request and decodes the response. Upstream failures keep
// the status code and message in the error string; the dispatch classifier
// inspects that text for rate-limit signals.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr geminiErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("gemini status %d %s: %s", resp.StatusCode, apiErr.Error.Status, apiErr.Error.Message)
		}
		data, _ := io.ReadAll(resp.Body)
		if len(data) > 0 {
			return fmt.Errorf("gemini status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		}
		return fmt.Errorf("gemini status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gemini response: %w", err)
	}
	return nil
}

func (c *Client) decodePart(ctx context.Context, key string, part geminiPart) (ImageAsset, error) {
	if part.InlineData != nil && part.InlineData.Data != "" {
		data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
		if err != nil {
			return ImageAsset{}, fmt.Errorf("decode inline data: %w", err)
		}
		return ImageAsset{Data: data, MIME: part.InlineData.MimeType}, nil
	}

	if part.FileData != nil && part.FileData.FileURI != "" {
		data, mime, err := c.Download(ctx, key, part.FileData.FileURI)
		if err != nil {
			return ImageAsset{}, err
		}
		return ImageAsset{Data: data, MIME: firstNonEmpty(part.FileData.MimeType, mime), URL: part.FileData.FileURI}, nil
	}

	return ImageAsset{}, nil
}

func buildImagePrompt(req ImageRequest) string {
	var b strings.Builder
	if prompt := strings.TrimSpace(req.Prompt); prompt != "" {
		b.WriteString(prompt)
	}
	if aspect := strings.TrimSpace(req.AspectRatio); aspect != "" {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Aspect ratio: ")
		b.WriteString(aspect)
	}
	return b.String()
}

func clampQuantity(quantity int) int {
	if quantity <= 0 {
		return 1
	}
	if quantity > 4 {
		return 4
	}
	return quantity
}

func decodeImageDimensions(data []byte) (int, int) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
