package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func testClient(rt roundTripFunc) *Client {
	return NewClient(Options{
		BaseURL:    "https://example.test/v1beta",
		HTTPClient: &http.Client{Transport: rt},
	})
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 3))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestGenerateTextUsesKeyHeader(t *testing.T) {
	var gotKey, gotPath string
	client := testClient(func(r *http.Request) (*http.Response, error) {
		gotKey = r.Header.Get("x-goog-api-key")
		gotPath = r.URL.Path
		return jsonResponse(200, `{"candidates":[{"content":{"parts":[{"text":"hello"}]}}]}`), nil
	})

	text, err := client.GenerateText(context.Background(), "secret", "gemini-2.5-flash", "say hello")
	if err != nil {
		t.Fatalf("GenerateText error: %v", err)
	}
	if text != "hello" {
		t.Fatalf("text = %q", text)
	}
	if gotKey != "secret" {
		t.Fatalf("api key header = %q", gotKey)
	}
	if !strings.Contains(gotPath, "gemini-2.5-flash:generateContent") {
		t.Fatalf("path = %q", gotPath)
	}
}

func TestGenerateImagesDecodesInlineData(t *testing.T) {
	data := pngBytes(t)
	encoded := base64.StdEncoding.EncodeToString(data)
	client := testClient(func(r *http.Request) (*http.Response, error) {
		body := `{"candidates":[{"content":{"parts":[{"inlineData":{"mimeType":"image/png","data":"` + encoded + `"}}]}}]}`
		return jsonResponse(200, body), nil
	})

	assets, err := client.GenerateImages(context.Background(), "k", "imagen-4", ImageRequest{Prompt: "cat", Quantity: 1})
	if err != nil {
		t.Fatalf("GenerateImages error: %v", err)
	}
	if len(assets) != 1 {
		t.Fatalf("assets = %d, want 1", len(assets))
	}
	if assets[0].MIME != "image/png" {
		t.Fatalf("mime = %q", assets[0].MIME)
	}
	if assets[0].Width != 2 || assets[0].Height != 3 {
		t.Fatalf("dimensions = %dx%d, want 2x3", assets[0].Width, assets[0].Height)
	}
}

func TestGenerateImagesSendsReference(t *testing.T) {
	data := pngBytes(t)
	var captured geminiGenerateContentRequest
	client := testClient(func(r *http.Request) (*http.Response, error) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		body := `{"candidates":[{"content":{"parts":[{"inlineData":{"mimeType":"image/png","data":"` + base64.StdEncoding.EncodeToString(data) + `"}}]}}]}`
		return jsonResponse(200, body), nil
	})

	_, err := client.GenerateImages(context.Background(), "k", "imagen-4", ImageRequest{
		Prompt:    "upscale this",
		Reference: data,
	})
	if err != nil {
		t.Fatalf("GenerateImages error: %v", err)
	}
	parts := captured.Contents[0].Parts
	if len(parts) != 2 || parts[1].InlineData == nil {
		t.Fatalf("expected reference inline part, got %+v", parts)
	}
}

func TestRateLimitErrorKeepsSignal(t *testing.T) {
	client := testClient(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(429, `{"error":{"code":429,"status":"RESOURCE_EXHAUSTED","message":"Quota exceeded"}}`), nil
	})

	_, err := client.GenerateText(context.Background(), "k", "m", "p")
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "429") || !strings.Contains(msg, "RESOURCE_EXHAUSTED") {
		t.Fatalf("error string lost rate-limit signal: %q", msg)
	}
}

func TestStartVideoReturnsHandle(t *testing.T) {
	client := testClient(func(r *http.Request) (*http.Response, error) {
		if !strings.Contains(r.URL.Path, "veo-3:predictLongRunning") {
			t.Fatalf("path = %q", r.URL.Path)
		}
		return jsonResponse(200, `{"name":"models/veo-3/operations/abc123","done":false}`), nil
	})

	op, err := client.StartVideo(context.Background(), "k", "veo-3", VideoRequest{Prompt: "sunset", AspectRatio: "16:9"})
	if err != nil {
		t.Fatalf("StartVideo error: %v", err)
	}
	if op.Name != "models/veo-3/operations/abc123" || op.Done {
		t.Fatalf("op = %+v", op)
	}
}

func TestGetOperationCompleted(t *testing.T) {
	client := testClient(func(r *http.Request) (*http.Response, error) {
		body := `{"name":"models/veo-3/operations/abc123","done":true,` +
			`"response":{"generateVideoResponse":{"generatedSamples":[{"video":{"uri":"files/out.mp4"}}]}}}`
		return jsonResponse(200, body), nil
	})

	op, err := client.GetOperation(context.Background(), "k", "models/veo-3/operations/abc123")
	if err != nil {
		t.Fatalf("GetOperation error: %v", err)
	}
	if !op.Done || len(op.URIs) != 1 || op.URIs[0] != "files/out.mp4" {
		t.Fatalf("op = %+v", op)
	}
}

func TestGetOperationErrorSurfaces(t *testing.T) {
	client := testClient(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"name":"op","done":true,"error":{"status":"INVALID_ARGUMENT","message":"bad prompt"}}`), nil
	})

	_, err := client.GetOperation(context.Background(), "k", "op")
	if err == nil || !strings.Contains(err.Error(), "bad prompt") {
		t.Fatalf("err = %v, want operation error", err)
	}
}
