package metadata

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"genconsole/internal/dispatch"
	"genconsole/internal/domain"
)

type fakeTextGenerator struct {
	response string
	err      error
	calls    int
}

func (f *fakeTextGenerator) GenerateText(ctx context.Context, key, model, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func testDispatcher() *dispatch.Dispatcher {
	return &dispatch.Dispatcher{
		Keys:   dispatch.NewKeyPool([]string{"k"}),
		Models: dispatch.NewFallback("", []string{"gemini-2.5-flash"}),
		Retry: dispatch.RetryPolicy{
			MaxAttempts: 2,
			BaseDelay:   time.Millisecond,
			Sleep:       func(context.Context, time.Duration) error { return nil },
		},
	}
}

func TestEnrichParsesFencedJSON(t *testing.T) {
	gen := &fakeTextGenerator{response: "```json\n" +
		`{"title":"sunset over the bay","description":"Warm light.","keywords":["Sunset","sunset","Bay",""],"category":"landscape"}` +
		"\n```"}
	e := &Enricher{Client: gen, Dispatcher: testDispatcher()}

	meta, err := e.Enrich(context.Background(), "a sunset over the bay")
	if err != nil {
		t.Fatalf("Enrich error: %v", err)
	}
	if meta.Title != "Sunset Over The Bay" {
		t.Fatalf("Title = %q", meta.Title)
	}
	if len(meta.Keywords) != 2 || meta.Keywords[0] != "sunset" || meta.Keywords[1] != "bay" {
		t.Fatalf("Keywords = %v, want deduplicated lowercase", meta.Keywords)
	}
	if meta.Category != "Landscape" {
		t.Fatalf("Category = %q, want canonical Landscape", meta.Category)
	}
}

func TestEnrichUnknownCategoryFallsBack(t *testing.T) {
	gen := &fakeTextGenerator{response: `{"title":"t","description":"d","keywords":["k"],"category":"weird"}`}
	e := &Enricher{Client: gen, Dispatcher: testDispatcher()}

	meta, err := e.Enrich(context.Background(), "p")
	if err != nil {
		t.Fatalf("Enrich error: %v", err)
	}
	if meta.Category != "Other" {
		t.Fatalf("Category = %q, want Other", meta.Category)
	}
}

func TestEnrichMalformedResponse(t *testing.T) {
	gen := &fakeTextGenerator{response: "sorry, I cannot help with that"}
	e := &Enricher{Client: gen, Dispatcher: testDispatcher()}

	_, err := e.Enrich(context.Background(), "p")
	if !errors.Is(err, domain.ErrProviderFailure) {
		t.Fatalf("err = %v, want ErrProviderFailure", err)
	}
}

func TestParseSurroundingProse(t *testing.T) {
	meta, err := Parse(`Here you go: {"title":"hi","description":"","keywords":[],"category":"Food"} hope it helps`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if meta.Title != "Hi" || meta.Category != "Food" {
		t.Fatalf("meta = %+v", meta)
	}
}

func TestWriteCSV(t *testing.T) {
	artifacts := []domain.Artifact{
		{
			ID:         "a1",
			StorageKey: "batches/b1/01.png",
			Metadata: domain.Metadata{
				Title:       "Title One",
				Description: "Desc, with comma",
				Keywords:    []string{"one", "two"},
				Category:    "Nature",
			},
		},
		{ID: "a2"},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, artifacts); err != nil {
		t.Fatalf("WriteCSV error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want header + 2 rows", len(lines))
	}
	if lines[0] != "Filename,Title,Description,Keywords,Category" {
		t.Fatalf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "01.png,") {
		t.Fatalf("row 1 = %q, want basename filename", lines[1])
	}
	if !strings.Contains(lines[1], `"Desc, with comma"`) {
		t.Fatalf("row 1 = %q, want quoted description", lines[1])
	}
	if !strings.HasPrefix(lines[2], "a2,") {
		t.Fatalf("row 2 = %q, want artifact id fallback", lines[2])
	}
}
