package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"genconsole/internal/dispatch"
	"genconsole/internal/domain"
)

// TextGenerator is the slice of the backend client the enricher needs.
type TextGenerator interface {
	GenerateText(ctx context.Context, key, model, prompt string) (string, error)
}

// Enricher derives stock-style metadata (title, description, keywords,
// category) for an artifact by running one text-class dispatch per artifact.
type Enricher struct {
	Client     TextGenerator
	Dispatcher *dispatch.Dispatcher
}

const maxKeywords = 49

var titleCaser = cases.Title(language.English)

// Categories the enrichment prompt may choose from. Free-form responses are
// mapped onto this list; anything unrecognized falls back to "Other".
var Categories = []string{
	"Animals", "Architecture", "Business", "Food", "Landscape",
	"Lifestyle", "Nature", "People", "Technology", "Travel", "Other",
}

// Enrich asks the text model to describe the originating prompt and parses
// the response into normalized metadata.
func (e *Enricher) Enrich(ctx context.Context, originatingPrompt string) (domain.Metadata, error) {
	instruction := buildInstruction(originatingPrompt)
	raw, err := dispatch.Do(ctx, e.Dispatcher, func(key, model string) func(context.Context) (string, error) {
		return func(ctx context.Context) (string, error) {
			return e.Client.GenerateText(ctx, key, model, instruction)
		}
	})
	if err != nil {
		return domain.Metadata{}, err
	}
	meta, err := Parse(raw)
	if err != nil {
		return domain.Metadata{}, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}
	return meta, nil
}

func buildInstruction(prompt string) string {
	var b strings.Builder
	b.WriteString("Write stock photo metadata for an asset generated from this prompt:\n")
	b.WriteString(strings.TrimSpace(prompt))
	b.WriteString("\n\nRespond with JSON only, no prose, using exactly these fields: ")
	b.WriteString(`{"title": string, "description": string, "keywords": [string], "category": string}. `)
	b.WriteString("Pick the category from: ")
	b.WriteString(strings.Join(Categories, ", "))
	b.WriteString(".")
	return b.String()
}

// Parse extracts and normalizes a metadata payload from a model response.
// Models wrap JSON in markdown fences often enough that the fences are
// stripped before decoding.
func Parse(raw string) (domain.Metadata, error) {
	payload := extractJSON(raw)
	var meta domain.Metadata
	if err := json.Unmarshal([]byte(payload), &meta); err != nil {
		return domain.Metadata{}, fmt.Errorf("decode metadata: %w", err)
	}
	meta.Title = titleCaser.String(strings.TrimSpace(meta.Title))
	meta.Description = strings.TrimSpace(meta.Description)
	meta.Keywords = normalizeKeywords(meta.Keywords)
	meta.Category = normalizeCategory(meta.Category)
	if meta.Title == "" {
		return domain.Metadata{}, fmt.Errorf("metadata missing title")
	}
	return meta, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		if idx := strings.LastIndex(raw, "```"); idx >= 0 {
			raw = raw[:idx]
		}
		raw = strings.TrimSpace(raw)
	}
	// Fall back to the outermost braces when the model adds prose around it.
	if !strings.HasPrefix(raw, "{") {
		start := strings.Index(raw, "{")
		end := strings.LastIndex(raw, "}")
		if start >= 0 && end > start {
			raw = raw[start : end+1]
		}
	}
	return raw
}

func normalizeKeywords(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	var out []string
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
		if len(out) >= maxKeywords {
			break
		}
	}
	return out
}

func normalizeCategory(category string) string {
	category = strings.TrimSpace(category)
	for _, c := range Categories {
		if strings.EqualFold(c, category) {
			return c
		}
	}
	return "Other"
}
