package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/teemow/inboxsort/internal/email"
)

// Item is one normalised element of the model's answer. ID is nil when the
// model gave no usable id.
type Item struct {
	ID       *string
	From     string
	Snippet  string
	Category string
}

// Parse extracts and decodes the JSON array in text and normalises each
// element. A nil extract parses the whole text.
func Parse(text string, extract Extractor) ([]Item, error) {
	candidate := text
	if extract != nil {
		if c, ok := extract(text); ok {
			candidate = c
		}
	}

	dec := json.NewDecoder(strings.NewReader(candidate))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode model output: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON value")
	}

	elems, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a JSON array, got %T", v)
	}
	return Normalize(elems), nil
}

// Normalize maps decoded JSON elements to Items:
//   - id: a non-empty string, or a number rendered as text; otherwise nil
//   - from, snippet: a string; otherwise ""
//   - category: a string trimmed of surrounding space; "General" when
//     missing, not a string, or blank
//
// Elements that are not objects yield an Item with only defaults.
func Normalize(elems []any) []Item {
	items := make([]Item, 0, len(elems))
	for _, e := range elems {
		obj, _ := e.(map[string]any)
		items = append(items, Item{
			ID:       normalizeID(obj["id"]),
			From:     stringOrEmpty(obj["from"]),
			Snippet:  stringOrEmpty(obj["snippet"]),
			Category: normalizeCategory(obj["category"]),
		})
	}
	return items
}

func normalizeID(v any) *string {
	switch id := v.(type) {
	case string:
		if id == "" {
			return nil
		}
		return &id
	case json.Number:
		s := id.String()
		return &s
	case float64:
		s := fmt.Sprint(id)
		return &s
	}
	return nil
}

func stringOrEmpty(v any) string {
	s, _ := v.(string)
	return s
}

func normalizeCategory(v any) string {
	s, _ := v.(string)
	if s = strings.TrimSpace(s); s == "" {
		return email.DefaultCategory
	}
	return s
}
