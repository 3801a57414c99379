// Package extract recovers a JSON array from free-form model replies.
//
// The model is asked for bare JSON but routinely wraps it in prose or code
// fences. Extraction takes every text segment in order, strips fences, and
// keeps the greedy span from the first '[' to the last ']'. Two top-level
// arrays in one reply, or a ']' inside a string followed by prose holding a
// '[', defeat the span; such replies surface as ErrMalformedJSON.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"ipo-radar/observability"
	"ipo-radar/services"
)

// ErrNoValidData is the umbrella for every extraction failure
var ErrNoValidData = errors.New("no valid data found")

var (
	ErrNoTextContent = fmt.Errorf("%w: reply has no text content", ErrNoValidData)
	ErrNoArrayFound  = fmt.Errorf("%w: no JSON array in reply", ErrNoValidData)
	ErrMalformedJSON = fmt.Errorf("%w: bracketed span is not valid JSON", ErrNoValidData)
)

const segmentText = "text"

var fences = strings.NewReplacer("```json", "", "```", "")

// JoinText concatenates the non-empty text segments with newlines
func JoinText(segments []services.Segment) (string, error) {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg.Type != segmentText || seg.Text == "" {
			continue
		}
		parts = append(parts, seg.Text)
	}
	if len(parts) == 0 {
		return "", ErrNoTextContent
	}
	return strings.Join(parts, "\n"), nil
}

// Clean removes code fence markers and surrounding whitespace
func Clean(text string) string {
	return strings.TrimSpace(fences.Replace(text))
}

// BracketSpan returns text from the first '[' through the last ']'
func BracketSpan(text string) (string, bool) {
	start := strings.IndexByte(text, '[')
	if start < 0 {
		return "", false
	}
	end := strings.LastIndexByte(text, ']')
	if end < start {
		return "", false
	}
	return text[start : end+1], true
}

// Array cleans text and returns the bracketed span as raw JSON
func Array(text string) (json.RawMessage, error) {
	span, ok := BracketSpan(Clean(text))
	if !ok {
		return nil, ErrNoArrayFound
	}
	if !json.Valid([]byte(span)) {
		return nil, ErrMalformedJSON
	}
	return json.RawMessage(span), nil
}

// Records runs the whole pipeline and decodes the array into T values.
// Fields are not checked; absent ones decode to zero values. Each element is
// decoded on its own, so an entry of the wrong shape (a string, a number)
// yields a zero or partial T and is left for validation to flag rather than
// failing the batch.
func Records[T any](segments []services.Segment) ([]T, error) {
	text, err := JoinText(segments)
	if err != nil {
		return nil, err
	}

	raw, err := Array(text)
	if err != nil {
		return nil, err
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	out := make([]T, 0, len(elems))
	for i, elem := range elems {
		var v T
		if err := json.Unmarshal(elem, &v); err != nil {
			observability.Debug("element decoded leniently", "index", i, "error", err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Reason returns a metrics label for an extraction error
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrNoTextContent):
		return "no_text_content"
	case errors.Is(err, ErrNoArrayFound):
		return "no_array_found"
	case errors.Is(err, ErrMalformedJSON):
		return "malformed_json"
	default:
		return "unknown"
	}
}
