// Package corpus reads tokenized documents from files, PostgreSQL, Kafka or
// object storage and feeds them once into an index build.
package corpus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/citation-index/internal/indexer/tokenizer"
)

// Document is one corpus entry. Tokens, when present, are indexed exactly as
// given, repeats included. Otherwise Text is tokenized into a token set.
type Document struct {
	ID     string   `json:"id"`
	Tokens []string `json:"tokens,omitempty"`
	Text   string   `json:"text,omitempty"`
}

// IndexTokens returns the tokens to record for d. opts apply only when Text
// has to be tokenized.
func (d Document) IndexTokens(opts ...tokenizer.Option) []string {
	if len(d.Tokens) > 0 || d.Text == "" {
		return d.Tokens
	}
	return tokenizer.Set(d.Text, opts...)
}

// UnmarshalJSON accepts ids encoded as JSON strings or numbers.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID     json.RawMessage `json:"id"`
		Tokens []string        `json:"tokens"`
		Text   string          `json:"text"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id, err := decodeID(raw.ID)
	if err != nil {
		return err
	}
	d.ID, d.Tokens, d.Text = id, raw.Tokens, raw.Text
	return nil
}

func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", fmt.Errorf("document id is required")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("decoding document id: %w", err)
		}
		if s == "" {
			return "", fmt.Errorf("document id is required")
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("document id must be a string or number: %w", err)
	}
	return n.String(), nil
}

// Source yields every document of a corpus exactly once. Each stops early
// and returns fn's error if fn fails.
type Source interface {
	Each(ctx context.Context, fn func(Document) error) error
}

// SliceSource serves documents held in memory.
type SliceSource []Document

func (s SliceSource) Each(ctx context.Context, fn func(Document) error) error {
	for _, doc := range s {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
	}
	return nil
}
