package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/citation-index/internal/indexer/tokenizer"
)

func TestDocumentUnmarshalIDs(t *testing.T) {
	cases := map[string]string{
		`{"id":"p-1","tokens":["a"]}`: "p-1",
		`{"id":42,"tokens":["a"]}`:    "42",
		`{"id": 7 , "text":"x"}`:      "7",
	}
	for raw, want := range cases {
		var doc Document
		require.NoError(t, json.Unmarshal([]byte(raw), &doc), raw)
		assert.Equal(t, want, doc.ID, raw)
	}
}

func TestDocumentUnmarshalRejectsMissingID(t *testing.T) {
	for _, raw := range []string{`{"tokens":["a"]}`, `{"id":null}`, `{"id":""}`, `{"id":true}`} {
		var doc Document
		assert.Error(t, json.Unmarshal([]byte(raw), &doc), raw)
	}
}

func TestIndexTokensPrefersExplicitTokens(t *testing.T) {
	doc := Document{ID: "1", Tokens: []string{"dup", "dup"}, Text: "ignored text"}
	assert.Equal(t, []string{"dup", "dup"}, doc.IndexTokens())
}

func TestIndexTokensFromText(t *testing.T) {
	doc := Document{ID: "1", Text: "Citation graphs and citation networks"}
	assert.Equal(t, []string{"citat", "graph", "network"}, doc.IndexTokens())
}

func TestIndexTokensWithoutStemming(t *testing.T) {
	doc := Document{ID: "1", Text: "Citation graphs and citation networks"}
	assert.Equal(t, []string{"citation", "graphs", "networks"}, doc.IndexTokens(tokenizer.WithoutStemming()))
}

func TestIndexTokensEmpty(t *testing.T) {
	assert.Empty(t, Document{ID: "1"}.IndexTokens())
}

func TestSliceSourceStopsOnError(t *testing.T) {
	src := SliceSource{{ID: "1"}, {ID: "2"}, {ID: "3"}}
	stop := errors.New("stop")

	var seen []string
	err := src.Each(context.Background(), func(doc Document) error {
		seen = append(seen, doc.ID)
		if doc.ID == "2" {
			return stop
		}
		return nil
	})

	assert.ErrorIs(t, err, stop)
	assert.Equal(t, []string{"1", "2"}, seen)
}
