package corpus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/citation-index/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/citation-index/pkg/errors"
)

func TestObjectSourceMissingObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client, err := NewObjectClient(config.ObjectStoreConfig{
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		AccessKey: "minio",
		SecretKey: "minio123",
		Region:    "us-east-1",
	})
	require.NoError(t, err)

	err = NewObjectSource(client, "corpora", "papers.jsonl").Each(context.Background(), func(Document) error {
		t.Fatal("no document expected")
		return nil
	})
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
}
