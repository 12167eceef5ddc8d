package source_test

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shardloader/hiveimport/hive/importer/source"
)

func TestPartitionNames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/partitions", r.URL.Path)
		assert.Equal(t, "db", r.URL.Query().Get("db"))
		assert.Equal(t, "t", r.URL.Query().Get("table"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"partitions":["p1","p2"]}`))
	}))
	defer srv.Close()

	c := source.NewHTTPClient(srv.URL, nil)
	names, err := c.PartitionNames(context.Background(), "db", "t")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, names)
}

func TestChunks(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("hello"))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chunks", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"chunks":["` + encoded + `"]}`))
	}))
	defer srv.Close()

	c := source.NewHTTPClient(srv.URL, nil)
	chunks, err := c.Chunks(context.Background(), "db", "t", "p1")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello", string(chunks[0]))
}

func TestSupplier_Get(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("x"))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"chunks":["` + encoded + `"]}`))
	}))
	defer srv.Close()

	c := source.NewHTTPClient(srv.URL, nil)
	supplier := source.NewSupplier(c, "db", "t", "p1")
	chunks, err := supplier.Get(context.Background())
	require.NoError(t, err)
	require.Len(t, chunks, 1)
}
