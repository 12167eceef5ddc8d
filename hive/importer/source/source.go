// Package source wraps the external Hive-compatible metadata and chunk
// producer. The producer itself is out of scope for this module; this
// package only defines the interface the orchestrator consumes and a thin
// HTTP client against it.
package source

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shardloader/hiveimport/errors"
)

// Client lists partitions for a table and materialises the chunk blobs for
// one partition. Both operations may fail transiently.
type Client interface {
	PartitionNames(ctx context.Context, database, table string) ([]string, error)
	Chunks(ctx context.Context, database, table, partition string) ([][]byte, error)
}

// Supplier is bound to one (database, table, partition) and, on demand,
// returns the full, materialised list of chunk blobs for it. It carries no
// retry logic of its own; a failure propagates to the caller (PartitionJob),
// which at this revision abandons the partition rather than retrying.
type Supplier struct {
	client    Client
	database  string
	table     string
	partition string
}

// NewSupplier returns a Supplier bound to the given partition.
func NewSupplier(client Client, database, table, partition string) *Supplier {
	return &Supplier{
		client:    client,
		database:  database,
		table:     table,
		partition: partition,
	}
}

// Get fetches the full chunk list for this supplier's bound partition.
func (s *Supplier) Get(ctx context.Context) ([][]byte, error) {
	return s.client.Chunks(ctx, s.database, s.table, s.partition)
}

// httpClient is an HTTP implementation of Client against a Hive metadata
// sidecar.
type httpClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient returns a Client that talks to a Hive metadata sidecar at
// baseURL (e.g. "http://hive-meta:9000").
func NewHTTPClient(baseURL string, hc *http.Client) Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &httpClient{baseURL: baseURL, http: hc}
}

type partitionsResponse struct {
	Partitions []string `json:"partitions"`
}

func (c *httpClient) PartitionNames(ctx context.Context, database, table string) ([]string, error) {
	u := fmt.Sprintf("%s/v1/partitions?%s", c.baseURL, url.Values{
		"db":    {database},
		"table": {table},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building partitions request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "requesting partition names")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("partitions: unexpected status %d", resp.StatusCode)
	}

	var out partitionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.Wrap(err, "decoding partitions response")
	}
	return out.Partitions, nil
}

type chunksResponse struct {
	Chunks []string `json:"chunks"` // base64-encoded
}

func (c *httpClient) Chunks(ctx context.Context, database, table, partition string) ([][]byte, error) {
	u := fmt.Sprintf("%s/v1/chunks?%s", c.baseURL, url.Values{
		"db":        {database},
		"table":     {table},
		"partition": {partition},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building chunks request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "requesting chunks")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("chunks: unexpected status %d", resp.StatusCode)
	}

	var out chunksResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.Wrap(err, "decoding chunks response")
	}

	chunks := make([][]byte, len(out.Chunks))
	for i, encoded := range out.Chunks {
		b, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, errors.Wrap(err, "decoding chunk")
		}
		chunks[i] = b
	}
	return chunks, nil
}
