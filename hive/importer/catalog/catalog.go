// Package catalog is a facade over the shard-manager catalog: table/
// partition registration and shard commits. The catalog service itself is
// out of scope for this module; this package defines the interface the
// orchestrator consumes and an HTTP client against it.
package catalog

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shardloader/hiveimport/errors"
	"github.com/shardloader/hiveimport/hive"
)

// Client registers tables and partitions with the catalog and commits
// completed shards. CreateImportPartition returns one shard id per chunk,
// index-aligned.
type Client interface {
	CreateImportTable(ctx context.Context, tableID hive.TableID, sourceName hive.SourceName, database, table string) error
	CreateImportPartition(ctx context.Context, tableID hive.TableID, partitionName string, chunks [][]byte) ([]hive.ShardID, error)
	CommitShard(ctx context.Context, shardID hive.ShardID, nodeIdentifier string) error
}

type httpClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient returns a Client that talks to a shard-manager catalog
// service at baseURL.
func NewHTTPClient(baseURL string, hc *http.Client) Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &httpClient{baseURL: baseURL, http: hc}
}

type createImportTableRequest struct {
	TableID    hive.TableID    `json:"tableId"`
	SourceName hive.SourceName `json:"sourceName"`
	Database   string          `json:"databaseName"`
	Table      string          `json:"tableName"`
}

func (c *httpClient) CreateImportTable(ctx context.Context, tableID hive.TableID, sourceName hive.SourceName, database, table string) error {
	req := createImportTableRequest{
		TableID:    tableID,
		SourceName: sourceName,
		Database:   database,
		Table:      table,
	}
	return c.post(ctx, "/create-import-table", req, nil)
}

type createImportPartitionRequest struct {
	TableID       hive.TableID `json:"tableId"`
	PartitionName string       `json:"partitionName"`
	Chunks        []string     `json:"chunks"` // base64-encoded
}

type createImportPartitionResponse struct {
	ShardIDs []hive.ShardID `json:"shardIds"`
}

func (c *httpClient) CreateImportPartition(ctx context.Context, tableID hive.TableID, partitionName string, chunks [][]byte) ([]hive.ShardID, error) {
	encoded := make([]string, len(chunks))
	for i, chunk := range chunks {
		encoded[i] = base64.StdEncoding.EncodeToString(chunk)
	}

	req := createImportPartitionRequest{
		TableID:       tableID,
		PartitionName: partitionName,
		Chunks:        encoded,
	}

	var out createImportPartitionResponse
	if err := c.post(ctx, "/create-import-partition", req, &out); err != nil {
		return nil, err
	}
	if len(out.ShardIDs) != len(chunks) {
		return nil, errors.Errorf("catalog returned %d shard ids for %d chunks", len(out.ShardIDs), len(chunks))
	}
	return out.ShardIDs, nil
}

type commitShardRequest struct {
	ShardID        hive.ShardID `json:"shardId"`
	NodeIdentifier string       `json:"nodeIdentifier"`
}

func (c *httpClient) CommitShard(ctx context.Context, shardID hive.ShardID, nodeIdentifier string) error {
	req := commitShardRequest{
		ShardID:        shardID,
		NodeIdentifier: nodeIdentifier,
	}
	return c.post(ctx, "/commit-shard", req, nil)
}

func (c *httpClient) post(ctx context.Context, path string, body, out interface{}) error {
	postBody, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "marshalling request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(postBody))
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("posting %s", path))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("%s: status code %d", path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decoding response")
	}
	return nil
}
