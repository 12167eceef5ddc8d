// Package worker is a typed HTTP client for the two endpoints a worker node
// exposes: initiate shard creation and poll for its completion. Status-code
// semantics here are bit-exact per the spec: 202 on PUT means accepted, 202
// on GET means in progress, 200 on GET means done, anything else is a
// rejection/unexpected status.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shardloader/hiveimport/hive"
)

// InitiateResult is the outcome of a PUT /v1/shard/{id} call.
type InitiateResult int

const (
	Accepted InitiateResult = iota
	Rejected
	TransportError
)

// PollResult is the outcome of a GET /v1/shard/{id} call.
type PollResult int

const (
	InProgress PollResult = iota
	Done
	PollTransportError
	UnexpectedStatus
)

// Client issues the initiate/poll RPCs against a worker node.
type Client interface {
	Initiate(ctx context.Context, node hive.Node, shardID hive.ShardID, shardImport hive.ShardImport) InitiateResult
	Poll(ctx context.Context, node hive.Node, shardID hive.ShardID) PollResult
}

type httpClient struct {
	http *http.Client
}

// NewClient returns an HTTP-backed Client.
func NewClient(hc *http.Client) Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &httpClient{http: hc}
}

func shardURL(node hive.Node, shardID hive.ShardID) string {
	return fmt.Sprintf("%s/v1/shard/%d", node.Address.WithScheme("http"), shardID)
}

func (c *httpClient) Initiate(ctx context.Context, node hive.Node, shardID hive.ShardID, shardImport hive.ShardImport) InitiateResult {
	body, err := json.Marshal(shardImport)
	if err != nil {
		// Not expected to happen with well-formed ImportFields, but an
		// encoding failure is not a transport failure, so it is reported
		// as Rejected.
		return Rejected
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, shardURL(node, shardID), bytes.NewReader(body))
	if err != nil {
		return TransportError
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return TransportError
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return Rejected
	}
	return Accepted
}

func (c *httpClient) Poll(ctx context.Context, node hive.Node, shardID hive.ShardID) PollResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, shardURL(node, shardID), nil)
	if err != nil {
		return PollTransportError
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return PollTransportError
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusAccepted:
		return InProgress
	case http.StatusOK:
		return Done
	default:
		return UnexpectedStatus
	}
}
