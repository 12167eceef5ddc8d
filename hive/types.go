// Package hive holds the domain types shared across the import subsystem:
// the shapes of tables, partitions, shards, and the workers that build
// them. Nothing in this package talks to the network; it's pure data plus
// the coded errors in errors.go.
package hive

// TableID uniquely identifies a table being imported.
type TableID uint64

// SourceName identifies the external system a table is imported from. Only
// SourceHive is accepted by the orchestrator in this revision.
type SourceName string

const SourceHive SourceName = "hive"

// ShardID is assigned by the shard-manager catalog; one per chunk.
type ShardID uint64

// ImportField describes one column to import: where it comes from in the
// source and what it should be called/typed as in the target. Immutable
// once constructed.
type ImportField struct {
	SourceColumn string `json:"sourceColumn"`
	TargetColumn string `json:"targetColumn"`
	TargetType   string `json:"targetType"`
}

// Partition is a named slice of a source table.
type Partition struct {
	Name string
}

// ShardImport is the exact JSON body PUT to a worker to initiate shard
// creation. Its encoding must round-trip with the worker, so field names
// are part of the wire contract.
type ShardImport struct {
	SourceName SourceName    `json:"sourceName"`
	Chunk      []byte        `json:"chunk"`
	Fields     []ImportField `json:"fields"`
}

// Node is a worker in the cluster: an HTTP-reachable address plus a stable
// identifier used when committing a shard to the catalog.
type Node struct {
	Address        Address
	NodeIdentifier string
}
