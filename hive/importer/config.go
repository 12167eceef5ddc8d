package importer

import (
	"time"

	"github.com/shardloader/hiveimport/logger"
)

// Config controls the orchestrator's parallelism budgets and polling
// cadence. Zero values are replaced with the reference defaults by New.
type Config struct {
	PartitionParallelism  int           `toml:"partition-parallelism"`
	ChunkParallelism      int           `toml:"chunk-parallelism"`
	ShardPollParallelism  int           `toml:"shard-poll-parallelism"`
	ShardPollInterval     time.Duration `toml:"shard-poll-interval"`
	InitialShardPollDelay time.Duration `toml:"initial-shard-poll-delay"`

	Logger logger.Logger `toml:"-"`
}

// DefaultConfig returns the reference configuration from the spec: 50/50/50
// workers, 1 second polling.
func DefaultConfig() Config {
	return Config{
		PartitionParallelism:  50,
		ChunkParallelism:      50,
		ShardPollParallelism:  50,
		ShardPollInterval:     time.Second,
		InitialShardPollDelay: time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.PartitionParallelism <= 0 {
		c.PartitionParallelism = d.PartitionParallelism
	}
	if c.ChunkParallelism <= 0 {
		c.ChunkParallelism = d.ChunkParallelism
	}
	if c.ShardPollParallelism <= 0 {
		c.ShardPollParallelism = d.ShardPollParallelism
	}
	if c.ShardPollInterval <= 0 {
		c.ShardPollInterval = d.ShardPollInterval
	}
	if c.InitialShardPollDelay <= 0 {
		c.InitialShardPollDelay = d.InitialShardPollDelay
	}
	if c.Logger == nil {
		c.Logger = logger.NopLogger
	}
	return c
}
