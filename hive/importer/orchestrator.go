// Package importer implements the Import Orchestrator: a three-stage
// pipeline that discovers partitions, decomposes them into chunks, assigns
// each chunk to a worker node, dispatches a remote creation RPC, and polls
// until the worker reports completion, at which point the shard is
// committed into the shard-manager catalog.
package importer

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/shardloader/hiveimport/hive"
	"github.com/shardloader/hiveimport/hive/importer/catalog"
	"github.com/shardloader/hiveimport/hive/importer/events"
	"github.com/shardloader/hiveimport/hive/importer/source"
	"github.com/shardloader/hiveimport/hive/importer/worker"
	"github.com/shardloader/hiveimport/hive/importer/workerqueue"
	"github.com/shardloader/hiveimport/logger"
)

// Orchestrator owns the lifecycle of importTable calls: table/partition
// registration with the catalog, chunk fan-out, worker assignment, and
// shard commit. A single Orchestrator multiplexes any number of concurrent
// ImportTable calls across its three pools.
type Orchestrator struct {
	Catalog      catalog.Client
	Source       source.Client
	Workers      *workerqueue.Queue
	WorkerClient worker.Client
	Events       events.Publisher

	cfg     Config
	logger  logger.Logger
	metrics *Metrics

	partitionPool *pool
	chunkPool     *pool
	shardPool     *pool

	stopCtx    context.Context
	stopCancel context.CancelFunc
	stopOnce   sync.Once
}

// New returns an Orchestrator wired to the given collaborators. metrics may
// be nil, in which case metrics collection is a no-op.
func New(catalogClient catalog.Client, sourceClient source.Client, workers *workerqueue.Queue, workerClient worker.Client, metrics *Metrics, cfg Config) *Orchestrator {
	cfg = cfg.withDefaults()

	stopCtx, stopCancel := context.WithCancel(context.Background())

	return &Orchestrator{
		Catalog:      catalogClient,
		Source:       sourceClient,
		Workers:      workers,
		WorkerClient: workerClient,

		cfg:     cfg,
		logger:  cfg.Logger,
		metrics: metrics,

		partitionPool: newPool(cfg.PartitionParallelism, cfg.PartitionParallelism),
		chunkPool:     newPool(cfg.ChunkParallelism, cfg.ChunkParallelism),
		shardPool:     newPool(cfg.ShardPollParallelism, cfg.ShardPollParallelism),

		stopCtx:    stopCtx,
		stopCancel: stopCancel,
	}
}

// ImportTable registers the table with the catalog, lists its partitions
// from the source, and schedules one PartitionJob per partition. It returns
// as soon as the partitions are scheduled; the import itself proceeds
// asynchronously across the orchestrator's pools.
func (o *Orchestrator) ImportTable(ctx context.Context, tableID hive.TableID, sourceName hive.SourceName, database, table string, fields []hive.ImportField) error {
	if len(fields) == 0 {
		return hive.NewErrInvalidArgument("fields is empty")
	}
	if sourceName != hive.SourceHive {
		return hive.NewErrInvalidArgument("bad source name: " + string(sourceName))
	}

	if err := o.Catalog.CreateImportTable(ctx, tableID, sourceName, database, table); err != nil {
		return hive.NewErrCatalog(err)
	}

	partitions, err := o.Source.PartitionNames(ctx, database, table)
	if err != nil {
		return hive.NewErrSourceMetadata(err)
	}
	o.logger.Debugf("scheduling %d partitions: table %d", len(partitions), tableID)

	for _, partitionName := range partitions {
		supplier := source.NewSupplier(o.Source, database, table, partitionName)
		job := &partitionJob{
			o:             o,
			tableID:       tableID,
			sourceName:    sourceName,
			partitionName: partitionName,
			supplier:      supplier,
			fields:        fields,
		}
		if err := o.partitionPool.submit("importTable", job.run); err != nil {
			return err
		}
	}

	return nil
}

// TableImportSpec describes one ImportTable call, for use with ImportTables.
type TableImportSpec struct {
	TableID    hive.TableID
	SourceName hive.SourceName
	Database   string
	Table      string
	Fields     []hive.ImportField
}

// ImportTables calls ImportTable once per spec, concurrently. It returns the
// first error encountered, after waiting for every call to return; a
// failure on one table's registration does not cancel the others' in-flight
// ImportTable calls, since each spec is independent of the rest.
func (o *Orchestrator) ImportTables(ctx context.Context, specs []TableImportSpec) error {
	var g errgroup.Group
	for _, spec := range specs {
		spec := spec
		g.Go(func() error {
			return o.ImportTable(ctx, spec.TableID, spec.SourceName, spec.Database, spec.Table, spec.Fields)
		})
	}
	return g.Wait()
}

// Stop performs an orderly shutdown: no new work is accepted, in-flight
// jobs run to their next observable state transition and then exit, and
// delayed ShardJob ticks scheduled after Stop returns are not executed. Stop
// does not wait for outstanding polls to finish; the catalog retains any
// uncommitted shard records.
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() {
		o.stopCancel()
		o.partitionPool.stop()
		o.chunkPool.stop()
		o.shardPool.stop()
	})
}

// Wait blocks until all three pools' worker goroutines have exited. Intended
// for tests; production callers generally don't need to wait since Stop is
// itself async with respect to in-flight polls.
func (o *Orchestrator) Wait() {
	o.partitionPool.wait()
	o.chunkPool.wait()
	o.shardPool.wait()
}
