package importer

import (
	"github.com/shardloader/hiveimport/hive"
	"github.com/shardloader/hiveimport/hive/importer/worker"
)

// chunkJob acquires a worker node for one shard and initiates its remote
// creation. On a rejected or unreachable initiate it releases the node and
// retries the same shard, never re-deriving shardID or chunk from the
// catalog or source. On acceptance it hands off to a shardJob that polls for
// completion.
type chunkJob struct {
	o             *Orchestrator
	tableID       hive.TableID
	partitionName string
	shardID       hive.ShardID
	shardImport   hive.ShardImport
}

func (j *chunkJob) run() {
	node, err := j.o.Workers.Acquire(j.o.stopCtx)
	if err != nil {
		j.o.logger.Debugf("shard %d: acquiring worker: %v", j.shardID, err)
		return
	}
	j.o.metrics.acquired()

	result := j.o.WorkerClient.Initiate(j.o.stopCtx, node, j.shardID, j.shardImport)

	switch result {
	case worker.Accepted:
		j.o.metrics.initiateOutcome("accepted")
		sj := &shardJob{
			o:             j.o,
			node:          node,
			tableID:       j.tableID,
			partitionName: j.partitionName,
			shardID:       j.shardID,
		}
		j.o.scheduleShardJob(sj, j.o.cfg.InitialShardPollDelay)

	case worker.Rejected:
		j.o.metrics.initiateOutcome("rejected")
		j.o.Workers.Release(node)
		j.o.metrics.released()
		j.o.logger.Warnf("shard %d: initiate rejected by %s, retrying", j.shardID, node.NodeIdentifier)
		j.o.retryChunkJob(j)

	default:
		j.o.metrics.initiateOutcome("transport_error")
		j.o.Workers.Release(node)
		j.o.metrics.released()
		j.o.logger.Warnf("shard %d: initiate transport error against %s, retrying", j.shardID, node.NodeIdentifier)
		j.o.retryChunkJob(j)
	}
}

// retryChunkJob resubmits j to the chunk pool. submit is called from a
// dedicated goroutine rather than inline: the chunk pool's job channel is
// sized to its worker count, so submit blocks once it's full. Calling it
// directly from a chunkJob's own pool-worker goroutine would, under
// sustained rejections across every worker, park all of the pool's
// goroutines inside submit with none left to drain the channel — a
// deadlock. Parking a throwaway goroutine instead preserves the source's
// unbounded re-queue semantics without consuming a pool worker to do it.
// A stopped orchestrator silently drops the retry.
func (o *Orchestrator) retryChunkJob(j *chunkJob) {
	go func() {
		if err := o.chunkPool.submit("chunkJob.retry", j.run); err != nil {
			o.logger.Debugf("shard %d: retry dropped: %v", j.shardID, err)
		}
	}()
}
