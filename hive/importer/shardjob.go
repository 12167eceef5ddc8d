package importer

import (
	"time"

	"github.com/shardloader/hiveimport/hive"
	"github.com/shardloader/hiveimport/hive/importer/events"
	"github.com/shardloader/hiveimport/hive/importer/worker"
)

// shardJob polls a worker node for a shard's completion and commits it to
// the catalog once, and only once, the worker reports Done. Any other poll
// outcome reschedules the same job after the configured interval without
// touching the catalog; a commit failure reschedules too, since commits are
// safe to retry and idempotency is the catalog's responsibility.
type shardJob struct {
	o             *Orchestrator
	node          hive.Node
	tableID       hive.TableID
	partitionName string
	shardID       hive.ShardID
}

func (j *shardJob) run() {
	result := j.o.WorkerClient.Poll(j.o.stopCtx, j.node, j.shardID)

	switch result {
	case worker.Done:
		j.o.metrics.pollOutcome("done")
		j.commit()

	case worker.InProgress:
		j.o.metrics.pollOutcome("in_progress")
		j.o.scheduleShardJob(j, j.o.cfg.ShardPollInterval)

	case worker.PollTransportError:
		j.o.metrics.pollOutcome("transport_error")
		j.o.scheduleShardJob(j, j.o.cfg.ShardPollInterval)

	default:
		j.o.metrics.pollOutcome("unexpected_status")
		j.o.scheduleShardJob(j, j.o.cfg.ShardPollInterval)
	}
}

func (j *shardJob) commit() {
	if err := j.o.Catalog.CommitShard(j.o.stopCtx, j.shardID, j.node.NodeIdentifier); err != nil {
		j.o.logger.Errorf("shard %d: commit failed, will retry: %v", j.shardID, err)
		j.o.scheduleShardJob(j, j.o.cfg.ShardPollInterval)
		return
	}

	j.o.metrics.shardCommitted()
	j.publishCommitted()

	j.o.Workers.Release(j.node)
	j.o.metrics.released()
	j.o.logger.Infof("shard %d: committed on %s", j.shardID, j.node.NodeIdentifier)
}

func (j *shardJob) publishCommitted() {
	if j.o.Events == nil {
		return
	}
	event := events.ShardCommitted{
		TableID:        j.tableID,
		PartitionName:  j.partitionName,
		ShardID:        j.shardID,
		NodeIdentifier: j.node.NodeIdentifier,
	}
	if err := j.o.Events.PublishShardCommitted(j.o.stopCtx, event); err != nil {
		j.o.logger.Warnf("shard %d: publishing shard.committed event: %v", j.shardID, err)
	}
}

// scheduleShardJob resubmits j to the shard poll pool after delay. If the
// orchestrator has been stopped by the time the timer fires, the submission
// is rejected and the tick is silently dropped.
func (o *Orchestrator) scheduleShardJob(j *shardJob, delay time.Duration) {
	time.AfterFunc(delay, func() {
		if err := o.shardPool.submit("shardJob", j.run); err != nil {
			o.logger.Debugf("shard %d: scheduled poll dropped: %v", j.shardID, err)
		}
	})
}
