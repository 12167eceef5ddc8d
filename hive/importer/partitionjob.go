package importer

import (
	"github.com/shardloader/hiveimport/hive"
	"github.com/shardloader/hiveimport/hive/importer/source"
)

// partitionJob materialises one partition's chunks, registers the partition
// with the catalog, and fans out one chunkJob per (chunk, shardID) pair. A
// failure at either step abandons the partition: it is logged and counted,
// the rest of the table's partitions are unaffected.
type partitionJob struct {
	o             *Orchestrator
	tableID       hive.TableID
	sourceName    hive.SourceName
	partitionName string
	supplier      *source.Supplier
	fields        []hive.ImportField
}

func (j *partitionJob) run() {
	chunks, err := j.supplier.Get(j.o.stopCtx)
	if err != nil {
		j.o.logger.Warnf("partition %s: fetching chunks: %v", j.partitionName, err)
		j.o.metrics.partitionFailed()
		return
	}

	shardIDs, err := j.o.Catalog.CreateImportPartition(j.o.stopCtx, j.tableID, j.partitionName, chunks)
	if err != nil {
		j.o.logger.Warnf("partition %s: registering with catalog: %v", j.partitionName, err)
		j.o.metrics.partitionFailed()
		return
	}

	for i, chunk := range chunks {
		cj := &chunkJob{
			o:             j.o,
			tableID:       j.tableID,
			partitionName: j.partitionName,
			shardID:       shardIDs[i],
			shardImport: hive.ShardImport{
				SourceName: j.sourceName,
				Chunk:      chunk,
				Fields:     j.fields,
			},
		}
		if err := j.o.chunkPool.submit("partitionJob", cj.run); err != nil {
			j.o.logger.Debugf("partition %s: shard %d: %v", j.partitionName, shardIDs[i], err)
			return
		}
	}
}
