package hive

import (
	"fmt"

	"github.com/shardloader/hiveimport/errors"
)

const (
	ErrInvalidArgument     errors.Code = "InvalidArgument"
	ErrSourceMetadata      errors.Code = "SourceMetadataError"
	ErrCatalog             errors.Code = "CatalogError"
	ErrWorkerInitiate      errors.Code = "WorkerInitiateFailure"
	ErrWorkerPoll          errors.Code = "WorkerPollFailure"
	ErrOrchestratorStopped errors.Code = "OrchestratorStopped"
)

// NewErrInvalidArgument reports a synchronous, side-effect-free rejection of
// importTable's arguments.
func NewErrInvalidArgument(reason string) error {
	return errors.New(ErrInvalidArgument, reason)
}

// NewErrSourceMetadata wraps a failure from the source metadata/chunk
// producer (partition listing or chunk materialisation).
func NewErrSourceMetadata(err error) error {
	return errors.New(ErrSourceMetadata, fmt.Sprintf("source metadata error: %v", err))
}

// NewErrCatalog wraps a failure talking to the shard-manager catalog.
func NewErrCatalog(err error) error {
	return errors.New(ErrCatalog, fmt.Sprintf("catalog error: %v", err))
}

// NewErrWorkerInitiate reports a rejected or unreachable PUT /v1/shard/{id}.
func NewErrWorkerInitiate(shardID ShardID, reason string) error {
	return errors.New(ErrWorkerInitiate, fmt.Sprintf("shard %d: initiate failed: %s", shardID, reason))
}

// NewErrWorkerPoll reports a rejected or unreachable GET /v1/shard/{id}.
func NewErrWorkerPoll(shardID ShardID, reason string) error {
	return errors.New(ErrWorkerPoll, fmt.Sprintf("shard %d: poll failed: %s", shardID, reason))
}

// NewErrOrchestratorStopped reports a submission attempted after Stop().
func NewErrOrchestratorStopped(stage string) error {
	return errors.New(ErrOrchestratorStopped, fmt.Sprintf("%s: orchestrator is stopped", stage))
}
