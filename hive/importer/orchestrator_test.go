package importer_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shardloader/hiveimport/hive"
	"github.com/shardloader/hiveimport/hive/importer"
	"github.com/shardloader/hiveimport/hive/importer/worker"
	"github.com/shardloader/hiveimport/hive/importer/workerqueue"
	"github.com/shardloader/hiveimport/logger"
)

// fakeCatalog is an in-memory stand-in for the shard-manager catalog.
type fakeCatalog struct {
	mu sync.Mutex

	createTableErr     error
	createPartitionErr error
	nextShardID        hive.ShardID

	tables     []hive.TableID
	partitions []string
	committed  map[hive.ShardID]string
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{committed: map[hive.ShardID]string{}}
}

func (c *fakeCatalog) CreateImportTable(ctx context.Context, tableID hive.TableID, sourceName hive.SourceName, database, table string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.createTableErr != nil {
		return c.createTableErr
	}
	c.tables = append(c.tables, tableID)
	return nil
}

func (c *fakeCatalog) CreateImportPartition(ctx context.Context, tableID hive.TableID, partitionName string, chunks [][]byte) ([]hive.ShardID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.createPartitionErr != nil {
		return nil, c.createPartitionErr
	}
	c.partitions = append(c.partitions, partitionName)
	ids := make([]hive.ShardID, len(chunks))
	for i := range chunks {
		c.nextShardID++
		ids[i] = c.nextShardID
	}
	return ids, nil
}

func (c *fakeCatalog) CommitShard(ctx context.Context, shardID hive.ShardID, nodeIdentifier string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.committed[shardID] = nodeIdentifier
	return nil
}

func (c *fakeCatalog) committedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.committed)
}

// fakeSource is an in-memory stand-in for the Hive metadata/chunk producer.
type fakeSource struct {
	mu sync.Mutex

	partitions map[string][]string     // database/table -> partition names
	chunks     map[string][][]byte     // partition name -> chunks
	chunksErr  map[string]error        // partition name -> error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		partitions: map[string][]string{},
		chunks:     map[string][][]byte{},
		chunksErr:  map[string]error{},
	}
}

func (s *fakeSource) key(database, table string) string { return database + "/" + table }

func (s *fakeSource) PartitionNames(ctx context.Context, database, table string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.partitions[s.key(database, table)], nil
}

func (s *fakeSource) Chunks(ctx context.Context, database, table, partition string) ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.chunksErr[partition]; err != nil {
		return nil, err
	}
	return s.chunks[partition], nil
}

// fakeWorkerClient is an in-memory stand-in for a worker node's RPC surface.
// By default every shard is accepted and immediately reported Done; tests
// set initiateResults/pollResults entries to script other outcomes.
type fakeWorkerClient struct {
	mu sync.Mutex

	initiateResults map[hive.ShardID][]worker.InitiateResult // consumed in order, last value sticks
	pollResults     map[hive.ShardID][]worker.PollResult

	initiateCalls map[hive.ShardID]int
	pollCalls     map[hive.ShardID]int
}

func newFakeWorkerClient() *fakeWorkerClient {
	return &fakeWorkerClient{
		initiateResults: map[hive.ShardID][]worker.InitiateResult{},
		pollResults:     map[hive.ShardID][]worker.PollResult{},
		initiateCalls:   map[hive.ShardID]int{},
		pollCalls:       map[hive.ShardID]int{},
	}
}

func (w *fakeWorkerClient) Initiate(ctx context.Context, node hive.Node, shardID hive.ShardID, shardImport hive.ShardImport) worker.InitiateResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.initiateCalls[shardID]++
	seq := w.initiateResults[shardID]
	if len(seq) == 0 {
		return worker.Accepted
	}
	idx := w.initiateCalls[shardID] - 1
	if idx >= len(seq) {
		idx = len(seq) - 1
	}
	return seq[idx]
}

func (w *fakeWorkerClient) Poll(ctx context.Context, node hive.Node, shardID hive.ShardID) worker.PollResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pollCalls[shardID]++
	seq := w.pollResults[shardID]
	if len(seq) == 0 {
		return worker.Done
	}
	idx := w.pollCalls[shardID] - 1
	if idx >= len(seq) {
		idx = len(seq) - 1
	}
	return seq[idx]
}

func (w *fakeWorkerClient) pollCallCount(shardID hive.ShardID) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pollCalls[shardID]
}

func testConfig() importer.Config {
	cfg := importer.DefaultConfig()
	cfg.PartitionParallelism = 4
	cfg.ChunkParallelism = 4
	cfg.ShardPollParallelism = 4
	cfg.ShardPollInterval = 10 * time.Millisecond
	cfg.InitialShardPollDelay = time.Millisecond
	cfg.Logger = logger.NopLogger
	return cfg
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	require.Fail(t, "condition not met before timeout")
}

// S1: happy path. One table, one partition, two chunks; both shards commit.
func TestImportTable_HappyPath(t *testing.T) {
	catalogClient := newFakeCatalog()
	sourceClient := newFakeSource()
	sourceClient.partitions["db/t"] = []string{"p1"}
	sourceClient.chunks["p1"] = [][]byte{[]byte("a"), []byte("b")}

	workers := workerqueue.New([]hive.Node{{Address: "node1", NodeIdentifier: "node1"}})
	workerClient := newFakeWorkerClient()

	o := importer.New(catalogClient, sourceClient, workers, workerClient, nil, testConfig())
	defer o.Stop()

	fields := []hive.ImportField{{SourceColumn: "a", TargetColumn: "a", TargetType: "int"}}
	err := o.ImportTable(context.Background(), 1, hive.SourceHive, "db", "t", fields)
	require.NoError(t, err)

	waitFor(t, time.Second, func() bool { return catalogClient.committedCount() == 2 })
	waitFor(t, time.Second, func() bool { return workers.Len() == 1 })
}

// S2: initiate is rejected once, then accepted on retry; the shard still
// commits and the catalog is queried for the partition exactly once.
func TestImportTable_InitiateRejectedThenAccepted(t *testing.T) {
	catalogClient := newFakeCatalog()
	sourceClient := newFakeSource()
	sourceClient.partitions["db/t"] = []string{"p1"}
	sourceClient.chunks["p1"] = [][]byte{[]byte("a")}

	workers := workerqueue.New([]hive.Node{{Address: "node1", NodeIdentifier: "node1"}})
	workerClient := newFakeWorkerClient()
	workerClient.initiateResults[1] = []worker.InitiateResult{worker.Rejected, worker.Accepted}

	o := importer.New(catalogClient, sourceClient, workers, workerClient, nil, testConfig())
	defer o.Stop()

	fields := []hive.ImportField{{SourceColumn: "a", TargetColumn: "a", TargetType: "int"}}
	require.NoError(t, o.ImportTable(context.Background(), 1, hive.SourceHive, "db", "t", fields))

	waitFor(t, time.Second, func() bool { return catalogClient.committedCount() == 1 })
	assert.Equal(t, 1, len(catalogClient.partitions))
}

// S3: poll stalls InProgress several times before Done; the catalog is
// committed only once, after Done is observed.
func TestImportTable_PollStallsThenDone(t *testing.T) {
	catalogClient := newFakeCatalog()
	sourceClient := newFakeSource()
	sourceClient.partitions["db/t"] = []string{"p1"}
	sourceClient.chunks["p1"] = [][]byte{[]byte("a")}

	workers := workerqueue.New([]hive.Node{{Address: "node1", NodeIdentifier: "node1"}})
	workerClient := newFakeWorkerClient()
	workerClient.pollResults[1] = []worker.PollResult{worker.InProgress, worker.InProgress, worker.Done}

	o := importer.New(catalogClient, sourceClient, workers, workerClient, nil, testConfig())
	defer o.Stop()

	fields := []hive.ImportField{{SourceColumn: "a", TargetColumn: "a", TargetType: "int"}}
	require.NoError(t, o.ImportTable(context.Background(), 1, hive.SourceHive, "db", "t", fields))

	waitFor(t, time.Second, func() bool { return catalogClient.committedCount() == 1 })
	assert.GreaterOrEqual(t, workerClient.pollCallCount(1), 3)
}

// S4: fields is empty, importTable rejects synchronously with no catalog or
// source interaction.
func TestImportTable_EmptyFields(t *testing.T) {
	catalogClient := newFakeCatalog()
	sourceClient := newFakeSource()

	workers := workerqueue.New([]hive.Node{{Address: "node1", NodeIdentifier: "node1"}})
	workerClient := newFakeWorkerClient()

	o := importer.New(catalogClient, sourceClient, workers, workerClient, nil, testConfig())
	defer o.Stop()

	err := o.ImportTable(context.Background(), 1, hive.SourceHive, "db", "t", nil)
	require.Error(t, err)
	assert.Empty(t, catalogClient.tables)
}

// S5: an unrecognised source name is rejected synchronously.
func TestImportTable_WrongSource(t *testing.T) {
	catalogClient := newFakeCatalog()
	sourceClient := newFakeSource()

	workers := workerqueue.New([]hive.Node{{Address: "node1", NodeIdentifier: "node1"}})
	workerClient := newFakeWorkerClient()

	o := importer.New(catalogClient, sourceClient, workers, workerClient, nil, testConfig())
	defer o.Stop()

	fields := []hive.ImportField{{SourceColumn: "a", TargetColumn: "a", TargetType: "int"}}
	err := o.ImportTable(context.Background(), 1, hive.SourceName("not-hive"), "db", "t", fields)
	require.Error(t, err)
	assert.Empty(t, catalogClient.tables)
}

// S6: one partition's chunk fetch fails; its sibling partition still
// completes, demonstrating partition isolation.
func TestImportTable_PartitionIsolation(t *testing.T) {
	catalogClient := newFakeCatalog()
	sourceClient := newFakeSource()
	sourceClient.partitions["db/t"] = []string{"bad", "good"}
	sourceClient.chunksErr["bad"] = assert.AnError
	sourceClient.chunks["good"] = [][]byte{[]byte("a")}

	workers := workerqueue.New([]hive.Node{{Address: "node1", NodeIdentifier: "node1"}})
	workerClient := newFakeWorkerClient()

	o := importer.New(catalogClient, sourceClient, workers, workerClient, nil, testConfig())
	defer o.Stop()

	fields := []hive.ImportField{{SourceColumn: "a", TargetColumn: "a", TargetType: "int"}}
	require.NoError(t, o.ImportTable(context.Background(), 1, hive.SourceHive, "db", "t", fields))

	waitFor(t, time.Second, func() bool { return catalogClient.committedCount() == 1 })
	assert.Equal(t, []string{"good"}, catalogClient.partitions)
}

// Stop prevents delayed ShardJob ticks scheduled beforehand from running:
// the shard's second poll would report Done, but its tick fires after Stop
// and is dropped, so the shard is never committed.
func TestStop_DropsScheduledTicks(t *testing.T) {
	catalogClient := newFakeCatalog()
	sourceClient := newFakeSource()
	sourceClient.partitions["db/t"] = []string{"p1"}
	sourceClient.chunks["p1"] = [][]byte{[]byte("a")}

	workers := workerqueue.New([]hive.Node{{Address: "node1", NodeIdentifier: "node1"}})
	workerClient := newFakeWorkerClient()
	workerClient.pollResults[1] = []worker.PollResult{worker.InProgress, worker.Done}

	cfg := testConfig()
	cfg.ShardPollInterval = 50 * time.Millisecond
	o := importer.New(catalogClient, sourceClient, workers, workerClient, nil, cfg)

	fields := []hive.ImportField{{SourceColumn: "a", TargetColumn: "a", TargetType: "int"}}
	require.NoError(t, o.ImportTable(context.Background(), 1, hive.SourceHive, "db", "t", fields))

	waitFor(t, time.Second, func() bool { return workerClient.pollCallCount(1) >= 1 })
	o.Stop()

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 0, catalogClient.committedCount())
}
