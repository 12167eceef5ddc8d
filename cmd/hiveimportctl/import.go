package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/shardloader/hiveimport/hive"
	"github.com/shardloader/hiveimport/hive/importer"
	"github.com/shardloader/hiveimport/hive/importer/catalog"
	"github.com/shardloader/hiveimport/hive/importer/events"
	"github.com/shardloader/hiveimport/hive/importer/source"
	"github.com/shardloader/hiveimport/hive/importer/worker"
	"github.com/shardloader/hiveimport/hive/importer/workerqueue"
	"github.com/shardloader/hiveimport/logger"
	"github.com/shardloader/hiveimport/monitor"
)

func newImportCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var (
		catalogAddr           string
		sourceAddr            string
		database              string
		table                 string
		tableID               uint64
		workerAddrs           []string
		fields                []string
		partitionParallelism  int
		chunkParallelism      int
		shardPollParallelism  int
		shardPollInterval     time.Duration
		initialShardPollDelay time.Duration
		sentryDSN             string
		kafkaBrokers          []string
		kafkaTopic            string
		version               string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Start the orchestrator and import one table.",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.NewStandardLogger(stderr)

			if sentryDSN != "" {
				if err := monitor.InitErrorMonitor(sentryDSN, version); err != nil {
					log.Warnf("error monitor not initialised: %v", err)
				}
			}

			importFields, err := parseFields(fields)
			if err != nil {
				return err
			}

			nodes, err := parseWorkers(workerAddrs)
			if err != nil {
				return err
			}

			cfg := importer.Config{
				PartitionParallelism:  partitionParallelism,
				ChunkParallelism:      chunkParallelism,
				ShardPollParallelism:  shardPollParallelism,
				ShardPollInterval:     shardPollInterval,
				InitialShardPollDelay: initialShardPollDelay,
				Logger:                log,
			}

			retryingClient := newRetryingHTTPClient()
			catalogClient := catalog.NewHTTPClient(catalogAddr, retryingClient)
			sourceClient := source.NewHTTPClient(sourceAddr, retryingClient)
			// The worker client's status codes carry business meaning
			// (Rejected vs TransportError); retrying transparently here
			// would blur that distinction, so it gets a plain client.
			workerClient := worker.NewClient(http.DefaultClient)
			workers := workerqueue.New(nodes)
			metrics := importer.NewMetrics(prometheus.DefaultRegisterer)

			o := importer.New(catalogClient, sourceClient, workers, workerClient, metrics, cfg)

			if len(kafkaBrokers) > 0 {
				o.Events = events.NewKafkaPublisher(kafkaBrokers, kafkaTopic)
			}

			if err := o.ImportTable(cmd.Context(), hive.TableID(tableID), hive.SourceHive, database, table, importFields); err != nil {
				return err
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh

			log.Infof("shutting down")
			o.Stop()
			o.Wait()
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&catalogAddr, "catalog-addr", "", "Base URL of the shard-manager catalog service.")
	flags.StringVar(&sourceAddr, "source-addr", "", "Base URL of the Hive metadata/chunk producer.")
	flags.StringVar(&database, "database", "", "Source database name.")
	flags.StringVar(&table, "table", "", "Source table name.")
	flags.Uint64Var(&tableID, "table-id", 0, "Catalog table id to import into.")
	flags.StringSliceVar(&workerAddrs, "workers", nil, "Worker node addresses, as identifier=host:port pairs.")
	flags.StringSliceVar(&fields, "fields", nil, "Columns to import, as sourceColumn:targetColumn:targetType triples.")
	flags.IntVar(&partitionParallelism, "partition-parallelism", 0, "Max concurrent partition jobs (0 = default).")
	flags.IntVar(&chunkParallelism, "chunk-parallelism", 0, "Max concurrent chunk jobs (0 = default).")
	flags.IntVar(&shardPollParallelism, "shard-poll-parallelism", 0, "Max concurrent shard poll jobs (0 = default).")
	flags.DurationVar(&shardPollInterval, "shard-poll-interval", 0, "Interval between shard completion polls (0 = default).")
	flags.DurationVar(&initialShardPollDelay, "initial-shard-poll-delay", 0, "Delay before the first shard completion poll (0 = default).")
	flags.StringVar(&sentryDSN, "sentry-dsn", "", "Sentry DSN for error monitoring (disabled if empty).")
	flags.StringSliceVar(&kafkaBrokers, "kafka-brokers", nil, "Kafka brokers for shard.committed events (disabled if empty).")
	flags.StringVar(&kafkaTopic, "kafka-topic", "hive-import.shard-committed", "Kafka topic for shard.committed events.")
	flags.StringVar(&version, "version", "dev", "Version string reported to the error monitor.")

	return cmd
}

func parseFields(raw []string) ([]hive.ImportField, error) {
	fields := make([]hive.ImportField, 0, len(raw))
	for _, r := range raw {
		parts := strings.Split(r, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid --fields entry %q: want sourceColumn:targetColumn:targetType", r)
		}
		fields = append(fields, hive.ImportField{
			SourceColumn: parts[0],
			TargetColumn: parts[1],
			TargetType:   parts[2],
		})
	}
	return fields, nil
}

func parseWorkers(raw []string) ([]hive.Node, error) {
	nodes := make([]hive.Node, 0, len(raw))
	for _, r := range raw {
		parts := strings.SplitN(r, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid --workers entry %q: want identifier=host:port", r)
		}
		nodes = append(nodes, hive.Node{
			NodeIdentifier: parts[0],
			Address:        hive.Address(parts[1]),
		})
	}
	return nodes, nil
}

// newRetryingHTTPClient returns a client that retries idempotent metadata
// and catalog calls on transient transport failures and 5xx responses,
// with exponential backoff.
func newRetryingHTTPClient() *http.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.Logger = nil
	return rc.StandardClient()
}
