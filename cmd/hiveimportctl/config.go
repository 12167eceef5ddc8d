package main

import (
	"fmt"
	"io"

	"github.com/pelletier/go-toml"
	"github.com/spf13/cobra"

	"github.com/shardloader/hiveimport/errors"
	"github.com/shardloader/hiveimport/hive/importer"
)

func newConfigCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	cc := &cobra.Command{
		Use:   "config",
		Short: "Inspect orchestrator configuration.",
	}
	cc.AddCommand(newConfigDumpCommand(stdout))
	return cc
}

func newConfigDumpCommand(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print the default orchestrator configuration as TOML.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := importer.DefaultConfig()
			out, err := toml.Marshal(cfg)
			if err != nil {
				return errors.Wrap(err, "marshalling default config")
			}
			fmt.Fprintf(stdout, "%s\n", out)
			return nil
		},
	}
}
