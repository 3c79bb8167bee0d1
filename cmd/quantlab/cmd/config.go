package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"quantlab/config"
)

var configCmd = &cobra.Command{
	Use:   "config init [path]",
	Short: "Write a default configuration file",
	Long: `Config init writes the default run configuration so it can be edited and
passed to 'quantlab run --config'. The format follows the file extension:
.yaml/.yml for YAML, anything else for JSON.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if args[0] != "init" {
		return fmt.Errorf("unknown config subcommand %q", args[0])
	}
	path := "quantlab.yaml"
	if len(args) == 2 {
		path = args[1]
	}
	if err := config.Default().SaveToFile(path); err != nil {
		return err
	}
	fmt.Printf("Wrote default config to %s\n", path)
	return nil
}
