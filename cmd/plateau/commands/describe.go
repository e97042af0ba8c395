package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/panyam/plateau/compiler"
)

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Shows the scope tree and variable list of a model config",
	Long: `Loads a model config file, rebuilds the model, and prints its
structural summary: the replication scope tree and every variable with
its distribution kind and resolved shape. No numeric values are shown.`,
	Run: func(cmd *cobra.Command, args []string) {
		model := loadModelOrExit()
		fmt.Print(model.Summary())
	},
}

// loadModelOrExit reads --file, parses it and replays the model,
// exiting with a message on any failure.
func loadModelOrExit() *compiler.ProbModel {
	if modelFilePath == "" {
		fmt.Fprintln(os.Stderr, "Error: model config path must be specified with -f or --file.")
		os.Exit(1)
	}
	data, err := os.ReadFile(modelFilePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", modelFilePath, err)
		os.Exit(1)
	}
	cfg, err := compiler.ParseConfig(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing %s: %v\n", modelFilePath, err)
		os.Exit(1)
	}
	model, err := compiler.FromConfig(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rebuilding model from %s: %v\n", modelFilePath, err)
		os.Exit(1)
	}
	return model
}

func init() {
	rootCmd.AddCommand(describeCmd)
}
