package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var modelFilePath string

var rootCmd = &cobra.Command{
	Use:   "plateau",
	Short: "Plateau is a probabilistic model assembler and validator",
	Long: `Plateau builds hierarchical probabilistic models declared with
plate-notation replication scopes, resolves variable shapes, validates
the dependency graph, and compiles a specification an inference
backend can consume.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&modelFilePath, "file", "f", "", "Path to the model config file (required by most commands)")
}

// AddCommand allows adding subcommands from other files.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}
