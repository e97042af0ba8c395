package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/panyam/plateau/core"
)

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "Lists the distribution catalog",
	Long:  `Lists every distribution kind the core accepts, with its parameter schema.`,
	Run: func(cmd *cobra.Command, args []string) {
		bold := color.New(color.Bold).SprintFunc()
		for _, name := range core.KindNames() {
			kind, _ := core.ParseKind(name)
			fmt.Printf("%s\n", bold(name))
			for _, p := range kind.Params() {
				req := "optional"
				if p.Required {
					req = "required"
				}
				if p.MinRank > 0 {
					fmt.Printf("  %-16s %s, rank >= %d\n", p.Name, req, p.MinRank)
				} else {
					fmt.Printf("  %-16s %s\n", p.Name, req)
				}
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(kindsCmd)
}
