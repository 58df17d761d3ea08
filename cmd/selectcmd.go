package cmd

import (
	"github.com/ox01024/bb-browser/internal/protocol"
	"github.com/spf13/cobra"
)

var selectCmd = &cobra.Command{
	Use:   "select <ref> <value>",
	Short: "Select a dropdown option",
	Long: `Select an option by value or visible label. Matching is tried in order:
exact value, exact label, then trimmed case-insensitive. A miss lists the
available options.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(&protocol.Request{
			Action: protocol.ActionSelectOption,
			Ref:    args[0],
			Values: args[1:],
		})
	},
}

func init() {
	rootCmd.AddCommand(selectCmd)
}
