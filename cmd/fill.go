package cmd

import (
	"github.com/ox01024/bb-browser/internal/protocol"
	"github.com/spf13/cobra"
)

var fillCmd = &cobra.Command{
	Use:   "fill <ref> <text>",
	Short: "Replace a field's content with text",
	Long:  "Clear the field's existing content, then set the new text. Use `type` to append instead.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(&protocol.Request{Action: protocol.ActionFill, Ref: args[0], Text: args[1]})
	},
}

func init() {
	rootCmd.AddCommand(fillCmd)
}
