package cmd

import (
	"github.com/ox01024/bb-browser/internal/protocol"
	"github.com/spf13/cobra"
)

var textCmd = &cobra.Command{
	Use:   "text <ref>",
	Short: "Read an element's rendered text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(&protocol.Request{Action: protocol.ActionGetText, Ref: args[0]})
	},
}

func init() {
	rootCmd.AddCommand(textCmd)
}
