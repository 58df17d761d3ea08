package cmd

import (
	"github.com/ox01024/bb-browser/internal/protocol"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <ref>",
	Short: "Check a checkbox or radio button",
	Long:  "Move the element to the checked state. Already-checked elements are left untouched.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(&protocol.Request{Action: protocol.ActionCheck, Ref: args[0]})
	},
}

var uncheckCmd = &cobra.Command{
	Use:   "uncheck <ref>",
	Short: "Uncheck a checkbox",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(&protocol.Request{Action: protocol.ActionUncheck, Ref: args[0]})
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(uncheckCmd)
}
