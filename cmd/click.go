package cmd

import (
	"github.com/ox01024/bb-browser/internal/protocol"
	"github.com/spf13/cobra"
)

var clickCmd = &cobra.Command{
	Use:   "click <ref>",
	Short: "Click an element by reference handle",
	Long:  "Click a UI element by its snapshot reference handle (e.g. 7 or @7).",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(&protocol.Request{Action: protocol.ActionClick, Ref: args[0]})
	},
}

var hoverCmd = &cobra.Command{
	Use:   "hover <ref>",
	Short: "Hover over an element by reference handle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(&protocol.Request{Action: protocol.ActionHover, Ref: args[0]})
	},
}

func init() {
	rootCmd.AddCommand(clickCmd)
	rootCmd.AddCommand(hoverCmd)
}
