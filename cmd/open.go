package cmd

import (
	"github.com/ox01024/bb-browser/internal/protocol"
	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:   "open <url>",
	Short: "Navigate the current tab to a URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(&protocol.Request{Action: protocol.ActionNavigate, URL: args[0]})
	},
}

var backCmd = &cobra.Command{
	Use:   "back",
	Short: "Go back one entry in the tab's history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(&protocol.Request{Action: protocol.ActionGoBack})
	},
}

var forwardCmd = &cobra.Command{
	Use:   "forward",
	Short: "Go forward one entry in the tab's history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(&protocol.Request{Action: protocol.ActionGoForward})
	},
}

func init() {
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(backCmd)
	rootCmd.AddCommand(forwardCmd)
}
