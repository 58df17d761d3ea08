package cmd

import (
	"github.com/ox01024/bb-browser/internal/protocol"
	"github.com/spf13/cobra"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "List buffered console messages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, _ := cmd.Flags().GetString("filter")
		return runCommand(&protocol.Request{Action: protocol.ActionGetConsole, Filter: filter})
	},
}

var errorsCmd = &cobra.Command{
	Use:   "errors",
	Short: "List buffered console errors and uncaught exceptions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, _ := cmd.Flags().GetString("filter")
		return runCommand(&protocol.Request{Action: protocol.ActionGetErrors, Filter: filter})
	},
}

var requestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "List buffered network requests",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, _ := cmd.Flags().GetString("filter")
		return runCommand(&protocol.Request{Action: protocol.ActionListRequests, Filter: filter})
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)
	consoleCmd.Flags().String("filter", "", "Substring filter on message text or URL")
	rootCmd.AddCommand(errorsCmd)
	errorsCmd.Flags().String("filter", "", "Substring filter on message text or URL")
	rootCmd.AddCommand(requestsCmd)
	requestsCmd.Flags().String("filter", "", "Substring filter on request URL")
}
