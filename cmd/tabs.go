package cmd

import (
	"github.com/ox01024/bb-browser/internal/protocol"
	"github.com/spf13/cobra"
)

var tabsCmd = &cobra.Command{
	Use:   "tabs",
	Short: "List open tabs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(&protocol.Request{Action: protocol.ActionListTabs})
	},
}

var tabsNewCmd = &cobra.Command{
	Use:   "new [url]",
	Short: "Open a new tab and make it current",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := ""
		if len(args) > 0 {
			url = args[0]
		}
		return runCommand(&protocol.Request{Action: protocol.ActionNewTab, URL: url})
	},
}

var tabsSelectCmd = &cobra.Command{
	Use:   "select <tab-id>",
	Short: "Switch to a tab by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(&protocol.Request{Action: protocol.ActionSelectTab, TabID: args[0]})
	},
}

var tabsCloseCmd = &cobra.Command{
	Use:   "close <tab-id>",
	Short: "Close a tab by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(&protocol.Request{Action: protocol.ActionCloseTab, TabID: args[0]})
	},
}

var framesCmd = &cobra.Command{
	Use:   "frames",
	Short: "List the current tab's frames",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(&protocol.Request{Action: protocol.ActionListFrames})
	},
}

func init() {
	rootCmd.AddCommand(tabsCmd)
	tabsCmd.AddCommand(tabsNewCmd)
	tabsCmd.AddCommand(tabsSelectCmd)
	tabsCmd.AddCommand(tabsCloseCmd)
	rootCmd.AddCommand(framesCmd)
}
