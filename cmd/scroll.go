package cmd

import (
	"github.com/ox01024/bb-browser/internal/protocol"
	"github.com/spf13/cobra"
)

var scrollCmd = &cobra.Command{
	Use:   "scroll",
	Short: "Scroll the page",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dx, _ := cmd.Flags().GetInt("dx")
		dy, _ := cmd.Flags().GetInt("dy")
		return runCommand(&protocol.Request{Action: protocol.ActionScroll, DeltaX: dx, DeltaY: dy})
	},
}

func init() {
	rootCmd.AddCommand(scrollCmd)
	scrollCmd.Flags().Int("dx", 0, "Horizontal scroll in CSS pixels")
	scrollCmd.Flags().Int("dy", 0, "Vertical scroll in CSS pixels (default: 600 when both are 0)")
}
