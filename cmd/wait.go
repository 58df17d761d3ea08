package cmd

import (
	"github.com/ox01024/bb-browser/internal/protocol"
	"github.com/spf13/cobra"
)

var waitCmd = &cobra.Command{
	Use:   "wait <ref>",
	Short: "Wait for an element to appear",
	Long:  "Poll until the handle resolves to a live element or the timeout elapses.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		timeoutMs, _ := cmd.Flags().GetInt("timeout")
		return runCommand(&protocol.Request{
			Action:    protocol.ActionWaitFor,
			Ref:       args[0],
			TimeoutMS: timeoutMs,
		})
	},
}

func init() {
	rootCmd.AddCommand(waitCmd)
	waitCmd.Flags().Int("timeout", 5000, "Max milliseconds to wait")
}
