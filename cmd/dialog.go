package cmd

import (
	"fmt"

	"github.com/ox01024/bb-browser/internal/protocol"
	"github.com/spf13/cobra"
)

var dialogCmd = &cobra.Command{
	Use:   "dialog",
	Short: "Accept or dismiss the open JavaScript dialog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		accept, _ := cmd.Flags().GetBool("accept")
		dismiss, _ := cmd.Flags().GetBool("dismiss")
		text, _ := cmd.Flags().GetString("text")
		if accept == dismiss {
			return fmt.Errorf("pass exactly one of --accept or --dismiss")
		}
		return runCommand(&protocol.Request{
			Action:     protocol.ActionHandleDialog,
			Accept:     &accept,
			PromptText: text,
		})
	},
}

func init() {
	rootCmd.AddCommand(dialogCmd)
	dialogCmd.Flags().Bool("accept", false, "Accept the dialog")
	dialogCmd.Flags().Bool("dismiss", false, "Dismiss the dialog")
	dialogCmd.Flags().String("text", "", "Text to enter into a prompt dialog")
}
