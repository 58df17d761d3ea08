package cmd

import (
	"github.com/ox01024/bb-browser/internal/protocol"
	"github.com/spf13/cobra"
)

var typeCmd = &cobra.Command{
	Use:   "type <text>",
	Short: "Type text character by character into the focused element",
	Long: `Send text as individual keystrokes without clearing what is already
there. With --ref the element is focused first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, _ := cmd.Flags().GetString("ref")
		return runCommand(&protocol.Request{Action: protocol.ActionType, Ref: ref, Text: args[0]})
	},
}

var pressCmd = &cobra.Command{
	Use:   "press <key>",
	Short: "Press a key or key combo",
	Long:  `Press a named key ("Enter", "Tab", "ArrowDown"), a character, or a combo like "ctrl+a".`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(&protocol.Request{Action: protocol.ActionPressKey, Key: args[0]})
	},
}

func init() {
	rootCmd.AddCommand(typeCmd)
	typeCmd.Flags().String("ref", "", "Focus this element before typing")
	rootCmd.AddCommand(pressCmd)
}
