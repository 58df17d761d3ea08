package cmd

import (
	"github.com/ox01024/bb-browser/internal/protocol"
	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Read the current page as a text snapshot with reference handles",
	Long: `Compile the page's accessibility tree into indented text. Interactive
elements get [ref=N] handles that later click/fill/type commands accept.
Handles stay valid until the next snapshot or navigation.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		interactive, _ := cmd.Flags().GetBool("interactive")
		compact, _ := cmd.Flags().GetBool("compact")
		maxDepth, _ := cmd.Flags().GetInt("max-depth")
		selector, _ := cmd.Flags().GetString("selector")

		mode := "full"
		if interactive {
			mode = "interactive"
		}
		return runCommand(&protocol.Request{
			Action:   protocol.ActionSnapshot,
			Mode:     mode,
			Compact:  compact,
			MaxDepth: maxDepth,
			Selector: selector,
		})
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.Flags().Bool("interactive", false, "Emit only actionable elements, flattened")
	snapshotCmd.Flags().Bool("compact", false, "Drop structural container lines with no content")
	snapshotCmd.Flags().Int("max-depth", 0, "Max nesting depth (0 = unlimited)")
	snapshotCmd.Flags().String("selector", "", "Scope the snapshot to the first CSS selector match")
}
