package cmd

import (
	"context"
	"time"

	"github.com/ox01024/bb-browser/internal/output"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the daemon is alive and the browser agent is connected",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		status, err := daemonClient().Status(ctx)
		if err != nil {
			return err
		}
		return output.Print(status)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
