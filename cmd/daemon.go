package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ox01024/bb-browser/internal/server"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the local relay daemon",
	Long: `Run the daemon that relays commands between callers and the browser
agent. Callers POST commands and block; the agent holds a single streaming
connection and posts results back.`,
	Args: cobra.NoArgs,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
	daemonCmd.Flags().String("addr", "127.0.0.1:8790", "Listen address")
	daemonCmd.Flags().Int("timeout", 30, "Per-command timeout in seconds")
	daemonCmd.Flags().Int("heartbeat", 10, "Push-channel heartbeat interval in seconds")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	timeoutSec, _ := cmd.Flags().GetInt("timeout")
	heartbeatSec, _ := cmd.Flags().GetInt("heartbeat")

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "daemon",
	})

	srv := server.New(server.Config{
		Addr:              addr,
		CommandTimeout:    time.Duration(timeoutSec) * time.Second,
		HeartbeatInterval: time.Duration(heartbeatSec) * time.Second,
	}, logger)

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errc:
		return err
	case sig := <-sigc:
		logger.Info("shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
