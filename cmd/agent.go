package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ox01024/bb-browser/internal/agent"
	"github.com/ox01024/bb-browser/internal/cdp"
	"github.com/ox01024/bb-browser/internal/refs"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Run the browser agent",
	Long: `Connect to a browser's debugging endpoint, subscribe to the daemon's
push channel, and execute relayed commands against the browser. The browser
must be started with remote debugging enabled
(e.g. chromium --remote-debugging-port=9222).`,
	Args: cobra.NoArgs,
	RunE: runAgent,
}

func init() {
	rootCmd.AddCommand(agentCmd)
	agentCmd.Flags().String("browser-url", "http://127.0.0.1:9222", "Browser debugging URL (http or ws)")
	agentCmd.Flags().String("state-dir", "", "Directory for persisted reference tables (default: user cache dir)")
}

func runAgent(cmd *cobra.Command, args []string) error {
	browserURL, _ := cmd.Flags().GetString("browser-url")
	stateDir, _ := cmd.Flags().GetString("state-dir")
	daemonURL, _ := rootCmd.PersistentFlags().GetString("daemon-url")

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "agent",
	})

	if stateDir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			base = os.TempDir()
		}
		stateDir = filepath.Join(base, "bb-browser")
	}
	store, err := refs.NewFileStore(stateDir)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dialCtx, dialCancel := context.WithTimeout(ctx, 10*time.Second)
	wsURL, err := cdp.BrowserWSURL(dialCtx, browserURL)
	if err != nil {
		dialCancel()
		return err
	}
	browser, err := cdp.Dial(dialCtx, wsURL, logger)
	dialCancel()
	if err != nil {
		return err
	}
	defer browser.Close()

	a := agent.New(daemonURL, browser, refs.NewTracker(store), logger)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigc
		logger.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := a.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
