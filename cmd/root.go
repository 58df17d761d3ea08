package cmd

import (
	"fmt"
	"os"

	"github.com/ox01024/bb-browser/internal/client"
	"github.com/ox01024/bb-browser/internal/output"
	"github.com/ox01024/bb-browser/internal/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bb-browser",
	Short: "Read and interact with web pages through the browser's accessibility tree",
	Long: `A CLI tool that lets AI agents read and interact with web pages. Commands
are relayed through a local daemon to a connected browser agent; pages are
read as compact text snapshots and actuated via reference handles.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("daemon-url", client.DefaultDaemonURL, "Daemon base URL")
	rootCmd.PersistentFlags().String("format", "", "Output format: yaml, json, text")
	rootCmd.PersistentFlags().Bool("pretty", false, "Indent JSON output")
	rootCmd.PersistentFlags().String("tab", "", "Target tab ID (default: current tab)")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		format, _ := rootCmd.PersistentFlags().GetString("format")

		// Smart default: piped output (agent context) gets plain text so
		// snapshots land verbatim; terminals get yaml.
		if format == "" {
			if output.IsOutputPiped() {
				format = "text"
			} else {
				format = "yaml"
			}
		}

		switch format {
		case "yaml":
			output.OutputFormat = output.FormatYAML
		case "json":
			output.OutputFormat = output.FormatJSON
		case "text":
			output.OutputFormat = output.FormatText
		default:
			return fmt.Errorf("unsupported format: %s (use yaml, json, or text)", format)
		}
		if pretty, err := rootCmd.PersistentFlags().GetBool("pretty"); err == nil && pretty {
			output.PrettyOutput = true
		}
		return nil
	}
}

// daemonClient builds a client for the configured daemon.
func daemonClient() *client.Client {
	url, _ := rootCmd.PersistentFlags().GetString("daemon-url")
	return client.New(url)
}

// targetTab returns the --tab flag value.
func targetTab() string {
	tab, _ := rootCmd.PersistentFlags().GetString("tab")
	return tab
}
