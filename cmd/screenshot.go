package cmd

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ox01024/bb-browser/internal/output"
	"github.com/ox01024/bb-browser/internal/protocol"
	"github.com/spf13/cobra"
)

var screenshotCmd = &cobra.Command{
	Use:   "screenshot",
	Short: "Capture a screenshot of the current tab",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		quality, _ := cmd.Flags().GetInt("quality")
		scale, _ := cmd.Flags().GetFloat64("scale")
		outPath, _ := cmd.Flags().GetString("output")

		req := &protocol.Request{
			Action:  protocol.ActionScreenshot,
			Session: targetTab(),
			Format:  format,
			Quality: quality,
			Scale:   scale,
		}
		ctx, cancel := context.WithTimeout(context.Background(), commandBudget)
		defer cancel()
		res, err := daemonClient().Send(ctx, req)
		if err != nil {
			return err
		}
		var shot protocol.ScreenshotData
		if err := json.Unmarshal(res.Data, &shot); err != nil {
			return fmt.Errorf("decode screenshot result: %w", err)
		}
		if outPath == "" {
			return output.Print(shot)
		}
		img, err := base64.StdEncoding.DecodeString(shot.Base64)
		if err != nil {
			return fmt.Errorf("decode image data: %w", err)
		}
		if err := os.WriteFile(outPath, img, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", outPath, err)
		}
		return output.Print(ActionResult{OK: true, Action: "screenshot"})
	},
}

func init() {
	rootCmd.AddCommand(screenshotCmd)
	screenshotCmd.Flags().String("format", "png", "Image format: png, jpg")
	screenshotCmd.Flags().Int("quality", 80, "JPEG quality 1-100")
	screenshotCmd.Flags().Float64("scale", 0, "Scale factor in (0,1); 0 keeps the original size")
	screenshotCmd.Flags().StringP("output", "o", "", "Write the image to a file instead of printing base64")
}
