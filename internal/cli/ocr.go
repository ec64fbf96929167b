package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/markdave123-py/Chatlens/internal/core/ocr"
)

var ocrNoPreprocess bool

var ocrCmd = &cobra.Command{
	Use:   "ocr <image>",
	Short: "Print the text recognized in an image",
	Long: `Run the same OCR used for uploads on a local png or jpeg file.

Requires a binary built with the "ocr" tag and tesseract installed.

Examples:
  chatlens ocr receipt.jpg
  chatlens ocr scan.png --raw`,
	Args: cobra.ExactArgs(1),
	RunE: runOCR,
}

func init() {
	ocrCmd.Flags().BoolVar(&ocrNoPreprocess, "raw", false, "skip grayscale and upscaling")
}

func runOCR(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}

	png, err := ocr.Normalize(data)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.OCRTimeout)
	defer cancel()

	text, err := ocr.NewDocconvExtractor(!ocrNoPreprocess, logger).Extract(ctx, png)
	if err != nil {
		return err
	}
	if text == "" {
		fmt.Fprintln(cmd.ErrOrStderr(), "No readable text found. Try clearer or higher-contrast images.")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
