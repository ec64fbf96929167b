package ocr

import (
	"bytes"
	"context"
	"log/slog"
	"strings"

	"code.sajari.com/docconv"

	"github.com/markdave123-py/Chatlens/internal/core"
)

// Extractor recognizes the text in a PNG image.
type Extractor interface {
	Extract(ctx context.Context, png []byte) (string, error)
}

// DocconvExtractor runs OCR through docconv. Images are only recognized when
// the binary is built with the `ocr` tag and tesseract is installed.
type DocconvExtractor struct {
	preprocess bool
	logger     *slog.Logger
}

var _ Extractor = (*DocconvExtractor)(nil)

func NewDocconvExtractor(preprocess bool, logger *slog.Logger) *DocconvExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocconvExtractor{preprocess: preprocess, logger: logger}
}

type convertResult struct {
	text string
	err  error
}

// Extract returns the trimmed text found in png. Failures are *core.OCRFailure.
func (e *DocconvExtractor) Extract(ctx context.Context, png []byte) (string, error) {
	input := png
	if e.preprocess {
		prepared, err := Preprocess(png)
		if err != nil {
			e.logger.Warn("ocr preprocessing failed, using original image", "error", err)
		} else {
			input = prepared
		}
	}

	done := make(chan convertResult, 1)
	go func() {
		res, err := docconv.Convert(bytes.NewReader(input), "image/png", false)
		if err != nil {
			done <- convertResult{err: err}
			return
		}
		done <- convertResult{text: res.Body}
	}()

	select {
	case <-ctx.Done():
		return "", &core.OCRFailure{Err: ctx.Err()}
	case r := <-done:
		if r.err != nil {
			e.logger.Error("docconv: extraction failed", "error", r.err)
			return "", &core.OCRFailure{Err: r.err}
		}
		text := strings.TrimSpace(r.text)
		e.logger.Debug("docconv: extraction finished", "chars", len(text))
		return text, nil
	}
}
