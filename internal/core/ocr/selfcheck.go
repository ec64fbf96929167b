package ocr

import (
	"context"
	"fmt"
	"image/color"

	"github.com/disintegration/imaging"
)

// SelfCheck runs a small blank image through ex. It fails when the OCR
// engine is unusable, for example a binary built without the ocr tag.
// An empty result is fine.
func SelfCheck(ctx context.Context, ex Extractor) error {
	img := imaging.New(64, 16, color.White)
	png, err := encodePNG(img)
	if err != nil {
		return err
	}
	if _, err := ex.Extract(ctx, png); err != nil {
		return fmt.Errorf("ocr self check: %w", err)
	}
	return nil
}
