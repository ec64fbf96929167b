package ocr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"net/http"

	"github.com/disintegration/imaging"
)

var ErrUnsupportedImage = errors.New("unsupported image format, expected png or jpeg")

// minOCRWidth is the width small images are upscaled to before recognition.
const minOCRWidth = 1000

var supportedTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
}

// DetectType sniffs the content type of an uploaded image.
func DetectType(data []byte) (string, error) {
	ct := http.DetectContentType(data)
	if !supportedTypes[ct] {
		return ct, fmt.Errorf("%w: got %s", ErrUnsupportedImage, ct)
	}
	return ct, nil
}

// Normalize decodes a png or jpeg upload, applies its EXIF orientation and re-encodes it as PNG.
func Normalize(data []byte) ([]byte, error) {
	if _, err := DetectType(data); err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	return encodePNG(img)
}

// Preprocess prepares a normalized PNG for recognition: grayscale, upscaled when small.
func Preprocess(png []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(png))
	if err != nil {
		return nil, fmt.Errorf("decode for preprocessing: %w", err)
	}

	gray := imaging.Grayscale(img)
	if w := gray.Bounds().Dx(); w > 0 && w < minOCRWidth {
		gray = imaging.Resize(gray, minOCRWidth, 0, imaging.Lanczos)
	}
	return encodePNG(gray)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
