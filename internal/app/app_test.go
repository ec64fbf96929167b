package app

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/markdave123-py/Chatlens/internal/core"
)

type failingExtractor struct{ err error }

func (f *failingExtractor) Extract(ctx context.Context, png []byte) (string, error) {
	return "", f.err
}

func TestCheckOCR(t *testing.T) {
	tests := []struct {
		name     string
		ex       *failingExtractor
		want     bool
		wantWarn bool
	}{
		{"working engine", &failingExtractor{}, true, false},
		{"engine missing", &failingExtractor{err: &core.OCRFailure{Err: errors.New("docconv not built with `ocr` build tag")}}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))

			assert.Equal(t, tt.want, checkOCR(context.Background(), tt.ex, logger))
			if tt.wantWarn {
				assert.Contains(t, buf.String(), "level=WARN")
				assert.Contains(t, buf.String(), "ocr unavailable")
				assert.Contains(t, buf.String(), "-tags ocr")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}
