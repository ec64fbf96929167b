package ocr

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/Chatlens/internal/core"
)

type stubExtractor struct {
	err error
	got []byte
}

func (s *stubExtractor) Extract(ctx context.Context, png []byte) (string, error) {
	s.got = png
	return "", s.err
}

func TestSelfCheck(t *testing.T) {
	ok := &stubExtractor{}
	require.NoError(t, SelfCheck(context.Background(), ok))
	assert.True(t, bytes.HasPrefix(ok.got, []byte("\x89PNG")), "extractor receives a png")

	broken := &stubExtractor{err: &core.OCRFailure{Err: errors.New("docconv not built with `ocr` build tag")}}
	err := SelfCheck(context.Background(), broken)
	var ocrErr *core.OCRFailure
	require.ErrorAs(t, err, &ocrErr)
	assert.ErrorContains(t, err, "build tag")
}
