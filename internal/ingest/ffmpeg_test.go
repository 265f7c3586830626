package ingest

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeTestJPEG(t *testing.T, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 24))
	for y := 0; y < 24; y++ {
		for x := 0; x < 32; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}))
	return buf.Bytes()
}

func TestDecodeFrameProducesCoRegisteredPair(t *testing.T) {
	data := encodeTestJPEG(t, color.RGBA{R: 180, G: 120, B: 60, A: 255})

	frame, err := decodeFrame(data, 1234)
	require.NoError(t, err)

	assert.Equal(t, int64(1234), frame.Time)
	require.NotNil(t, frame.RGB)
	require.NotNil(t, frame.Gray)
	assert.Equal(t, frame.RGB.Bounds(), frame.Gray.Bounds())
	assert.Equal(t, 32, frame.RGB.Bounds().Dx())
}

func TestDecodeFrameRejectsGarbage(t *testing.T) {
	_, err := decodeFrame([]byte{0xFF, 0xD8, 0x00, 0x01}, 0)
	assert.Error(t, err)
}

func TestReadJPEGFramesSplitsConcatenatedStream(t *testing.T) {
	first := encodeTestJPEG(t, color.RGBA{R: 255, A: 255})
	second := encodeTestJPEG(t, color.RGBA{G: 255, A: 255})

	stream := append(append([]byte{}, first...), second...)

	var frames int
	err := readJPEGFrames(context.Background(), bytes.NewReader(stream), func(data []byte) error {
		frames++
		// Each chunk is a decodable JPEG.
		_, err := jpeg.Decode(bytes.NewReader(data))
		assert.NoError(t, err)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, frames)
}

func TestReadJPEGFramesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := readJPEGFrames(ctx, bytes.NewReader(nil), func([]byte) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
