package utils

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
)

// MaxInlineImageBytes caps how much raw image data may be stored
// inline on a listing document (document stores cap records around
// 1MB; 700KB leaves headroom for the rest of the fields).
const MaxInlineImageBytes = 700_000

// ErrImageTooLarge means no encoding of the image fit under
// MaxInlineImageBytes, even after downscaling.
var ErrImageTooLarge = errors.New("image could not be compressed under the inline size cap")

// qualityLadder mirrors the client's 0.1/0.05/0.02/0.01/0.005
// compression attempts on jpeg's 1-100 scale.
var qualityLadder = []int{10, 5, 2, 1}

const (
	fallbackWidth  = 800
	fallbackHeight = 600
)

// EncodeInlinePhoto turns raw image bytes (jpeg or png) into a
// data:image/jpeg;base64 URL no larger than MaxInlineImageBytes of raw
// jpeg data. Payloads already under the cap pass through unchanged.
// Oversized ones walk the quality ladder, and if that fails are
// redrawn into an 800x600 box and run through the ladder again.
// Returns ErrImageTooLarge when nothing fits.
func EncodeInlinePhoto(data []byte) (string, error) {
	if len(data) <= MaxInlineImageBytes {
		return dataURL(data), nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", err
	}

	if encoded, ok := compressUnderCap(img); ok {
		return dataURL(encoded), nil
	}

	// Compression alone didn't get there; shrink the image and retry.
	resized := image.NewRGBA(image.Rect(0, 0, fallbackWidth, fallbackHeight))
	xdraw.ApproxBiLinear.Scale(resized, resized.Bounds(), img, img.Bounds(), xdraw.Src, nil)

	if encoded, ok := compressUnderCap(resized); ok {
		return dataURL(encoded), nil
	}

	return "", ErrImageTooLarge
}

func compressUnderCap(img image.Image) ([]byte, bool) {
	for _, quality := range qualityLadder {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			continue
		}
		if buf.Len() <= MaxInlineImageBytes {
			return buf.Bytes(), true
		}
	}
	return nil, false
}

func dataURL(data []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data)
}
