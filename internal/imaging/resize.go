// Package imaging holds small image helpers used before extraction.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

// Downscale re-encodes the image as JPEG with its longer edge capped at
// maxEdge, preserving aspect ratio. Images already within the bound are
// returned unchanged. Detection quality is insensitive to the downscale
// while extraction latency is not.
func Downscale(data []byte, maxEdge int) ([]byte, error) {
	if maxEdge <= 0 {
		return data, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxEdge && h <= maxEdge {
		return data, nil
	}

	if w >= h {
		h = h * maxEdge / w
		w = maxEdge
	} else {
		w = w * maxEdge / h
		h = maxEdge
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}
	return buf.Bytes(), nil
}

// PrepareProbe downscales a probe image, falling back to the original
// bytes when the format is not decodable locally. The extractor service
// may still understand formats this process cannot.
func PrepareProbe(data []byte, maxEdge int) []byte {
	scaled, err := Downscale(data, maxEdge)
	if err != nil {
		return data
	}
	return scaled
}
