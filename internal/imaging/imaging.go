// Package imaging holds the image plumbing shared by the HTTP surface and
// the enrollment pipeline: base64 payload decoding, face cropping, and JPEG
// encoding for the audit archive and the embedding server.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"strings"

	// Raster formats accepted in base64 payloads.
	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
)

// ErrUndecodable reports a payload that is not valid base64 or does not
// decode to a supported raster image.
var ErrUndecodable = errors.New("image payload is not decodable")

// DecodeBase64Image decodes a base64-encoded raster image. An optional
// "data:image/...;base64," prefix is stripped before decoding.
func DecodeBase64Image(payload string) (image.Image, error) {
	if idx := strings.Index(payload, ","); idx >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[idx+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid base64: %v: %w", err, ErrUndecodable)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %v: %w", err, ErrUndecodable)
	}
	return img, nil
}

// Crop copies the given region into a fresh image. The region is clamped to
// the source bounds; a region that misses the image entirely yields an error.
func Crop(img image.Image, region image.Rectangle) (image.Image, error) {
	region = region.Intersect(img.Bounds())
	if region.Empty() {
		return nil, errors.New("crop region outside image bounds")
	}

	out := image.NewRGBA(image.Rect(0, 0, region.Dx(), region.Dy()))
	draw.Copy(out, image.Point{}, img, region, draw.Src, nil)
	return out, nil
}

// maxCropDim caps crops sent to the embedding server; larger faces carry no
// extra signal and only cost upload time.
const maxCropDim = 512

// ScaleToMax downscales an image so neither dimension exceeds max,
// preserving aspect ratio. Images already within bounds are returned as-is.
func ScaleToMax(img image.Image, max int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= max && h <= max {
		return img
	}

	scale := float64(max) / float64(w)
	if h > w {
		scale = float64(max) / float64(h)
	}
	out := image.NewRGBA(image.Rect(0, 0, int(float64(w)*scale), int(float64(h)*scale)))
	draw.ApproxBiLinear.Scale(out, out.Bounds(), img, b, draw.Src, nil)
	return out
}

// EncodeJPEG encodes an image as JPEG bytes.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("encoding jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// PrepareCrop crops the region and bounds its size for the embedder.
func PrepareCrop(img image.Image, region image.Rectangle) (image.Image, error) {
	crop, err := Crop(img, region)
	if err != nil {
		return nil, err
	}
	return ScaleToMax(crop, maxCropDim), nil
}
