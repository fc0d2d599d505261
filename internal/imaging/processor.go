// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging validates and post-processes uploaded images using pure Go
// libraries: decode verification, EXIF auto-orientation, and thumbnail
// generation for the admin gallery pickers.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder
)

// ThumbnailWidth bounds generated thumbnails; height follows the aspect ratio.
const ThumbnailWidth = 320

// jpegQuality for re-encoded images.
const jpegQuality = 95

// Result describes a processed upload.
type Result struct {
	Width    int
	Height   int
	Format   string
	MimeType string
	Data     []byte
}

// Process decodes the uploaded bytes, applies the EXIF orientation, and
// re-encodes in the original format. Re-encoding with the pure Go encoders
// also drops EXIF metadata, so uploads never leak camera or location data.
// Fails when the bytes do not decode as a supported image.
func Process(data []byte) (*Result, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	img = applyOrientation(img, readOrientation(bytes.NewReader(data)))

	// WebP has no pure Go encoder; re-encode as PNG to stay lossless.
	if format == "webp" {
		format = "png"
	}

	encoded, err := encode(img, format)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	return &Result{
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Format:   format,
		MimeType: "image/" + format,
		Data:     encoded,
	}, nil
}

// Thumbnail produces a width-bounded variant of a processed image. Images
// already narrower than ThumbnailWidth are returned re-encoded, not upscaled.
func Thumbnail(data []byte) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	if img.Bounds().Dx() > ThumbnailWidth {
		img = imaging.Resize(img, ThumbnailWidth, 0, imaging.Lanczos)
	}
	if format == "webp" {
		format = "png"
	}
	return encode(img, format)
}

// IsImageMime reports whether mimeType names an image format the processor
// accepts.
func IsImageMime(mimeType string) bool {
	switch mimeType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}

// readOrientation extracts the EXIF orientation tag, defaulting to 1 (keep).
func readOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return orientation
}

// applyOrientation normalizes an image according to its EXIF orientation.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

func encode(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
	case "png":
		err = png.Encode(&buf, img)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		return nil, fmt.Errorf("unsupported image format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", format, err)
	}
	return buf.Bytes(), nil
}
