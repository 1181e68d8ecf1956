// Package imaging runs the image tools that need no server: compression,
// percentage resize and format conversion for formats with a Go encoder.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"math"

	"github.com/webtoolkit/convkit/internal/utils"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	DefaultCompressQuality = 85
	DefaultConvertQuality  = 90
	DefaultResizePercent   = 80

	resizeJPEGQuality = 95
	minQuality        = 10
	maxQuality        = 100
)

var (
	ErrNeedsServer = errors.New("imaging: target format has no local encoder")
	ErrBadPercent  = errors.New("imaging: resize percent must be between 1 and 100")
)

var extByMIME = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/webp": "webp",
	"image/bmp":  "bmp",
	"image/tiff": "tiff",
	"image/gif":  "gif",
}

// Result is an encoded image.
type Result struct {
	Data          []byte
	MIMEType      string
	Width, Height int
}

// ExtFor maps an output media type to the extension used in download names.
func ExtFor(mimeType string) string {
	if ext, ok := extByMIME[utils.BaseMediaType(mimeType)]; ok {
		return ext
	}
	return "img"
}

// CanEncodeLocally reports whether Convert can produce mimeType without the server.
func CanEncodeLocally(mimeType string) bool {
	switch utils.BaseMediaType(mimeType) {
	case "image/png", "image/jpeg", "image/gif", "image/bmp", "image/tiff":
		return true
	}
	return false
}

// Dimensions reads the pixel size without decoding the whole image.
func Dimensions(src []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(src))
	if err != nil {
		return 0, 0, fmt.Errorf("imaging: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// Compress re-encodes src as JPEG on a white background.
func Compress(src []byte, quality int) (*Result, error) {
	img, err := decode(src)
	if err != nil {
		return nil, err
	}
	return encode(flatten(img), "image/jpeg", clampQuality(quality))
}

// Resize scales src to percent of its size. JPEG input stays JPEG, anything
// else becomes PNG so transparency survives.
func Resize(src []byte, srcMIME string, percent int) (*Result, error) {
	if percent < 1 || percent > 100 {
		return nil, fmt.Errorf("%w: %d", ErrBadPercent, percent)
	}
	img, err := decode(src)
	if err != nil {
		return nil, err
	}

	w, h := ScaledSize(img.Bounds().Dx(), img.Bounds().Dy(), percent)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	if utils.BaseMediaType(srcMIME) == "image/jpeg" {
		return encode(dst, "image/jpeg", resizeJPEGQuality)
	}
	return encode(dst, "image/png", 0)
}

// ScaledSize rounds each side to the nearest pixel, never below one.
func ScaledSize(w, h, percent int) (int, int) {
	scale := func(v int) int {
		return max(1, int(math.Round(float64(v)*float64(percent)/100)))
	}
	return scale(w), scale(h)
}

// Convert re-encodes src as targetMIME. Targets without a local encoder return
// ErrNeedsServer.
func Convert(src []byte, targetMIME string, quality int) (*Result, error) {
	target := utils.BaseMediaType(targetMIME)
	if !CanEncodeLocally(target) {
		return nil, fmt.Errorf("%w: %s", ErrNeedsServer, target)
	}
	img, err := decode(src)
	if err != nil {
		return nil, err
	}
	if target == "image/jpeg" {
		img = flatten(img)
	}
	return encode(img, target, clampQuality(quality))
}

func decode(src []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("imaging: decode: %w", err)
	}
	return img, nil
}

// flatten paints img over opaque white.
func flatten(img image.Image) image.Image {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}

func encode(img image.Image, mimeType string, quality int) (*Result, error) {
	var (
		buf bytes.Buffer
		err error
	)
	switch mimeType {
	case "image/jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	case "image/png":
		err = png.Encode(&buf, img)
	case "image/gif":
		err = gif.Encode(&buf, img, nil)
	case "image/bmp":
		err = bmp.Encode(&buf, img)
	case "image/tiff":
		err = tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return nil, fmt.Errorf("%w: %s", ErrNeedsServer, mimeType)
	}
	if err != nil {
		return nil, fmt.Errorf("imaging: encode %s: %w", mimeType, err)
	}

	b := img.Bounds()
	return &Result{Data: buf.Bytes(), MIMEType: mimeType, Width: b.Dx(), Height: b.Dy()}, nil
}

func clampQuality(q int) int {
	return min(maxQuality, max(minQuality, q))
}
