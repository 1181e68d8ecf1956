// Package qrgen renders text as a QR code PNG.
package qrgen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

const (
	DefaultSize     = 256
	DefaultFileName = "qr_web_toolkit.png"
)

var ErrEmptyInput = errors.New("qrgen: text is empty")

// Generate encodes the trimmed text at error-correction level High. A size
// below one falls back to DefaultSize.
func Generate(text string, size int) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyInput
	}
	if size < 1 {
		size = DefaultSize
	}

	png, err := qrcode.Encode(text, qrcode.High, size)
	if err != nil {
		return nil, fmt.Errorf("qrgen: encode: %w", err)
	}
	return png, nil
}
