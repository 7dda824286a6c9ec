package qr

import (
	"encoding/base64"
	"fmt"

	"github.com/skip2/go-qrcode"
)

const DefaultSize = 320

// Terminal renders code as block characters for printing on a console.
func Terminal(code string) (string, error) {
	q, err := qrcode.New(code, qrcode.Low)
	if err != nil {
		return "", fmt.Errorf("failed to encode QR: %w", err)
	}
	return q.ToSmallString(false), nil
}

// PNG renders code as a square PNG of the given size in pixels.
func PNG(code string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}
	png, err := qrcode.Encode(code, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR: %w", err)
	}
	return png, nil
}

// PNGDataURL renders code as a data URL usable as an <img> source.
func PNGDataURL(code string, size int) (string, error) {
	png, err := PNG(code, size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
