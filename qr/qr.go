// Package qr encodes signup links as scannable PNG images delivered as
// data URIs, ready to drop into an <img> tag or a download button.
package qr

import (
	"encoding/base64"
	"fmt"
	"image/color"

	"github.com/skip2/go-qrcode"
)

const (
	imageSize     = 300
	dataURIPrefix = "data:image/png;base64,"
)

type Encoder struct {
	size       int
	foreground color.Color
	background color.Color
}

// NewEncoder returns an encoder with the fixed palette used across the
// app: dark slate modules on a white background, 300px square.
func NewEncoder() *Encoder {
	return &Encoder{
		size:       imageSize,
		foreground: color.RGBA{R: 0x1f, G: 0x29, B: 0x37, A: 0xff},
		background: color.White,
	}
}

// DataURI encodes text into a PNG QR image and returns it as a base64
// data URI. Output is deterministic for identical input.
func (e *Encoder) DataURI(text string) (string, error) {
	q, err := qrcode.New(text, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}
	q.ForegroundColor = e.foreground
	q.BackgroundColor = e.background

	png, err := q.PNG(e.size)
	if err != nil {
		return "", fmt.Errorf("render qr png: %w", err)
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(png), nil
}
