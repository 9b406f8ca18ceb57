// Package codec converts between chat images and webp stickers. Pure
// call-through to the image libraries; no engine decisions live here.
package codec

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"

	"github.com/chai2010/webp"
	_ "golang.org/x/image/webp"
)

// ToSticker converts a JPEG/PNG/WebP image into a webp sticker payload.
func ToSticker(img []byte) ([]byte, error) {
	decoded, _, err := image.Decode(bytes.NewReader(img))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, decoded, &webp.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}

// ToImage converts a webp sticker payload into a PNG image.
func ToImage(sticker []byte) ([]byte, error) {
	decoded, _, err := image.Decode(bytes.NewReader(sticker))
	if err != nil {
		return nil, fmt.Errorf("decode sticker: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, decoded); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
