package http

import (
	"bytes"
	"image"

	// Register the decoders the standard image.Decode dispatches on.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	chaiwebp "github.com/chai2010/webp"
)

// decodeImage decodes an uploaded image. Some encoders emit WebP
// variants the x/image decoder rejects, so those get a second chance
// with the cgo-free libwebp port.
func decodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err == nil {
		return img, nil
	}
	if webpImg, werr := chaiwebp.Decode(bytes.NewReader(data)); werr == nil {
		return webpImg, nil
	}
	return nil, err
}
