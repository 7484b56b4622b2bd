package helper

import (
	"bytes"

	"github.com/disintegration/imaging"
)

const thumbnailDimension = 72

// JPEGThumbnail builds the small preview WhatsApp shows next to an image
// message.
func JPEGThumbnail(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}

	thumb := imaging.Fit(img, thumbnailDimension, thumbnailDimension, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(75)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
