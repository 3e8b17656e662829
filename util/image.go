package util

import (
	"bytes"
	"errors"
	"image/jpeg"
	"image/png"
)

/*
NormalizeImageToJPEG decodes uploaded media and re-encodes it as JPEG.

Supported mime types are "image/jpg", "image/jpeg", "image/png"
  - @param content []byte
  - @param mimeType string
  - @return []byte
  - @return error
*/
func NormalizeImageToJPEG(content []byte, mimeType string) ([]byte, error) {
	if len(content) == 0 {
		return nil, errors.New("empty content")
	}
	switch mimeType {
	case "image/jpg", "image/jpeg":
		if _, err := jpeg.Decode(bytes.NewReader(content)); err != nil {
			return nil, err
		}
		return content, nil
	case "image/png":
		img, err := png.Decode(bytes.NewReader(content))
		if err != nil {
			return nil, err
		}
		buf := new(bytes.Buffer)
		if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: 83}); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, errors.New("unsupported image type")
	}
}
