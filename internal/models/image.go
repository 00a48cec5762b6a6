// internal/models/image.go
package models

import (
	"errors"
	"net/http"
)

// MaxImageBytes is the largest accepted upload (2 MiB).
const MaxImageBytes = 2 * 1024 * 1024

var (
	ErrImageEmpty    = errors.New("image is empty")
	ErrImageTooLarge = errors.New("image exceeds 2MB")
	ErrImageType     = errors.New("image is not JPEG or PNG")
)

// ImageErrorMessage returns the text shown to the user for a rejected upload.
func ImageErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrImageTooLarge):
		return "File is too large. Maximum size is 2MB."
	case errors.Is(err, ErrImageType):
		return "Invalid file type. Please upload a JPG, JPEG, or PNG image."
	case errors.Is(err, ErrImageEmpty):
		return "The uploaded file is empty."
	}
	return "The image could not be read."
}

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Image is an uploaded meal photo.
type Image struct {
	Data     []byte
	MIMEType string
}

// NewImage validates an upload. The type is sniffed from the bytes rather
// than trusted from the client.
func NewImage(data []byte) (Image, error) {
	if len(data) == 0 {
		return Image{}, ErrImageEmpty
	}
	if len(data) > MaxImageBytes {
		return Image{}, ErrImageTooLarge
	}
	mimeType := http.DetectContentType(data)
	if !allowedImageTypes[mimeType] {
		return Image{}, ErrImageType
	}
	return Image{Data: data, MIMEType: mimeType}, nil
}
