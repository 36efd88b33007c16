package domain

import "context"

// MaxImageSize is the largest banner image accepted for upload (5 MiB).
const MaxImageSize = 5 << 20

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ImageExtension returns the file extension for an allowed image MIME type, or "".
func ImageExtension(contentType string) string {
	return imageExtensions[contentType]
}

// ValidateImageUpload checks presence, MIME type and size of a banner image
// before it is handed to the upload service.
func ValidateImageUpload(img *ImageFile) error {
	if img == nil || len(img.Data) == 0 {
		return NewValidationError("image", "Image file is required")
	}
	if ImageExtension(img.ContentType) == "" {
		return NewValidationError("image", "Invalid file type. Allowed: JPEG, PNG, WebP, GIF")
	}
	if img.Size > MaxImageSize || int64(len(img.Data)) > MaxImageSize {
		return NewValidationError("image", "File size exceeds 5MB limit")
	}
	return nil
}

// ImageUploader stores raw image bytes under a folder hint and returns a durable URL.
// Failures wrap ErrUpstream.
type ImageUploader interface {
	Upload(ctx context.Context, folder string, img *ImageFile) (url string, err error)
}
