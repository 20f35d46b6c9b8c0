package utils

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
)

const (
	// MaxMediaSize is 25MB in bytes
	MaxMediaSize = 25 * 1024 * 1024
)

// allowedMediaTypes maps permitted file extensions to their content types.
// Staff upload progress photos and short install videos.
var allowedMediaTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
}

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// ValidateMediaFile validates the uploaded file format and size
func ValidateMediaFile(fileHeader *multipart.FileHeader) error {
	// Check file size
	if fileHeader.Size > MaxMediaSize {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxMediaSize/(1024*1024)),
		}
	}

	// Check file extension
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if _, ok := allowedMediaTypes[ext]; !ok {
		return &FileUploadError{
			Code:    "INVALID_FILE_FORMAT",
			Message: fmt.Sprintf("File type %q is not allowed; accepted: jpg, jpeg, png, webp, mp4, mov", ext),
		}
	}

	return nil
}

// ContentTypeForFile returns the content type for an uploaded file based on
// its extension, or "application/octet-stream" for unknown extensions.
func ContentTypeForFile(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ct, ok := allowedMediaTypes[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}
