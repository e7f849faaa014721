package services

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/Khizarkk7/storefront-backend/services/product-service/models"
)

const MaxImageBytes = 5 << 20

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// readImage enforces the size limit and sniffs the content type.
func readImage(img *models.ImageUpload) ([]byte, string, string, *ServiceError) {
	if img.Size > MaxImageBytes {
		return nil, "", "", &ServiceError{StatusCode: 400, Message: "image must be 5MB or smaller"}
	}
	data, err := io.ReadAll(io.LimitReader(img.Body, MaxImageBytes+1))
	if err != nil {
		return nil, "", "", &ServiceError{StatusCode: 400, Message: "failed to read image"}
	}
	if len(data) > MaxImageBytes {
		return nil, "", "", &ServiceError{StatusCode: 400, Message: "image must be 5MB or smaller"}
	}
	contentType := http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, "", "", &ServiceError{StatusCode: 400, Message: fmt.Sprintf("unsupported image type %q", contentType)}
	}
	return data, contentType, ext, nil
}

// imageKey is products/{shopID}/{random}{ext}; a fresh name per upload
// keeps CDN caches from serving a replaced image.
func imageKey(shopID, ext string) string {
	return "products/" + shopID + "/" + uuid.NewString() + ext
}

// presignKey keeps the client's extension when it matches the content type.
func presignKey(shopID, filename, contentType string) (string, bool) {
	ext, ok := imageExtensions[strings.ToLower(contentType)]
	if !ok {
		return "", false
	}
	if e := strings.ToLower(path.Ext(filename)); e == ".jpeg" || e == ext {
		ext = e
	}
	return imageKey(shopID, ext), true
}

// ownsKey reports whether key was issued for shopID.
func ownsKey(shopID, key string) bool {
	return strings.HasPrefix(key, "products/"+shopID+"/") && !strings.Contains(key, "..")
}

func readerOf(data []byte) io.Reader { return bytes.NewReader(data) }
