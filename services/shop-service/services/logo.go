package services

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/Khizarkk7/storefront-backend/services/shop-service/models"
)

const MaxLogoBytes = 2 << 20

var logoExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// sniffLogo reads the upload, checks size and content type, and returns the
// bytes, detected content type and file extension.
func sniffLogo(logo *models.LogoUpload) ([]byte, string, string, *ServiceError) {
	if logo.Size > MaxLogoBytes {
		return nil, "", "", &ServiceError{StatusCode: 400, Message: "logo must be 2MB or smaller"}
	}
	data, err := io.ReadAll(io.LimitReader(logo.Body, MaxLogoBytes+1))
	if err != nil {
		return nil, "", "", &ServiceError{StatusCode: 400, Message: "failed to read logo"}
	}
	if len(data) > MaxLogoBytes {
		return nil, "", "", &ServiceError{StatusCode: 400, Message: "logo must be 2MB or smaller"}
	}
	contentType := http.DetectContentType(data)
	ext, ok := logoExtensions[contentType]
	if !ok {
		return nil, "", "", &ServiceError{StatusCode: 400, Message: fmt.Sprintf("unsupported logo type %q", contentType)}
	}
	return data, contentType, ext, nil
}

func logoKey(shopID, ext string) string {
	return "shops/" + shopID + "/logo" + ext
}

func readerOf(data []byte) io.Reader { return bytes.NewReader(data) }
