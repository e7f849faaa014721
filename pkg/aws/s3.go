package aws

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectStore stores shop logos and product images in one bucket.
type ObjectStore struct {
	client    *s3.Client
	uploader  *manager.Uploader
	presigner *s3.PresignClient
	bucket    string
	baseURL   string
}

// NewObjectStore builds an S3-backed store. publicBaseURL is the CDN or bucket
// URL that object keys are appended to when rendering image links.
func NewObjectStore(cfg sdkaws.Config, bucket, publicBaseURL string) *ObjectStore {
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		// LocalStack only serves path-style URLs
		o.UsePathStyle = EndpointFor("S3") != ""
	})
	return &ObjectStore{
		client:    client,
		uploader:  manager.NewUploader(client),
		presigner: s3.NewPresignClient(client),
		bucket:    bucket,
		baseURL:   strings.TrimSuffix(publicBaseURL, "/"),
	}
}

// Upload writes body under key. body need not be seekable.
func (o *ObjectStore) Upload(ctx context.Context, key, contentType string, body io.Reader) error {
	_, err := o.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      sdkaws.String(o.bucket),
		Key:         sdkaws.String(key),
		Body:        body,
		ContentType: sdkaws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Missing keys are not an error.
func (o *ObjectStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	_, err := o.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: sdkaws.String(o.bucket),
		Key:    sdkaws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", key, err)
	}
	return nil
}

// PresignPut returns a presigned PUT URL plus the headers the client must send.
func (o *ObjectStore) PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, map[string]string, error) {
	input := &s3.PutObjectInput{
		Bucket: sdkaws.String(o.bucket),
		Key:    sdkaws.String(key),
	}
	if contentType != "" {
		input.ContentType = sdkaws.String(contentType)
	}

	presigned, err := o.presigner.PresignPutObject(ctx, input, func(po *s3.PresignOptions) {
		po.Expires = expiry
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to presign put object: %w", err)
	}

	headers := make(map[string]string)
	for k, v := range presigned.SignedHeader {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}
	return presigned.URL, headers, nil
}

// PublicURL renders the browser-facing URL of key.
func (o *ObjectStore) PublicURL(key string) string {
	return PublicURL(o.baseURL, key)
}

// PublicURL joins a base URL and an object key; empty keys stay empty.
func PublicURL(baseURL, key string) string {
	if key == "" {
		return ""
	}
	if strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
		return key
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(key, "/")
}
