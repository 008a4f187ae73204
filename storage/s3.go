package storage

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/livepeer/reframe-media/errors"
)

// S3 implements Backend against an S3-compatible object store (AWS S3 or
// an R2/MinIO endpoint reached via EndpointURL). Mirrors the Python
// reference's S3StorageBackend key/URI conventions.
type S3 struct {
	Bucket        string
	Prefix        string
	Region        string
	EndpointURL   string
	PublicBaseURL string
	PresignExpiry time.Duration

	client *s3.S3
}

func NewS3(bucket, prefix, region, endpointURL, publicBaseURL string, presignExpiry time.Duration) (*S3, error) {
	if presignExpiry < 60*time.Second {
		presignExpiry = 60 * time.Second
	}

	cfg := aws.NewConfig().WithRegion(region)
	if endpointURL != "" {
		cfg = cfg.WithEndpoint(endpointURL).WithS3ForcePathStyle(true)
	}
	if accessKey := os.Getenv("S3_ACCESS_KEY_ID"); accessKey != "" {
		cfg = cfg.WithCredentials(credentials.NewStaticCredentials(
			accessKey, os.Getenv("S3_SECRET_ACCESS_KEY"), os.Getenv("S3_SESSION_TOKEN")))
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, errors.NewServerError("failed to create aws session", err)
	}

	return &S3{
		Bucket:        bucket,
		Prefix:        strings.Trim(prefix, "/"),
		Region:        region,
		EndpointURL:   endpointURL,
		PublicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
		PresignExpiry: presignExpiry,
		client:        s3.New(sess),
	}, nil
}

func (b *S3) makeKey(relDir, filename string) string {
	parts := []string{}
	if b.Prefix != "" {
		parts = append(parts, b.Prefix)
	}
	if relDir != "" {
		parts = append(parts, strings.Trim(relDir, "/"))
	}
	parts = append(parts, filename)
	return path.Join(parts...)
}

func (b *S3) makeURI(key string) string {
	if b.PublicBaseURL != "" {
		return fmt.Sprintf("%s/%s", b.PublicBaseURL, key)
	}
	return fmt.Sprintf("s3://%s/%s", b.Bucket, key)
}

func (b *S3) keyFromURI(uri string) (string, error) {
	if b.PublicBaseURL != "" && strings.HasPrefix(uri, b.PublicBaseURL+"/") {
		return strings.TrimPrefix(uri, b.PublicBaseURL+"/"), nil
	}
	prefix := fmt.Sprintf("s3://%s/", b.Bucket)
	if strings.HasPrefix(uri, prefix) {
		return strings.TrimPrefix(uri, prefix), nil
	}
	return "", errors.NewValidationError(fmt.Sprintf("uri %q does not belong to this s3 backend", uri), nil)
}

func (b *S3) WriteFile(relDir, filename, sourcePath, mimeType string) (string, error) {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return "", errors.NewServerError("failed to read source file", err)
	}
	return b.WriteBytes(relDir, filename, data, mimeType)
}

func (b *S3) WriteBytes(relDir, filename string, data []byte, mimeType string) (string, error) {
	key := b.makeKey(relDir, filename)
	input := &s3.PutObjectInput{
		Bucket: aws.String(b.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if mimeType != "" {
		input.ContentType = aws.String(mimeType)
	}
	if _, err := b.client.PutObject(input); err != nil {
		return "", errors.NewServerError("failed to upload object", err)
	}
	return b.makeURI(key), nil
}

// ResolveLocalPath always fails for the S3 backend: there is no local path
// for a remote object.
func (b *S3) ResolveLocalPath(uri string) (string, error) {
	return "", errors.NewValidationError(fmt.Sprintf("cannot resolve remote uri %q to a local path", uri), nil)
}

func (b *S3) GetDownloadURL(uri string, presign bool) (string, error) {
	key, err := b.keyFromURI(uri)
	if err != nil {
		return "", err
	}
	if !presign && b.PublicBaseURL != "" {
		return uri, nil
	}

	req, _ := b.client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(b.Bucket),
		Key:    aws.String(key),
	})
	url, err := req.Presign(b.PresignExpiry)
	if err != nil {
		return "", errors.NewServerError("failed to presign download url", err)
	}
	return url, nil
}

var _ Backend = (*S3)(nil)
