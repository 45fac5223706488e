package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	sc "github.com/dmitrijs2005/blogkeeper/internal/server/config"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ImageStore keeps post images. Put returns the public URL of the stored
// object.
type ImageStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
		return c.DeleteObject(ctx, in, optFns...)
	}
)

// NewImageKey returns a fresh object key under prefix, keeping the extension
// of the uploaded file name.
func NewImageKey(prefix, filename string) string {
	d := time.Now()
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("%s/%d/%d/%d/%v%s", strings.Trim(prefix, "/"), d.Year(), d.Month(), d.Day(), uuid.New(), ext)
}

// S3ImageStore stores images in an S3-compatible bucket (MinIO in
// development) and serves them by path-style URL.
type S3ImageStore struct {
	client   *s3.Client
	bucket   string
	endpoint string
}

func NewS3ImageStore(ctx context.Context, c *sc.Config) (*S3ImageStore, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(c.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.S3RootUser,     // MINIO_ROOT_USER
			c.S3RootPassword, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(c.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3ImageStore{client: client, bucket: c.S3Bucket, endpoint: c.S3BaseEndpoint}, nil
}

func (s *S3ImageStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if size >= 0 {
		in.ContentLength = aws.Int64(size)
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := putObject(s.client, ctx, in); err != nil {
		return "", fmt.Errorf("error uploading image: %w", err)
	}
	return s.URL(key), nil
}

func (s *S3ImageStore) Delete(ctx context.Context, key string) error {
	_, err := deleteObject(s.client, ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("error deleting image: %w", err)
	}
	return nil
}

// URL is the public path-style address of key.
func (s *S3ImageStore) URL(key string) string {
	return strings.TrimRight(s.endpoint, "/") + "/" + s.bucket + "/" + key
}

// MemoryImageStore keeps images in process memory. It pairs with the
// in-memory repositories.
type MemoryImageStore struct {
	mu      sync.Mutex
	baseURL string
	objects map[string][]byte
}

func NewMemoryImageStore(baseURL string) *MemoryImageStore {
	return &MemoryImageStore{baseURL: strings.TrimRight(baseURL, "/"), objects: map[string][]byte{}}
}

func (m *MemoryImageStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return "", fmt.Errorf("error uploading image: %w", err)
	}
	m.mu.Lock()
	m.objects[key] = buf.Bytes()
	m.mu.Unlock()
	return m.baseURL + "/" + key, nil
}

func (m *MemoryImageStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

// Has reports whether key is stored.
func (m *MemoryImageStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}
