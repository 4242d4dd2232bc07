package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss"
	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss/credentials"

	"assetsync/internal/services"
)

// OSSOptions configures the Aliyun OSS backend.
type OSSOptions struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	AccessKeySecret string
	PublicRead      bool
}

// OSS publishes objects to an Aliyun OSS bucket.
type OSS struct {
	client     *oss.Client
	bucket     string
	publicRead bool
}

// NewOSS builds an OSS client. Without explicit keys the OSS_ACCESS_KEY_ID /
// OSS_ACCESS_KEY_SECRET environment provider is used.
func NewOSS(opts OSSOptions) (*OSS, error) {
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "oss", "open", "bucket is required", nil)
	}
	var provider credentials.CredentialsProvider
	if opts.AccessKeyID != "" && opts.AccessKeySecret != "" {
		provider = credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.AccessKeySecret, "")
	} else {
		provider = credentials.NewEnvironmentVariableCredentialsProvider()
	}
	cfg := oss.LoadDefaultConfig().
		WithCredentialsProvider(provider).
		WithRegion(strings.TrimPrefix(opts.Region, "oss-"))
	if opts.Endpoint != "" {
		cfg = cfg.WithEndpoint(opts.Endpoint)
	}
	return &OSS{client: oss.NewClient(cfg), bucket: opts.Bucket, publicRead: opts.PublicRead}, nil
}

// Put uploads data in a single request.
func (s *OSS) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	request := &oss.PutObjectRequest{
		Bucket: oss.Ptr(s.bucket),
		Key:    oss.Ptr(key),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		request.ContentType = oss.Ptr(contentType)
	}
	if s.publicRead {
		request.Acl = oss.ObjectACLPublicRead
	}
	if _, err := s.client.PutObject(ctx, request); err != nil {
		return services.Wrap(services.ErrStorage, "oss", "put", fmt.Sprintf("oss://%s/%s", s.bucket, key), err)
	}
	return nil
}

// Get downloads the whole object into memory.
func (s *OSS) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	result, err := s.client.GetObject(ctx, &oss.GetObjectRequest{
		Bucket: oss.Ptr(s.bucket),
		Key:    oss.Ptr(key),
	})
	if err != nil {
		var serr *oss.ServiceError
		if errors.As(err, &serr) && serr.StatusCode == http.StatusNotFound {
			return nil, notFound("oss", key)
		}
		return nil, services.Wrap(services.ErrStorage, "oss", "get", fmt.Sprintf("oss://%s/%s", s.bucket, key), err)
	}
	defer result.Body.Close()
	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "oss", "get", "read body", err)
	}
	return data, nil
}

// Delete removes key.
func (s *OSS) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	_, err := s.client.DeleteObject(ctx, &oss.DeleteObjectRequest{
		Bucket: oss.Ptr(s.bucket),
		Key:    oss.Ptr(key),
	})
	if err != nil {
		return services.Wrap(services.ErrStorage, "oss", "delete", fmt.Sprintf("oss://%s/%s", s.bucket, key), err)
	}
	return nil
}
