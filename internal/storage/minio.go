package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"curriculo/internal/config"
)

// Client 保存导出文件。写操作走内部地址；下载链接用公共地址签名，
// 这样浏览器拿到的 URL 指向对外域名。
type Client struct {
	objects *minio.Client
	signer  *minio.Client
	bucket  string
}

var bucketLookups = map[string]minio.BucketLookupType{
	"":     minio.BucketLookupAuto,
	"auto": minio.BucketLookupAuto,
	"dns":  minio.BucketLookupDNS,
	"path": minio.BucketLookupPath,
}

type endpoint struct {
	host   string
	secure bool
}

func publicEndpoint(raw string) (endpoint, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return endpoint{}, false, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return endpoint{}, false, fmt.Errorf("parse minio public endpoint: %w", err)
	}
	if u.Host == "" {
		return endpoint{}, false, errors.New("minio public endpoint must be an absolute url")
	}
	return endpoint{host: u.Host, secure: u.Scheme == "https"}, true, nil
}

// NewClient 连接 MinIO 并确保 Bucket 存在（AutoCreateBucket 关闭时缺失即报错）。
func NewClient(cfg config.MinIOConfig) (*Client, error) {
	lookup, ok := bucketLookups[strings.ToLower(strings.TrimSpace(cfg.BucketLookup))]
	if !ok {
		return nil, fmt.Errorf("invalid minio bucket lookup %q", cfg.BucketLookup)
	}
	dial := func(ep endpoint) (*minio.Client, error) {
		return minio.New(ep.host, &minio.Options{
			Creds:        credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
			Secure:       ep.secure,
			Region:       cfg.Region,
			BucketLookup: lookup,
		})
	}

	objects, err := dial(endpoint{host: cfg.Endpoint, secure: cfg.UseSSL})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	signer := objects
	if ep, set, err := publicEndpoint(cfg.PublicEndpoint); err != nil {
		return nil, err
	} else if set {
		if signer, err = dial(ep); err != nil {
			return nil, fmt.Errorf("init public minio client: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ensureBucket(ctx, objects, cfg); err != nil {
		return nil, err
	}
	return &Client{objects: objects, signer: signer, bucket: cfg.Bucket}, nil
}

func ensureBucket(ctx context.Context, mc *minio.Client, cfg config.MinIOConfig) error {
	exists, err := mc.BucketExists(ctx, cfg.Bucket)
	switch {
	case err != nil:
		return fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	case exists:
		return nil
	case !cfg.AutoCreateBucket:
		return fmt.Errorf("bucket %q does not exist (auto create disabled)", cfg.Bucket)
	}
	if err := mc.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
		return fmt.Errorf("make bucket %q: %w", cfg.Bucket, err)
	}
	return nil
}

// PutObject 上传一个已在内存中的导出文件。
func (c *Client) PutObject(ctx context.Context, objectKey string, data []byte, contentType string) error {
	_, err := c.objects.PutObject(ctx, c.bucket, objectKey, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("put object %q: %w", objectKey, err)
	}
	return nil
}

// PresignDownload 生成限时下载链接，浏览器会以 filename 保存文件。
func (c *Client) PresignDownload(ctx context.Context, objectKey, filename string, ttl time.Duration) (string, error) {
	params := url.Values{}
	if filename != "" {
		params.Set("response-content-disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	}
	u, err := c.signer.PresignedGetObject(ctx, c.bucket, objectKey, ttl, params)
	if err != nil {
		return "", fmt.Errorf("presign %q: %w", objectKey, err)
	}
	return u.String(), nil
}

// DeletePrefix 批量删除前缀下的对象，用于删除简历时清理导出文件。
// Bucket 或对象已不存在都视为成功。
func (c *Client) DeletePrefix(ctx context.Context, prefix string) error {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	listed := c.objects.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true})
	toRemove := make(chan minio.ObjectInfo)
	listErr := make(chan error, 1)
	go func() {
		defer close(toRemove)
		for obj := range listed {
			if obj.Err != nil {
				if !IsNoSuchBucket(obj.Err) {
					listErr <- fmt.Errorf("list objects under %q: %w", prefix, obj.Err)
				}
				return
			}
			select {
			case toRemove <- obj:
			case <-ctx.Done():
				return
			}
		}
	}()

	var errs []error
	for rmErr := range c.objects.RemoveObjects(ctx, c.bucket, toRemove, minio.RemoveObjectsOptions{}) {
		if rmErr.Err != nil && !IsNoSuchKey(rmErr.Err) {
			errs = append(errs, fmt.Errorf("remove %q: %w", rmErr.ObjectName, rmErr.Err))
		}
	}
	select {
	case err := <-listErr:
		errs = append(errs, err)
	default:
	}
	return errors.Join(errs...)
}
