package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Veraticus/spend-sage/internal/model"
)

// ArchiveConfig locates the S3-compatible bucket reports are archived to.
type ArchiveConfig struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

// Validate checks that the config can reach a bucket.
func (c ArchiveConfig) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return fmt.Errorf("archive endpoint is required")
	}
	if strings.TrimSpace(c.AccessKey) == "" || strings.TrimSpace(c.SecretKey) == "" {
		return fmt.Errorf("archive access key and secret key are required")
	}
	if strings.TrimSpace(c.Bucket) == "" {
		return fmt.Errorf("archive bucket is required")
	}
	return nil
}

// objectStore is the subset of *minio.Client used by Archive.
type objectStore interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Archive stores every report as a JSON document and a plain-text rendering
// under <prefix>/<username>/<run id>.
type Archive struct {
	client   objectStore
	initErr  error
	bucket   string
	region   string
	prefix   string
	initOnce sync.Once
}

// NewArchive connects to the bucket described by cfg.
func NewArchive(cfg ArchiveConfig) (*Archive, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(strings.TrimSpace(cfg.Endpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init archive client: %w", err)
	}

	return newArchive(client, cfg.Bucket, region, cfg.Prefix), nil
}

func newArchive(client objectStore, bucket, region, prefix string) *Archive {
	return &Archive{
		client: client,
		bucket: bucket,
		region: region,
		prefix: strings.Trim(prefix, "/"),
	}
}

func (a *Archive) ensureBucket(ctx context.Context) error {
	a.initOnce.Do(func() {
		exists, err := a.client.BucketExists(ctx, a.bucket)
		if err != nil {
			a.initErr = err
			return
		}
		if !exists {
			a.initErr = a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{Region: a.region})
		}
	})
	return a.initErr
}

// Keys returns the object keys report is archived under.
func (a *Archive) Keys(report *model.Report) (jsonKey, textKey string) {
	base := path.Join(a.prefix, report.Username, report.RunID)
	return base + ".json", base + ".txt"
}

// Write implements service.ReportWriter.
func (a *Archive) Write(ctx context.Context, report *model.Report) error {
	if report.RunID == "" {
		return fmt.Errorf("report has no run ID")
	}
	if err := a.ensureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}

	doc, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	jsonKey, textKey := a.Keys(report)
	if err := a.put(ctx, jsonKey, doc, "application/json"); err != nil {
		return err
	}
	return a.put(ctx, textKey, []byte(RenderText(report, false)), "text/plain; charset=utf-8")
}

func (a *Archive) put(ctx context.Context, key string, content []byte, contentType string) error {
	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to archive %s: %w", key, err)
	}
	return nil
}
