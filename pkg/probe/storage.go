package probe

import (
	"context"
	"strconv"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/gatherly/vitals/pkg/status"
)

// BucketAPI is the subset of minio.Client the storage probe needs.
type BucketAPI interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	ListBuckets(ctx context.Context) ([]minio.BucketInfo, error)
}

// ObjectStorageProber checks the S3-compatible object store holding event
// photos and attachments.
type ObjectStorageProber struct {
	client     BucketAPI
	bucket     string
	thresholds status.LatencyThresholds
	timeout    time.Duration
}

// NewObjectStorageProber creates a storage probe. When bucket is empty the
// probe lists buckets instead of checking one. Default thresholds are
// looser than the datastore's: warn 300ms, critical 1500ms.
func NewObjectStorageProber(client BucketAPI, bucket string, thresholds status.LatencyThresholds, timeout time.Duration) *ObjectStorageProber {
	return &ObjectStorageProber{
		client:     client,
		bucket:     bucket,
		thresholds: thresholds,
		timeout:    timeout,
	}
}

// Name returns the service name.
func (p *ObjectStorageProber) Name() string {
	return "storage"
}

// Check performs a minimal bucket round trip and classifies the elapsed time.
func (p *ObjectStorageProber) Check(ctx context.Context) Result {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	details := make(map[string]string)

	if p.bucket != "" {
		exists, err := p.client.BucketExists(ctx, p.bucket)
		if err != nil {
			return failure(start, err)
		}
		details["bucket"] = p.bucket
		details["bucket_exists"] = strconv.FormatBool(exists)
	} else {
		buckets, err := p.client.ListBuckets(ctx)
		if err != nil {
			return failure(start, err)
		}
		details["buckets"] = strconv.Itoa(len(buckets))
	}
	elapsed := time.Since(start)

	return Result{
		Status:       p.thresholds.Classify(elapsed),
		ResponseTime: elapsed,
		Details:      details,
		CheckedAt:    start,
	}
}
