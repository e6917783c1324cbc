package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/abduss/storefront/internal/metrics"
	"github.com/cenkalti/backoff/v4"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

const (
	defaultURLTTL     = 15 * time.Minute
	defaultMaxRetries = 4
	objectPrefix      = "reports"
)

type objectStore interface {
	PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	PresignedGetObject(ctx context.Context, bucket, object string, expires time.Duration, params url.Values) (*url.URL, error)
}

// Archived describes an export stored in object storage.
type Archived struct {
	Bucket  string
	Object  string
	Size    int64
	URL     string
	Expires time.Time
}

// Archiver copies exports to a bucket and hands out presigned download links.
type Archiver struct {
	store   objectStore
	bucket  string
	urlTTL  time.Duration
	logger  *zap.Logger
	backoff func() backoff.BackOff
	now     func() time.Time
}

// ArchiverOption configures an Archiver.
type ArchiverOption func(*Archiver)

// WithBackOff replaces the retry policy used for uploads.
func WithBackOff(newBackOff func() backoff.BackOff) ArchiverOption {
	return func(a *Archiver) {
		if newBackOff != nil {
			a.backoff = newBackOff
		}
	}
}

// WithArchiveLogger sets the logger used for retry and upload messages.
func WithArchiveLogger(l *zap.Logger) ArchiverOption {
	return func(a *Archiver) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewArchiver builds an Archiver for bucket. A non-positive urlTTL uses 15 minutes.
func NewArchiver(store objectStore, bucket string, urlTTL time.Duration, opts ...ArchiverOption) *Archiver {
	if urlTTL <= 0 {
		urlTTL = defaultURLTTL
	}
	a := &Archiver{
		store:  store,
		bucket: bucket,
		urlTTL: urlTTL,
		logger: zap.NewNop(),
		backoff: func() backoff.BackOff {
			return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), defaultMaxRetries)
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ObjectName returns the key an export is stored under.
func (a *Archiver) ObjectName(exp Export) string {
	return path.Join(objectPrefix, strconv.Itoa(a.now().Year()), path.Base(exp.Filename))
}

// Archive uploads exp, retrying transient failures, and presigns a GET for it.
func (a *Archiver) Archive(ctx context.Context, exp Export) (Archived, error) {
	if len(exp.Data) == 0 {
		return Archived{}, ErrEmptyExport
	}
	object := a.ObjectName(exp)
	opts := minio.PutObjectOptions{
		ContentType:        exp.ContentType,
		ContentDisposition: "attachment; filename=" + path.Base(exp.Filename),
	}

	attempt := 0
	upload := func() error {
		attempt++
		_, err := a.store.PutObject(ctx, a.bucket, object, bytes.NewReader(exp.Data), int64(len(exp.Data)), opts)
		if err != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, delay time.Duration) {
		a.logger.Warn("report upload failed, retrying",
			zap.String("object", object),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
	}
	if err := backoff.RetryNotify(upload, backoff.WithContext(a.backoff(), ctx), notify); err != nil {
		metrics.ReportArchives.WithLabelValues("failure").Inc()
		return Archived{}, fmt.Errorf("upload %s after %d attempts: %w", object, attempt, err)
	}

	params := url.Values{"response-content-disposition": []string{opts.ContentDisposition}}
	link, err := a.store.PresignedGetObject(ctx, a.bucket, object, a.urlTTL, params)
	if err != nil {
		metrics.ReportArchives.WithLabelValues("failure").Inc()
		return Archived{}, fmt.Errorf("presign %s: %w", object, err)
	}

	metrics.ReportArchives.WithLabelValues("success").Inc()
	a.logger.Info("report archived", zap.String("bucket", a.bucket), zap.String("object", object), zap.Int("attempts", attempt))
	return Archived{
		Bucket:  a.bucket,
		Object:  object,
		Size:    int64(len(exp.Data)),
		URL:     link.String(),
		Expires: a.now().Add(a.urlTTL),
	}, nil
}

// retryable treats server-side and connection errors as transient. Client
// errors such as a missing bucket or bad credentials are not retried.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	resp := minio.ToErrorResponse(err)
	if resp.StatusCode == 0 {
		return true
	}
	return resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests
}
