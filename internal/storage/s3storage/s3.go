package s3storage

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/denismitr/stockresizer/internal/storage"
	"github.com/pkg/errors"
)

type Config struct {
	AccessKey        string
	AccessSecret     string
	AccessToken      string
	Region           string
	Endpoint         string
	Bucket           string
	S3ForcePathStyle bool
	EnableSSL        bool
}

// RemoteStorage keeps the store layout as object keys inside one bucket
type RemoteStorage struct {
	cfg      Config
	client   *s3.S3
	uploader *s3manager.Uploader
}

func New(cfg Config) (*RemoteStorage, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	s3Config := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKey, cfg.AccessSecret, cfg.AccessToken),
		Endpoint:         aws.String(cfg.Endpoint),
		Region:           aws.String(cfg.Region),
		DisableSSL:       aws.Bool(!cfg.EnableSSL),
		S3ForcePathStyle: aws.Bool(cfg.S3ForcePathStyle),
	}

	sess, err := session.NewSession(s3Config)
	if err != nil {
		return nil, errors.Wrapf(storage.ErrStorageFailed, "s3 session could not be created: %v", err)
	}

	uploader := s3manager.NewUploader(sess)
	uploader.Concurrency = 1

	return &RemoteStorage{
		cfg:      cfg,
		client:   s3.New(sess),
		uploader: uploader,
	}, nil
}

// EnsureBucket creates the bucket unless it is already there
func (rs *RemoteStorage) EnsureBucket(ctx context.Context) error {
	_, err := rs.client.CreateBucketWithContext(ctx, &s3.CreateBucketInput{Bucket: aws.String(rs.cfg.Bucket)})
	if err != nil {
		if aErr, ok := err.(awserr.Error); ok {
			if aErr.Code() == s3.ErrCodeBucketAlreadyExists || aErr.Code() == s3.ErrCodeBucketAlreadyOwnedByYou {
				return nil
			}
		}

		return errors.Wrapf(storage.ErrStorageFailed, "could not create bucket %s: %v", rs.cfg.Bucket, err)
	}

	return nil
}

func (rs *RemoteStorage) Exists(ctx context.Context, key string) (bool, error) {
	if !isValidKey(key) {
		return false, errors.Wrapf(storage.ErrInvalidKey, "key %q", key)
	}

	_, err := rs.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(rs.cfg.Bucket),
		Key:    aws.String(key),
	})

	if err != nil {
		if isNotFound(err) {
			return false, nil
		}

		return false, errors.Wrapf(storage.ErrStorageFailed, "could not head %s in bucket %s: %v", key, rs.cfg.Bucket, err)
	}

	return true, nil
}

func (rs *RemoteStorage) Open(ctx context.Context, key string) (io.ReadCloser, *storage.Item, error) {
	if !isValidKey(key) {
		return nil, nil, errors.Wrapf(storage.ErrInvalidKey, "key %q", key)
	}

	out, err := rs.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(rs.cfg.Bucket),
		Key:    aws.String(key),
	})

	if err != nil {
		if isNotFound(err) {
			return nil, nil, errors.Wrapf(storage.ErrNotFound, "object %s not found in bucket %s", key, rs.cfg.Bucket)
		}

		return nil, nil, errors.Wrapf(storage.ErrStorageFailed, "could not download %s from bucket %s: %v", key, rs.cfg.Bucket, err)
	}

	return out.Body, rs.item(key, aws.Int64Value(out.ContentLength), aws.TimeValue(out.LastModified)), nil
}

func (rs *RemoteStorage) Put(ctx context.Context, key string, source io.Reader) (*storage.Item, error) {
	if !isValidKey(key) {
		return nil, errors.Wrapf(storage.ErrInvalidKey, "key %q", key)
	}

	cr := &countingReader{r: source}
	_, err := rs.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Body:   cr,
		Bucket: aws.String(rs.cfg.Bucket),
		Key:    aws.String(key),
	})

	if err != nil {
		return nil, errors.Wrapf(
			storage.ErrStorageFailed,
			"could not upload file %s to bucket %s: %v",
			key, rs.cfg.Bucket, err,
		)
	}

	return rs.item(key, cr.n, time.Now()), nil
}

func (rs *RemoteStorage) List(ctx context.Context, prefix string) ([]storage.Item, error) {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(rs.cfg.Bucket)}
	if prefix != "" {
		input.Prefix = aws.String(strings.TrimSuffix(prefix, "/") + "/")
	}

	var items []storage.Item
	err := rs.client.ListObjectsV2PagesWithContext(ctx, input, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			items = append(items, *rs.item(aws.StringValue(obj.Key), aws.Int64Value(obj.Size), aws.TimeValue(obj.LastModified)))
		}

		return true
	})

	if err != nil {
		return nil, errors.Wrapf(storage.ErrStorageFailed, "could not list %s in bucket %s: %v", prefix, rs.cfg.Bucket, err)
	}

	return items, nil
}

func (rs *RemoteStorage) Remove(ctx context.Context, key string) error {
	if !isValidKey(key) {
		return errors.Wrapf(storage.ErrInvalidKey, "key %q", key)
	}

	_, err := rs.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(rs.cfg.Bucket),
		Key:    aws.String(key),
	})

	if err != nil && !isNotFound(err) {
		return errors.Wrapf(storage.ErrStorageFailed, "could not remove file %s from bucket %s: %v", key, rs.cfg.Bucket, err)
	}

	return nil
}

func (rs *RemoteStorage) RemovePrefix(ctx context.Context, prefix string) (int, error) {
	if prefix == "" {
		return 0, errors.Wrap(storage.ErrInvalidKey, "refusing to remove the whole bucket")
	}

	items, err := rs.List(ctx, prefix)
	if err != nil {
		return 0, err
	}

	var removed int
	for _, item := range items {
		if err := rs.Remove(ctx, item.Key); err != nil {
			return removed, err
		}
		removed++
	}

	return removed, nil
}

func (rs *RemoteStorage) item(key string, size int64, modTime time.Time) *storage.Item {
	return &storage.Item{
		Key:     key,
		Path:    rs.cfg.Bucket + "/" + key,
		Size:    size,
		ModTime: modTime,
	}
}

func isNotFound(err error) bool {
	if rErr, ok := err.(awserr.RequestFailure); ok && rErr.StatusCode() == http.StatusNotFound {
		return true
	}

	if aErr, ok := err.(awserr.Error); ok {
		switch aErr.Code() {
		case s3.ErrCodeNoSuchKey, "NotFound":
			return true
		}
	}

	return false
}

// isValidKey rejects keys that would not round trip through the store layout
func isValidKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") || strings.HasSuffix(key, "/") {
		return false
	}

	for _, segment := range strings.Split(key, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return false
		}
	}

	return true
}
