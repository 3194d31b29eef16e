// Package variant resolves an (image, width, height) request to a readable image,
// deriving and caching resized variants on first request.
package variant

import (
	"bytes"
	"context"
	"io"
	"io/ioutil"
	"time"

	"github.com/denismitr/stockresizer/internal/media"
	"github.com/denismitr/stockresizer/internal/media/manipulator"
	"github.com/denismitr/stockresizer/internal/metrics"
	"github.com/denismitr/stockresizer/internal/storage"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

type CacheStatus string

const (
	// Original is served straight from the full images directory
	Original CacheStatus = "original"
	// Hit is a variant found at its canonical key
	Hit CacheStatus = "hit"
	// Miss is a variant derived by this request
	Miss CacheStatus = "miss"
	// Shared is a variant derived once for several concurrent requests
	Shared CacheStatus = "shared"
)

type Config struct {
	// VerifyCached probes a cached variant before serving it and derives
	// it again when it does not decode or has the wrong dimensions
	VerifyCached bool
}

// Image is a resolved variant. Body must be closed by the caller.
type Image struct {
	Variant media.Variant
	Body    io.ReadCloser
	Size    int64
	Mime    string
	Status  CacheStatus
}

func (img *Image) Close() error {
	return img.Body.Close()
}

// Resolver holds no per request state, every call works on its own media.Variant
type Resolver struct {
	cfg         Config
	storage     storage.Storage
	manipulator *manipulator.Manipulator
	metrics     *metrics.Metrics
	logger      *logrus.Logger
	sf          singleflight.Group
}

func NewResolver(
	cfg Config,
	s storage.Storage,
	m *manipulator.Manipulator,
	mt *metrics.Metrics,
	lg *logrus.Logger,
) *Resolver {
	return &Resolver{
		cfg:         cfg,
		storage:     s,
		manipulator: m,
		metrics:     mt,
		logger:      lg,
	}
}

// Resolve returns a stream over the requested variant. A non positive width
// or height means the original. Failures are always *Error.
func (r *Resolver) Resolve(ctx context.Context, imageID string, width, height int) (*Image, error) {
	id := media.ImageID(imageID)
	if err := id.Validate(); err != nil {
		r.metrics.Request("error")
		return nil, badRequest("Invalid image parameters.", err)
	}

	v := media.NewVariant(id, width, height)

	var img *Image
	var err error
	if v.IsOriginal() {
		img, err = r.resolveOriginal(ctx, v)
	} else {
		img, err = r.resolveDerived(ctx, v)
	}

	if err != nil {
		r.metrics.Request("error")
		return nil, err
	}

	r.metrics.Request(string(img.Status))

	return img, nil
}

func (r *Resolver) resolveOriginal(ctx context.Context, v media.Variant) (*Image, error) {
	exists, err := r.storage.Exists(ctx, v.Key())
	if err != nil {
		return nil, r.internal(v, err)
	}

	if !exists {
		return nil, notFound(v.ImageID, nil)
	}

	return r.open(ctx, v, Original)
}

func (r *Resolver) resolveDerived(ctx context.Context, v media.Variant) (*Image, error) {
	t, err := r.manipulator.CreateTransformation(v.Width, v.Height, v.ImageID.OutputFormat())
	if err != nil {
		return nil, badRequest("Invalid image size "+v.Size()+".", err)
	}

	exists, err := r.storage.Exists(ctx, v.Key())
	if err != nil {
		return nil, r.internal(v, err)
	}

	if exists && (!r.cfg.VerifyCached || r.verify(ctx, v)) {
		return r.open(ctx, v, Hit)
	}

	return r.derive(ctx, v, t)
}

// derive runs at most one derivation per canonical key at a time. The derivation
// is detached from ctx, a requester that goes away stops waiting but the
// variant is still written.
func (r *Resolver) derive(ctx context.Context, v media.Variant, t *manipulator.Transformation) (*Image, error) {
	ch := r.sf.DoChan(v.Key(), func() (interface{}, error) {
		return r.derivation(v, t)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}

		content := res.Val.([]byte)
		status := Miss
		if res.Shared {
			status = Shared
		}

		return &Image{
			Variant: v,
			Body:    ioutil.NopCloser(bytes.NewReader(content)),
			Size:    int64(len(content)),
			Mime:    v.Mime(),
			Status:  status,
		}, nil
	case <-ctx.Done():
		return nil, cancelled(v.ImageID, ctx.Err())
	}
}

func (r *Resolver) derivation(v media.Variant, t *manipulator.Transformation) ([]byte, error) {
	ctx := context.Background()
	start := time.Now()
	lg := r.logger.WithFields(logrus.Fields{"image_id": v.ImageID, "width": v.Width, "height": v.Height})

	original, _, err := r.storage.Open(ctx, media.OriginalKey(v.ImageID))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, notFound(v.ImageID, err)
		}

		r.metrics.Derivation(metrics.StatusFailure, time.Since(start))
		return nil, r.internal(v, err)
	}
	defer original.Close()

	buf := &bytes.Buffer{}
	result, err := r.manipulator.Transform(original, buf, t)
	if err != nil {
		r.metrics.Derivation(metrics.StatusFailure, time.Since(start))
		return nil, r.internal(v, errors.Wrapf(err, "could not derive %s", v))
	}

	content := buf.Bytes()
	if _, err := r.storage.Put(ctx, v.Key(), bytes.NewReader(content)); err != nil {
		r.metrics.Derivation(metrics.StatusFailure, time.Since(start))
		return nil, r.internal(v, errors.Wrapf(err, "could not cache %s", v))
	}

	took := time.Since(start)
	r.metrics.Derivation(metrics.StatusSuccess, took)
	lg.WithFields(logrus.Fields{"size": result.Size, "took": took}).Infof("derived %s", v.Key())

	return content, nil
}

// verify checks that a cached variant decodes and has the requested dimensions
func (r *Resolver) verify(ctx context.Context, v media.Variant) bool {
	lg := r.logger.WithField("key", v.Key())

	rc, _, err := r.storage.Open(ctx, v.Key())
	if err != nil {
		lg.Warnf("could not open cached variant for verification: %v", err)
		return false
	}
	defer rc.Close()

	probed, err := r.manipulator.Probe(rc)
	if err != nil {
		lg.Warnf("cached variant is corrupt, deriving again: %v", err)
		return false
	}

	if probed.Width != v.Width || probed.Height != v.Height {
		lg.Warnf("cached variant is %dx%d, deriving again", probed.Width, probed.Height)
		return false
	}

	return true
}

// open streams an existing key, a key that disappeared after the
// existence check is reported as not found
func (r *Resolver) open(ctx context.Context, v media.Variant, status CacheStatus) (*Image, error) {
	rc, item, err := r.storage.Open(ctx, v.Key())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, notFound(v.ImageID, err)
		}

		return nil, r.internal(v, err)
	}

	r.logger.WithField("key", v.Key()).Debugf("serving %s", status)

	return &Image{
		Variant: v,
		Body:    rc,
		Size:    item.Size,
		Mime:    v.Mime(),
		Status:  status,
	}, nil
}

func (r *Resolver) internal(v media.Variant, cause error) *Error {
	r.logger.WithFields(logrus.Fields{
		"image_id": v.ImageID,
		"width":    v.Width,
		"height":   v.Height,
	}).Errorln(cause)

	return internalError(v.ImageID, cause)
}
