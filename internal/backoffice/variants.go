package backoffice

import (
	"context"
	"time"

	"github.com/denismitr/stockresizer/internal/media"
	"github.com/denismitr/stockresizer/internal/storage"
	"github.com/denismitr/stockresizer/internal/variant"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var ErrBackOfficeError = errors.New("back office error")
var ErrResourceNotFound = errors.New("resource not found")
var ErrInvalidRequest = errors.New("invalid request")

// Warmer derives a variant on demand, it is satisfied by *variant.Resolver
type Warmer interface {
	Resolve(ctx context.Context, imageID string, width, height int) (*variant.Image, error)
}

// VariantService is a collection of operator use cases over the processed
// cache. It never touches the originals.
type VariantService struct {
	storage storage.Storage
	warmer  Warmer
	logger  *logrus.Logger
}

func NewVariantService(s storage.Storage, w Warmer, lg *logrus.Logger) *VariantService {
	return &VariantService{
		storage: s,
		warmer:  w,
		logger:  lg,
	}
}

// List returns cached variants, all of them when imageID is empty
func (vs *VariantService) List(ctx context.Context, imageID string) (VariantCollection, error) {
	items, err := vs.storage.List(ctx, media.ProcessedDir+"/")
	if err != nil {
		return nil, errors.Wrapf(ErrBackOfficeError, "could not list variants: %v", err)
	}

	result := make(VariantCollection, 0, len(items))
	for _, item := range items {
		v, err := media.ParseKey(item.Key)
		if err != nil {
			vs.logger.WithField("key", item.Key).Debugf("skipping foreign file: %v", err)
			continue
		}

		if imageID != "" && v.ImageID.String() != imageID {
			continue
		}

		result = append(result, newVariantInfo(v, item))
	}

	return result, nil
}

// Warm derives the variant when it is not cached yet. The returned bool
// reports whether it had to be derived.
func (vs *VariantService) Warm(ctx context.Context, dto WarmVariantDTO) (*VariantInfo, bool, error) {
	if err := dto.validate(); err != nil {
		return nil, false, err
	}

	img, err := vs.warmer.Resolve(ctx, dto.ImageID, dto.Width, dto.Height)
	if err != nil {
		if errors.Is(err, variant.ErrNotFound) {
			return nil, false, errors.Wrapf(ErrResourceNotFound, "%v", err)
		}
		if errors.Is(err, variant.ErrBadRequest) {
			return nil, false, errors.Wrapf(ErrInvalidRequest, "%v", err)
		}

		return nil, false, errors.Wrapf(ErrBackOfficeError, "could not warm %s: %v", dto.ImageID, err)
	}
	defer img.Close()

	info := &VariantInfo{
		ImageID: img.Variant.ImageID.String(),
		Width:   img.Variant.Width,
		Height:  img.Variant.Height,
		Key:     img.Variant.Key(),
		Size:    img.Size,
		Mime:    img.Mime,
	}

	return info, img.Status == variant.Miss || img.Status == variant.Shared, nil
}

// Purge removes cached variants selected by the dto. Empty selectors widen
// the scope up to the whole processed directory.
func (vs *VariantService) Purge(ctx context.Context, dto PurgeDTO) (int, error) {
	if err := dto.validate(); err != nil {
		return 0, err
	}

	lg := vs.logger.WithFields(logrus.Fields{"image_id": dto.ImageID, "width": dto.Width, "height": dto.Height})

	var removed int
	var err error

	switch {
	case dto.ImageID != "" && dto.hasSize():
		v := media.NewVariant(media.ImageID(dto.ImageID), dto.Width, dto.Height)
		var exists bool
		if exists, err = vs.storage.Exists(ctx, v.Key()); err == nil && exists {
			if err = vs.storage.Remove(ctx, v.Key()); err == nil {
				removed = 1
			}
		}
	case dto.ImageID != "":
		removed, err = vs.purgeImage(ctx, dto.ImageID)
	case dto.hasSize():
		v := media.NewVariant("", dto.Width, dto.Height)
		removed, err = vs.storage.RemovePrefix(ctx, v.SizeDir()+"/")
	default:
		removed, err = vs.storage.RemovePrefix(ctx, media.ProcessedDir+"/")
	}

	if err != nil {
		return 0, errors.Wrapf(ErrBackOfficeError, "could not purge variants: %v", err)
	}

	lg.Infof("purged %d cached variants", removed)

	return removed, nil
}

func (vs *VariantService) purgeImage(ctx context.Context, imageID string) (int, error) {
	variants, err := vs.List(ctx, imageID)
	if err != nil {
		return 0, err
	}

	for i, v := range variants {
		if err := vs.storage.Remove(ctx, v.Key); err != nil {
			return i, err
		}
	}

	return len(variants), nil
}

type VariantInfo struct {
	ImageID string     `json:"imageId"`
	Width   int        `json:"width"`
	Height  int        `json:"height"`
	Key     string     `json:"key"`
	Size    int64      `json:"size"`
	Mime    string     `json:"mime,omitempty"`
	ModTime *time.Time `json:"modTime,omitempty"`
}

type VariantCollection []VariantInfo

func newVariantInfo(v media.Variant, item storage.Item) VariantInfo {
	modTime := item.ModTime
	return VariantInfo{
		ImageID: v.ImageID.String(),
		Width:   v.Width,
		Height:  v.Height,
		Key:     item.Key,
		Size:    item.Size,
		Mime:    v.Mime(),
		ModTime: &modTime,
	}
}
