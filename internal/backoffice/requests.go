package backoffice

import (
	"strconv"

	"github.com/denismitr/stockresizer/internal/media"
	"github.com/pkg/errors"
)

type WarmVariantDTO struct {
	ImageID string `json:"imageId"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

func (dto WarmVariantDTO) validate() error {
	if err := media.ImageID(dto.ImageID).Validate(); err != nil {
		return errors.Wrapf(ErrInvalidRequest, "%v", err)
	}

	if dto.Width <= 0 || dto.Height <= 0 {
		return errors.Wrapf(ErrInvalidRequest, "width and height must be positive, got %dx%d", dto.Width, dto.Height)
	}

	return nil
}

type PurgeDTO struct {
	ImageID string
	Width   int
	Height  int
}

func (dto PurgeDTO) hasSize() bool {
	return dto.Width > 0 && dto.Height > 0
}

func (dto PurgeDTO) validate() error {
	if dto.ImageID != "" {
		if err := media.ImageID(dto.ImageID).Validate(); err != nil {
			return errors.Wrapf(ErrInvalidRequest, "%v", err)
		}
	}

	if dto.Width < 0 || dto.Height < 0 || (dto.Width > 0) != (dto.Height > 0) {
		return errors.Wrapf(ErrInvalidRequest, "width and height go together, got %dx%d", dto.Width, dto.Height)
	}

	return nil
}

func intFromQueryStringOrDefault(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}

	result, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidRequest, "%s is not an integer", v)
	}

	return result, nil
}
