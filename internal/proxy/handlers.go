package proxy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/denismitr/stockresizer/internal/media"
	"github.com/denismitr/stockresizer/internal/variant"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type handler func(*requestContext) error
type errorHandler func(*requestContext)

// ImageResolver is the part of variant.Resolver the proxy depends on
type ImageResolver interface {
	Resolve(ctx context.Context, imageID string, width, height int) (*variant.Image, error)
}

func makeErrorHandler(err error, lg *logrus.Logger) errorHandler {
	return func(rCtx *requestContext) {
		var httpErr *httpError
		var vErr *variant.Error

		if errors.As(err, &httpErr) {
			rCtx.fail(httpErr)
			return
		} else if errors.As(err, &vErr) {
			httpErr = &httpError{statusCode: vErr.StatusCode, message: vErr.Message}
			if vErr.StatusCode < http.StatusInternalServerError || errors.Is(err, context.Canceled) {
				rCtx.fail(httpErr)
				return
			}
		}

		if httpErr == nil {
			httpErr = &httpError{statusCode: 500, message: "Internal server error"}
		}

		if lg != nil {
			lg.Errorln(httpErr.ErrorWithDetails(), err)
		}

		rCtx.fail(httpErr)
	}
}

func makeImageHandler(resolver ImageResolver, cfg Config, lg *logrus.Logger) handler {
	return func(rCtx *requestContext) error {
		params, err := parseImageParams(rCtx.req.URL.Query(), cfg.MaxDimension)
		if err != nil {
			return err
		}

		img, err := resolver.Resolve(rCtx.req.Context(), params.imageID, params.width, params.height)
		if err != nil {
			return err
		}
		defer img.Close()

		rCtx.prepareImageHeaders(img, cfg)
		rCtx.resp.WriteHeader(http.StatusOK)

		// a client that goes away only stops the copy, the cache is written independently
		if _, err := io.Copy(rCtx.resp, img.Body); err != nil {
			lg.WithField("variant", img.Variant.String()).Debugf("streaming aborted: %v", err)
		}

		return nil
	}
}

func (c *requestContext) prepareImageHeaders(img *variant.Image, cfg Config) {
	h := c.resp.Header()

	// Enable CORS for 3rd party applications
	h.Set("Access-Control-Allow-Origin", "*")

	// Add a Content-Security-Policy to prevent stored-XSS attacks via SVG files
	h.Set("Content-Security-Policy", "script-src 'none'")

	// Disable Content-Type sniffing
	h.Set("X-Content-Type-Options", "nosniff")

	h.Set("Content-Type", img.Mime)
	h.Set("Content-Disposition", fmt.Sprintf("inline; filename=%s", media.DownloadFilename(img.Variant)))
	h.Set("X-Cache", cacheHeader(img.Status))

	if img.Size > 0 {
		h.Set("Content-Length", fmt.Sprintf("%d", img.Size))
	}

	if cfg.CacheMaxAge > 0 {
		h.Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(cfg.CacheMaxAge.Seconds())))
	}
}

func cacheHeader(status variant.CacheStatus) string {
	switch status {
	case variant.Hit:
		return "HIT"
	case variant.Original:
		return "ORIGINAL"
	default:
		return "MISS"
	}
}

// redirectToImageHandler keeps the root URL working as an alias of /api/image
func redirectToImageHandler(rCtx *requestContext) error {
	q := rCtx.req.URL.Query()

	target := url.Values{}
	for _, k := range []string{"imageId", "width", "height"} {
		target.Set(k, q.Get(k))
	}

	http.Redirect(rCtx.resp, rCtx.req, "/api/image?"+target.Encode(), http.StatusFound)
	return nil
}

func healthHandler(rCtx *requestContext) error {
	rCtx.resp.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, err := io.WriteString(rCtx.resp, "ok")
	return err
}

func wrapHandler(h http.Handler) handler {
	return func(rCtx *requestContext) error {
		h.ServeHTTP(rCtx.resp, rCtx.req)
		return nil
	}
}

func badRequestf(format string, args ...interface{}) *httpError {
	return &httpError{statusCode: http.StatusBadRequest, message: strings.TrimSpace(fmt.Sprintf(format, args...))}
}
