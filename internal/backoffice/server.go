package backoffice

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Server struct {
	e        *echo.Echo
	port     string
	variants *VariantService
	logger   *logrus.Logger
}

func NewServer(e *echo.Echo, port string, variants *VariantService, logger *logrus.Logger) *Server {
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.DefaultCORSConfig))

	s := &Server{e: e, port: port, variants: variants, logger: logger}

	e.GET("/api/v1/variants", s.listVariants)
	e.POST("/api/v1/variants", s.warmVariant)
	e.DELETE("/api/v1/variants", s.purgeVariants)

	return s
}

// Run the server
func (s *Server) Run(stopCh <-chan os.Signal, shutDownTime time.Duration) error {
	s.logger.Println("Backoffice server : Starting")

	serverError := make(chan error, 1)
	go func() {
		if err := s.e.Start(s.port); err != nil && err != http.ErrServerClosed {
			serverError <- errors.Wrap(err, "backoffice server error")
		}
	}()

	select {
	case err := <-serverError:
		return err
	case <-stopCh:
		s.logger.Println("Backoffice server : Received stop signal")

		ctx, cancel := context.WithTimeout(context.Background(), shutDownTime)
		defer cancel()

		if err := s.e.Shutdown(ctx); err != nil {
			return errors.Wrap(s.e.Close(), err.Error())
		}

		return nil
	}
}

func (s *Server) listVariants(rCtx echo.Context) error {
	imageID := rCtx.QueryParam("imageId")

	variants, err := s.variants.List(rCtx.Request().Context(), imageID)
	if err != nil {
		return rCtx.JSON(errorToResponse(err))
	}

	return rCtx.JSON(http.StatusOK, listResponse{Data: variants, Total: len(variants)})
}

func (s *Server) warmVariant(rCtx echo.Context) error {
	var dto WarmVariantDTO
	if err := rCtx.Bind(&dto); err != nil {
		return rCtx.JSON(badRequest(errors.New("request body must be a JSON object with imageId, width and height")))
	}

	info, derived, err := s.variants.Warm(rCtx.Request().Context(), dto)
	if err != nil {
		return rCtx.JSON(errorToResponse(err))
	}

	if derived {
		return rCtx.JSON(http.StatusCreated, info)
	}

	return rCtx.JSON(http.StatusOK, info)
}

func (s *Server) purgeVariants(rCtx echo.Context) error {
	width, err := intFromQueryStringOrDefault(rCtx.QueryParam("width"), 0)
	if err != nil {
		return rCtx.JSON(badRequest(err))
	}

	height, err := intFromQueryStringOrDefault(rCtx.QueryParam("height"), 0)
	if err != nil {
		return rCtx.JSON(badRequest(err))
	}

	removed, err := s.variants.Purge(rCtx.Request().Context(), PurgeDTO{
		ImageID: rCtx.QueryParam("imageId"),
		Width:   width,
		Height:  height,
	})
	if err != nil {
		return rCtx.JSON(errorToResponse(err))
	}

	return rCtx.JSON(http.StatusOK, purgeResponse{Removed: removed})
}
