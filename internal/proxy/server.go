package proxy

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Server struct {
	cfg        Config
	logger     *logrus.Logger
	httpServer *http.Server
	mux        *httpMux
}

func NewServer(cfg Config, logger *logrus.Logger, resolver ImageResolver, metricsHandler http.Handler) *Server {
	mux := newMux(cfg, resolver, metricsHandler, logger)

	return &Server{
		cfg:    cfg,
		logger: logger,
		mux:    mux,
		httpServer: &http.Server{
			Addr:              cfg.Port,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			Handler:           mux,
			ReadHeaderTimeout: 2 * time.Second,
		},
	}
}

// Run the server
func (s *Server) Run(stopCh <-chan os.Signal, shutDownTime time.Duration) error {
	s.logger.Println("Proxy server : Starting")

	serverError := make(chan error, 1)
	go func() {
		var err error
		if s.cfg.tlsEnabled() {
			err = s.httpServer.ListenAndServeTLS(s.cfg.TLSCertFile, s.cfg.TLSKeyFile)
		} else {
			err = s.httpServer.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			serverError <- errors.Wrap(err, "http server error")
		}
	}()

	if s.cfg.tlsEnabled() {
		s.logger.Printf("Proxy server : HTTPS up and running at %s", s.cfg.Port)
	} else {
		s.logger.Printf("Proxy server : HTTP up and running at %s", s.cfg.Port)
	}

	select {
	case err := <-serverError:
		return err
	case <-stopCh:
		s.logger.Println("Proxy server : Received stop signal")

		ctx, cancel := context.WithTimeout(context.Background(), shutDownTime)
		defer cancel()

		s.mux.stop()
		if stopErr := s.httpServer.Shutdown(ctx); stopErr != nil {
			closeErr := s.httpServer.Close()
			return errors.Wrap(closeErr, stopErr.Error())
		}

		return nil
	}
}
