package proxy

import (
	"fmt"
	"net/http"
	"regexp"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type requestContext struct {
	resp   *responseRecorder
	req    *http.Request
	params []string
}

// fail the request context
func (c *requestContext) fail(err *httpError) {
	http.Error(c.resp, err.message, err.statusCode)
}

type httpError struct {
	statusCode int
	message    string
	details    map[string]string
}

func (e httpError) Error() string {
	return fmt.Sprintf("[%d] %s", e.statusCode, e.message)
}

func (e httpError) ErrorWithDetails() string {
	return fmt.Sprintf("[%d] %s %v", e.statusCode, e.message, e.details)
}

// responseRecorder remembers the status for the access log
type responseRecorder struct {
	http.ResponseWriter
	status  int
	written int64
}

func (r *responseRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.written += int64(n)
	return n, err
}

// route represents pattern and route handler
type route struct {
	rx      *regexp.Regexp
	handler handler
}

type httpMux struct {
	cfg             Config
	routes          []route
	notFoundHandler errorHandler
	logger          *logrus.Logger
	mustStop        uint32
}

func newMux(cfg Config, resolver ImageResolver, metricsHandler http.Handler, lg *logrus.Logger) *httpMux {
	mux := &httpMux{
		cfg:             cfg,
		logger:          lg,
		notFoundHandler: makeErrorHandler(&httpError{statusCode: 404, message: "Route not found"}, lg),
	}

	mux.addRoute(`^/api/image/?$`, makeImageHandler(resolver, cfg, lg))
	mux.addRoute(`^/$`, redirectToImageHandler)
	mux.addRoute(`^/healthz$`, healthHandler)

	if metricsHandler != nil {
		mux.addRoute(`^/metrics$`, wrapHandler(metricsHandler))
	}

	return mux
}

// stop the mux
func (mux *httpMux) stop() {
	atomic.StoreUint32(&mux.mustStop, 1)
}

// addRoute to http mux
func (mux *httpMux) addRoute(pattern string, h handler) {
	rx := regexp.MustCompile(pattern)
	r := route{rx: rx, handler: h}
	mux.routes = append(mux.routes, r)
}

// ServeHTTP implements http.handler
func (mux *httpMux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if atomic.LoadUint32(&mux.mustStop) == 1 {
		http.Error(w, "Server is shutting down", http.StatusServiceUnavailable)
		return
	}

	start := time.Now()
	rCtx := &requestContext{resp: &responseRecorder{ResponseWriter: w}, req: r}
	defer mux.logAccess(rCtx, start)

	defer func() {
		if err := recover(); err != nil {
			mux.logger.Errorf("panic recovery: %v", err)
			handler := makeErrorHandler(errors.Errorf("Recovered from panic: %s", err), mux.logger)
			handler(rCtx)
		}
	}()

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		rCtx.resp.Header().Set("Allow", "GET, HEAD")
		rCtx.fail(&httpError{statusCode: http.StatusMethodNotAllowed, message: "Method not allowed"})
		return
	}

	for _, rt := range mux.routes {
		matches := rt.rx.FindStringSubmatch(r.URL.Path)
		if matches != nil {
			rCtx.params = matches[1:]
			if err := rt.handler(rCtx); err != nil {
				makeErrorHandler(err, mux.logger)(rCtx)
			}
			return
		}
	}

	mux.notFoundHandler(rCtx)
}

func (mux *httpMux) logAccess(rCtx *requestContext, start time.Time) {
	mux.logger.WithFields(logrus.Fields{
		"method": rCtx.req.Method,
		"path":   rCtx.req.URL.RequestURI(),
		"status": rCtx.resp.status,
		"bytes":  rCtx.resp.written,
		"took":   time.Since(start),
	}).Info("request")
}
