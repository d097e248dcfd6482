package server

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"awsdocs/metrics"
)

// instrument logs every matched request and records its metrics under the
// route template, so path variables do not explode label cardinality.
func (s *Server) instrument(service string) mux.MiddlewareFunc {
	logger := s.logger.With(zap.String("service", service))

	return func(next http.Handler) http.Handler {
		return handlers.CustomLoggingHandler(io.Discard, next, func(_ io.Writer, params handlers.LogFormatterParams) {
			route := params.URL.Path
			if current := mux.CurrentRoute(params.Request); current != nil {
				if tmpl, err := current.GetPathTemplate(); err == nil {
					route = tmpl
				}
			}
			elapsed := time.Since(params.TimeStamp)

			metrics.RequestsTotal.WithLabelValues(service, params.Request.Method, route, strconv.Itoa(params.StatusCode)).Inc()
			metrics.RequestDuration.WithLabelValues(service, route).Observe(elapsed.Seconds())

			logger.Info("Request served",
				zap.String("operation", "http_request"),
				zap.String("method", params.Request.Method),
				zap.String("path", params.URL.Path),
				zap.String("route", route),
				zap.Int("status", params.StatusCode),
				zap.Int("size", params.Size),
				zap.Duration("duration", elapsed),
			)
		})
	}
}
