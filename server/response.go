package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"awsdocs/errors"
)

const internalErrorDetail = "Internal server error"

// handlerFunc returns the response body and status, or an error that is
// mapped to a status by statusFor.
type handlerFunc func(*http.Request) (interface{}, int, error)

type errorBody struct {
	Detail string `json:"detail"`
}

// response adapts a handlerFunc to http.Handler.
func (s *Server) response(f handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, status, err := f(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, status, body)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("Failed to encode response",
			zap.String("operation", "write_response"),
			zap.Error(err),
		)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	detail := internalErrorDetail
	if customErr, ok := errors.As(err); ok {
		detail = customErr.Detail(s.opts.RedactUpstreamErrors)
	}

	fields := []zap.Field{
		zap.String("operation", "request_failed"),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", fields...)
	} else {
		s.logger.Info("Request rejected", fields...)
	}

	s.writeJSON(w, status, errorBody{Detail: detail})
}

// statusFor maps an error type to the HTTP status returned to callers.
func statusFor(err error) int {
	customErr, ok := errors.As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch customErr.Type {
	case errors.ErrAWSCredentials:
		return http.StatusUnauthorized
	case errors.ErrAWSEndpoint:
		return http.StatusBadGateway
	case errors.ErrRoleAssumption, errors.ErrBadRequest:
		return http.StatusBadRequest
	case errors.ErrSessionNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
