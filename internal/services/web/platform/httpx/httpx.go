// Package httpx provides HTTP middleware and response helpers shared by the
// API and page handlers.
package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	apperrors "github.com/louisbranch/scholarflow/internal/platform/errors"
	"github.com/louisbranch/scholarflow/internal/platform/logging"
	"github.com/louisbranch/scholarflow/internal/platform/requestctx"
	"go.uber.org/zap"
)

// RequestIDHeader carries the request correlation id.
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLength bounds client-supplied request ids.
const maxRequestIDLength = 128

// Middleware wraps an HTTP handler.
type Middleware func(http.Handler) http.Handler

// Chain applies middleware in declaration order.
func Chain(handler http.Handler, middleware ...Middleware) http.Handler {
	if handler == nil {
		handler = http.NotFoundHandler()
	}
	wrapped := handler
	for idx := len(middleware) - 1; idx >= 0; idx-- {
		if middleware[idx] == nil {
			continue
		}
		wrapped = middleware[idx](wrapped)
	}
	return wrapped
}

// RequestID reuses or creates a request id, echoes it in the response and
// stores it on the request context for logging.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(requestctx.WithRequestID(r.Context(), requestID)))
	})
}

// AccessLog logs one line per request with status and latency.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		logging.FromContext(r.Context()).Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// RecoverPanic converts panics into HTTP 500 responses.
func RecoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}
			if recovered == http.ErrAbortHandler {
				panic(recovered)
			}
			logging.FromContext(r.Context()).Error("panic recovered",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Any("panic", recovered),
				zap.String("stack", strings.TrimSpace(string(debug.Stack()))),
			)
			w.WriteHeader(http.StatusInternalServerError)
		}()
		next.ServeHTTP(w, r)
	})
}

// WriteJSON writes a JSON response with the provided status code.
func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	if w == nil {
		return fmt.Errorf("response writer is required")
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(payload)
}

// WriteJSONError writes {"error": message} with the given status code.
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{"error": message})
}

// WriteError maps err to a JSON error response. Domain errors below 500
// carry their own message; everything else is logged and answered with
// fallback.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	if w == nil || err == nil {
		return
	}
	log := logging.FromContext(RequestContext(r))
	if domainErr, ok := apperrors.As(err); ok {
		status := domainErr.HTTPStatus()
		if status < http.StatusInternalServerError {
			log.Info("request rejected",
				zap.String("code", string(domainErr.Code)),
				zap.Int("status", status),
				zap.Error(err),
			)
			_ = WriteJSONError(w, status, domainErr.Message)
			return
		}
		if status == http.StatusServiceUnavailable {
			log.Warn("dependency unavailable", zap.Error(err))
			_ = WriteJSONError(w, status, domainErr.Message)
			return
		}
	}
	if errors.Is(err, context.Canceled) {
		log.Info("request canceled", zap.Error(err))
		return
	}
	log.Error(fallback, zap.Error(err))
	_ = WriteJSONError(w, http.StatusInternalServerError, fallback)
}

// DecodeJSON decodes at most maxBytes of the request body into target.
func DecodeJSON(r *http.Request, target any, maxBytes int64) error {
	if r == nil || r.Body == nil {
		return apperrors.New(apperrors.CodeInvalidInput, "Request body is required")
	}
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBytes))
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.New(apperrors.CodeInvalidInput, "Request body is required")
		}
		if domainErr, ok := apperrors.As(err); ok {
			return domainErr
		}
		return apperrors.Wrap(apperrors.CodeInvalidInput, "Invalid JSON body", err)
	}
	return nil
}

// RequestContext returns r.Context() with a nil-safe fallback to context.Background().
func RequestContext(r *http.Request) context.Context {
	if r == nil {
		return context.Background()
	}
	return r.Context()
}

// WriteHTML writes an HTML payload with the provided status code.
func WriteHTML(w http.ResponseWriter, status int, payload string) error {
	if w == nil {
		return fmt.Errorf("response writer is required")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := io.WriteString(w, payload)
	return err
}
