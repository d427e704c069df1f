package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"assignment_service/internal/domain"
	"assignment_service/pkg/ctxdata"
	"assignment_service/pkg/logger"
)

const (
	headerTraceID  = "X-Trace-Id"
	headerUserID   = "X-User-Id"
	headerUserRole = "X-User-Role"
)

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// NewLoggingMiddleware keeps an incoming trace id or mints one, exposes it to
// the service layer through ctxdata and logs every finished request.
func NewLoggingMiddleware(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			traceID := r.Header.Get(headerTraceID)
			if traceID == "" {
				id, err := uuid.NewV7()
				if err != nil {
					id = uuid.New()
				}
				traceID = id.String()
			}

			ctx := ctxdata.WithTraceID(r.Context(), traceID)
			ctx = logger.ContextWithLogger(ctx, log)
			r = r.WithContext(ctx)

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			w.Header().Set(headerTraceID, traceID)

			next.ServeHTTP(sw, r)

			log.InfoContext(ctx, "request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", sw.status),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

// NewIdentityMiddleware moves the caller identity set by the gateway into the
// request context. Requests without a well formed identity are rejected.
func NewIdentityMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			userID, err := uuid.Parse(r.Header.Get(headerUserID))
			if err != nil {
				if log, ok := logger.FromContext(ctx); ok {
					log.InfoContext(ctx, "missing or malformed user id", zap.String("path", r.URL.Path))
				}
				writeErrorJSON(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
				return
			}

			role := domain.UserRole(r.Header.Get(headerUserRole))
			switch role {
			case domain.UserRoleStudent, domain.UserRoleInstructor, domain.UserRoleAdmin:
			default:
				if log, ok := logger.FromContext(ctx); ok {
					log.InfoContext(ctx, "unknown user role", zap.String("role", string(role)))
				}
				writeErrorJSON(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
				return
			}

			next.ServeHTTP(w, r.WithContext(ctxdata.WithUser(ctx, userID, string(role))))
		})
	}
}
