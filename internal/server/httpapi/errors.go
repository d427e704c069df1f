package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"assignment_service/internal/domain"
	"assignment_service/internal/repository"
	"assignment_service/internal/service"
	"assignment_service/pkg/logger"
)

var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error      string                   `json:"error"`
	Violations []*domain.ValidationError `json:"violations,omitempty"`
}

func mapErr(err error) int {
	var (
		ruleErr  *service.RuleViolationError
		gradeErr *service.GradeError
	)
	switch {
	case errors.As(err, &ruleErr), errors.As(err, &gradeErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errBadRequest),
		errors.Is(err, service.ErrInvalidArgument),
		errors.Is(err, domain.ErrTooManyFiles),
		domain.IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrOptimisticLock),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrSubmissionNotAllowed),
		errors.Is(err, service.ErrWrongAssignment),
		errors.Is(err, domain.ErrAlreadySubmitted):
		return http.StatusConflict
	case errors.Is(err, service.ErrSubmissionLocked):
		return http.StatusLocked
	}
	return http.StatusInternalServerError
}

// writeServiceError renders err with its mapped status. Rule and grade
// rejections carry their full result as the body.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	statusCode := mapErr(err)

	var (
		ruleErr  *service.RuleViolationError
		gradeErr *service.GradeError
	)
	switch {
	case errors.As(err, &ruleErr):
		writeJSON(w, statusCode, ruleErr.Result)
		return
	case errors.As(err, &gradeErr):
		writeJSON(w, statusCode, gradeErr.Result)
		return
	}

	if statusCode == http.StatusInternalServerError {
		if log, ok := logger.FromContext(r.Context()); ok {
			log.ErrorContext(r.Context(), "request failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
		}
		writeErrorJSON(w, statusCode, http.StatusText(statusCode))
		return
	}

	resp := errorResponse{Error: err.Error(), Violations: domain.Violations(err)}
	writeJSON(w, statusCode, resp)
}

func writeErrorJSON(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}
