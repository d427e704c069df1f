package httpapi

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"assignment_service/internal/service"
	"assignment_service/pkg/ctxdata"
)

func (h *Handler) trackProgress(w http.ResponseWriter, r *http.Request) {
	assignmentID, err := parseUUIDParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var req progressRequest
	if err := h.decode(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	p, err := h.progress.TrackProgress(r.Context(), assignmentID, service.TrackProgressInput{
		Percentage:       req.Percentage,
		TimeSpentMinutes: req.TimeSpentMinutes,
		Completed:        req.Completed,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProgressResponse(p))
}

// getProgress defaults to the caller's own record; staff pass student_id.
func (h *Handler) getProgress(w http.ResponseWriter, r *http.Request) {
	assignmentID, err := parseUUIDParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	studentID, ok := ctxdata.GetUserUUID(r.Context())
	if raw := r.URL.Query().Get("student_id"); raw != "" {
		studentID, err = uuid.Parse(raw)
		if err != nil {
			writeServiceError(w, r, fmt.Errorf("%w: student_id is not a valid id", errBadRequest))
			return
		}
	} else if !ok {
		writeServiceError(w, r, service.ErrPermissionDenied)
		return
	}

	p, err := h.progress.GetProgress(r.Context(), assignmentID, studentID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProgressResponse(p))
}

func (h *Handler) recommendations(w http.ResponseWriter, r *http.Request) {
	studentID, err := parseUUIDParam(r, "student_id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	courseID, err := uuid.Parse(r.URL.Query().Get("course_id"))
	if err != nil {
		writeServiceError(w, r, fmt.Errorf("%w: course_id query parameter is required", errBadRequest))
		return
	}

	recs, err := h.progress.Recommendations(r.Context(), studentID, courseID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}
