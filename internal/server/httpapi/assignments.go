package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"assignment_service/pkg/logger"
)

func (h *Handler) createAssignment(w http.ResponseWriter, r *http.Request) {
	var req createAssignmentRequest
	if err := h.decode(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	a, err := h.assignments.CreateAssignment(r.Context(), req.input())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if log, ok := logger.FromContext(r.Context()); ok {
		log.InfoContext(r.Context(), "assignment created", zap.String("assignment_id", a.ID().String()))
	}
	writeJSON(w, http.StatusCreated, toAssignmentResponse(a, h.now()))
}

func (h *Handler) getAssignment(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	a, err := h.assignments.GetAssignment(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAssignmentResponse(a, h.now()))
}

func (h *Handler) publishAssignment(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	a, err := h.assignments.PublishAssignment(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAssignmentResponse(a, h.now()))
}

func (h *Handler) archiveAssignment(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	a, err := h.assignments.ArchiveAssignment(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAssignmentResponse(a, h.now()))
}

func (h *Handler) updateSpecification(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var req specificationRequest
	if err := h.decode(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	a, err := h.assignments.UpdateSpecification(r.Context(), id, req.params())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAssignmentResponse(a, h.now()))
}

func (h *Handler) gradePreview(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var req scoresRequest
	if err := h.decode(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	result, err := h.assignments.GradePreview(r.Context(), id, req.Scores)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) studyEstimate(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	estimate, err := h.assignments.EstimateStudyTime(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, estimate)
}

func (h *Handler) listCourseAssignments(w http.ResponseWriter, r *http.Request) {
	courseID, err := parseUUIDParam(r, "course_id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	statuses, err := parseStatuses(r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	list, err := h.assignments.ListAssignmentsByCourse(r.Context(), courseID, statuses)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAssignmentResponses(list, h.now()))
}

func (h *Handler) courseDeadlines(w http.ResponseWriter, r *http.Request) {
	courseID, err := parseUUIDParam(r, "course_id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	summary, err := h.assignments.DeadlineSummary(r.Context(), courseID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
