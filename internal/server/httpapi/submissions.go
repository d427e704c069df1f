package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"assignment_service/internal/service"
	"assignment_service/pkg/logger"
)

func (h *Handler) startSubmission(w http.ResponseWriter, r *http.Request) {
	assignmentID, err := parseUUIDParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var req contentRequest
	if err := h.decode(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	sub, err := h.submissions.StartSubmission(r.Context(), assignmentID, req.Text)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSubmissionResponse(sub))
}

func (h *Handler) listSubmissions(w http.ResponseWriter, r *http.Request) {
	assignmentID, err := parseUUIDParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	list, err := h.submissions.ListSubmissionsByAssignment(r.Context(), assignmentID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubmissionResponses(list))
}

func (h *Handler) getSubmission(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	sub, err := h.submissions.GetSubmission(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubmissionResponse(sub))
}

func (h *Handler) updateContent(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var req contentRequest
	if err := h.decode(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	sub, err := h.submissions.UpdateContent(r.Context(), id, req.Text)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubmissionResponse(sub))
}

func (h *Handler) addAttachments(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var req attachmentsRequest
	if err := h.decode(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	sub, err := h.submissions.AddAttachments(r.Context(), id, req.files())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubmissionResponse(sub))
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	sub, result, err := h.submissions.SubmitSubmission(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if log, ok := logger.FromContext(r.Context()); ok {
		log.InfoContext(r.Context(), "submission handed in",
			zap.String("submission_id", sub.ID().String()),
			zap.Int("attempt", sub.AttemptNumber()),
		)
	}
	writeJSON(w, http.StatusOK, submitResponse{Submission: toSubmissionResponse(sub), Validation: result})
}

func (h *Handler) grade(w http.ResponseWriter, r *http.Request) {
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

	sub, result, err := h.submissions.GradeSubmission(r.Context(), id, service.GradeInput{
		Scores:   req.Scores,
		Feedback: req.Feedback,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, gradeResponse{Submission: toSubmissionResponse(sub), Result: result})
}
