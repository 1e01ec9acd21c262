package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/questup-api/internal/api/shared"
	"github.com/phrazzld/questup-api/internal/platform/logger"
	"github.com/phrazzld/questup-api/internal/service"
)

// ExamHandler handles exam generation, answering and retry requests.
type ExamHandler struct {
	exams  service.ExamService
	logger *slog.Logger
}

// NewExamHandler creates a new ExamHandler
func NewExamHandler(exams service.ExamService, logger *slog.Logger) *ExamHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ExamHandler")
	}
	return &ExamHandler{
		exams:  exams,
		logger: logger.With(slog.String("component", "exam_handler")),
	}
}

// CreateExam handles POST /api/exams.
func (h *ExamHandler) CreateExam(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req CreateExamRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	log.Debug("generating exam",
		slog.Int("files", len(req.Files)),
		slog.String("grade", req.Grade),
		slog.String("language", req.Language),
		slog.Int("count", req.Count))

	session, err := h.exams.CreateExam(r.Context(), userID, req.params())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate exam")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, examToResponse(session))
}

// ListExams handles GET /api/exams.
func (h *ExamHandler) ListExams(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	limit, err := parseLimit(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	summaries, err := h.exams.ListExams(r.Context(), userID, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list exams")
		return
	}

	resp := ExamListResponse{Exams: make([]ExamSummaryResponse, 0, len(summaries))}
	for _, s := range summaries {
		resp.Exams = append(resp.Exams, summaryToResponse(s))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// GetExam handles GET /api/exams/{id}.
func (h *ExamHandler) GetExam(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, examID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	session, err := h.exams.GetExam(r.Context(), userID, examID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get exam")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, examToResponse(session))
}

// SubmitAnswers handles POST /api/exams/{id}/answers.
func (h *ExamHandler) SubmitAnswers(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, examID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req SubmitAnswersRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	session, err := h.exams.SubmitAnswers(r.Context(), userID, examID, req.Answers)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit answers")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, examToResponse(session))
}

// RetryWeakTopics handles POST /api/exams/{id}/retry. An empty body retries
// the weaknesses found by the exam's analysis.
func (h *ExamHandler) RetryWeakTopics(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, examID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req RetryRequest
	if r.ContentLength != 0 {
		if !decodeAndValidate(w, r, &req) {
			return
		}
	}

	session, err := h.exams.RetryWeakTopics(r.Context(), userID, examID, req.WeakTopics)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate retry exam")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, examToResponse(session))
}
