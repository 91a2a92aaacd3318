package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"quiz-stats-service/internal/app"
	"quiz-stats-service/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// QuizHandler exposes the quiz use cases over REST.
type QuizHandler struct {
	service *app.QuizService
	log     logrus.FieldLogger
}

func NewQuizHandler(service *app.QuizService, log logrus.FieldLogger) *QuizHandler {
	return &QuizHandler{service: service, log: log}
}

// submissionRequest accepts the answer list under either field name; older
// clients still send "answers".
type submissionRequest struct {
	Username    string             `json:"username"`
	UserAnswers domain.AnswerSheet `json:"userAnswers"`
	Answers     domain.AnswerSheet `json:"answers"`
}

func (req submissionRequest) sheet() domain.AnswerSheet {
	if req.UserAnswers != nil {
		return req.UserAnswers
	}
	return req.Answers
}

func (h *QuizHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.ListQuizzes(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *QuizHandler) Create(w http.ResponseWriter, r *http.Request) {
	var quiz domain.Quiz
	if err := json.NewDecoder(r.Body).Decode(&quiz); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid quiz payload"})
		return
	}
	created, err := h.service.CreateQuiz(r.Context(), quiz)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Get returns the respondent view.
func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.service.PublicQuiz(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

// GetForEdit returns the full quiz, answer key included.
func (h *QuizHandler) GetForEdit(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.service.GetQuiz(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *QuizHandler) Update(w http.ResponseWriter, r *http.Request) {
	var quiz domain.Quiz
	if err := json.NewDecoder(r.Body).Decode(&quiz); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid quiz payload"})
		return
	}
	updated, err := h.service.UpdateQuiz(r.Context(), chi.URLParam(r, "quizID"), quiz)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *QuizHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteQuiz(r.Context(), chi.URLParam(r, "quizID")); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *QuizHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid submission payload"})
		return
	}
	result, err := h.service.Submit(r.Context(), chi.URLParam(r, "quizID"), req.Username, req.sheet())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *QuizHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type errorBody struct {
	Error string `json:"error"`
}

func (h *QuizHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
		writeJSON(w, status, errorBody{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrQuizNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidQuiz), errors.Is(err, domain.ErrInvalidSubmission):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
