package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/wine-survey/internal/domain"
	"github.com/couchcryptid/wine-survey/internal/survey"
	"github.com/go-chi/chi/v5"
)

// maxBodyBytes bounds a submission body.
const maxBodyBytes = 64 << 10

// SubmittedMessage is returned to the form after a successful submission.
const SubmittedMessage = "Pesquisa enviada com sucesso!"

// SurveyService is the application service behind the survey routes.
type SurveyService interface {
	Submit(ctx context.Context, r *domain.SurveyResponse) (string, error)
	List(ctx context.Context) (*survey.Listing, error)
}

// Handler serves the survey API.
type Handler struct {
	surveys SurveyService
	logger  *slog.Logger
}

// NewHandler creates a survey API handler.
func NewHandler(surveys SurveyService, logger *slog.Logger) *Handler {
	return &Handler{surveys: surveys, logger: logger}
}

// Register mounts the survey routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/survey", h.handleSubmit)
		r.Get("/survey", h.handleList)
		r.Get("/questions", h.handleQuestions)
	})
}

type submitResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	SurveyID string `json:"surveyId"`
}

type errorResponse struct {
	Success bool     `json:"success"`
	Error   string   `json:"error"`
	Missing []string `json:"missing,omitempty"`
	Invalid []string `json:"invalid,omitempty"`
}

type listResponse struct {
	Surveys   []*domain.SurveyResponse `json:"surveys"`
	Analytics analytics                `json:"analytics"`
}

type analytics struct {
	Total         int             `json:"total"`
	WineTypeStats []domain.Bucket `json:"wineTypeStats"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var resp domain.SurveyResponse
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&resp); err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	resp.Metadata = clientMetadata(r)

	id, err := h.surveys.Submit(r.Context(), &resp)
	if err != nil {
		var verr *survey.ValidationError
		if errors.As(err, &verr) {
			msg := "missing required fields"
			if len(verr.Missing) == 0 {
				msg = "invalid answers"
			}
			sharedobs.WriteJSON(w, http.StatusBadRequest, errorResponse{
				Error:   msg,
				Missing: verr.Missing,
				Invalid: verr.Invalid,
			})
			return
		}
		h.internalError(w, "submit survey", err)
		return
	}

	sharedobs.WriteJSON(w, http.StatusOK, submitResponse{
		Success:  true,
		Message:  SubmittedMessage,
		SurveyID: id,
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	listing, err := h.surveys.List(r.Context())
	if err != nil {
		h.internalError(w, "list surveys", err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, listResponse{
		Surveys: listing.Surveys,
		Analytics: analytics{
			Total:         listing.Total,
			WineTypeStats: listing.WineTypeStats,
		},
	})
}

func (h *Handler) handleQuestions(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"fields": domain.Questionnaire})
}

func (h *Handler) internalError(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op+" failed", "error", err)
	sharedobs.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}
