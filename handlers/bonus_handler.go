package handlers

import (
	"net/http"

	"github.com/tippliga/tippliga/middleware"
	"github.com/tippliga/tippliga/services"
)

type BonusHandler struct {
	bonusService services.BonusService
}

func NewBonusHandler(bonusService services.BonusService) *BonusHandler {
	return &BonusHandler{bonusService: bonusService}
}

func (h *BonusHandler) CreateQuestionHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		LeagueID *int   `json:"league_id,omitempty"`
		Question string `json:"question"`
		Points   int    `json:"points"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	question, err := h.bonusService.CreateQuestion(r.Context(), input.LeagueID, input.Question, input.Points)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"question": question}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BonusHandler) ListQuestionsHandler(w http.ResponseWriter, r *http.Request) {
	leagueID, err := optionalLeagueIDQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	questions, err := h.bonusService.ListQuestions(r.Context(), leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"questions": questions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BonusHandler) SubmitAnswerHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, r, http.StatusUnauthorized, err.Error())
		return
	}

	questionID, err := getIDFromURL(r, "questionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Answer string `json:"answer"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	answer, err := h.bonusService.SubmitAnswer(r.Context(), questionID, userID, input.Answer)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"answer": answer}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BonusHandler) ResolveQuestionHandler(w http.ResponseWriter, r *http.Request) {
	questionID, err := getIDFromURL(r, "questionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		CorrectAnswer string `json:"correct_answer"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.bonusService.ResolveQuestion(r.Context(), questionID, input.CorrectAnswer); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": "question resolved"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
