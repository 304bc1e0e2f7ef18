package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tippliga/tippliga/repositories"
	"github.com/tippliga/tippliga/services"
	"github.com/tippliga/tippliga/storage"
	"github.com/tippliga/tippliga/utils"
)

type MatchHandler struct {
	matchService          services.MatchService
	syncService           services.SyncService
	bracketScoringService services.BracketScoringService
	matchRepo             repositories.MatchRepository
	uploader              storage.FileUploader
}

func NewMatchHandler(
	matchService services.MatchService,
	syncService services.SyncService,
	bracketScoringService services.BracketScoringService,
	matchRepo repositories.MatchRepository,
	uploader storage.FileUploader,
) *MatchHandler {
	return &MatchHandler{
		matchService:          matchService,
		syncService:           syncService,
		bracketScoringService: bracketScoringService,
		matchRepo:             matchRepo,
		uploader:              uploader,
	}
}

func (h *MatchHandler) GetMatchHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetMatch(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) ListGroupMatchesHandler(w http.ResponseWriter, r *http.Request) {
	group := chi.URLParam(r, "group")

	matches, err := h.matchService.ListGroupMatches(r.Context(), group)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) ListKnockoutMatchesHandler(w http.ResponseWriter, r *http.Request) {
	matches, err := h.matchService.ListKnockoutMatches(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) FinishMatchHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		HomeScore int `json:"home_score"`
		AwayScore int `json:"away_score"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.FinishMatch(r.Context(), matchID, input.HomeScore, input.AwayScore)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) UpdateMatchHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.MatchUpdateInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.UpdateMatch(r.Context(), matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) SeedKnockoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.matchService.SeedKnockoutMatches(r.Context()); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"status": "knockout bracket seeded"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) ResetKnockoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.matchService.ResetKnockoutMatches(r.Context()); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": "knockout bracket reset"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) ForceSyncHandler(w http.ResponseWriter, r *http.Request) {
	summary, err := h.syncService.SyncOnce(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"sync": summary}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) RecalculateBracketsHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.bracketScoringService.RecalculateAll(r.Context()); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": "bracket points recalculated"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UploadTeamFlagHandler принимает multipart-форму с полем "flag" и
// привязывает загруженное изображение ко всем матчам команды.
func (h *MatchHandler) UploadTeamFlagHandler(w http.ResponseWriter, r *http.Request) {
	if h.uploader == nil {
		errorResponse(w, r, http.StatusServiceUnavailable, "file storage is not configured")
		return
	}

	team := chi.URLParam(r, "team")
	if team == "" {
		badRequestResponse(w, r, fmt.Errorf("team parameter is required"))
		return
	}

	if err := r.ParseMultipartForm(5 << 20); err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to parse multipart form: %w", err))
		return
	}

	file, header, err := r.FormFile("flag")
	if err != nil {
		badRequestResponse(w, r, fmt.Errorf("missing form file %q: %w", "flag", err))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	ext, err := utils.ExtensionFromContentType(contentType)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	key := fmt.Sprintf("flags/%s%s", team, ext)
	result, err := h.uploader.Upload(r.Context(), key, contentType, file)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	if err := h.matchRepo.UpdateTeamFlag(r.Context(), team, result.Location); err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"flag_url": result.Location}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
