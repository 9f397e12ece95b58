package handlers

import (
	"errors"
	"net/http"

	"github.com/Maheshlee007/tkd-drawsheet/brackets"
	"github.com/Maheshlee007/tkd-drawsheet/middleware"
	"github.com/Maheshlee007/tkd-drawsheet/services"
	"github.com/go-chi/chi/v5"
)

// BracketHandler serves match scoring, result submission, winner overrides
// and participant changes on a tournament's drawsheet.
type BracketHandler struct {
	tournamentService services.TournamentService
}

func NewBracketHandler(ts services.TournamentService) *BracketHandler {
	return &BracketHandler{
		tournamentService: ts,
	}
}

// ScoreRoundHandler handles PATCH /tournaments/{tournamentID}/matches/{matchID}/rounds
func (h *BracketHandler) ScoreRoundHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.GetUserIDFromContext(r.Context()); err != nil {
		unauthorizedResponse(w, r, "authentication required to score matches")
		return
	}

	tournamentID, matchID, err := bracketParams(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		RoundIndex   int                 `json:"round_index"`
		Player1Score *int                `json:"player1_score"`
		Player2Score *int                `json:"player2_score"`
		Method       *brackets.WinMethod `json:"method"`
		Winner       *brackets.Outcome   `json:"winner"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	upd := brackets.RoundUpdate{
		Player1Score: input.Player1Score,
		Player2Score: input.Player2Score,
		Method:       input.Method,
		Winner:       input.Winner,
	}
	result, err := h.tournamentService.ScoreMatchRound(r.Context(), tournamentID, matchID, input.RoundIndex, upd)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SubmitResultHandler handles POST /tournaments/{tournamentID}/matches/{matchID}/result
func (h *BracketHandler) SubmitResultHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.GetUserIDFromContext(r.Context()); err != nil {
		unauthorizedResponse(w, r, "authentication required to submit results")
		return
	}

	tournamentID, matchID, err := bracketParams(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Comment string `json:"comment"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.SubmitMatchResult(r.Context(), tournamentID, matchID, input.Comment)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// OverrideWinnerHandler handles PUT /tournaments/{tournamentID}/matches/{matchID}/winner
func (h *BracketHandler) OverrideWinnerHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.GetUserIDFromContext(r.Context()); err != nil {
		unauthorizedResponse(w, r, "authentication required to override winners")
		return
	}

	tournamentID, matchID, err := bracketParams(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Winner brackets.Outcome `json:"winner"`
		Reason string           `json:"reason"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Reason == "" {
		badRequestResponse(w, r, errors.New("a reason is required to override a winner"))
		return
	}

	tournament, err := h.tournamentService.OverrideMatchWinner(r.Context(), tournamentID, matchID, input.Winner, input.Reason)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AddParticipantHandler handles POST /tournaments/{tournamentID}/participants
func (h *BracketHandler) AddParticipantHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.GetUserIDFromContext(r.Context()); err != nil {
		unauthorizedResponse(w, r, "authentication required to edit participants")
		return
	}

	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Name string `json:"name"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Name == "" {
		badRequestResponse(w, r, errors.New("participant name is required"))
		return
	}

	tournament, err := h.tournamentService.AddParticipant(r.Context(), tournamentID, input.Name)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RemoveParticipantHandler handles DELETE /tournaments/{tournamentID}/participants/{name}
func (h *BracketHandler) RemoveParticipantHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.GetUserIDFromContext(r.Context()); err != nil {
		unauthorizedResponse(w, r, "authentication required to edit participants")
		return
	}

	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	name := chi.URLParam(r, "name")
	if name == "" {
		badRequestResponse(w, r, errors.New("participant name is required"))
		return
	}

	tournament, err := h.tournamentService.RemoveParticipant(r.Context(), tournamentID, name)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RenameParticipantHandler handles PATCH /tournaments/{tournamentID}/participants/{name}
func (h *BracketHandler) RenameParticipantHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.GetUserIDFromContext(r.Context()); err != nil {
		unauthorizedResponse(w, r, "authentication required to edit participants")
		return
	}

	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	oldName := chi.URLParam(r, "name")
	if oldName == "" {
		badRequestResponse(w, r, errors.New("participant name is required"))
		return
	}

	var input struct {
		NewName string `json:"new_name"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.NewName == "" {
		badRequestResponse(w, r, errors.New("new_name is required"))
		return
	}

	tournament, err := h.tournamentService.RenameParticipant(r.Context(), tournamentID, oldName, input.NewName)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StartedHandler handles GET /tournaments/{tournamentID}/started
func (h *BracketHandler) StartedHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	started, err := h.tournamentService.Started(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"started": started}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func bracketParams(r *http.Request) (int, string, error) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		return 0, "", err
	}
	matchID := chi.URLParam(r, "matchID")
	if matchID == "" {
		return 0, "", errors.New("invalid matchID parameter")
	}
	return tournamentID, matchID, nil
}
