package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Maheshlee007/tkd-drawsheet/brackets"
	"github.com/Maheshlee007/tkd-drawsheet/models"
	"github.com/Maheshlee007/tkd-drawsheet/repositories"
)

// BracketNotifier pushes drawsheet updates to live viewers. Satisfied by
// *brackets.Hub.
type BracketNotifier interface {
	BroadcastToRoom(roomID, eventType string, payload interface{})
}

type CreateTournamentInput struct {
	Name           string            `json:"name"`
	Location       *string           `json:"location"`
	Participants   []string          `json:"participants"`
	SeedType       brackets.SeedType `json:"seed_type"`
	RoundsPerMatch int               `json:"rounds_per_match"`
	StartDate      time.Time         `json:"start_date"`
	EndDate        time.Time         `json:"end_date"`
}

type TournamentService interface {
	Create(ctx context.Context, organizerID int, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error)
	Delete(ctx context.Context, id, currentUserID int) error

	ScoreMatchRound(ctx context.Context, tournamentID int, matchID string, roundIndex int, upd brackets.RoundUpdate) (*brackets.MatchResult, error)
	SubmitMatchResult(ctx context.Context, tournamentID int, matchID, comment string) (*models.Tournament, error)
	OverrideMatchWinner(ctx context.Context, tournamentID int, matchID string, newWinner brackets.Outcome, reason string) (*models.Tournament, error)

	AddParticipant(ctx context.Context, tournamentID int, name string) (*models.Tournament, error)
	RemoveParticipant(ctx context.Context, tournamentID int, name string) (*models.Tournament, error)
	RenameParticipant(ctx context.Context, tournamentID int, oldName, newName string) (*models.Tournament, error)
	Started(ctx context.Context, tournamentID int) (bool, error)

	AutoUpdateTournamentStatusesByDates(ctx context.Context) error
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	hub            BracketNotifier
	logger         *slog.Logger
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	hub BracketNotifier,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		hub:            hub,
		logger:         logger,
	}
}

func (s *tournamentService) Create(ctx context.Context, organizerID int, input CreateTournamentInput) (*models.Tournament, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrTournamentNameRequired
	}
	if !input.EndDate.After(input.StartDate) {
		return nil, ErrTournamentInvalidDates
	}
	if input.RoundsPerMatch <= 0 || input.RoundsPerMatch%2 == 0 {
		return nil, ErrTournamentInvalidRounds
	}
	switch input.SeedType {
	case brackets.SeedRandom, brackets.SeedOrdered, brackets.SeedAsEntered:
	case "":
		input.SeedType = brackets.SeedAsEntered
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidSeedType, input.SeedType)
	}

	seen := make(map[string]bool, len(input.Participants))
	cleaned := make([]string, 0, len(input.Participants))
	for _, name := range input.Participants {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("%w: blank participant name", ErrValidationFailed)
		}
		key := strings.ToLower(name)
		if seen[key] {
			return nil, fmt.Errorf("%w: %q", brackets.ErrDuplicateName, name)
		}
		seen[key] = true
		cleaned = append(cleaned, name)
	}

	bracket, err := brackets.Build(cleaned, input.SeedType)
	if err != nil {
		return nil, err
	}

	tournament := &models.Tournament{
		Name:           input.Name,
		Location:       input.Location,
		OrganizerID:    organizerID,
		SeedType:       input.SeedType,
		RoundsPerMatch: input.RoundsPerMatch,
		Status:         models.StatusRegistration,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		Bracket:        bracket,
		Results:        brackets.ResultSet{},
	}
	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return nil, err
	}

	s.logger.Info("tournament created",
		slog.Int("tournament_id", tournament.ID),
		slog.Int("participants", len(cleaned)),
		slog.String("seed_type", string(input.SeedType)))
	return tournament, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	return s.tournamentRepo.GetByID(ctx, id)
}

func (s *tournamentService) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	return s.tournamentRepo.List(ctx, filter)
}

func (s *tournamentService) Delete(ctx context.Context, id, currentUserID int) error {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if tournament.OrganizerID != currentUserID {
		return ErrForbiddenOperation
	}
	return s.tournamentRepo.Delete(ctx, id)
}

// ScoreMatchRound records one round of a match as an intermediate save; the
// match stays incomplete until the result is submitted.
func (s *tournamentService) ScoreMatchRound(ctx context.Context, tournamentID int, matchID string, roundIndex int, upd brackets.RoundUpdate) (*brackets.MatchResult, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	if roundIndex < 0 || roundIndex >= tournament.RoundsPerMatch {
		return nil, fmt.Errorf("%w: round %d of a best-of-%d match",
			brackets.ErrRoundIndexOutOfRange, roundIndex, tournament.RoundsPerMatch)
	}

	match, err := findScorableMatch(tournament.Bracket, matchID)
	if err != nil {
		return nil, err
	}
	player1, _ := match.Slots[0].Name()
	player2, _ := match.Slots[1].Name()

	results := tournament.Results.Clone()
	result, ok := results[matchID]
	if !ok {
		result = &brackets.MatchResult{MatchID: matchID, Player1: player1, Player2: player2}
		results[matchID] = result
	}
	rounds, err := brackets.ScoreRound(result.Rounds, roundIndex, upd, player1, player2)
	if err != nil {
		return nil, err
	}
	result.Rounds = rounds

	snap := models.Snapshot{Bracket: tournament.Bracket, Results: results}
	if err := s.tournamentRepo.SaveSnapshot(ctx, nil, tournamentID, snap); err != nil {
		return nil, err
	}

	s.broadcast(tournamentID, brackets.EventMatchUpdated, result)
	return result, nil
}

// SubmitMatchResult reduces the scored rounds to a match winner, marks the
// result completed and advances the bracket, all persisted in one snapshot.
// A completed result cannot be resubmitted; corrections go through
// OverrideMatchWinner so they stay on the history record.
func (s *tournamentService) SubmitMatchResult(ctx context.Context, tournamentID int, matchID, comment string) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	results := tournament.Results.Clone()
	result, ok := results[matchID]
	if !ok || len(result.Rounds) == 0 {
		return nil, fmt.Errorf("%w: match %s", ErrMatchNotScored, matchID)
	}
	if result.Completed {
		return nil, fmt.Errorf("%w: match %s", ErrMatchAlreadyCompleted, matchID)
	}

	outcome := brackets.DetermineMatchWinner(result.Rounds, result.Player1, result.Player2, tournament.RoundsPerMatch)
	if outcome.IsUndecided() {
		return nil, fmt.Errorf("%w: match %s", ErrMatchUndecided, matchID)
	}

	bracket, err := brackets.SetWinner(tournament.Bracket, matchID, outcome)
	if err != nil {
		return nil, err
	}

	result.Winner = outcome
	result.Completed = true
	if comment != "" {
		result.Comment = comment
	}

	tournament.Bracket = bracket
	tournament.Results = results
	snap := models.Snapshot{Bracket: bracket, Results: results}
	if err := s.tournamentRepo.SaveSnapshot(ctx, nil, tournamentID, snap); err != nil {
		return nil, err
	}

	s.logger.Info("match result submitted",
		slog.Int("tournament_id", tournamentID),
		slog.String("match_id", matchID),
		slog.String("winner", outcome.String()))
	s.broadcast(tournamentID, brackets.EventMatchUpdated, tournament)
	return tournament, nil
}

// OverrideMatchWinner corrects a declared winner after the fact. The
// correction always lands in the result's history so it stays auditable.
func (s *tournamentService) OverrideMatchWinner(ctx context.Context, tournamentID int, matchID string, newWinner brackets.Outcome, reason string) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	r, p, ok := tournament.Bracket.Find(matchID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", brackets.ErrMatchNotFound, matchID)
	}
	match := tournament.Bracket[r][p]

	bracket, err := brackets.SetWinner(tournament.Bracket, matchID, newWinner)
	if err != nil {
		return nil, err
	}

	results := tournament.Results.Clone()
	result, exists := results[matchID]
	if !exists {
		player1, _ := match.Slots[0].Name()
		player2, _ := match.Slots[1].Name()
		result = &brackets.MatchResult{MatchID: matchID, Player1: player1, Player2: player2}
		results[matchID] = result
	}
	result.History = append(result.History, brackets.HistoryEntry{
		PreviousWinner: match.Winner,
		NewWinner:      newWinner,
		Reason:         reason,
		ChangedAt:      time.Now().UTC(),
	})
	result.Winner = newWinner
	result.Completed = true

	tournament.Bracket = bracket
	tournament.Results = results
	snap := models.Snapshot{Bracket: bracket, Results: results}
	if err := s.tournamentRepo.SaveSnapshot(ctx, nil, tournamentID, snap); err != nil {
		return nil, err
	}

	s.logger.Info("match winner overridden",
		slog.Int("tournament_id", tournamentID),
		slog.String("match_id", matchID),
		slog.String("previous", match.Winner.String()),
		slog.String("new", newWinner.String()),
		slog.String("reason", reason))
	s.broadcast(tournamentID, brackets.EventBracketUpdated, tournament)
	return tournament, nil
}

func (s *tournamentService) AddParticipant(ctx context.Context, tournamentID int, name string) (*models.Tournament, error) {
	return s.mutateParticipants(ctx, tournamentID, func(b brackets.Bracket, r brackets.ResultSet) (brackets.Bracket, brackets.ResultSet, error) {
		return brackets.Add(b, r, strings.TrimSpace(name))
	})
}

func (s *tournamentService) RemoveParticipant(ctx context.Context, tournamentID int, name string) (*models.Tournament, error) {
	return s.mutateParticipants(ctx, tournamentID, func(b brackets.Bracket, r brackets.ResultSet) (brackets.Bracket, brackets.ResultSet, error) {
		return brackets.Remove(b, r, name)
	})
}

func (s *tournamentService) RenameParticipant(ctx context.Context, tournamentID int, oldName, newName string) (*models.Tournament, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, fmt.Errorf("%w: blank participant name", ErrValidationFailed)
	}
	return s.mutateParticipants(ctx, tournamentID, func(b brackets.Bracket, r brackets.ResultSet) (brackets.Bracket, brackets.ResultSet, error) {
		return brackets.Rename(b, r, oldName, newName)
	})
}

func (s *tournamentService) Started(ctx context.Context, tournamentID int) (bool, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return false, err
	}
	return brackets.Started(tournament.Bracket, tournament.Results), nil
}

// AutoUpdateTournamentStatusesByDates advances tournament statuses whose
// dates have passed; run periodically by the scheduler in main.
func (s *tournamentService) AutoUpdateTournamentStatusesByDates(ctx context.Context) error {
	tournaments, err := s.tournamentRepo.GetTournamentsForAutoStatusUpdate(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to list tournaments for status update: %w", err)
	}

	for _, t := range tournaments {
		var next models.TournamentStatus
		switch t.Status {
		case models.StatusRegistration:
			next = models.StatusActive
		case models.StatusActive:
			next = models.StatusCompleted
		default:
			continue
		}
		if err := s.tournamentRepo.UpdateStatus(ctx, nil, t.ID, next); err != nil {
			s.logger.Error("failed to auto-update tournament status",
				slog.Int("tournament_id", t.ID), slog.Any("error", err))
			continue
		}
		s.logger.Info("tournament status advanced",
			slog.Int("tournament_id", t.ID),
			slog.String("from", string(t.Status)),
			slog.String("to", string(next)))
	}
	return nil
}

func (s *tournamentService) mutateParticipants(
	ctx context.Context,
	tournamentID int,
	mutate func(brackets.Bracket, brackets.ResultSet) (brackets.Bracket, brackets.ResultSet, error),
) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	bracket, results, err := mutate(tournament.Bracket, tournament.Results)
	if err != nil {
		return nil, err
	}

	tournament.Bracket = bracket
	tournament.Results = results
	snap := models.Snapshot{Bracket: bracket, Results: results}
	if err := s.tournamentRepo.SaveSnapshot(ctx, nil, tournamentID, snap); err != nil {
		return nil, err
	}

	s.broadcast(tournamentID, brackets.EventParticipantsChanged, tournament)
	return tournament, nil
}

func (s *tournamentService) broadcast(tournamentID int, eventType string, payload interface{}) {
	if s.hub != nil {
		s.hub.BroadcastToRoom(strconv.Itoa(tournamentID), eventType, payload)
	}
}

// findScorableMatch rejects scoring for matches that do not yet hold two real
// players: byes are decided structurally and empty slots are still waiting on
// earlier rounds.
func findScorableMatch(b brackets.Bracket, matchID string) (*brackets.Match, error) {
	r, p, ok := b.Find(matchID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", brackets.ErrMatchNotFound, matchID)
	}
	match := b[r][p]
	if match.Slots[0].IsBye() || match.Slots[1].IsBye() {
		return nil, fmt.Errorf("%w: match %s", ErrMatchHasBye, matchID)
	}
	if !match.Slots[0].IsPlayer() || !match.Slots[1].IsPlayer() {
		return nil, fmt.Errorf("%w: match %s is still waiting on earlier rounds", ErrValidationFailed, matchID)
	}
	return &match, nil
}
