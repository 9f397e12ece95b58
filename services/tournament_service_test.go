package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Maheshlee007/tkd-drawsheet/brackets"
	"github.com/Maheshlee007/tkd-drawsheet/models"
	"github.com/Maheshlee007/tkd-drawsheet/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTournamentRepo struct {
	tournaments map[int]*models.Tournament
	nextID      int
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{tournaments: map[int]*models.Tournament{}, nextID: 1}
}

func (f *fakeTournamentRepo) Create(_ context.Context, t *models.Tournament) error {
	t.ID = f.nextID
	f.nextID++
	t.CreatedAt = time.Now()
	f.tournaments[t.ID] = t
	return nil
}

func (f *fakeTournamentRepo) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	t, ok := f.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTournamentRepo) List(_ context.Context, _ repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	out := make([]models.Tournament, 0, len(f.tournaments))
	for _, t := range f.tournaments {
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeTournamentRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	t, ok := f.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

func (f *fakeTournamentRepo) Delete(_ context.Context, id int) error {
	if _, ok := f.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(f.tournaments, id)
	return nil
}

func (f *fakeTournamentRepo) SaveSnapshot(_ context.Context, _ repositories.SQLExecutor, id int, snap models.Snapshot) error {
	t, ok := f.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Bracket = snap.Bracket
	t.Results = snap.Results
	return nil
}

func (f *fakeTournamentRepo) LoadSnapshot(_ context.Context, id int) (*models.Snapshot, error) {
	t, ok := f.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return &models.Snapshot{Bracket: t.Bracket, Results: t.Results}, nil
}

func (f *fakeTournamentRepo) GetTournamentsForAutoStatusUpdate(_ context.Context, _ repositories.SQLExecutor) ([]*models.Tournament, error) {
	now := time.Now()
	var out []*models.Tournament
	for _, t := range f.tournaments {
		if t.Status == models.StatusRegistration && !t.StartDate.After(now) {
			out = append(out, t)
		}
		if t.Status == models.StatusActive && !t.EndDate.After(now) {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeNotifier struct {
	events []string
}

func (f *fakeNotifier) BroadcastToRoom(_ string, eventType string, _ interface{}) {
	f.events = append(f.events, eventType)
}

func newTestService() (TournamentService, *fakeTournamentRepo, *fakeNotifier) {
	repo := newFakeTournamentRepo()
	notifier := &fakeNotifier{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewTournamentService(repo, notifier, logger), repo, notifier
}

func createFourPlayerTournament(t *testing.T, svc TournamentService) *models.Tournament {
	t.Helper()
	tournament, err := svc.Create(context.Background(), 1, CreateTournamentInput{
		Name:           "City Open",
		Participants:   []string{"Kim", "Lee", "Park", "Choi"},
		SeedType:       brackets.SeedAsEntered,
		RoundsPerMatch: 3,
		StartDate:      time.Now().Add(24 * time.Hour),
		EndDate:        time.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)
	return tournament
}

func TestCreate_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	base := CreateTournamentInput{
		Name:           "City Open",
		Participants:   []string{"Kim", "Lee"},
		RoundsPerMatch: 3,
		StartDate:      time.Now(),
		EndDate:        time.Now().Add(time.Hour),
	}

	missingName := base
	missingName.Name = "  "
	_, err := svc.Create(ctx, 1, missingName)
	assert.ErrorIs(t, err, ErrTournamentNameRequired)

	badDates := base
	badDates.EndDate = badDates.StartDate
	_, err = svc.Create(ctx, 1, badDates)
	assert.ErrorIs(t, err, ErrTournamentInvalidDates)

	evenRounds := base
	evenRounds.RoundsPerMatch = 2
	_, err = svc.Create(ctx, 1, evenRounds)
	assert.ErrorIs(t, err, ErrTournamentInvalidRounds)

	badSeed := base
	badSeed.SeedType = "snake"
	_, err = svc.Create(ctx, 1, badSeed)
	assert.ErrorIs(t, err, ErrInvalidSeedType)

	dup := base
	dup.Participants = []string{"Kim", "kim"}
	_, err = svc.Create(ctx, 1, dup)
	assert.ErrorIs(t, err, brackets.ErrDuplicateName)
}

func TestCreate_BuildsBracket(t *testing.T) {
	svc, _, _ := newTestService()
	tournament := createFourPlayerTournament(t, svc)

	assert.Equal(t, models.StatusRegistration, tournament.Status)
	require.Len(t, tournament.Bracket, 2)
	assert.Len(t, tournament.Bracket[0], 2)
	assert.ElementsMatch(t, []string{"Kim", "Lee", "Park", "Choi"}, tournament.Bracket.Participants())
}

func TestScoreAndSubmitMatch(t *testing.T) {
	svc, repo, notifier := newTestService()
	tournament := createFourPlayerTournament(t, svc)
	ctx := context.Background()
	matchID := tournament.Bracket[0][0].ID

	s1, s2 := 10, 4
	for i := 0; i < 2; i++ {
		_, err := svc.ScoreMatchRound(ctx, tournament.ID, matchID, i, brackets.RoundUpdate{
			Player1Score: &s1,
			Player2Score: &s2,
		})
		require.NoError(t, err)
	}

	updated, err := svc.SubmitMatchResult(ctx, tournament.ID, matchID, "clean sweep")
	require.NoError(t, err)

	winner, ok := updated.Bracket[0][0].Winner.Winner()
	require.True(t, ok)
	assert.Equal(t, "Kim", winner)
	assert.True(t, updated.Results[matchID].Completed)
	assert.Equal(t, "clean sweep", updated.Results[matchID].Comment)

	// The winner advanced into the final.
	name, ok := updated.Bracket[1][0].Slots[0].Name()
	require.True(t, ok)
	assert.Equal(t, "Kim", name)

	// The persisted snapshot matches what the call returned.
	stored, err := repo.GetByID(ctx, tournament.ID)
	require.NoError(t, err)
	assert.True(t, stored.Results[matchID].Completed)

	assert.Contains(t, notifier.events, brackets.EventMatchUpdated)
}

func TestSubmitMatchResult_Undecided(t *testing.T) {
	svc, _, _ := newTestService()
	tournament := createFourPlayerTournament(t, svc)
	ctx := context.Background()
	matchID := tournament.Bracket[0][0].ID

	s1, s2 := 7, 3
	_, err := svc.ScoreMatchRound(ctx, tournament.ID, matchID, 0, brackets.RoundUpdate{
		Player1Score: &s1,
		Player2Score: &s2,
	})
	require.NoError(t, err)

	_, err = svc.SubmitMatchResult(ctx, tournament.ID, matchID, "")
	assert.ErrorIs(t, err, ErrMatchUndecided)
}

func TestScoreMatchRound_IndexBoundedByRoundsPerMatch(t *testing.T) {
	svc, _, _ := newTestService()
	tournament := createFourPlayerTournament(t, svc)
	ctx := context.Background()
	matchID := tournament.Bracket[0][0].ID

	s1, s2 := 8, 1
	for i := 0; i < 3; i++ {
		_, err := svc.ScoreMatchRound(ctx, tournament.ID, matchID, i, brackets.RoundUpdate{
			Player1Score: &s1,
			Player2Score: &s2,
		})
		require.NoError(t, err)
	}

	// A fourth round of a best-of-three is rejected.
	_, err := svc.ScoreMatchRound(ctx, tournament.ID, matchID, 3, brackets.RoundUpdate{
		Player1Score: &s1,
		Player2Score: &s2,
	})
	assert.ErrorIs(t, err, brackets.ErrRoundIndexOutOfRange)
}

func TestSubmitMatchResult_CompletedIsFinal(t *testing.T) {
	svc, _, _ := newTestService()
	tournament := createFourPlayerTournament(t, svc)
	ctx := context.Background()
	matchID := tournament.Bracket[0][0].ID

	s1, s2 := 10, 4
	for i := 0; i < 2; i++ {
		_, err := svc.ScoreMatchRound(ctx, tournament.ID, matchID, i, brackets.RoundUpdate{
			Player1Score: &s1,
			Player2Score: &s2,
		})
		require.NoError(t, err)
	}
	_, err := svc.SubmitMatchResult(ctx, tournament.ID, matchID, "")
	require.NoError(t, err)

	_, err = svc.SubmitMatchResult(ctx, tournament.ID, matchID, "")
	assert.ErrorIs(t, err, ErrMatchAlreadyCompleted)
}

func TestSubmitMatchResult_NotScored(t *testing.T) {
	svc, _, _ := newTestService()
	tournament := createFourPlayerTournament(t, svc)

	_, err := svc.SubmitMatchResult(context.Background(), tournament.ID, tournament.Bracket[0][0].ID, "")
	assert.ErrorIs(t, err, ErrMatchNotScored)
}

func TestScoreMatchRound_ByeMatchRejected(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	tournament, err := svc.Create(ctx, 1, CreateTournamentInput{
		Name:           "Regional",
		Participants:   []string{"Kim", "Lee", "Park"},
		RoundsPerMatch: 3,
		StartDate:      time.Now().Add(time.Hour),
		EndDate:        time.Now().Add(2 * time.Hour),
	})
	require.NoError(t, err)

	var byeMatchID string
	for _, m := range tournament.Bracket[0] {
		if m.Slots[1].IsBye() {
			byeMatchID = m.ID
			break
		}
	}
	require.NotEmpty(t, byeMatchID)

	s := 5
	_, err = svc.ScoreMatchRound(ctx, tournament.ID, byeMatchID, 0, brackets.RoundUpdate{Player1Score: &s})
	assert.ErrorIs(t, err, ErrMatchHasBye)
}

func TestOverrideMatchWinner_RecordsHistory(t *testing.T) {
	svc, _, notifier := newTestService()
	tournament := createFourPlayerTournament(t, svc)
	ctx := context.Background()
	matchID := tournament.Bracket[0][0].ID

	updated, err := svc.OverrideMatchWinner(ctx, tournament.ID, matchID, brackets.Decided("Lee"), "scoring error at the table")
	require.NoError(t, err)

	result := updated.Results[matchID]
	require.NotNil(t, result)
	require.Len(t, result.History, 1)
	assert.True(t, result.History[0].PreviousWinner.IsUndecided())
	newWinner, ok := result.History[0].NewWinner.Winner()
	require.True(t, ok)
	assert.Equal(t, "Lee", newWinner)
	assert.Equal(t, "scoring error at the table", result.History[0].Reason)
	assert.True(t, result.Completed)

	assert.Contains(t, notifier.events, brackets.EventBracketUpdated)
}

func TestParticipantOperations(t *testing.T) {
	svc, _, notifier := newTestService()
	tournament := createFourPlayerTournament(t, svc)
	ctx := context.Background()

	updated, err := svc.RenameParticipant(ctx, tournament.ID, "Kim", "Kim J-H")
	require.NoError(t, err)
	assert.Contains(t, updated.Bracket.Participants(), "Kim J-H")

	updated, err = svc.AddParticipant(ctx, tournament.ID, "Jung")
	require.NoError(t, err)
	assert.Contains(t, updated.Bracket.Participants(), "Jung")

	updated, err = svc.RemoveParticipant(ctx, tournament.ID, "Jung")
	require.NoError(t, err)
	assert.NotContains(t, updated.Bracket.Participants(), "Jung")

	assert.Contains(t, notifier.events, brackets.EventParticipantsChanged)
}

func TestStarted_FlipsAfterScoring(t *testing.T) {
	svc, _, _ := newTestService()
	tournament := createFourPlayerTournament(t, svc)
	ctx := context.Background()

	started, err := svc.Started(ctx, tournament.ID)
	require.NoError(t, err)
	assert.False(t, started)

	s1, s2 := 9, 2
	_, err = svc.ScoreMatchRound(ctx, tournament.ID, tournament.Bracket[0][0].ID, 0, brackets.RoundUpdate{
		Player1Score: &s1,
		Player2Score: &s2,
	})
	require.NoError(t, err)

	started, err = svc.Started(ctx, tournament.ID)
	require.NoError(t, err)
	assert.True(t, started)

	_, err = svc.AddParticipant(ctx, tournament.ID, "Jung")
	assert.ErrorIs(t, err, brackets.ErrTournamentInProgress)
}

func TestDelete_OnlyOrganizer(t *testing.T) {
	svc, repo, _ := newTestService()
	tournament := createFourPlayerTournament(t, svc)
	ctx := context.Background()

	err := svc.Delete(ctx, tournament.ID, 99)
	assert.ErrorIs(t, err, ErrForbiddenOperation)

	require.NoError(t, svc.Delete(ctx, tournament.ID, 1))
	_, err = repo.GetByID(ctx, tournament.ID)
	assert.ErrorIs(t, err, repositories.ErrTournamentNotFound)
}

func TestAutoUpdateTournamentStatusesByDates(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	tournament, err := svc.Create(ctx, 1, CreateTournamentInput{
		Name:           "Past Start",
		Participants:   []string{"Kim", "Lee"},
		RoundsPerMatch: 3,
		StartDate:      time.Now().Add(-time.Hour),
		EndDate:        time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	require.NoError(t, svc.AutoUpdateTournamentStatusesByDates(ctx))

	stored, err := repo.GetByID(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, stored.Status)
}
