package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Maheshlee007/tkd-drawsheet/brackets"
	"github.com/Maheshlee007/tkd-drawsheet/models"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name conflict for this organizer")
)

type ListTournamentsFilter struct {
	OrganizerID *int
	Status      *models.TournamentStatus
	Limit       int
	Offset      int
}

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error
	Delete(ctx context.Context, id int) error
	SaveSnapshot(ctx context.Context, exec SQLExecutor, id int, snap models.Snapshot) error
	LoadSnapshot(ctx context.Context, id int) (*models.Snapshot, error)
	GetTournamentsForAutoStatusUpdate(ctx context.Context, exec SQLExecutor) ([]*models.Tournament, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	bracketJSON, resultsJSON, err := marshalSnapshot(models.Snapshot{Bracket: t.Bracket, Results: t.Results})
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tournaments (
			name, location, organizer_id, seed_type, rounds_per_match,
			status, start_date, end_date, bracket_json, results_json
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	err = r.db.QueryRowContext(ctx, query,
		t.Name, t.Location, t.OrganizerID, t.SeedType, t.RoundsPerMatch,
		t.Status, t.StartDate, t.EndDate, bracketJSON, resultsJSON,
	).Scan(&t.ID, &t.CreatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `
		SELECT
			id, name, location, organizer_id, seed_type, rounds_per_match,
			status, start_date, end_date, created_at, bracket_json, results_json
		FROM tournaments
		WHERE id = $1`

	t := &models.Tournament{}
	var bracketJSON, resultsJSON []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.Location, &t.OrganizerID, &t.SeedType, &t.RoundsPerMatch,
		&t.Status, &t.StartDate, &t.EndDate, &t.CreatedAt, &bracketJSON, &resultsJSON,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	snap, err := unmarshalSnapshot(bracketJSON, resultsJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshot of tournament %d: %w", id, err)
	}
	t.Bracket = snap.Bracket
	t.Results = snap.Results
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	query := `
		SELECT
			id, name, location, organizer_id, seed_type, rounds_per_match,
			status, start_date, end_date, created_at
		FROM tournaments
		WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.OrganizerID != nil {
		query += fmt.Sprintf(" AND organizer_id = $%d", argID)
		args = append(args, *filter.OrganizerID)
		argID++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}

	query += " ORDER BY start_date DESC, created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := []models.Tournament{}
	for rows.Next() {
		var t models.Tournament
		if err := rows.Scan(
			&t.ID, &t.Name, &t.Location, &t.OrganizerID, &t.SeedType, &t.RoundsPerMatch,
			&t.Status, &t.StartDate, &t.EndDate, &t.CreatedAt,
		); err != nil {
			return nil, err
		}
		tournaments = append(tournaments, t)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE tournaments SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

// SaveSnapshot persists the bracket and the result map in a single UPDATE so
// the two can never be written out of step.
func (r *postgresTournamentRepository) SaveSnapshot(ctx context.Context, exec SQLExecutor, id int, snap models.Snapshot) error {
	executor := r.getExecutor(exec)
	bracketJSON, resultsJSON, err := marshalSnapshot(snap)
	if err != nil {
		return err
	}
	result, err := executor.ExecContext(ctx,
		`UPDATE tournaments SET bracket_json = $1, results_json = $2 WHERE id = $3`,
		bracketJSON, resultsJSON, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) LoadSnapshot(ctx context.Context, id int) (*models.Snapshot, error) {
	var bracketJSON, resultsJSON []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT bracket_json, results_json FROM tournaments WHERE id = $1`, id).
		Scan(&bracketJSON, &resultsJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return unmarshalSnapshot(bracketJSON, resultsJSON)
}

// GetTournamentsForAutoStatusUpdate returns tournaments whose dates have
// outgrown their current status, for the scheduler to advance.
func (r *postgresTournamentRepository) GetTournamentsForAutoStatusUpdate(ctx context.Context, exec SQLExecutor) ([]*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, name, location, organizer_id, seed_type, rounds_per_match,
		       status, start_date, end_date, created_at
		FROM tournaments
		WHERE (status = $1 AND start_date <= NOW())
		   OR (status = $2 AND end_date <= NOW())`

	rows, err := executor.QueryContext(ctx, query, models.StatusRegistration, models.StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := []*models.Tournament{}
	for rows.Next() {
		t := &models.Tournament{}
		if err := rows.Scan(
			&t.ID, &t.Name, &t.Location, &t.OrganizerID, &t.SeedType, &t.RoundsPerMatch,
			&t.Status, &t.StartDate, &t.EndDate, &t.CreatedAt,
		); err != nil {
			return nil, err
		}
		tournaments = append(tournaments, t)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrTournamentNameConflict
	}
	return err
}

func marshalSnapshot(snap models.Snapshot) (bracketJSON, resultsJSON []byte, err error) {
	if bracketJSON, err = json.Marshal(snap.Bracket); err != nil {
		return nil, nil, fmt.Errorf("failed to encode bracket: %w", err)
	}
	if snap.Results == nil {
		snap.Results = brackets.ResultSet{}
	}
	if resultsJSON, err = json.Marshal(snap.Results); err != nil {
		return nil, nil, fmt.Errorf("failed to encode results: %w", err)
	}
	return bracketJSON, resultsJSON, nil
}

func unmarshalSnapshot(bracketJSON, resultsJSON []byte) (*models.Snapshot, error) {
	snap := &models.Snapshot{}
	if len(bracketJSON) > 0 {
		if err := json.Unmarshal(bracketJSON, &snap.Bracket); err != nil {
			return nil, err
		}
	}
	if len(resultsJSON) > 0 {
		if err := json.Unmarshal(resultsJSON, &snap.Results); err != nil {
			return nil, err
		}
	}
	return snap, nil
}
