package models

import (
	"time"

	"github.com/Maheshlee007/tkd-drawsheet/brackets"
)

// TournamentStatus represents the tournament lifecycle states stored in the
// database ENUM.
type TournamentStatus string

const (
	StatusRegistration TournamentStatus = "registration"
	StatusActive       TournamentStatus = "active"
	StatusCompleted    TournamentStatus = "completed"
	StatusCanceled     TournamentStatus = "canceled"
)

// Tournament is one drawsheet event: its metadata plus the bracket and the
// per-match scoring records that make up the persisted snapshot.
type Tournament struct {
	ID             int               `json:"id" db:"id"`
	Name           string            `json:"name" db:"name"`
	Location       *string           `json:"location,omitempty" db:"location"`
	OrganizerID    int               `json:"organizer_id" db:"organizer_id"`
	SeedType       brackets.SeedType `json:"seed_type" db:"seed_type"`
	RoundsPerMatch int               `json:"rounds_per_match" db:"rounds_per_match"`
	Status         TournamentStatus  `json:"status" db:"status"`
	StartDate      time.Time         `json:"start_date" db:"start_date"`
	EndDate        time.Time         `json:"end_date" db:"end_date"`
	CreatedAt      time.Time         `json:"created_at" db:"created_at"`

	Bracket brackets.Bracket   `json:"bracket,omitempty" db:"-"`
	Results brackets.ResultSet `json:"results,omitempty" db:"-"`
}

// Snapshot is the serializable drawsheet state written to storage in one
// piece; the bracket and the result map are never persisted separately.
type Snapshot struct {
	Bracket brackets.Bracket   `json:"bracket"`
	Results brackets.ResultSet `json:"results"`
}

// Export is the JSON document published for a finished (or running)
// tournament: a direct serialization of the drawsheet shapes.
type Export struct {
	Tournament Tournament         `json:"tournament"`
	Bracket    brackets.Bracket   `json:"bracket"`
	Results    brackets.ResultSet `json:"results"`
	ExportedAt time.Time          `json:"exported_at"`
}
