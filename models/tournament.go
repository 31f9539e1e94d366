package models

import (
	"errors"
	"time"
)

// RegistrationMode controls which registration paths a tournament offers.
// Immutable after publication in normal operation.
type RegistrationMode string

const (
	RegistrationIndividual RegistrationMode = "individual"
	RegistrationTeam       RegistrationMode = "team"
	RegistrationHybrid     RegistrationMode = "hybrid"
)

func (m RegistrationMode) Valid() bool {
	switch m {
	case RegistrationIndividual, RegistrationTeam, RegistrationHybrid:
		return true
	}
	return false
}

// EntryFeeType says what unit the entry fee is charged per.
type EntryFeeType string

const (
	FeePerPlayer EntryFeeType = "per_player"
	FeePerTeam   EntryFeeType = "per_team"
)

func (t EntryFeeType) Valid() bool {
	return t == FeePerPlayer || t == FeePerTeam
}

// Tournament carries the registration configuration this workflow reads.
// Money fields are whole platform currency units.
type Tournament struct {
	ID                  int              `json:"id" db:"id"`
	Name                string           `json:"name" db:"name"`
	Description         *string          `json:"description,omitempty" db:"description"`
	SportType           string           `json:"sport_type" db:"sport_type"`
	OrganizerID         int              `json:"organizer_id" db:"organizer_id"`
	RegistrationMode    RegistrationMode `json:"registration_mode" db:"registration_mode"`
	EntryFeeType        EntryFeeType     `json:"entry_fee_type" db:"entry_fee_type"`
	EntryFee            int64            `json:"entry_fee" db:"entry_fee"`
	MaxParticipants     int              `json:"max_participants" db:"max_participants"`
	CurrentParticipants int              `json:"current_participants" db:"current_participants"`
	MaxTeams            int              `json:"max_teams" db:"max_teams"`
	CurrentTeams        int              `json:"current_teams" db:"current_teams"`
	TeamSizeMin         int              `json:"team_size_min" db:"team_size_min"`
	TeamSizeMax         int              `json:"team_size_max" db:"team_size_max"`
	CreatedAt           time.Time        `json:"created_at" db:"created_at"`
}

var (
	ErrTournamentBadMode     = errors.New("unknown registration mode")
	ErrTournamentBadFeeType  = errors.New("unknown entry fee type")
	ErrTournamentBadFee      = errors.New("entry fee must not be negative")
	ErrTournamentBadCapacity = errors.New("capacity counters out of range")
	ErrTournamentBadTeamSize = errors.New("team size bounds must satisfy 1 <= min <= max")
)

// Validate rejects partially populated or contradictory registration
// configuration at the boundary instead of letting it propagate.
func (t *Tournament) Validate() error {
	if !t.RegistrationMode.Valid() {
		return ErrTournamentBadMode
	}
	if !t.EntryFeeType.Valid() {
		return ErrTournamentBadFeeType
	}
	if t.EntryFee < 0 {
		return ErrTournamentBadFee
	}
	if t.MaxParticipants < 0 || t.CurrentParticipants < 0 || t.CurrentParticipants > t.MaxParticipants {
		return ErrTournamentBadCapacity
	}
	if t.MaxTeams < 0 || t.CurrentTeams < 0 || t.CurrentTeams > t.MaxTeams {
		return ErrTournamentBadCapacity
	}
	if t.TeamSizeMin < 1 || t.TeamSizeMin > t.TeamSizeMax {
		return ErrTournamentBadTeamSize
	}
	return nil
}
