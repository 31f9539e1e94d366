package models

import "time"

type Team struct {
	ID             int       `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Description    *string   `json:"description,omitempty" db:"description"`
	SportType      string    `json:"sport_type" db:"sport_type"`
	TournamentID   int       `json:"tournament_id" db:"tournament_id"`
	CaptainID      int       `json:"captain_id" db:"captain_id"`
	MaxMembers     int       `json:"max_members" db:"max_members"`
	CurrentMembers int       `json:"current_members" db:"current_members"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`

	Captain *User        `json:"captain,omitempty" db:"-"`
	Members []TeamMember `json:"members,omitempty" db:"-"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`
}
