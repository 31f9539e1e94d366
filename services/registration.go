package services

import "github.com/kinekixcc/kheladi-sub001/models"

// RegistrationPath is one offerable way to enter a tournament, with its live
// capacity counters and display fee. When Available is false, Reason says
// why and the numeric fields are zero.
type RegistrationPath struct {
	Available    bool   `json:"available"`
	Reason       string `json:"reason,omitempty"`
	MaxCount     int    `json:"max_count,omitempty"`
	CurrentCount int    `json:"current_count,omitempty"`
	FeePerUnit   int64  `json:"fee_per_unit,omitempty"`
	Description  string `json:"description,omitempty"`
}

// RegistrationOptions is the resolver's answer for one tournament.
type RegistrationOptions struct {
	Individual RegistrationPath `json:"individual"`
	Team       RegistrationPath `json:"team"`
}

// ResolveRegistrationOptions derives which registration paths a tournament
// currently offers. Read-only and idempotent; capacity counters are never
// mutated here.
//
// The cross-type fee figures are deliberate approximations carried over from
// the product's pricing rules: an individual's share of a per_team fee is
// entry_fee / team_size_max, and the team-path figure under per_player
// pricing is entry_fee * team_size_min (minimum viable team cost). These are
// display figures; CalculateFees is the authoritative money path.
func ResolveRegistrationOptions(t *models.Tournament) RegistrationOptions {
	var opts RegistrationOptions

	switch t.RegistrationMode {
	case models.RegistrationIndividual:
		opts.Individual = individualPath(t)
		opts.Team = RegistrationPath{Reason: "accepts individual players only"}
	case models.RegistrationTeam:
		opts.Individual = RegistrationPath{Reason: "accepts team registrations only"}
		opts.Team = teamPath(t)
	case models.RegistrationHybrid:
		opts.Individual = individualPath(t)
		opts.Team = teamPath(t)
	}

	return opts
}

func individualPath(t *models.Tournament) RegistrationPath {
	fee := t.EntryFee
	if t.EntryFeeType == models.FeePerTeam && t.TeamSizeMax > 0 {
		fee = t.EntryFee / int64(t.TeamSizeMax)
	}
	return RegistrationPath{
		Available:    true,
		MaxCount:     t.MaxParticipants,
		CurrentCount: t.CurrentParticipants,
		FeePerUnit:   fee,
		Description:  "register yourself and get matched on site",
	}
}

func teamPath(t *models.Tournament) RegistrationPath {
	fee := t.EntryFee
	if t.EntryFeeType == models.FeePerPlayer {
		fee = t.EntryFee * int64(t.TeamSizeMin)
	}
	return RegistrationPath{
		Available:    true,
		MaxCount:     t.MaxTeams,
		CurrentCount: t.CurrentTeams,
		FeePerUnit:   fee,
		Description:  "register a full roster as one team",
	}
}
