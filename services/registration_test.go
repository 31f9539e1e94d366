package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kinekixcc/kheladi-sub001/models"
)

func hybridTournament() *models.Tournament {
	return &models.Tournament{
		ID:                  1,
		Name:                "City Futsal Cup",
		SportType:           "futsal",
		RegistrationMode:    models.RegistrationHybrid,
		EntryFeeType:        models.FeePerPlayer,
		EntryFee:            200,
		MaxParticipants:     50,
		CurrentParticipants: 12,
		MaxTeams:            10,
		CurrentTeams:        3,
		TeamSizeMin:         4,
		TeamSizeMax:         5,
	}
}

func TestResolveRegistrationOptionsIndividualMode(t *testing.T) {
	tournament := hybridTournament()
	tournament.RegistrationMode = models.RegistrationIndividual

	opts := ResolveRegistrationOptions(tournament)

	require.True(t, opts.Individual.Available)
	require.Equal(t, 50, opts.Individual.MaxCount)
	require.Equal(t, 12, opts.Individual.CurrentCount)
	require.Equal(t, int64(200), opts.Individual.FeePerUnit)

	require.False(t, opts.Team.Available)
	require.Equal(t, "accepts individual players only", opts.Team.Reason)
}

func TestResolveRegistrationOptionsTeamMode(t *testing.T) {
	tournament := hybridTournament()
	tournament.RegistrationMode = models.RegistrationTeam

	opts := ResolveRegistrationOptions(tournament)

	require.False(t, opts.Individual.Available)
	require.Equal(t, "accepts team registrations only", opts.Individual.Reason)

	require.True(t, opts.Team.Available)
	require.Equal(t, 10, opts.Team.MaxCount)
	require.Equal(t, 3, opts.Team.CurrentCount)
}

func TestResolveRegistrationOptionsHybridOffersBoth(t *testing.T) {
	opts := ResolveRegistrationOptions(hybridTournament())

	require.True(t, opts.Individual.Available)
	require.True(t, opts.Team.Available)

	// The two paths carry independent capacity counters.
	require.Equal(t, 50, opts.Individual.MaxCount)
	require.Equal(t, 12, opts.Individual.CurrentCount)
	require.Equal(t, 10, opts.Team.MaxCount)
	require.Equal(t, 3, opts.Team.CurrentCount)
}

func TestResolveRegistrationOptionsIndividualShareOfTeamFee(t *testing.T) {
	tournament := hybridTournament()
	tournament.EntryFeeType = models.FeePerTeam
	tournament.EntryFee = 1500

	opts := ResolveRegistrationOptions(tournament)

	// Share of a per-team fee is the fee over the maximum team size,
	// truncated to whole units.
	require.Equal(t, int64(300), opts.Individual.FeePerUnit)
	require.Equal(t, int64(1500), opts.Team.FeePerUnit)
}

func TestResolveRegistrationOptionsTeamCostUnderPerPlayerFee(t *testing.T) {
	opts := ResolveRegistrationOptions(hybridTournament())

	// Team-path figure is the minimum viable roster cost.
	require.Equal(t, int64(800), opts.Team.FeePerUnit)
	require.Equal(t, int64(200), opts.Individual.FeePerUnit)
}

func TestResolveRegistrationOptionsIsReadOnly(t *testing.T) {
	tournament := hybridTournament()
	before := *tournament

	_ = ResolveRegistrationOptions(tournament)
	_ = ResolveRegistrationOptions(tournament)

	require.Equal(t, before, *tournament)
}
