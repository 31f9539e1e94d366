package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kinekixcc/kheladi-sub001/models"
)

func TestCalculateFeesPerTeam(t *testing.T) {
	breakdown := CalculateFees(FeeInput{
		EntryFee:             1500,
		MaxTeams:             16,
		TeamSizeMax:          5,
		EntryFeeType:         models.FeePerTeam,
		CommissionPercentage: 5,
	})

	require.Equal(t, int64(24000), breakdown.TotalRevenue)
	require.Equal(t, int64(1200), breakdown.CommissionAmount)
	require.Equal(t, int64(22800), breakdown.NetAmount)
	require.Equal(t, "per team", breakdown.PerUnitLabel)
	require.Equal(t, 16, breakdown.Headcount)
}

func TestCalculateFeesPerPlayer(t *testing.T) {
	breakdown := CalculateFees(FeeInput{
		EntryFee:             200,
		MaxTeams:             10,
		TeamSizeMax:          5,
		EntryFeeType:         models.FeePerPlayer,
		CommissionPercentage: 5,
	})

	require.Equal(t, int64(10000), breakdown.TotalRevenue)
	require.Equal(t, int64(500), breakdown.CommissionAmount)
	require.Equal(t, int64(9500), breakdown.NetAmount)
	require.Equal(t, "per player", breakdown.PerUnitLabel)
	require.Equal(t, 50, breakdown.Headcount)
}

func TestCalculateFeesZeroEntryFee(t *testing.T) {
	breakdown := CalculateFees(FeeInput{
		EntryFee:             0,
		MaxTeams:             8,
		TeamSizeMax:          4,
		EntryFeeType:         models.FeePerPlayer,
		CommissionPercentage: 5,
	})

	require.Zero(t, breakdown.TotalRevenue)
	require.Zero(t, breakdown.CommissionAmount)
	require.Zero(t, breakdown.NetAmount)
}

// The split must reconcile exactly whatever the rounding does to the
// commission: net is always derived as total minus commission.
func TestCalculateFeesReconciles(t *testing.T) {
	cases := []struct {
		name string
		in   FeeInput
	}{
		{"odd total odd rate", FeeInput{EntryFee: 333, MaxTeams: 7, TeamSizeMax: 3, EntryFeeType: models.FeePerPlayer, CommissionPercentage: 7.5}},
		{"rounds half up", FeeInput{EntryFee: 10, MaxTeams: 5, EntryFeeType: models.FeePerTeam, CommissionPercentage: 7}},
		{"zero commission", FeeInput{EntryFee: 999, MaxTeams: 3, EntryFeeType: models.FeePerTeam, CommissionPercentage: 0}},
		{"full commission", FeeInput{EntryFee: 250, MaxTeams: 4, TeamSizeMax: 6, EntryFeeType: models.FeePerPlayer, CommissionPercentage: 100}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			breakdown := CalculateFees(tc.in)
			require.Equal(t, breakdown.TotalRevenue, breakdown.CommissionAmount+breakdown.NetAmount)
			require.GreaterOrEqual(t, breakdown.CommissionAmount, int64(0))
			require.LessOrEqual(t, breakdown.CommissionAmount, breakdown.TotalRevenue)
		})
	}
}

func TestCalculateFeesCommissionRounding(t *testing.T) {
	// 5% of 1250 is 62.5; math rounds it to 63, net picks up the remainder.
	breakdown := CalculateFees(FeeInput{
		EntryFee:             250,
		MaxTeams:             5,
		EntryFeeType:         models.FeePerTeam,
		CommissionPercentage: 5,
	})

	require.Equal(t, int64(1250), breakdown.TotalRevenue)
	require.Equal(t, int64(63), breakdown.CommissionAmount)
	require.Equal(t, int64(1187), breakdown.NetAmount)
}
