package services

import (
	"math"

	"github.com/kinekixcc/kheladi-sub001/models"
)

// FeeInput is the registration-mode configuration the fee math runs over.
// Amounts are whole platform currency units. Callers must reject negative
// EntryFee, MaxTeams or TeamSizeMax before calling; the calculator assumes
// non-negative inputs.
type FeeInput struct {
	EntryFee             int64
	MaxTeams             int
	TeamSizeMax          int
	EntryFeeType         models.EntryFeeType
	CommissionPercentage float64
}

// FeeBreakdown is the reconciled revenue split for a tournament.
// CommissionAmount + NetAmount always equals TotalRevenue exactly.
type FeeBreakdown struct {
	TotalRevenue     int64  `json:"total_revenue"`
	CommissionAmount int64  `json:"commission_amount"`
	NetAmount        int64  `json:"net_amount"`
	PerUnitLabel     string `json:"per_unit_label"`
	PerUnitValue     int64  `json:"per_unit_value"`
	Headcount        int    `json:"headcount"`
}

// CalculateFees computes organizer and platform amounts for a tournament at
// full capacity. Pure: safe to call on every form-field change for live
// previews, and authoritative for any downstream payment step.
func CalculateFees(in FeeInput) FeeBreakdown {
	var total int64
	var label string
	headcount := in.MaxTeams

	switch in.EntryFeeType {
	case models.FeePerTeam:
		total = in.EntryFee * int64(in.MaxTeams)
		label = "per team"
	default: // per_player
		total = in.EntryFee * int64(in.MaxTeams) * int64(in.TeamSizeMax)
		label = "per player"
		headcount = in.MaxTeams * in.TeamSizeMax
	}

	commission := int64(math.Round(float64(total) * in.CommissionPercentage / 100))

	return FeeBreakdown{
		TotalRevenue:     total,
		CommissionAmount: commission,
		NetAmount:        total - commission,
		PerUnitLabel:     label,
		PerUnitValue:     in.EntryFee,
		Headcount:        headcount,
	}
}
