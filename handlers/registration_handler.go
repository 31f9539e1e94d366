package handlers

import (
	"errors"
	"net/http"

	"github.com/kinekixcc/kheladi-sub001/models"
	"github.com/kinekixcc/kheladi-sub001/repositories"
	"github.com/kinekixcc/kheladi-sub001/services"
)

// RegistrationHandler serves the read-only registration surfaces: which entry
// paths a tournament offers right now, and the organizer's fee preview.
type RegistrationHandler struct {
	tournamentRepo repositories.TournamentRepository
	commissionRate float64
}

func NewRegistrationHandler(tournamentRepo repositories.TournamentRepository, commissionRate float64) *RegistrationHandler {
	return &RegistrationHandler{
		tournamentRepo: tournamentRepo,
		commissionRate: commissionRate,
	}
}

func (h *RegistrationHandler) GetRegistrationOptions(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentRepo.GetByID(r.Context(), tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			notFoundResponse(w, r)
			return
		}
		serverErrorResponse(w, r, err)
		return
	}

	options := services.ResolveRegistrationOptions(tournament)

	if err := writeJSON(w, http.StatusOK, jsonResponse{"registration_options": options}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RegistrationHandler) GetFeePreview(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentRepo.GetByID(r.Context(), tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			notFoundResponse(w, r)
			return
		}
		serverErrorResponse(w, r, err)
		return
	}

	breakdown := services.CalculateFees(services.FeeInput{
		EntryFee:             tournament.EntryFee,
		MaxTeams:             tournament.MaxTeams,
		TeamSizeMax:          tournament.TeamSizeMax,
		EntryFeeType:         tournament.EntryFeeType,
		CommissionPercentage: h.commissionRate,
	})

	if err := writeJSON(w, http.StatusOK, jsonResponse{"fee_breakdown": breakdown}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PreviewFees is the unauthenticated what-if calculator: organizers tweak
// inputs in the creation form and see the split before the tournament exists.
func (h *RegistrationHandler) PreviewFees(w http.ResponseWriter, r *http.Request) {
	var input struct {
		EntryFee     int64               `json:"entry_fee"`
		MaxTeams     int                 `json:"max_teams"`
		TeamSizeMax  int                 `json:"team_size_max"`
		EntryFeeType models.EntryFeeType `json:"entry_fee_type"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if input.EntryFee < 0 || input.MaxTeams < 0 || input.TeamSizeMax < 0 {
		badRequestResponse(w, r, services.ErrNegativeFeeInput)
		return
	}
	if !input.EntryFeeType.Valid() {
		input.EntryFeeType = models.FeePerPlayer
	}

	breakdown := services.CalculateFees(services.FeeInput{
		EntryFee:             input.EntryFee,
		MaxTeams:             input.MaxTeams,
		TeamSizeMax:          input.TeamSizeMax,
		EntryFeeType:         input.EntryFeeType,
		CommissionPercentage: h.commissionRate,
	})

	if err := writeJSON(w, http.StatusOK, jsonResponse{"fee_breakdown": breakdown}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
