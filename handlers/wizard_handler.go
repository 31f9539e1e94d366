package handlers

import (
	"net/http"

	"github.com/kinekixcc/kheladi-sub001/middleware"
	"github.com/kinekixcc/kheladi-sub001/models"
	"github.com/kinekixcc/kheladi-sub001/services"
)

// WizardHandler exposes the team creation flow over HTTP. The draft itself
// lives in the client; every request carries the full payload and the server
// replays it through the wizard so the step gates and the commit gate run on
// trusted state.
type WizardHandler struct {
	wizardService *services.WizardService
}

func NewWizardHandler(wizardService *services.WizardService) *WizardHandler {
	return &WizardHandler{wizardService: wizardService}
}

type wizardPayload struct {
	Name                   string               `json:"name"`
	Description            *string              `json:"description"`
	SportType              string               `json:"sport_type"`
	CaptainAge             int                  `json:"captain_age"`
	CaptainExperienceLevel string               `json:"captain_experience_level"`
	Roster                 []models.RosterEntry `json:"roster"`
}

// replay rebuilds a server-side wizard from the client payload, advancing
// through the given number of completed steps. Roster entries in the payload
// are the non-captain rows; the captain row is pinned server-side.
func (h *WizardHandler) replay(r *http.Request, payload wizardPayload, completedSteps int) (*services.TeamCreationWizard, error) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		return nil, err
	}
	captainID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		return nil, err
	}

	wizard, err := h.wizardService.NewWizard(r.Context(), tournamentID, captainID)
	if err != nil {
		return nil, err
	}

	wizard.SetTeamInfo(payload.Name, payload.Description, payload.SportType)
	wizard.SetCaptainDetails(payload.CaptainAge, payload.CaptainExperienceLevel)
	for _, entry := range payload.Roster {
		if err := wizard.AddRosterEntry(entry); err != nil {
			return nil, err
		}
	}

	for i := 0; i < completedSteps; i++ {
		if err := wizard.Next(); err != nil {
			return nil, err
		}
	}
	return wizard, nil
}

// StartWizard opens a draft: it confirms the team path is available and
// returns the captain-seeded roster, the fee preview and the path options.
func (h *WizardHandler) StartWizard(w http.ResponseWriter, r *http.Request) {
	wizard, err := h.replay(r, wizardPayload{}, 0)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"step":                 wizard.Step(),
		"roster":               wizard.Roster(),
		"fee_preview":          wizard.FeePreview(),
		"registration_options": wizard.RegistrationOptions(),
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ValidateStep runs one step's gate over the submitted draft. 200 with
// can_proceed=false and field errors is the normal "form incomplete" answer;
// error statuses are reserved for requests that cannot be evaluated at all.
func (h *WizardHandler) ValidateStep(w http.ResponseWriter, r *http.Request) {
	var input struct {
		CompletedSteps int `json:"completed_steps"`
		wizardPayload
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.CompletedSteps < 0 || input.CompletedSteps > 2 {
		badRequestResponse(w, r, services.ErrValidationFailed)
		return
	}

	wizard, err := h.replay(r, input.wizardPayload, input.CompletedSteps)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	fields, ok := wizard.CanProceed()
	response := jsonResponse{
		"step":        wizard.Step(),
		"can_proceed": ok,
		"fee_preview": wizard.FeePreview(),
	}
	if !ok {
		response["field_errors"] = fields
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CommitWizard replays the full draft through both step gates and commits.
func (h *WizardHandler) CommitWizard(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Mode services.CommitMode `json:"mode"`
		wizardPayload
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Mode == "" {
		input.Mode = services.CommitInvite
	}

	wizard, err := h.replay(r, input.wizardPayload, 2)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	result, err := wizard.Commit(r.Context(), input.Mode)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"registration": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
