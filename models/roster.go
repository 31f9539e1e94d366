package models

// RosterEntry is one row of the team-creation wizard's draft roster. Nothing
// is persisted until the wizard commits. Entry 0 is always the captain,
// populated from the authenticated user; its role is inferred from position.
type RosterEntry struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Age             int    `json:"age"`
	ExperienceLevel string `json:"experience_level"`
}
