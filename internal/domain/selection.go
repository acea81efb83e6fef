package domain

import "strings"

type InitiativeMode string

const (
	InitiativeAll InitiativeMode = "All"
	InitiativeYes InitiativeMode = "Yes"
	InitiativeNo  InitiativeMode = "No"
)

// ParseInitiativeMode accepts All|Yes|No in any case; "" means All.
func ParseInitiativeMode(s string) (InitiativeMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return InitiativeAll, nil
	case "yes":
		return InitiativeYes, nil
	case "no":
		return InitiativeNo, nil
	}
	return "", ErrInvalidMode
}

// Selection is the state of the dashboard controls.
// AllTowns wins over Towns; with AllTowns false an empty Towns selects nothing.
type Selection struct {
	Towns      []string       `json:"towns"`
	AllTowns   bool           `json:"all_towns"`
	Initiative InitiativeMode `json:"initiative"`
}

// DefaultSelection is every town, any initiative.
func DefaultSelection() Selection {
	return Selection{AllTowns: true, Initiative: InitiativeAll}
}
