package app

import "tourism_dashboard/internal/domain"

// Filter returns the rows matching sel in source order. ds is not modified.
func Filter(ds domain.Dataset, sel domain.Selection) domain.Dataset {
	var towns map[string]struct{}
	if !sel.AllTowns {
		towns = make(map[string]struct{}, len(sel.Towns))
		for _, t := range sel.Towns {
			towns[t] = struct{}{}
		}
	}

	rows := make([]domain.Town, 0, len(ds.Rows))
	for _, r := range ds.Rows {
		if towns != nil {
			if _, ok := towns[r.Name]; !ok {
				continue
			}
		}
		if !matchesInitiative(r.Initiative, sel.Initiative) {
			continue
		}
		rows = append(rows, r)
	}
	return domain.Dataset{Rows: rows, Meta: ds.Meta}
}

// Unknown indicators only pass under All.
func matchesInitiative(v domain.Indicator, mode domain.InitiativeMode) bool {
	switch mode {
	case domain.InitiativeYes:
		return v == domain.IndicatorYes
	case domain.InitiativeNo:
		return v == domain.IndicatorNo
	default:
		return true
	}
}
