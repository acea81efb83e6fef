package app

import (
	"context"

	"tourism_dashboard/internal/domain"
)

const dashboardTitle = "Tourism Infrastructure & Initiatives Dashboard"

type DatasetLoader interface {
	Load(ctx context.Context) (domain.Dataset, error)
}

// Dashboard runs Load -> Filter -> Present for one UI event.
type Dashboard struct {
	data DatasetLoader
}

func NewDashboard(data DatasetLoader) *Dashboard { return &Dashboard{data: data} }

func (d *Dashboard) Render(ctx context.Context, sel domain.Selection) (domain.DashboardPage, error) {
	ds, err := d.data.Load(ctx)
	if err != nil {
		return domain.DashboardPage{}, err
	}
	if sel.Initiative == "" {
		sel.Initiative = domain.InitiativeAll
	}

	options := ds.Towns()
	filtered := Filter(ds, sel)
	if sel.AllTowns {
		sel.Towns = options
	}

	return domain.DashboardPage{
		Title:       dashboardTitle,
		View:        Present(filtered),
		TownOptions: options,
		Selection:   sel,
		Rows:        filtered.Len(),
		Meta:        ds.Meta,
	}, nil
}

// Towns lists the selectable town names.
func (d *Dashboard) Towns(ctx context.Context) ([]string, error) {
	ds, err := d.data.Load(ctx)
	if err != nil {
		return nil, err
	}
	return ds.Towns(), nil
}
