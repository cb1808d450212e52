package core

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"homeerp/pkg/domain"
)

// Dashboard is every collection read in one request. Field names are the
// wire keys clients depend on.
type Dashboard struct {
	Recipes              []*domain.Recipe              `json:"recipes"`
	VideoEvents          []*domain.VideoEvent          `json:"videoEvents"`
	Inventory            []*domain.InventoryItem       `json:"inventory"`
	Transactions         []*domain.Transaction         `json:"transactions"`
	VideoTemplates       []*domain.VideoTemplate       `json:"videoTemplates"`
	EducationalResources []*domain.EducationalResource `json:"educationalResources"`
}

// Dashboard lists all six kinds concurrently and joins the results. The first
// failure aborts the join and no partial dashboard is returned.
func (s *Service) Dashboard(ctx context.Context) (dash Dashboard, err error) {
	defer s.observe(ctx, "dashboard", time.Now(), &err)

	kinds := domain.Kinds()
	results := make([][]domain.Record, len(kinds))
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		g.Go(func() error {
			records, err := s.List(gctx, kind)
			if err != nil {
				return err
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	byKind := make(map[domain.Kind][]domain.Record, len(kinds))
	for i, kind := range kinds {
		byKind[kind] = results[i]
	}
	return Dashboard{
		Recipes:              domain.As[domain.Recipe](byKind[domain.KindRecipe]),
		VideoEvents:          domain.As[domain.VideoEvent](byKind[domain.KindVideoEvent]),
		Inventory:            domain.As[domain.InventoryItem](byKind[domain.KindInventoryItem]),
		Transactions:         domain.As[domain.Transaction](byKind[domain.KindTransaction]),
		VideoTemplates:       domain.As[domain.VideoTemplate](byKind[domain.KindVideoTemplate]),
		EducationalResources: domain.As[domain.EducationalResource](byKind[domain.KindEducationalResource]),
	}, nil
}

// Snapshot converts the dashboard into per-kind record slices.
func (d Dashboard) Snapshot() domain.Snapshot {
	return domain.Snapshot{
		domain.KindRecipe:              records(d.Recipes),
		domain.KindVideoEvent:          records(d.VideoEvents),
		domain.KindInventoryItem:       records(d.Inventory),
		domain.KindTransaction:         records(d.Transactions),
		domain.KindVideoTemplate:       records(d.VideoTemplates),
		domain.KindEducationalResource: records(d.EducationalResources),
	}
}

// Count returns the number of records per kind.
func (d Dashboard) Count() map[domain.Kind]int {
	counts := make(map[domain.Kind]int, 6)
	for kind, recs := range d.Snapshot() {
		counts[kind] = len(recs)
	}
	return counts
}

func records[T any, P interface {
	*T
	domain.Record
}](typed []*T) []domain.Record {
	out := make([]domain.Record, 0, len(typed))
	for _, r := range typed {
		out = append(out, P(r))
	}
	return out
}
