package core

import (
	"context"
	"sort"
	"time"

	"homeerp/pkg/domain"
)

// DayCount is the number of video events scheduled on one calendar day.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// TemplateSize is the section count of one video template.
type TemplateSize struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Sections int    `json:"sections"`
}

// Summary holds the aggregates behind the dashboard charts.
type Summary struct {
	Counts              map[string]int `json:"counts"`
	RecipesByCategory   map[string]int `json:"recipesByCategory"`
	VideoEventsByType   map[string]int `json:"videoEventsByType"`
	UpcomingVideoEvents []DayCount     `json:"upcomingVideoEvents"`
	ResourcesByCategory map[string]int `json:"resourcesByCategory"`
	TotalIncome         float64        `json:"totalIncome"`
	TotalExpenses       float64        `json:"totalExpenses"`
	Balance             float64        `json:"balance"`
	LowStock            []string       `json:"lowStock"`
	TemplateSections    []TemplateSize `json:"templateSections"`
}

const upcomingDays = 7

// Summary reads the dashboard once and reduces each kind to chart data.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	dash, err := s.Dashboard(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(dash, s.now()), nil
}

// Summarize computes chart aggregates from d. Upcoming events cover the seven
// UTC days starting at now.
func Summarize(d Dashboard, now time.Time) Summary {
	sum := Summary{
		Counts:              make(map[string]int, 6),
		RecipesByCategory:   make(map[string]int),
		VideoEventsByType:   make(map[string]int),
		ResourcesByCategory: make(map[string]int),
		LowStock:            []string{},
		TemplateSections:    make([]TemplateSize, 0, len(d.VideoTemplates)),
	}
	for kind, n := range d.Count() {
		sum.Counts[string(kind)] = n
	}
	for _, r := range d.Recipes {
		sum.RecipesByCategory[r.Category]++
	}

	start := now.UTC().Truncate(24 * time.Hour)
	perDay := make(map[string]int, upcomingDays)
	for _, e := range d.VideoEvents {
		if e.Type != "" {
			sum.VideoEventsByType[string(e.Type)]++
		}
		if e.Date.IsZero() {
			continue
		}
		day := e.Date.UTC().Truncate(24 * time.Hour)
		if !day.Before(start) && day.Before(start.AddDate(0, 0, upcomingDays)) {
			perDay[day.Format(time.DateOnly)]++
		}
	}
	for i := range upcomingDays {
		date := start.AddDate(0, 0, i).Format(time.DateOnly)
		sum.UpcomingVideoEvents = append(sum.UpcomingVideoEvents, DayCount{Date: date, Count: perDay[date]})
	}

	for _, r := range d.EducationalResources {
		if r.Category != "" {
			sum.ResourcesByCategory[string(r.Category)]++
		}
	}
	for _, t := range d.Transactions {
		switch t.Type {
		case domain.TransactionIncome:
			sum.TotalIncome += t.Amount
		case domain.TransactionExpense:
			sum.TotalExpenses += t.Amount
		}
	}
	sum.Balance = sum.TotalIncome - sum.TotalExpenses

	for _, item := range d.Inventory {
		if item.LowStock() {
			sum.LowStock = append(sum.LowStock, item.Name)
		}
	}
	sort.Strings(sum.LowStock)
	for _, tpl := range d.VideoTemplates {
		sum.TemplateSections = append(sum.TemplateSections, TemplateSize{ID: tpl.ID, Name: tpl.Name, Sections: len(tpl.Sections)})
	}
	return sum
}
