// internal/models/history.go
package models

import (
	"sort"
	"time"
)

const dayKeyLayout = "2006-01-02"

// DayGroup holds the meals of one UTC calendar day.
type DayGroup struct {
	Day   string `json:"day"`
	Label string `json:"label"`
	Meals []Meal `json:"meals"`
}

// GroupByDay sorts meals newest first and groups them by UTC date. Labels are
// "Today", "Yesterday" or a long date relative to now.
func GroupByDay(meals []Meal, now time.Time) []DayGroup {
	sorted := make([]Meal, len(meals))
	copy(sorted, meals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})

	today := now.UTC().Format(dayKeyLayout)
	yesterday := now.UTC().AddDate(0, 0, -1).Format(dayKeyLayout)

	groups := []DayGroup{}
	index := make(map[string]int)
	for _, m := range sorted {
		key := m.Date.UTC().Format(dayKeyLayout)
		i, ok := index[key]
		if !ok {
			label := m.Date.UTC().Format("January 2, 2006")
			switch key {
			case today:
				label = "Today"
			case yesterday:
				label = "Yesterday"
			}
			groups = append(groups, DayGroup{Day: key, Label: label})
			i = len(groups) - 1
			index[key] = i
		}
		groups[i].Meals = append(groups[i].Meals, m)
	}
	return groups
}
