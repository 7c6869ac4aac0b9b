package core

import (
	"math"
	"sort"
)

type CategoryTotal struct {
	Category string
	Total    float64
}

// WeekSummary is the aggregated view rendered by the dashboard.
type WeekSummary struct {
	Week        Week
	Categories  []CategoryTotal
	TotalSpent  float64
	TopCategory string
}

// Summarize derives the dashboard summary from per-category totals.
//
// Categories are ordered by descending total, ties broken by ascending
// category name; TopCategory is the first entry under that order, so a tie
// resolves to the alphabetically first category. TotalSpent is rounded to
// two decimal places. With no rows, TotalSpent is 0 and TopCategory empty.
func Summarize(week Week, rows []CategoryTotal) WeekSummary {
	categories := make([]CategoryTotal, len(rows))
	copy(categories, rows)
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Total != categories[j].Total {
			return categories[i].Total > categories[j].Total
		}
		return categories[i].Category < categories[j].Category
	})

	summary := WeekSummary{
		Week:       week,
		Categories: categories,
	}
	var sum float64
	for _, c := range categories {
		sum += c.Total
	}
	summary.TotalSpent = Round2(sum)
	if len(categories) > 0 {
		summary.TopCategory = categories[0].Category
	}
	return summary
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
