package query

import "batchdesk/internal/core"

// KeyFunc picks the grouping key of a batch.
type KeyFunc func(core.Batch) string

func ByCategory(b core.Batch) string { return b.Category }
func ByClass(b core.Batch) string    { return b.ClassGrade }
func ByName(b core.Batch) string     { return b.Name }

// Group is the revenue of all batches sharing a key.
type Group struct {
	Key   string
	Total core.Money
	Count int
}

// AggregateRevenueBy sums prices per key. Groups appear in order of first occurrence.
func AggregateRevenueBy(batches []core.Batch, key KeyFunc) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, b := range batches {
		k := key(b)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group{Key: k})
		}
		groups[i].Total = groups[i].Total.Add(b.Price.NonNegative())
		groups[i].Count++
	}
	return groups
}

// RevenueChart is the primary dashboard chart: revenue per category when no
// category is selected, revenue per batch inside the selected category.
func RevenueChart(batches []core.Batch, category string) []Group {
	if isAll(category, AllCategories) {
		return AggregateRevenueBy(batches, ByCategory)
	}
	return AggregateRevenueBy(batches, ByName)
}

// TotalRevenue is the price sum of batches, zero when empty.
func TotalRevenue(batches []core.Batch) core.Money {
	var total core.Money
	for _, b := range batches {
		total = total.Add(b.Price.NonNegative())
	}
	return total
}

type Summary struct {
	Count int
	Total core.Money
}

func Summarize(batches []core.Batch) Summary {
	return Summary{Count: len(batches), Total: TotalRevenue(batches)}
}

// Share returns g's fraction of total in percent, for bar widths.
func (g Group) Share(total core.Money) float64 {
	if total.Cents <= 0 {
		return 0
	}
	return float64(g.Total.Cents) * 100 / float64(total.Cents)
}

// Max returns the largest group total, used to scale bar charts.
func Max(groups []Group) core.Money {
	var m core.Money
	for _, g := range groups {
		if g.Total.Cents > m.Cents {
			m = g.Total
		}
	}
	return m
}
