// Package analytics contains the pure aggregation functions behind the
// dashboard: category rollups, time-bucketed series, funnel conversion
// ratios, value histograms and top-N rankings. All functions are
// side-effect-free transforms over an already-fetched record set.
package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/PlayFutnaTela/gerezim-sub000/internal/model"
)

// KnownCategories are the asset categories the dashboard always reports on,
// even when no record carries them. Categories present in the data but not
// listed here are appended to the rollup.
var KnownCategories = []string{"carro", "imovel", "empresa", "premium"}

// CategoryStat is a per-category aggregation bucket.
type CategoryStat struct {
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	TotalValue float64 `json:"total_value"`
}

// CategoryAverage is the mean deal value for a category.
type CategoryAverage struct {
	Label    string  `json:"label"`
	AvgValue float64 `json:"avg_value"`
}

// TimeBucket is one point of a time-bucketed series.
type TimeBucket struct {
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	TotalValue float64 `json:"total_value"`
}

// FunnelStep is the conversion ratio between two adjacent pipeline stages.
type FunnelStep struct {
	Label string  `json:"label"`
	Ratio float64 `json:"ratio"`
}

// HistogramBin counts records whose value falls within a monetary range.
type HistogramBin struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Range selects the dashboard reporting window.
type Range string

const (
	Range7d   Range = "7d"
	Range30d  Range = "30d"
	Range90d  Range = "90d"
	Range365d Range = "365d"
	RangeAll  Range = "all"
)

// Valid reports whether r is a supported reporting window.
func (r Range) Valid() bool {
	switch r {
	case Range7d, Range30d, Range90d, Range365d, RangeAll:
		return true
	}
	return false
}

// Cutoff returns the start of the reporting window relative to now. The
// second return is false for RangeAll, which has no lower bound.
func (r Range) Cutoff(now time.Time) (time.Time, bool) {
	switch r {
	case Range7d:
		return now.AddDate(0, 0, -7), true
	case Range30d:
		return now.AddDate(0, 0, -30), true
	case Range90d:
		return now.AddDate(0, 0, -90), true
	case Range365d:
		return now.AddDate(0, 0, -365), true
	}
	return time.Time{}, false
}

// FilterSince keeps the records created at or after the cutoff.
func FilterSince(recs []model.Opportunity, cutoff time.Time) []model.Opportunity {
	out := make([]model.Opportunity, 0, len(recs))
	for _, r := range recs {
		if !r.CreatedAt.Before(cutoff) {
			out = append(out, r)
		}
	}
	return out
}

// CategoryRollup computes {count, totalValue} per category over the union
// of KnownCategories and every category present in the records. Known
// categories appear even with zero records, so the counts always sum to the
// number of input records.
func CategoryRollup(recs []model.Opportunity) []CategoryStat {
	order := make([]string, 0, len(KnownCategories))
	index := make(map[string]int, len(KnownCategories))
	for _, c := range KnownCategories {
		index[c] = len(order)
		order = append(order, c)
	}

	stats := make([]CategoryStat, len(order), len(order)+4)
	for i, c := range order {
		stats[i].Label = c
	}

	for _, r := range recs {
		i, ok := index[r.Category]
		if !ok {
			i = len(stats)
			index[r.Category] = i
			stats = append(stats, CategoryStat{Label: r.Category})
		}
		stats[i].Count++
		stats[i].TotalValue += r.Value
	}
	return stats
}

// AverageValueByCategory computes totalValue/count per category. Categories
// with no matching records are excluded from the output, never emitted as
// zero.
func AverageValueByCategory(recs []model.Opportunity) []CategoryAverage {
	out := make([]CategoryAverage, 0)
	for _, s := range CategoryRollup(recs) {
		if s.Count == 0 {
			continue
		}
		out = append(out, CategoryAverage{
			Label:    s.Label,
			AvgValue: s.TotalValue / float64(s.Count),
		})
	}
	return out
}

// TimeSeries partitions records into chronological buckets for the selected
// range: one bucket per calendar day for 7d (always exactly 7 buckets,
// ending today), one per calendar month otherwise. For "all" the months
// span from the earliest record to now.
func TimeSeries(recs []model.Opportunity, rng Range, now time.Time) []TimeBucket {
	if rng == Range7d {
		return dailySeries(recs, now)
	}
	return monthlySeries(recs, rng, now)
}

func dailySeries(recs []model.Opportunity, now time.Time) []TimeBucket {
	type dayKey struct{ y, m, d int }

	day := func(t time.Time) dayKey {
		y, m, d := t.Date()
		return dayKey{y, int(m), d}
	}

	start := now.AddDate(0, 0, -6)
	buckets := make([]TimeBucket, 7)
	index := make(map[dayKey]int, 7)
	for i := 0; i < 7; i++ {
		d := start.AddDate(0, 0, i)
		buckets[i].Label = d.Format("02/01")
		index[day(d)] = i
	}

	for _, r := range recs {
		if i, ok := index[day(r.CreatedAt)]; ok {
			buckets[i].Count++
			buckets[i].TotalValue += r.Value
		}
	}
	return buckets
}

func monthlySeries(recs []model.Opportunity, rng Range, now time.Time) []TimeBucket {
	var start time.Time
	switch rng {
	case Range30d:
		start = now.AddDate(0, 0, -30)
	case Range90d:
		start = now.AddDate(0, 0, -90)
	case Range365d:
		start = now.AddDate(0, 0, -365)
	default: // RangeAll
		start = now
		for _, r := range recs {
			if r.CreatedAt.Before(start) {
				start = r.CreatedAt
			}
		}
	}

	firstMonth := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location())
	lastMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	buckets := make([]TimeBucket, 0)
	index := make(map[string]int)
	for m := firstMonth; !m.After(lastMonth); m = m.AddDate(0, 1, 0) {
		label := m.Format("01/2006")
		index[label] = len(buckets)
		buckets = append(buckets, TimeBucket{Label: label})
	}

	for _, r := range recs {
		if r.CreatedAt.Before(firstMonth) || r.CreatedAt.After(now) {
			continue
		}
		if i, ok := index[r.CreatedAt.Format("01/2006")]; ok {
			buckets[i].Count++
			buckets[i].TotalValue += r.Value
		}
	}
	return buckets
}

// FunnelConversion computes count(later)/count(earlier)×100 for the four
// adjacent stage pairs of the funnel. A pair whose earlier stage has no
// records is treated as zero, and zero-valued pairs are excluded from the
// output.
func FunnelConversion(recs []model.Opportunity) []FunnelStep {
	counts := make(map[model.PipelineStage]int, len(model.Stages))
	for _, r := range recs {
		counts[r.Stage]++
	}

	out := make([]FunnelStep, 0, len(model.Stages)-1)
	for i := 0; i < len(model.Stages)-1; i++ {
		earlier, later := model.Stages[i], model.Stages[i+1]

		var ratio float64
		if counts[earlier] > 0 {
			ratio = float64(counts[later]) / float64(counts[earlier]) * 100
		}
		if ratio == 0 {
			continue
		}
		out = append(out, FunnelStep{
			Label: fmt.Sprintf("%s → %s", earlier.Label(), later.Label()),
			Ratio: ratio,
		})
	}
	return out
}

// priceBins are the fixed monetary histogram bins, in BRL.
var priceBins = []struct {
	label string
	min   float64
	max   float64 // exclusive; <= 0 means unbounded
}{
	{"Até 50 mil", 0, 50_000},
	{"50–100 mil", 50_000, 100_000},
	{"100–250 mil", 100_000, 250_000},
	{"250–500 mil", 250_000, 500_000},
	{"500 mil–1 mi", 500_000, 1_000_000},
	{"Acima de 1 mi", 1_000_000, 0},
}

// PriceHistogram counts products per fixed monetary bin. Empty bins are
// excluded from the output.
func PriceHistogram(products []model.Product) []HistogramBin {
	counts := make([]int, len(priceBins))
	for _, p := range products {
		for i, b := range priceBins {
			if p.Price >= b.min && (b.max <= 0 || p.Price < b.max) {
				counts[i]++
				break
			}
		}
	}

	out := make([]HistogramBin, 0, len(priceBins))
	for i, b := range priceBins {
		if counts[i] == 0 {
			continue
		}
		out = append(out, HistogramBin{Label: b.label, Count: counts[i]})
	}
	return out
}

// TopByPrice returns the n most expensive products, ties broken by input
// order.
func TopByPrice(products []model.Product, n int) []model.Product {
	sorted := make([]model.Product, len(products))
	copy(sorted, products)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Price > sorted[j].Price
	})
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// TopClosedCategories ranks categories by how many closed deals they hold,
// sliced to the n best. Ties keep first-seen order.
func TopClosedCategories(recs []model.Opportunity, n int) []CategoryStat {
	index := make(map[string]int)
	stats := make([]CategoryStat, 0)

	for _, r := range recs {
		if r.Stage != model.StageClosed {
			continue
		}
		i, ok := index[r.Category]
		if !ok {
			i = len(stats)
			index[r.Category] = i
			stats = append(stats, CategoryStat{Label: r.Category})
		}
		stats[i].Count++
		stats[i].TotalValue += r.Value
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Count > stats[j].Count
	})
	if n < len(stats) {
		stats = stats[:n]
	}
	return stats
}
