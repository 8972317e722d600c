package analytics

import (
	"testing"
	"time"

	"github.com/PlayFutnaTela/gerezim-sub000/internal/model"

	"github.com/stretchr/testify/assert"
)

func opp(category string, value float64, stage model.PipelineStage, createdAt time.Time) model.Opportunity {
	return model.Opportunity{
		Title:     "deal",
		Category:  category,
		Value:     value,
		Stage:     stage,
		CreatedAt: createdAt,
	}
}

func TestCategoryRollup(t *testing.T) {
	d1 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	recs := []model.Opportunity{
		opp("carro", 100, model.StageNew, d1),
		opp("carro", 300, model.StageNew, d2),
	}

	stats := CategoryRollup(recs)

	byLabel := make(map[string]CategoryStat)
	total := 0
	for _, s := range stats {
		byLabel[s.Label] = s
		total += s.Count
	}

	// Counts across all categories sum to the number of input records.
	assert.Equal(t, len(recs), total)
	assert.Equal(t, 2, byLabel["carro"].Count)
	assert.Equal(t, 400.0, byLabel["carro"].TotalValue)

	// Known categories appear even with no records.
	assert.Contains(t, byLabel, "imovel")
	assert.Equal(t, 0, byLabel["imovel"].Count)
}

func TestCategoryRollup_UnknownCategoryAppended(t *testing.T) {
	recs := []model.Opportunity{
		opp("iate", 2_000_000, model.StageNew, time.Now()),
	}

	stats := CategoryRollup(recs)

	total := 0
	found := false
	for _, s := range stats {
		total += s.Count
		if s.Label == "iate" {
			found = true
			assert.Equal(t, 1, s.Count)
		}
	}
	assert.True(t, found)
	assert.Equal(t, 1, total)
}

func TestAverageValueByCategory(t *testing.T) {
	recs := []model.Opportunity{
		opp("carro", 100, model.StageNew, time.Now()),
		opp("carro", 300, model.StageNew, time.Now()),
	}

	avgs := AverageValueByCategory(recs)

	assert.Len(t, avgs, 1) // zero-count categories are excluded, never shown as zero
	assert.Equal(t, "carro", avgs[0].Label)
	assert.Equal(t, 200.0, avgs[0].AvgValue)
}

func TestTimeSeries_7dAlwaysSevenDailyBuckets(t *testing.T) {
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)

	recs := []model.Opportunity{
		opp("carro", 100, model.StageNew, now),
		opp("carro", 50, model.StageNew, now.AddDate(0, 0, -2)),
		opp("imovel", 900, model.StageNew, now.AddDate(0, 0, -30)), // outside the window
	}

	buckets := TimeSeries(recs, Range7d, now)

	assert.Len(t, buckets, 7)

	// Distinct calendar-day labels in ascending chronological order.
	seen := make(map[string]bool)
	for i, b := range buckets {
		assert.False(t, seen[b.Label], "duplicate day label %s", b.Label)
		seen[b.Label] = true
		expected := now.AddDate(0, 0, i-6).Format("02/01")
		assert.Equal(t, expected, b.Label)
	}

	assert.Equal(t, 1, buckets[6].Count) // today
	assert.Equal(t, 1, buckets[4].Count) // two days ago
	assert.Equal(t, 0, buckets[0].Count)
}

func TestTimeSeries_MonthlyBuckets(t *testing.T) {
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)

	recs := []model.Opportunity{
		opp("carro", 100, model.StageNew, now),
		opp("carro", 200, model.StageNew, now.AddDate(0, 0, -40)),
	}

	buckets := TimeSeries(recs, Range90d, now)

	assert.NotEmpty(t, buckets)
	assert.Equal(t, "06/2025", buckets[len(buckets)-1].Label)

	var count int
	for _, b := range buckets {
		count += b.Count
	}
	assert.Equal(t, 2, count)
}

func TestFunnelConversion(t *testing.T) {
	recs := []model.Opportunity{
		opp("carro", 1, model.StageNew, time.Now()),
		opp("carro", 1, model.StageNew, time.Now()),
		opp("carro", 1, model.StageInterested, time.Now()),
		// nothing in proposal_sent or later
	}

	steps := FunnelConversion(recs)

	assert.Len(t, steps, 1)
	assert.Equal(t, 50.0, steps[0].Ratio)
}

func TestFunnelConversion_ZeroDenominatorExcluded(t *testing.T) {
	recs := []model.Opportunity{
		// no "new" records at all: the New→Interested pair has a zero
		// denominator and must be excluded, not emitted as 0
		opp("carro", 1, model.StageInterested, time.Now()),
		opp("carro", 1, model.StageProposalSent, time.Now()),
	}

	steps := FunnelConversion(recs)

	for _, s := range steps {
		assert.NotZero(t, s.Ratio)
	}
	assert.Len(t, steps, 1) // only Interested→ProposalSent (100%)
	assert.Equal(t, 100.0, steps[0].Ratio)
}

func TestPriceHistogram(t *testing.T) {
	products := []model.Product{
		{Title: "Civic", Price: 45_000},
		{Title: "X5", Price: 450_000},
		{Title: "Cobertura", Price: 1_500_000},
		{Title: "Empresa", Price: 1_200_000},
	}

	bins := PriceHistogram(products)

	// Empty bins excluded.
	assert.Len(t, bins, 3)
	assert.Equal(t, HistogramBin{Label: "Até 50 mil", Count: 1}, bins[0])
	assert.Equal(t, HistogramBin{Label: "250–500 mil", Count: 1}, bins[1])
	assert.Equal(t, HistogramBin{Label: "Acima de 1 mi", Count: 2}, bins[2])
}

func TestTopByPrice(t *testing.T) {
	products := []model.Product{
		{ID: "a", Price: 100},
		{ID: "b", Price: 300},
		{ID: "c", Price: 300}, // tie with b, input order preserved
		{ID: "d", Price: 200},
	}

	top := TopByPrice(products, 3)

	assert.Len(t, top, 3)
	assert.Equal(t, "b", top[0].ID)
	assert.Equal(t, "c", top[1].ID)
	assert.Equal(t, "d", top[2].ID)

	// Input slice untouched.
	assert.Equal(t, "a", products[0].ID)
}

func TestTopClosedCategories(t *testing.T) {
	recs := []model.Opportunity{
		opp("carro", 100, model.StageClosed, time.Now()),
		opp("imovel", 500, model.StageClosed, time.Now()),
		opp("carro", 200, model.StageClosed, time.Now()),
		opp("empresa", 900, model.StageNew, time.Now()), // not closed, ignored
	}

	top := TopClosedCategories(recs, 2)

	assert.Len(t, top, 2)
	assert.Equal(t, "carro", top[0].Label)
	assert.Equal(t, 2, top[0].Count)
	assert.Equal(t, 300.0, top[0].TotalValue)
	assert.Equal(t, "imovel", top[1].Label)
}
