package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/PlayFutnaTela/gerezim-sub000/internal/analytics"
	"github.com/PlayFutnaTela/gerezim-sub000/internal/domain"
	"github.com/PlayFutnaTela/gerezim-sub000/internal/model"
	"github.com/PlayFutnaTela/gerezim-sub000/internal/repository"
)

// dashboardProductPage bounds how many catalog rows feed the price charts.
const dashboardProductPage = 1000

// DashboardReport is the chart-ready payload for one reporting window.
type DashboardReport struct {
	Range             analytics.Range             `json:"range"`
	TotalOpportunity  int                         `json:"total_opportunities"`
	TotalValue        float64                     `json:"total_value"`
	Categories        []analytics.CategoryStat    `json:"categories"`
	AverageByCategory []analytics.CategoryAverage `json:"average_by_category"`
	Series            []analytics.TimeBucket      `json:"series"`
	Funnel            []analytics.FunnelStep      `json:"funnel"`
	PriceHistogram    []analytics.HistogramBin    `json:"price_histogram"`
	TopProducts       []model.Product             `json:"top_products"`
	TopClosed         []analytics.CategoryStat    `json:"top_closed_categories"`
}

// DashboardService folds the opportunity and product sets into the derived
// metrics the dashboard charts consume. Values are computed fresh per
// request; nothing is cached or persisted.
type DashboardService struct {
	opportunities repository.OpportunityRepository
	products      repository.ProductRepository
	logger        *zap.Logger
	now           func() time.Time
}

// NewDashboardService constructs a new DashboardService.
func NewDashboardService(
	opportunities repository.OpportunityRepository,
	products repository.ProductRepository,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		opportunities: opportunities,
		products:      products,
		logger:        logger,
		now:           time.Now,
	}
}

// Report computes the full metric set for the window.
func (s *DashboardService) Report(ctx context.Context, rng analytics.Range) (*DashboardReport, error) {
	if !rng.Valid() {
		return nil, &domain.ValidationError{Field: "range", Message: "unknown reporting range"}
	}

	recs, err := s.opportunities.ListAll(ctx)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "dashboard opportunities", Err: err}
	}

	now := s.now().UTC()
	if cutoff, ok := rng.Cutoff(now); ok {
		recs = analytics.FilterSince(recs, cutoff)
	}

	report := &DashboardReport{
		Range:             rng,
		TotalOpportunity:  len(recs),
		Categories:        analytics.CategoryRollup(recs),
		AverageByCategory: analytics.AverageValueByCategory(recs),
		Series:            analytics.TimeSeries(recs, rng, now),
		Funnel:            analytics.FunnelConversion(recs),
		TopClosed:         analytics.TopClosedCategories(recs, 3),
	}
	for _, r := range recs {
		report.TotalValue += r.Value
	}

	// Catalog metrics degrade rather than fail the whole report.
	page, err := s.products.List(ctx, repository.PageQuery{Limit: dashboardProductPage})
	if err != nil {
		s.logger.Warn("dashboard product metrics unavailable", zap.Error(err))
		return report, nil
	}
	report.PriceHistogram = analytics.PriceHistogram(page.Items)
	report.TopProducts = analytics.TopByPrice(page.Items, 5)
	return report, nil
}
