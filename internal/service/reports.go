package service

import (
	"context"
	"time"

	"studioluzi/backoffice/internal/reporting"
)

// Reports load full entity snapshots and recompute from scratch on every
// call. The dataset is a single owner's books; there is nothing to cache.

func (s *Service) ReportSummary(ctx context.Context, from, to time.Time) (reporting.Summary, error) {
	sales, err := s.repo.ListSales(ctx)
	if err != nil {
		return reporting.Summary{}, err
	}
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return reporting.Summary{}, err
	}
	salons, err := s.repo.ListSalons(ctx)
	if err != nil {
		return reporting.Summary{}, err
	}
	return reporting.BuildSummary(reporting.FilterPeriod(sales, from, to), products, salons), nil
}

func (s *Service) ReportTopProducts(ctx context.Context, from, to time.Time, limit int) ([]reporting.ProductRanking, error) {
	sales, err := s.repo.ListSales(ctx)
	if err != nil {
		return nil, err
	}
	return reporting.TopProducts(reporting.FilterPeriod(sales, from, to), limit), nil
}

func (s *Service) ReportSalonPerformance(ctx context.Context, from, to time.Time) ([]reporting.SalonPerformance, error) {
	sales, err := s.repo.ListSales(ctx)
	if err != nil {
		return nil, err
	}
	salons, err := s.repo.ListSalons(ctx)
	if err != nil {
		return nil, err
	}
	return reporting.BuildSalonPerformance(reporting.FilterPeriod(sales, from, to), salons), nil
}

func (s *Service) ReportPendingCommissions(ctx context.Context) ([]reporting.PendingCommission, error) {
	sales, err := s.repo.ListSales(ctx)
	if err != nil {
		return nil, err
	}
	salons, err := s.repo.ListSalons(ctx)
	if err != nil {
		return nil, err
	}
	return reporting.BuildPendingCommissions(sales, salons), nil
}

func (s *Service) ReportPaymentBreakdown(ctx context.Context, from, to time.Time) ([]reporting.PaymentSlice, error) {
	sales, err := s.repo.ListSales(ctx)
	if err != nil {
		return nil, err
	}
	return reporting.BuildPaymentBreakdown(reporting.FilterPeriod(sales, from, to)), nil
}

func (s *Service) ReportRevenueSeries(ctx context.Context, from, to time.Time) ([]reporting.RevenuePoint, error) {
	sales, err := s.repo.ListSales(ctx)
	if err != nil {
		return nil, err
	}
	salons, err := s.repo.ListSalons(ctx)
	if err != nil {
		return nil, err
	}
	return reporting.BuildRevenueSeries(reporting.FilterPeriod(sales, from, to), salons), nil
}
