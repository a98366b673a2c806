// Package expiry classifies the stored inventory against the current day.
package expiry

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/frdg/internal/domain/models"
	"github.com/mamadbah2/frdg/internal/metrics"
	"github.com/mamadbah2/frdg/internal/repository"
	"github.com/mamadbah2/frdg/internal/repository/sheets"
)

// sweepLimit bounds how many foods one sweep reads.
const sweepLimit = 10000

// Service builds expiry reports and publishes them.
type Service struct {
	repo     repository.FoodRepository
	exporter sheets.Exporter
	loc      *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewService wires the expiry service. exporter may be nil when no external
// sink is configured; loc decides which calendar day "today" is.
func NewService(repo repository.FoodRepository, exporter sheets.Exporter, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, exporter: exporter, loc: loc, now: time.Now, logger: logger}
}

// BuildReport classifies every stored food against now.
func (s *Service) BuildReport(ctx context.Context, now time.Time) (models.ExpiryReport, error) {
	foods, err := s.repo.ListFoods(ctx, sweepLimit)
	if err != nil {
		return models.ExpiryReport{}, fmt.Errorf("load foods: %w", err)
	}

	now = now.In(s.loc)
	report := models.ExpiryReport{
		GeneratedAt: now,
		Date:        models.DateOf(now),
		Total:       len(foods),
		Counts:      make(map[models.Severity]int, len(models.Severities)),
		Items:       make([]models.ClassifiedFood, 0, len(foods)),
	}
	for _, sev := range models.Severities {
		report.Counts[sev] = 0
	}

	for _, food := range foods {
		sev := models.Classify(now, food.BestBeforeDate)
		report.Counts[sev]++
		report.Items = append(report.Items, models.ClassifiedFood{Food: food, Severity: sev})
	}

	return report, nil
}

// Sweep builds today's report, logs it, records metrics and exports it.
// An export failure is logged but does not fail the sweep.
func (s *Service) Sweep(ctx context.Context) (models.ExpiryReport, error) {
	report, err := s.BuildReport(ctx, s.now())
	if err != nil {
		metrics.RecordSweep(false)
		return models.ExpiryReport{}, err
	}

	metrics.RecordSeverityCounts(report.Counts)
	metrics.RecordSweep(true)

	s.logger.Info("expiry sweep completed",
		zap.String("date", report.Date.String()),
		zap.Int("total", report.Total),
		zap.Int("neutral", report.Counts[models.SeverityNeutral]),
		zap.Int("warning", report.Counts[models.SeverityWarning]),
		zap.Int("alert", report.Counts[models.SeverityAlert]))

	for _, item := range report.Items {
		if item.Severity == models.SeverityWarning {
			s.logger.Info("food reaches its best-before date today",
				zap.Int64("id", item.ID), zap.String("name", item.Name))
		}
	}

	if s.exporter != nil {
		if err := s.exporter.ExportExpiry(ctx, report); err != nil {
			s.logger.Error("failed to export expiry report", zap.Error(err))
		}
	}

	return report, nil
}
