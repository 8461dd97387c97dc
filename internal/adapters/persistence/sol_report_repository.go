package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/marssim-go/internal/domain/settlement"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
)

// GormSolReportRepository implements SolReportRepository using GORM
type GormSolReportRepository struct {
	db    *gorm.DB
	clock shared.Clock
}

// NewGormSolReportRepository creates a new GORM sol report repository
func NewGormSolReportRepository(db *gorm.DB, clock shared.Clock) *GormSolReportRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormSolReportRepository{db: db, clock: clock}
}

// Save upserts the report keyed by settlement and sol
func (r *GormSolReportRepository) Save(ctx context.Context, report *settlement.SolReport) error {
	model, err := r.reportToModel(report)
	if err != nil {
		return fmt.Errorf("failed to convert sol report to model: %w", err)
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "settlement_id"}, {Name: "sol"}},
		UpdateAll: true,
	}).Create(model)
	if result.Error != nil {
		return fmt.Errorf("failed to save sol report: %w", result.Error)
	}

	return nil
}

// ListBySettlement returns the newest reports first; limit 0 returns all
func (r *GormSolReportRepository) ListBySettlement(ctx context.Context, settlementID int, limit int) ([]*settlement.SolReport, error) {
	query := r.db.WithContext(ctx).
		Where("settlement_id = ?", settlementID).
		Order("sol DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []SolReportModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list sol reports: %w", err)
	}

	reports := make([]*settlement.SolReport, len(models))
	for i := range models {
		report, err := r.modelToReport(&models[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert sol report model: %w", err)
		}
		reports[i] = report
	}
	return reports, nil
}

func (r *GormSolReportRepository) reportToModel(report *settlement.SolReport) (*SolReportModel, error) {
	resources, err := json.Marshal(report.Resources)
	if err != nil {
		return nil, err
	}
	return &SolReportModel{
		SettlementID:       report.SettlementID,
		SettlementName:     report.SettlementName,
		Sol:                report.Sol,
		Pulses:             report.Pulses,
		AveragePowerKW:     report.AveragePowerKW,
		PeakPowerKW:        report.PeakPowerKW,
		AverageCUUsage:     report.AverageCUUsage,
		Population:         report.Population,
		BedsOccupied:       report.BedsOccupied,
		VehiclesGaraged:    report.VehiclesGaraged,
		ProcessesCompleted: report.ProcessesCompleted,
		ProcessesAborted:   report.ProcessesAborted,
		Resources:          string(resources),
		RecordedAt:         r.clock.Now(),
	}, nil
}

func (r *GormSolReportRepository) modelToReport(model *SolReportModel) (*settlement.SolReport, error) {
	report := &settlement.SolReport{
		SettlementID:       model.SettlementID,
		SettlementName:     model.SettlementName,
		Sol:                model.Sol,
		Pulses:             model.Pulses,
		AveragePowerKW:     model.AveragePowerKW,
		PeakPowerKW:        model.PeakPowerKW,
		AverageCUUsage:     model.AverageCUUsage,
		Population:         model.Population,
		BedsOccupied:       model.BedsOccupied,
		VehiclesGaraged:    model.VehiclesGaraged,
		ProcessesCompleted: model.ProcessesCompleted,
		ProcessesAborted:   model.ProcessesAborted,
	}
	if model.Resources != "" {
		if err := json.Unmarshal([]byte(model.Resources), &report.Resources); err != nil {
			return nil, err
		}
	}
	return report, nil
}
