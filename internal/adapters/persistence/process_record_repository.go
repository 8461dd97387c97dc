package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/marssim-go/internal/domain/function"
	"github.com/andrescamacho/marssim-go/internal/domain/marstime"
	"github.com/andrescamacho/marssim-go/internal/domain/resource"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
)

// GormProcessRecordRepository implements ProcessRecordRepository using GORM
type GormProcessRecordRepository struct {
	db    *gorm.DB
	clock shared.Clock
}

// NewGormProcessRecordRepository creates a new GORM process record repository
func NewGormProcessRecordRepository(db *gorm.DB, clock shared.Clock) *GormProcessRecordRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormProcessRecordRepository{db: db, clock: clock}
}

// SaveAll appends records in one transaction. A process id already stored is left untouched.
func (r *GormProcessRecordRepository) SaveAll(ctx context.Context, settlementID int, records []function.ProcessRecord) error {
	if len(records) == 0 {
		return nil
	}

	models := make([]ProcessRecordModel, 0, len(records))
	for _, rec := range records {
		model, err := r.recordToModel(settlementID, rec)
		if err != nil {
			return fmt.Errorf("failed to convert process record %s: %w", rec.ProcessID, err)
		}
		models = append(models, *model)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models).Error; err != nil {
			return fmt.Errorf("failed to save process records: %w", err)
		}
		return nil
	})
}

// ListBySettlement returns the ledger oldest first
func (r *GormProcessRecordRepository) ListBySettlement(ctx context.Context, settlementID int) ([]function.ProcessRecord, error) {
	var models []ProcessRecordModel
	result := r.db.WithContext(ctx).
		Where("settlement_id = ?", settlementID).
		Order("ended_sol ASC, ended_millisol ASC, process_id ASC").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list process records: %w", result.Error)
	}

	records := make([]function.ProcessRecord, len(models))
	for i := range models {
		rec, err := r.modelToRecord(&models[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert process record model: %w", err)
		}
		records[i] = rec
	}
	return records, nil
}

func (r *GormProcessRecordRepository) recordToModel(settlementID int, rec function.ProcessRecord) (*ProcessRecordModel, error) {
	outputs, err := json.Marshal(rec.Outputs)
	if err != nil {
		return nil, err
	}
	return &ProcessRecordModel{
		ProcessID:       rec.ProcessID,
		SettlementID:    settlementID,
		ProcessName:     rec.ProcessName,
		Workshop:        rec.Workshop.String(),
		BuildingID:      rec.BuildingID,
		BuildingName:    rec.BuildingName,
		StartedSol:      rec.StartedAt.MissionSol(),
		StartedMillisol: rec.StartedAt.Millisol(),
		EndedSol:        rec.EndedAt.MissionSol(),
		EndedMillisol:   rec.EndedAt.Millisol(),
		Premature:       rec.Premature,
		Outputs:         string(outputs),
		RecordedAt:      r.clock.Now(),
	}, nil
}

func (r *GormProcessRecordRepository) modelToRecord(model *ProcessRecordModel) (function.ProcessRecord, error) {
	workshop, err := function.ParseType(model.Workshop)
	if err != nil {
		return function.ProcessRecord{}, err
	}
	rec := function.ProcessRecord{
		ProcessID:    model.ProcessID,
		ProcessName:  model.ProcessName,
		Workshop:     workshop,
		BuildingID:   model.BuildingID,
		BuildingName: model.BuildingName,
		StartedAt:    marstime.New(model.StartedSol, model.StartedMillisol),
		EndedAt:      marstime.New(model.EndedSol, model.EndedMillisol),
		Premature:    model.Premature,
	}
	if model.Outputs != "" && model.Outputs != "null" {
		rec.Outputs = make(map[resource.ID]float64)
		if err := json.Unmarshal([]byte(model.Outputs), &rec.Outputs); err != nil {
			return function.ProcessRecord{}, err
		}
	}
	return rec, nil
}
