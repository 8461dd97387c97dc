package persistence

import (
	"time"
)

// SolReportModel represents the sol_reports table
// One row per settlement and sol; saving the same pair again overwrites it.
type SolReportModel struct {
	ID                 int       `gorm:"column:id;primaryKey;autoIncrement"`
	SettlementID       int       `gorm:"column:settlement_id;not null;uniqueIndex:idx_sol_reports_settlement_sol"`
	SettlementName     string    `gorm:"column:settlement_name;not null"`
	Sol                int       `gorm:"column:sol;not null;uniqueIndex:idx_sol_reports_settlement_sol"`
	Pulses             int       `gorm:"column:pulses;not null;default:0"`
	AveragePowerKW     float64   `gorm:"column:average_power_kw;not null;default:0"`
	PeakPowerKW        float64   `gorm:"column:peak_power_kw;not null;default:0"`
	AverageCUUsage     float64   `gorm:"column:average_cu_usage;not null;default:0"`
	Population         int       `gorm:"column:population;not null;default:0"`
	BedsOccupied       int       `gorm:"column:beds_occupied;not null;default:0"`
	VehiclesGaraged    int       `gorm:"column:vehicles_garaged;not null;default:0"`
	ProcessesCompleted int       `gorm:"column:processes_completed;not null;default:0"`
	ProcessesAborted   int       `gorm:"column:processes_aborted;not null;default:0"`
	Resources          string    `gorm:"column:resources;type:text"` // JSON object name -> amount
	RecordedAt         time.Time `gorm:"column:recorded_at;not null"`
}

func (SolReportModel) TableName() string {
	return "sol_reports"
}

// ProcessRecordModel represents the process_records table
type ProcessRecordModel struct {
	ProcessID       string    `gorm:"column:process_id;primaryKey"`
	SettlementID    int       `gorm:"column:settlement_id;not null;index"`
	ProcessName     string    `gorm:"column:process_name;not null"`
	Workshop        string    `gorm:"column:workshop;not null"`
	BuildingID      int       `gorm:"column:building_id;not null"`
	BuildingName    string    `gorm:"column:building_name"`
	StartedSol      int       `gorm:"column:started_sol"`
	StartedMillisol float64   `gorm:"column:started_millisol"`
	EndedSol        int       `gorm:"column:ended_sol;not null"`
	EndedMillisol   float64   `gorm:"column:ended_millisol;not null"`
	Premature       bool      `gorm:"column:premature;not null;default:false"`
	Outputs         string    `gorm:"column:outputs;type:text"` // JSON object resource id -> amount
	RecordedAt      time.Time `gorm:"column:recorded_at;not null"`
}

func (ProcessRecordModel) TableName() string {
	return "process_records"
}

// AllModels lists every table the simulator persists, in migration order
func AllModels() []interface{} {
	return []interface{}{
		&SolReportModel{},
		&ProcessRecordModel{},
	}
}
