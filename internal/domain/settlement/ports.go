package settlement

import (
	"context"

	"github.com/andrescamacho/marssim-go/internal/domain/function"
)

// SolReportRepository persists the end-of-sol summaries of every settlement
type SolReportRepository interface {
	// Save stores one report. Saving the same settlement and sol twice replaces the first.
	Save(ctx context.Context, report *SolReport) error

	// ListBySettlement returns the newest reports first, at most limit of them (0 = all)
	ListBySettlement(ctx context.Context, settlementID int, limit int) ([]*SolReport, error)
}

// ProcessRecordRepository persists the ledger of ended workshop processes
type ProcessRecordRepository interface {
	SaveAll(ctx context.Context, settlementID int, records []function.ProcessRecord) error

	// ListBySettlement returns records in the order they ended
	ListBySettlement(ctx context.Context, settlementID int) ([]function.ProcessRecord, error)
}

// ReportPublisher pushes finished sol reports to live subscribers
type ReportPublisher interface {
	Publish(report *SolReport)
}
