package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/marssim-go/internal/application/mediator"
	"github.com/andrescamacho/marssim-go/internal/domain/function"
	domainSettlement "github.com/andrescamacho/marssim-go/internal/domain/settlement"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
)

// ListSolReportsQuery fetches stored sol reports, newest first
type ListSolReportsQuery struct {
	SettlementID int // Required
	Limit        int // Optional: 0 returns every report
}

// ListSolReportsResponse contains the reports
type ListSolReportsResponse struct {
	Reports []*domainSettlement.SolReport
}

// ListSolReportsHandler handles the ListSolReports query
type ListSolReportsHandler struct {
	reportRepo domainSettlement.SolReportRepository
}

// NewListSolReportsHandler creates a new ListSolReportsHandler
func NewListSolReportsHandler(reportRepo domainSettlement.SolReportRepository) *ListSolReportsHandler {
	return &ListSolReportsHandler{reportRepo: reportRepo}
}

// Handle executes the ListSolReports query
func (h *ListSolReportsHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ListSolReportsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListSolReportsQuery")
	}
	if query.SettlementID <= 0 {
		return nil, shared.NewValidationError("settlement_id", "must be positive")
	}
	if query.Limit < 0 {
		return nil, shared.NewValidationError("limit", "cannot be negative")
	}

	reports, err := h.reportRepo.ListBySettlement(ctx, query.SettlementID, query.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sol reports: %w", err)
	}
	return &ListSolReportsResponse{Reports: reports}, nil
}

// ListProcessRecordsQuery fetches the process ledger of a settlement
type ListProcessRecordsQuery struct {
	SettlementID int
	Premature    *bool // Optional: only aborted (true) or only completed (false)
}

// ListProcessRecordsResponse contains the matching records
type ListProcessRecordsResponse struct {
	Records []function.ProcessRecord
}

type ListProcessRecordsHandler struct {
	recordRepo domainSettlement.ProcessRecordRepository
}

func NewListProcessRecordsHandler(recordRepo domainSettlement.ProcessRecordRepository) *ListProcessRecordsHandler {
	return &ListProcessRecordsHandler{recordRepo: recordRepo}
}

// Handle executes the ListProcessRecords query
func (h *ListProcessRecordsHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ListProcessRecordsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListProcessRecordsQuery")
	}
	if query.SettlementID <= 0 {
		return nil, shared.NewValidationError("settlement_id", "must be positive")
	}

	records, err := h.recordRepo.ListBySettlement(ctx, query.SettlementID)
	if err != nil {
		return nil, fmt.Errorf("failed to list process records: %w", err)
	}
	if query.Premature == nil {
		return &ListProcessRecordsResponse{Records: records}, nil
	}

	filtered := make([]function.ProcessRecord, 0, len(records))
	for _, rec := range records {
		if rec.Premature == *query.Premature {
			filtered = append(filtered, rec)
		}
	}
	return &ListProcessRecordsResponse{Records: filtered}, nil
}
