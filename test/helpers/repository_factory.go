package helpers

import (
	"gorm.io/gorm"

	"github.com/andrescamacho/marssim-go/internal/adapters/persistence"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
)

// TestRepositories are the real report repositories over SharedTestDB
type TestRepositories struct {
	DB             *gorm.DB
	SolReports     *persistence.GormSolReportRepository
	ProcessRecords *persistence.GormProcessRecordRepository
}

// NewTestRepositories wires both repositories to SharedTestDB, stamping
// rows with clock. InitializeSharedTestDB must have run.
func NewTestRepositories(clock shared.Clock) *TestRepositories {
	return &TestRepositories{
		DB:             SharedTestDB,
		SolReports:     persistence.NewGormSolReportRepository(SharedTestDB, clock),
		ProcessRecords: persistence.NewGormProcessRecordRepository(SharedTestDB, clock),
	}
}
