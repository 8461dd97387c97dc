package helpers

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/marssim-go/internal/adapters/persistence"
	"github.com/andrescamacho/marssim-go/internal/infrastructure/database"
)

// SharedTestDB is one in-memory database reused by every scenario of a suite.
// Opening and migrating per scenario costs more than wiping the rows.
var SharedTestDB *gorm.DB

var errNoSharedDB = errors.New("shared test database not initialized")

// InitializeSharedTestDB opens SharedTestDB; suites call it before the first scenario
func InitializeSharedTestDB() error {
	db, err := database.NewTestConnection()
	if err != nil {
		return fmt.Errorf("shared test database: %w", err)
	}
	SharedTestDB = db
	return nil
}

// TruncateAllTables deletes every row of every persisted model
func TruncateAllTables() error {
	if SharedTestDB == nil {
		return errNoSharedDB
	}
	wipe := SharedTestDB.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range persistence.AllModels() {
		if err := wipe.Delete(model).Error; err != nil {
			return fmt.Errorf("truncate %T: %w", model, err)
		}
	}
	return nil
}

// CloseSharedTestDB releases SharedTestDB; a second call is a no-op
func CloseSharedTestDB() error {
	if SharedTestDB == nil {
		return nil
	}
	err := database.Close(SharedTestDB)
	SharedTestDB = nil
	return err
}
