package cli

import (
	"fmt"
	"net/url"

	"gorm.io/gorm"

	"github.com/andrescamacho/marssim-go/internal/adapters/logging"
	"github.com/andrescamacho/marssim-go/internal/adapters/persistence"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
	"github.com/andrescamacho/marssim-go/internal/infrastructure/config"
	"github.com/andrescamacho/marssim-go/internal/infrastructure/database"
)

// loadConfig reads the configuration selected by --config and applies --verbose
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// newLogger builds the configured logger; settlement diagnostics go through
// a throttle so a failing building does not flood the output every pulse.
func newLogger(cfg *config.Config) (*logging.StdLogger, shared.Logger, func() error, error) {
	base, closeFn, err := logging.NewStdLoggerFromConfig("marssim", &cfg.Logging)
	if err != nil {
		return nil, nil, nil, err
	}
	throttled := logging.NewThrottledLogger(base.With("settlement"), cfg.Logging.ThrottleWindow)
	return base, throttled, closeFn, nil
}

// store bundles the database handle with the report repositories
type store struct {
	db      *gorm.DB
	reports *persistence.GormSolReportRepository
	records *persistence.GormProcessRecordRepository
}

func (s *store) Close() error {
	return database.Close(s.db)
}

// openStore connects to the configured database and migrates the schema
func openStore(cfg *config.Config) (*store, error) {
	db, err := database.Open(&cfg.Database)
	if err != nil {
		return nil, err
	}
	return &store{
		db:      db,
		reports: persistence.NewGormSolReportRepository(db, nil),
		records: persistence.NewGormProcessRecordRepository(db, nil),
	}, nil
}

// resolveSettlementID picks the settlement for report commands
// Priority: --settlement-id flag > user config default
func resolveSettlementID() (int, error) {
	if settlementID > 0 {
		return settlementID, nil
	}

	userConfigHandler, err := config.NewUserConfigHandler()
	if err != nil {
		return 0, fmt.Errorf("no settlement specified and failed to load user config: %w", err)
	}
	userCfg, err := userConfigHandler.Load()
	if err != nil {
		return 0, fmt.Errorf("no settlement specified and failed to load user config: %w", err)
	}
	if userCfg.DefaultSettlementID != nil {
		return *userCfg.DefaultSettlementID, nil
	}

	return 0, fmt.Errorf("no settlement specified: use --settlement-id or set a default with 'marssim config set-settlement'")
}

// maskPassword hides the password of a connection URL
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "****")
	}
	return u.String()
}
