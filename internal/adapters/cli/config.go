package cli

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/marssim-go/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage marssim configuration settings.

Configuration is loaded from multiple sources with priority:
1. Environment variables (MARSSIM_* prefix)
2. Config file (config.yaml)
3. Default values

User preferences (default settlement, last run) are stored in ~/.marssim/config.json

Examples:
  marssim config show
  marssim config set-settlement --settlement-id 2
  marssim config clear-settlement`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetSettlementCommand())
	cmd.AddCommand(newConfigClearSettlementCommand())

	return cmd
}

// setting is one "key: value" line of config show
type setting struct{ key, value string }

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				fmt.Fprintf(out, "Warning: %v\nShowing defaults instead.\n\n", err)
				cfg = config.LoadConfigOrDefault("")
			}

			prefs, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to open user config: %w", err)
			}
			userCfg, err := prefs.Load()
			if err != nil {
				fmt.Fprintf(out, "Warning: %v\n\n", err)
				userCfg = &config.UserConfig{}
			}

			fmt.Fprintln(out, "marssim configuration")
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, section := range []struct {
				title    string
				settings []setting
			}{
				{"User preferences", userSettings(prefs.Path(), userCfg)},
				{"Simulation", simulationSettings(cfg)},
				{"Database", databaseSettings(&cfg.Database)},
				{"Logging", []setting{
					{"level", cfg.Logging.Level},
					{"format", cfg.Logging.Format},
					{"output", cfg.Logging.Output},
					{"throttle window", cfg.Logging.ThrottleWindow.String()},
				}},
				{"Metrics", endpointSettings(cfg.Metrics, "http")},
				{"Telemetry", endpointSettings(cfg.Telemetry, "ws")},
				{"Report archive", []setting{
					{"enabled", strconv.FormatBool(cfg.Reports.ArchiveEnabled)},
					{"directory", cfg.Reports.ArchiveDir},
					{"compression", cfg.Reports.ArchiveLevel},
				}},
			} {
				fmt.Fprintf(w, "\n%s:\n", section.title)
				for _, s := range section.settings {
					fmt.Fprintf(w, "  %s\t%s\n", s.key, s.value)
				}
			}
			return w.Flush()
		},
	}
}

func userSettings(path string, u *config.UserConfig) []setting {
	settlement := "(not set)"
	if u.DefaultSettlementID != nil {
		settlement = strconv.Itoa(*u.DefaultSettlementID)
	}
	lastRun := u.LastRunID
	if lastRun == "" {
		lastRun = "(none)"
	}
	return []setting{{"file", path}, {"default settlement", settlement}, {"last run", lastRun}}
}

func simulationSettings(cfg *config.Config) []setting {
	settlements := "(all templates)"
	if len(cfg.Simulation.Settlements) > 0 {
		settlements = strings.Join(cfg.Simulation.Settlements, ", ")
	}
	catalogPath := cfg.Catalog.Path
	if catalogPath == "" {
		catalogPath = "(built-in)"
	}
	return []setting{
		{"pulse", fmt.Sprintf("%g msol", cfg.Simulation.PulseMillisols)},
		{"sols", fmt.Sprintf("%g", cfg.Simulation.Sols)},
		{"start sol", strconv.Itoa(cfg.Simulation.StartSol)},
		{"seed", strconv.FormatInt(cfg.Simulation.Seed, 10)},
		{"parallel", strconv.FormatBool(cfg.Simulation.Parallel)},
		{"settlements", settlements},
		{"catalog", catalogPath},
		{"lock file", cfg.Simulation.PIDFile},
	}
}

func databaseSettings(db *config.DatabaseConfig) []setting {
	rows := []setting{{"type", db.Type}}
	switch {
	case db.URL != "":
		return append(rows, setting{"url", maskPassword(db.URL)})
	case db.Type == "sqlite":
		return append(rows, setting{"path", db.Path}, setting{"busy timeout", db.BusyTimeout.String()})
	}
	return append(rows,
		setting{"server", net.JoinHostPort(db.Host, strconv.Itoa(db.Port))},
		setting{"database", db.Name},
		setting{"user", db.User},
		setting{"pool", fmt.Sprintf("%d open, %d idle", db.Pool.MaxOpen, db.Pool.MaxIdle)},
	)
}

func endpointSettings(e config.EndpointConfig, scheme string) []setting {
	return []setting{
		{"enabled", strconv.FormatBool(e.Enabled)},
		{"endpoint", fmt.Sprintf("%s://%s%s", scheme, e.Addr(), e.Path)},
	}
}

func newConfigSetSettlementCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-settlement",
		Short: "Set the default settlement for report commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			if settlementID <= 0 {
				return fmt.Errorf("--settlement-id flag is required")
			}
			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := userConfigHandler.SetDefaultSettlement(settlementID); err != nil {
				return fmt.Errorf("failed to set default settlement: %w", err)
			}

			fmt.Println("✓ Default settlement set successfully")
			fmt.Printf("  Settlement ID: %d\n", settlementID)
			fmt.Printf("\nOverride with the --settlement-id flag.\n")
			return nil
		},
	}
}

func newConfigClearSettlementCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-settlement",
		Short: "Clear the default settlement",
		RunE: func(cmd *cobra.Command, args []string) error {
			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := userConfigHandler.ClearDefaultSettlement(); err != nil {
				return fmt.Errorf("failed to clear default settlement: %w", err)
			}

			fmt.Println("✓ Default settlement cleared")
			return nil
		},
	}
}
