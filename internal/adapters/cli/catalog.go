package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/marssim-go/internal/infrastructure/catalog"
	"github.com/andrescamacho/marssim-go/internal/infrastructure/config"
)

// NewCatalogCommand creates the catalog command with subcommands
func NewCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the building catalog",
		Long: `Inspect building types, workshop recipes and settlement templates.

Without --catalog the catalog configured under catalog.path is used, or the
built-in one when that is empty.

Examples:
  marssim catalog list
  marssim catalog list --processes --color
  marssim catalog validate --catalog ./my-catalog.yaml`,
	}

	cmd.AddCommand(newCatalogListCommand())
	cmd.AddCommand(newCatalogValidateCommand())

	return cmd
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		cfg := config.LoadConfigOrDefault(configPath)
		path = cfg.Catalog.Path
	}
	return catalog.Load(path)
}

func newCatalogListCommand() *cobra.Command {
	var (
		path      string
		processes bool
		useColors bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List building types and settlement templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog(path)
			if err != nil {
				return err
			}
			formatter := NewTreeFormatter(useColors)

			fmt.Printf("Building types (%d)\n\n", len(cat.Buildings))
			for i := range cat.Buildings {
				fmt.Println(formatter.FormatBuilding(&cat.Buildings[i]))
			}

			if processes {
				fmt.Printf("Processes (%d)\n\n", len(cat.Processes))
				for i := range cat.Processes {
					fmt.Println(formatter.FormatProcess(&cat.Processes[i]))
				}
			}

			fmt.Printf("Settlement templates (%d)\n", len(cat.Settlements))
			for _, t := range cat.Settlements {
				fmt.Printf("  %-22s %2d buildings, %d people, %d robots, %d vehicles\n",
					t.Name, len(t.Buildings), len(t.People), len(t.Robots), len(t.Vehicles))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "catalog", "", "Catalog YAML to read")
	cmd.Flags().BoolVar(&processes, "processes", false, "Also list workshop recipes")
	cmd.Flags().BoolVar(&useColors, "color", false, "Colorize output")

	return cmd
}

func newCatalogValidateCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a catalog and build every template in it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog(path)
			if err != nil {
				return err
			}
			built := 0
			if len(cat.Settlements) > 0 {
				settlements, err := cat.BuildSettlements(nil, 0, nil)
				if err != nil {
					return err
				}
				built = len(settlements)
			}
			fmt.Printf("✓ Catalog is valid: %d building types, %d processes, %d settlements built\n",
				len(cat.Buildings), len(cat.Processes), built)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "catalog", "", "Catalog YAML to check")

	return cmd
}
