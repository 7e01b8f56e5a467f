package main

import (
	"context"
	"fmt"

	"github.com/gnames/gn"
	"github.com/plantkeeper/pkdb/internal/iodb"
	"github.com/plantkeeper/pkdb/internal/ioschema"
	"github.com/plantkeeper/pkdb/internal/ioseed"
	"github.com/plantkeeper/pkdb/internal/iotaxonomy"
	"github.com/plantkeeper/pkdb/pkg/db"
	"github.com/plantkeeper/pkdb/pkg/parserpool"
	"github.com/plantkeeper/pkdb/pkg/pkdb"
	"github.com/spf13/cobra"
)

var seedFile string

func getSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Imports taxonomy rows from a CSV file",
		Long: `Imports family, genus and species rows from a CSV file with
family,genus,species,common_name columns. Names that already exist are
reused, so seeding the same file twice changes nothing. Species names
are parsed with gnparser; unparseable names are imported as given.`,
		RunE: runSeed,
	}
	cmd.Flags().StringVarP(&seedFile, "file", "f", "",
		"CSV file with taxonomy rows (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := getConfig()

	var op db.Operator = iodb.NewSQLiteOperator()
	if err := op.Connect(ctx, &cfg.Database); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	defer op.Close()

	// Seeding needs the canonical schema in place.
	var sm pkdb.SchemaManager = ioschema.NewManager(op)
	if err := sm.Evolve(ctx); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	pool := parserpool.NewPool(cfg.JobsNumber)
	defer pool.Close()

	taxonomy := iotaxonomy.NewStore(op, pool)
	seeder := ioseed.NewSeeder(taxonomy, pool, cfg.JobsNumber)

	summary, err := seeder.Seed(ctx, seedFile)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	fmt.Printf(`
✓ Seeding complete
  rows read:        %d
  new families:     %d
  new genera:       %d
  new species:      %d
  unparsed names:   %d
`,
		summary.Rows, summary.Families, summary.Genera,
		summary.Species, summary.Unparsed,
	)
	return nil
}
