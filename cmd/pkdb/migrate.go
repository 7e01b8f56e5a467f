package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/plantkeeper/pkdb/internal/iodb"
	"github.com/plantkeeper/pkdb/internal/ioschema"
	"github.com/plantkeeper/pkdb/pkg/db"
	"github.com/plantkeeper/pkdb/pkg/pkdb"
	"github.com/spf13/cobra"
)

func getMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Evolves the database schema to the current layout",
		Long: `Detects the present schema shape, migrates legacy layouts forward
inside a single transaction, and verifies foreign key integrity before
committing. A database with dangling references is left untouched and
the command exits with an error.`,
		RunE: runMigrate,
	}
	return cmd
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := getConfig()
	start := time.Now()

	var op db.Operator = iodb.NewSQLiteOperator()
	if err := op.Connect(ctx, &cfg.Database); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	defer op.Close()

	fmt.Printf("Connected to database: %s\n", cfg.Database.Path)

	var sm pkdb.SchemaManager = ioschema.NewManager(op)

	fmt.Println("Evolving database schema...")
	if err := sm.Evolve(ctx); err != nil {
		var viol *ioschema.IntegrityViolationError
		if errors.As(err, &viol) {
			gn.PrintErrorMessage(err)
			return err
		}
		return fmt.Errorf("failed to evolve schema: %w", err)
	}

	fmt.Printf("\n✓ Schema evolution complete in %s\n",
		gnfmt.TimeString(time.Since(start).Seconds()))
	return nil
}
