package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/plantkeeper/pkdb/internal/iodb"
	"github.com/plantkeeper/pkdb/internal/ioschema"
	"github.com/plantkeeper/pkdb/pkg/db"
	"github.com/plantkeeper/pkdb/pkg/pkdb"
	"github.com/spf13/cobra"
)

func getCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Scans the database for foreign key violations",
		Long: `Runs the full foreign key consistency scan without changing
anything and lists every row whose reference points nowhere.`,
		RunE: runCheck,
	}
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := getConfig()

	var op db.Operator = iodb.NewSQLiteOperator()
	if err := op.Connect(ctx, &cfg.Database); err != nil {
		return err
	}
	defer op.Close()

	var sm pkdb.SchemaManager = ioschema.NewManager(op)

	err := sm.Verify(ctx)
	if err == nil {
		fmt.Println("✓ No foreign key violations found")
		return nil
	}

	var viol *ioschema.IntegrityViolationError
	if !errors.As(err, &viol) {
		return fmt.Errorf("integrity scan failed: %w", err)
	}

	fmt.Printf("Found %d foreign key violations:\n\n", len(viol.Violations))
	for _, v := range viol.Violations {
		row := "unknown row"
		if v.RowID >= 0 {
			row = fmt.Sprintf("rowid %d", v.RowID)
		}
		fmt.Printf("  table %-16s %-12s references missing %s\n",
			v.Table, row, v.Parent)
	}
	fmt.Println("\nRepair these rows manually, then run 'pkdb migrate'.")
	return err
}
