package iovalidate

import (
	"context"
	"errors"
	"strings"

	"github.com/plantkeeper/pkdb/pkg/db"
	"github.com/plantkeeper/pkdb/pkg/pkdb"
	"gorm.io/gorm"
)

type validator struct {
	op db.Operator
}

// NewValidator creates a Validator that resolves taxonomy references
// against the connected database.
func NewValidator(op db.Operator) pkdb.Validator {
	return &validator{op: op}
}

func (v *validator) NonEmptyName(name string) error {
	if strings.TrimSpace(name) == "" {
		return EmptyNameError()
	}
	return nil
}

// TaxonomyRefs resolves each present reference against its table.
// Zero and negative ids count as absent, matching clients that send 0
// for "no selection".
func (v *validator) TaxonomyRefs(ctx context.Context, refs pkdb.TaxonomyRefs) error {
	checks := []struct {
		kind  string
		table string
		id    *int64
	}{
		{"family", "plant_family", refs.FamilyID},
		{"genus", "plant_genus", refs.GenusID},
		{"species", "plant_species", refs.SpeciesID},
	}

	for _, c := range checks {
		if c.id == nil || *c.id <= 0 {
			continue
		}
		if err := v.exists(ctx, c.table, c.kind, *c.id); err != nil {
			return err
		}
	}
	return nil
}

func (v *validator) exists(ctx context.Context, table, kind string, id int64) error {
	var found int64
	err := v.op.Gorm().WithContext(ctx).
		Table(table).
		Select("id").
		Where("id = ?", id).
		Take(&found).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return MissingReferenceError(kind, id)
	}
	if err != nil {
		return QueryError(err)
	}
	return nil
}
