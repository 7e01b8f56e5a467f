package ioplant

import (
	"context"
	"errors"
	"strings"

	"github.com/plantkeeper/pkdb/pkg/db"
	"github.com/plantkeeper/pkdb/pkg/pkdb"
	"github.com/plantkeeper/pkdb/pkg/schema"
	"gorm.io/gorm"
)

type store struct {
	op  db.Operator
	val pkdb.Validator
}

// NewStore creates a PlantStore. Every write goes through the
// validator first; the store itself never trusts ids from input.
func NewStore(op db.Operator, val pkdb.Validator) pkdb.PlantStore {
	return &store{op: op, val: val}
}

func (s *store) gorm(ctx context.Context) *gorm.DB {
	return s.op.Gorm().WithContext(ctx)
}

func (s *store) Create(
	ctx context.Context,
	input pkdb.PlantInput,
) (*schema.Plant, error) {
	if err := s.checkInput(ctx, &input); err != nil {
		return nil, err
	}

	plant := buildPlant(input)
	err := s.gorm(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&plant).Error; err != nil {
			return QueryError(err)
		}
		if input.IsPersonal {
			pp := schema.PersonalPlant{
				PlantID:       plant.ID,
				Count:         input.PersonalCount,
				ZeroReason:    input.ZeroReason,
				ContainerType: input.ContainerType,
			}
			if err := tx.Create(&pp).Error; err != nil {
				return QueryError(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, plant.ID)
}

func (s *store) Update(
	ctx context.Context,
	id int64,
	input pkdb.PlantInput,
) (*schema.Plant, error) {
	var existing schema.Plant
	err := s.gorm(ctx).Take(&existing, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFoundError(id)
	}
	if err != nil {
		return nil, QueryError(err)
	}

	// Taxonomy ids stay editable after creation, so every update is
	// validated like a create.
	if err := s.checkInput(ctx, &input); err != nil {
		return nil, err
	}

	plant := buildPlant(input)
	plant.ID = existing.ID
	plant.CreatedAt = existing.CreatedAt

	err = s.gorm(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&plant).Error; err != nil {
			return QueryError(err)
		}
		return s.syncSidecar(tx, plant.ID, input)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, plant.ID)
}

// syncSidecar makes the personal_plants row follow the IsPersonal
// flag: created or updated when it is on, removed when it is off.
func (s *store) syncSidecar(
	tx *gorm.DB,
	plantID int64,
	input pkdb.PlantInput,
) error {
	var pp schema.PersonalPlant
	err := tx.Where("plant_id = ?", plantID).Take(&pp).Error
	missing := errors.Is(err, gorm.ErrRecordNotFound)
	if err != nil && !missing {
		return QueryError(err)
	}

	switch {
	case input.IsPersonal && missing:
		pp = schema.PersonalPlant{
			PlantID:       plantID,
			Count:         input.PersonalCount,
			ZeroReason:    input.ZeroReason,
			ContainerType: input.ContainerType,
		}
		if err := tx.Create(&pp).Error; err != nil {
			return QueryError(err)
		}
	case input.IsPersonal:
		pp.Count = input.PersonalCount
		pp.ZeroReason = input.ZeroReason
		pp.ContainerType = input.ContainerType
		if err := tx.Save(&pp).Error; err != nil {
			return QueryError(err)
		}
	case missing:
		// Not personal, no sidecar. Nothing to do.
	default:
		if err := tx.Delete(&pp).Error; err != nil {
			return QueryError(err)
		}
	}
	return nil
}

func (s *store) Get(ctx context.Context, id int64) (*schema.Plant, error) {
	var plant schema.Plant
	err := s.gorm(ctx).Take(&plant, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFoundError(id)
	}
	if err != nil {
		return nil, QueryError(err)
	}

	var pp schema.PersonalPlant
	err = s.gorm(ctx).Where("plant_id = ?", id).Take(&pp).Error
	if err == nil {
		plant.PersonalCount = pp.Count
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, QueryError(err)
	}

	return &plant, nil
}

func (s *store) List(
	ctx context.Context,
	userID int64,
) ([]schema.Plant, error) {
	var plants []schema.Plant
	err := s.gorm(ctx).
		Where("user_id = ?", userID).
		Order("name").
		Find(&plants).Error
	if err != nil {
		return nil, QueryError(err)
	}
	if len(plants) == 0 {
		return plants, nil
	}

	ids := make([]int64, len(plants))
	for i, p := range plants {
		ids[i] = p.ID
	}
	var sidecars []schema.PersonalPlant
	err = s.gorm(ctx).Where("plant_id IN ?", ids).Find(&sidecars).Error
	if err != nil {
		return nil, QueryError(err)
	}
	counts := make(map[int64]*int64, len(sidecars))
	for _, pp := range sidecars {
		counts[pp.PlantID] = pp.Count
	}
	for i := range plants {
		plants[i].PersonalCount = counts[plants[i].ID]
	}

	return plants, nil
}

func (s *store) Delete(ctx context.Context, id int64) error {
	var plant schema.Plant
	err := s.gorm(ctx).Take(&plant, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFoundError(id)
	}
	if err != nil {
		return QueryError(err)
	}

	// Children first, so foreign key enforcement never sees a gap.
	return s.gorm(ctx).Transaction(func(tx *gorm.DB) error {
		children := []any{
			&schema.CareLog{},
			&schema.CareSchedule{},
			&schema.MarketPrice{},
			&schema.Propagation{},
			&schema.InventoryRecord{},
			&schema.PersonalPlant{},
			&schema.PlantPhoto{},
		}
		for _, child := range children {
			if err := tx.Where("plant_id = ?", id).Delete(child).Error; err != nil {
				return QueryError(err)
			}
		}
		if err := tx.Delete(&plant).Error; err != nil {
			return QueryError(err)
		}
		return nil
	})
}

// checkInput validates name, user and taxonomy references, and
// normalizes zero or negative reference ids to nil.
func (s *store) checkInput(ctx context.Context, input *pkdb.PlantInput) error {
	if err := s.val.NonEmptyName(input.Name); err != nil {
		return err
	}
	input.Name = strings.TrimSpace(input.Name)

	input.SpeciesID = normID(input.SpeciesID)
	input.FamilyID = normID(input.FamilyID)
	input.GenusID = normID(input.GenusID)

	var n int64
	err := s.gorm(ctx).
		Model(&schema.User{}).
		Where("id = ?", input.UserID).
		Count(&n).Error
	if err != nil {
		return QueryError(err)
	}
	if n == 0 {
		return MissingUserError(input.UserID)
	}

	return s.val.TaxonomyRefs(ctx, pkdb.TaxonomyRefs{
		FamilyID:  input.FamilyID,
		GenusID:   input.GenusID,
		SpeciesID: input.SpeciesID,
	})
}

func normID(id *int64) *int64 {
	if id == nil || *id <= 0 {
		return nil
	}
	return id
}

func buildPlant(input pkdb.PlantInput) schema.Plant {
	return schema.Plant{
		UserID:               input.UserID,
		Name:                 input.Name,
		SpeciesID:            input.SpeciesID,
		FamilyID:             input.FamilyID,
		GenusID:              input.GenusID,
		AcquiredDate:         input.AcquiredDate,
		Notes:                input.Notes,
		IsFavorite:           input.IsFavorite,
		CanSell:              input.CanSell,
		IsPersonal:           input.IsPersonal,
		CommonName:           input.CommonName,
		FlowerColor:          input.FlowerColor,
		Variety:              input.Variety,
		LightPref:            input.LightPref,
		WaterPref:            input.WaterPref,
		SoilType:             input.SoilType,
		PlantUse:             input.PlantUse,
		HasFragrance:         input.HasFragrance,
		FragranceDescription: input.FragranceDescription,
		IsPetsafe:            input.IsPetsafe,
		PlantZones:           input.PlantZones,
	}
}
