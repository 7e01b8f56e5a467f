package ioplant

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/plantkeeper/pkdb/pkg/db"
	"github.com/plantkeeper/pkdb/pkg/pkdb"
	"github.com/plantkeeper/pkdb/pkg/schema"
	"gorm.io/gorm"
)

type photoStore struct {
	op db.Operator
}

// NewPhotoStore creates a PhotoStore.
func NewPhotoStore(op db.Operator) pkdb.PhotoStore {
	return &photoStore{op: op}
}

func (s *photoStore) gorm(ctx context.Context) *gorm.DB {
	return s.op.Gorm().WithContext(ctx)
}

func (s *photoStore) AddPhoto(
	ctx context.Context,
	input pkdb.PhotoInput,
) (*schema.PlantPhoto, error) {
	var n int64
	err := s.gorm(ctx).
		Model(&schema.Plant{}).
		Where("id = ?", input.PlantID).
		Count(&n).Error
	if err != nil {
		return nil, QueryError(err)
	}
	if n == 0 {
		return nil, NotFoundError(input.PlantID)
	}

	guid := input.GUID
	if guid == "" {
		guid = uuid.NewString()
	}

	photo := schema.PlantPhoto{
		PlantID:  input.PlantID,
		Filename: input.Filename,
		Image:    input.Image,
		MimeType: input.MimeType,
		SizeType: input.SizeType,
		GUID:     guid,
	}
	if err := s.gorm(ctx).Create(&photo).Error; err != nil {
		return nil, QueryError(err)
	}
	return &photo, nil
}

func (s *photoStore) ListPhotos(
	ctx context.Context,
	plantID int64,
) ([]schema.PlantPhoto, error) {
	var photos []schema.PlantPhoto
	err := s.gorm(ctx).
		Select("id", "plant_id", "filename", "mime_type", "size_type",
			"guid", "created_at").
		Where("plant_id = ?", plantID).
		Order("created_at DESC").
		Find(&photos).Error
	if err != nil {
		return nil, QueryError(err)
	}
	return photos, nil
}

func (s *photoStore) GetPhoto(
	ctx context.Context,
	guid string,
	sizeType *int64,
) (*schema.PlantPhoto, error) {
	q := s.gorm(ctx).Where("guid = ?", guid)
	if sizeType != nil {
		q = q.Where("size_type = ?", *sizeType)
	}

	var photo schema.PlantPhoto
	err := q.Take(&photo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, PhotoNotFoundError(guid)
	}
	if err != nil {
		return nil, QueryError(err)
	}
	return &photo, nil
}

func (s *photoStore) DeletePhoto(ctx context.Context, guid string) error {
	res := s.gorm(ctx).
		Where("guid = ?", guid).
		Delete(&schema.PlantPhoto{})
	if res.Error != nil {
		return QueryError(res.Error)
	}
	if res.RowsAffected == 0 {
		return PhotoNotFoundError(guid)
	}
	return nil
}
