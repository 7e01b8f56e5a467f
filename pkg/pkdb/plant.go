package pkdb

import (
	"context"

	"github.com/plantkeeper/pkdb/pkg/schema"
)

// PlantStore is CRUD for plants and their optional personal-plant
// sidecar. All taxonomy reference checks are delegated to the
// Validator; the store never writes a dangling reference.
type PlantStore interface {
	// Create validates the input and inserts the plant row and, when
	// IsPersonal is set, the personal_plants sidecar, in one
	// transaction. Either both rows land or neither does.
	Create(ctx context.Context, input PlantInput) (*schema.Plant, error)

	// Update re-validates name and taxonomy references on every update,
	// since taxonomy ids stay user-editable after creation. The sidecar
	// follows IsPersonal: created when it turns on, removed when it
	// turns off.
	Update(ctx context.Context, id int64, input PlantInput) (*schema.Plant, error)

	// Get returns a plant with its personal count joined in.
	Get(ctx context.Context, id int64) (*schema.Plant, error)

	// List returns all plants of a user ordered by name.
	List(ctx context.Context, userID int64) ([]schema.Plant, error)

	// Delete removes a plant and every dependent row (care logs,
	// schedules, prices, propagation, inventory, photos, sidecar) in
	// one transaction, children first.
	Delete(ctx context.Context, id int64) error
}

// PhotoStore manages plant photos. A photo keeps one GUID across its
// resized variants, so clients can request any size by the same
// identifier.
type PhotoStore interface {
	// AddPhoto stores an image for an existing plant and assigns the
	// GUID when the input carries none.
	AddPhoto(ctx context.Context, input PhotoInput) (*schema.PlantPhoto, error)

	// ListPhotos returns the photos of a plant, newest first, without
	// image payloads.
	ListPhotos(ctx context.Context, plantID int64) ([]schema.PlantPhoto, error)

	// GetPhoto returns one photo with its image payload.
	GetPhoto(ctx context.Context, guid string, sizeType *int64) (*schema.PlantPhoto, error)

	// DeletePhoto removes all size variants sharing the GUID.
	DeletePhoto(ctx context.Context, guid string) error
}

// PhotoInput carries one photo upload.
type PhotoInput struct {
	PlantID  int64
	Filename string
	Image    []byte
	MimeType string
	SizeType *int64

	// GUID ties a resized variant to its original; empty for new
	// uploads.
	GUID string
}

// PlantInput carries the writable fields of a plant. Taxonomy ids are
// independently optional; ids <= 0 are treated as absent.
type PlantInput struct {
	UserID int64
	Name   string

	SpeciesID *int64
	FamilyID  *int64
	GenusID   *int64

	AcquiredDate *string
	Notes        *string

	IsFavorite bool
	CanSell    bool
	IsPersonal bool

	CommonName  *string
	FlowerColor *string
	Variety     *string

	LightPref *string
	WaterPref *string
	SoilType  *string
	PlantUse  *string

	HasFragrance         bool
	FragranceDescription *string
	IsPetsafe            bool
	PlantZones           *int64

	// PersonalCount seeds the sidecar count when IsPersonal is true.
	PersonalCount *int64

	// ZeroReason and ContainerType are sidecar fields.
	ZeroReason    *string
	ContainerType *string
}
