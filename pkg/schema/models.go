// Package schema provides database schema models for the PlantKeeper
// database. The taxonomy tables form a strict three-level hierarchy
// (family → genus → species) referenced by plants through nullable
// foreign keys.
package schema

import (
	"time"
)

// DDLGenerator defines how Go models generate SQLite DDL.
type DDLGenerator interface {
	// TableDDL returns the CREATE TABLE statement for this model.
	TableDDL() string

	// IndexDDL returns CREATE INDEX statements for this model.
	// Returns empty slice if no indexes needed.
	IndexDDL() []string

	// TableName returns the SQLite table name for this model.
	TableName() string
}

// Family is the top level of the botanical hierarchy; it has no parent.
type Family struct {
	// ID is the generated primary key.
	ID int64 `db:"id" ddl:"INTEGER PRIMARY KEY AUTOINCREMENT" gorm:"primaryKey"`

	// Name is the botanical family name, e.g. "Araceae".
	Name string `db:"name" ddl:"TEXT NOT NULL UNIQUE"`

	CreatedAt time.Time `db:"created_at" ddl:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `db:"updated_at" ddl:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
}

// Genus is the middle level of the hierarchy. Every genus belongs to
// exactly one family.
type Genus struct {
	// ID is the generated primary key.
	ID int64 `db:"id" ddl:"INTEGER PRIMARY KEY AUTOINCREMENT" gorm:"primaryKey"`

	// Name is the genus name, e.g. "Monstera".
	Name string `db:"name" ddl:"TEXT NOT NULL UNIQUE"`

	// FamilyID references the owning family. Required: a genus cannot
	// exist outside a family.
	FamilyID int64 `db:"family_id" ddl:"INTEGER NOT NULL"`

	CreatedAt time.Time `db:"created_at" ddl:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `db:"updated_at" ddl:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
}

// Species is the bottom level of the hierarchy. Every species belongs
// to exactly one genus; the chain species → genus → family is exactly
// three levels deep.
type Species struct {
	// ID is the generated primary key.
	ID int64 `db:"id" ddl:"INTEGER PRIMARY KEY AUTOINCREMENT" gorm:"primaryKey"`

	// Name is the scientific name as entered, e.g. "Monstera deliciosa".
	Name string `db:"name" ddl:"TEXT NOT NULL UNIQUE"`

	// GenusID references the owning genus. Required.
	GenusID int64 `db:"genus_id" ddl:"INTEGER NOT NULL"`

	// CommonName is an optional vernacular name, e.g. "Swiss cheese plant".
	CommonName *string `db:"common_name" ddl:"TEXT"`

	// Canonical is the simple canonical form produced by gnparser.
	// Empty when the verbatim name did not parse.
	Canonical *string `db:"canonical" ddl:"TEXT"`

	// Cardinality: 0-unparsed, 1-uninomial, 2-binomial, 3-trinomial.
	Cardinality int `db:"cardinality" ddl:"INTEGER NOT NULL DEFAULT 0"`

	// UUID is a deterministic UUID v5 generated from the verbatim name.
	UUID string `db:"uuid" ddl:"VARCHAR(36)" gorm:"column:uuid"`

	CreatedAt time.Time `db:"created_at" ddl:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `db:"updated_at" ddl:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
}

// Plant is a catalogued plant. Taxonomy references are independently
// nullable: hobbyist identification is often partial, so a plant may
// carry only a family, only a species, or no taxonomy at all. When a
// reference is set it must resolve to an existing row.
type Plant struct {
	ID int64 `db:"id" ddl:"INTEGER PRIMARY KEY AUTOINCREMENT" gorm:"primaryKey"`

	// UserID references the owning user. Required.
	UserID int64 `db:"user_id" ddl:"INTEGER NOT NULL"`

	// Name is the user-facing label. Required, non-empty after trim.
	Name string `db:"name" ddl:"TEXT NOT NULL"`

	SpeciesID *int64 `db:"species_id" ddl:"INTEGER"`
	FamilyID  *int64 `db:"family_id" ddl:"INTEGER"`
	GenusID   *int64 `db:"genus_id" ddl:"INTEGER"`

	AcquiredDate *string `db:"acquired_date" ddl:"DATE"`
	Notes        *string `db:"notes" ddl:"TEXT"`

	IsFavorite bool `db:"is_favorite" ddl:"BOOLEAN NOT NULL DEFAULT 0"`

	// CanSell marks plants grown for sale rather than the collection.
	CanSell bool `db:"can_sell" ddl:"BOOLEAN NOT NULL DEFAULT 0"`

	// IsPersonal marks plants the user personally grows; such plants
	// carry a personal_plants sidecar row with a count.
	IsPersonal bool `db:"is_personal" ddl:"BOOLEAN NOT NULL DEFAULT 0"`

	CommonName  *string `db:"common_name" ddl:"TEXT"`
	FlowerColor *string `db:"flower_color" ddl:"TEXT"`
	Variety     *string `db:"variety" ddl:"TEXT"`

	LightPref *string `db:"light_pref" ddl:"TEXT"`
	WaterPref *string `db:"water_pref" ddl:"TEXT"`
	SoilType  *string `db:"soil_type" ddl:"TEXT"`
	PlantUse  *string `db:"plant_use" ddl:"VARCHAR(50)"`

	HasFragrance         bool    `db:"has_fragrance" ddl:"BOOLEAN NOT NULL DEFAULT 0"`
	FragranceDescription *string `db:"fragrance_description" ddl:"TEXT"`
	IsPetsafe            bool    `db:"is_petsafe" ddl:"BOOLEAN NOT NULL DEFAULT 0"`
	PlantZones           *int64  `db:"plant_zones" ddl:"INTEGER"`

	CreatedAt time.Time `db:"created_at" ddl:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `db:"updated_at" ddl:"DATETIME DEFAULT CURRENT_TIMESTAMP"`

	// PersonalCount is joined in from personal_plants on reads.
	PersonalCount *int64 `db:"-" ddl:"" gorm:"-"`
}

// PersonalPlant is the optional 1:1 sidecar for plants the user
// personally grows. Created only when Plant.IsPersonal is true and
// deleted together with the owning plant.
type PersonalPlant struct {
	ID      int64 `db:"id" ddl:"INTEGER PRIMARY KEY AUTOINCREMENT" gorm:"primaryKey"`
	PlantID int64 `db:"plant_id" ddl:"INTEGER NOT NULL"`

	// Count of living specimens; nil means not tracked yet.
	Count *int64 `db:"count" ddl:"INTEGER"`

	// ZeroReason records why the count dropped to zero.
	ZeroReason    *string `db:"zero_reason" ddl:"TEXT"`
	ContainerType *string `db:"container_type" ddl:"VARCHAR(50)"`

	CreatedAt time.Time `db:"created_at" ddl:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `db:"updated_at" ddl:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
}

// User owns plants. Authentication is handled outside this subsystem;
// the table exists so plants.user_id has a real target.
type User struct {
	ID        int64     `db:"id" ddl:"INTEGER PRIMARY KEY AUTOINCREMENT" gorm:"primaryKey"`
	Username  string    `db:"username" ddl:"TEXT NOT NULL UNIQUE"`
	Password  string    `db:"password" ddl:"TEXT NOT NULL"`
	Email     *string   `db:"email" ddl:"TEXT UNIQUE"`
	CreatedAt time.Time `db:"created_at" ddl:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `db:"updated_at" ddl:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
}

// CareSchedule holds watering/fertilizing cadence for a plant.
type CareSchedule struct {
	ID                  int64   `db:"id" ddl:"INTEGER PRIMARY KEY AUTOINCREMENT" gorm:"primaryKey"`
	PlantID             int64   `db:"plant_id" ddl:"INTEGER NOT NULL"`
	WateringInterval    *int64  `db:"watering_interval" ddl:"INTEGER"`
	FertilizingInterval *int64  `db:"fertilizing_interval" ddl:"INTEGER"`
	LastWatered         *string `db:"last_watered" ddl:"DATE"`
	LastFertilized      *string `db:"last_fertilized" ddl:"DATE"`
	LightNeeds          *string `db:"light_needs" ddl:"TEXT"`
	NextTaskDate        *string `db:"next_task_date" ddl:"DATE"`
}

// CareLog is one recorded care action for a plant.
type CareLog struct {
	ID         int64     `db:"id" ddl:"INTEGER PRIMARY KEY AUTOINCREMENT" gorm:"primaryKey"`
	PlantID    int64     `db:"plant_id" ddl:"INTEGER NOT NULL"`
	ActionType string    `db:"action_type" ddl:"TEXT NOT NULL"`
	ActionDate time.Time `db:"action_date" ddl:"TIMESTAMP DEFAULT CURRENT_TIMESTAMP"`
	Notes      *string   `db:"notes" ddl:"TEXT"`
}

// CareTip is free-form species-level care advice.
type CareTip struct {
	ID        int64     `db:"id" ddl:"INTEGER PRIMARY KEY AUTOINCREMENT" gorm:"primaryKey"`
	Species   string    `db:"species" ddl:"TEXT NOT NULL"`
	Tip       string    `db:"tip" ddl:"TEXT NOT NULL"`
	Source    *string   `db:"source" ddl:"TEXT"`
	CreatedAt time.Time `db:"created_at" ddl:"TIMESTAMP DEFAULT CURRENT_TIMESTAMP"`
}

// MarketPrice is one observed market price for a plant.
type MarketPrice struct {
	ID          int64   `db:"id" ddl:"INTEGER PRIMARY KEY AUTOINCREMENT" gorm:"primaryKey"`
	PlantID     int64   `db:"plant_id" ddl:"INTEGER NOT NULL"`
	DateChecked string  `db:"date_checked" ddl:"DATE NOT NULL"`
	Price       float64 `db:"price" ddl:"DECIMAL(5,2) NOT NULL"`
}

// Propagation tracks one propagation effort for a plant.
type Propagation struct {
	ID             int64   `db:"id" ddl:"INTEGER PRIMARY KEY AUTOINCREMENT" gorm:"primaryKey"`
	PlantID        int64   `db:"plant_id" ddl:"INTEGER NOT NULL"`
	PropType       *int64  `db:"prop_type" ddl:"INTEGER"`
	SeedSource     *string `db:"seed_source" ddl:"TEXT"`
	CuttingSource  *string `db:"cutting_source" ddl:"TEXT"`
	PropDate       *string `db:"prop_date" ddl:"DATE"`
	InitialCount   *int64  `db:"initial_count" ddl:"INTEGER"`
	CurrentCount   *int64  `db:"current_count" ddl:"INTEGER"`
	TransplantDate *string `db:"transplant_date" ddl:"DATE"`
	Notes          *string `db:"notes" ddl:"TEXT"`
	ZeroCountNotes *string `db:"zero_count_notes" ddl:"TEXT"`
}

// InventoryRecord is detailed lifecycle bookkeeping for a plant.
type InventoryRecord struct {
	ID                 int64    `db:"id" ddl:"INTEGER PRIMARY KEY AUTOINCREMENT" gorm:"primaryKey"`
	PlantID            int64    `db:"plant_id" ddl:"INTEGER NOT NULL"`
	Quantity           *int64   `db:"quantity" ddl:"INTEGER"`
	PlantAge           *int64   `db:"plant_age" ddl:"INTEGER"`
	PlantSize          *float64 `db:"plant_size" ddl:"DECIMAL(5,2)"`
	LastWateredDate    *string  `db:"last_watered_date" ddl:"DATE"`
	LastFertilizedDate *string  `db:"last_fertilized_date" ddl:"DATE"`
	Location           *string  `db:"location" ddl:"TEXT"`
	Notes              *string  `db:"notes" ddl:"TEXT"`
	AcquisitionDate    *string  `db:"acquisition_date" ddl:"DATE"`
	Status             *string  `db:"status" ddl:"TEXT"`
	DateDeath          *string  `db:"date_death" ddl:"DATE"`
	CauseOfDeath       *string  `db:"cause_of_death" ddl:"TEXT"`
	DeathNotes         *string  `db:"death_notes" ddl:"TEXT"`
	DeathLocation      *string  `db:"death_location" ddl:"TEXT"`
}

// PlantPhoto stores an image for a plant. GUID identifies a photo
// across its resized variants.
type PlantPhoto struct {
	ID        int64     `db:"id" ddl:"INTEGER PRIMARY KEY AUTOINCREMENT" gorm:"primaryKey"`
	PlantID   int64     `db:"plant_id" ddl:"INTEGER NOT NULL"`
	Filename  string    `db:"filename" ddl:"TEXT NOT NULL"`
	Image     []byte    `db:"image" ddl:"BLOB"`
	MimeType  string    `db:"mime_type" ddl:"VARCHAR(100) NOT NULL"`
	SizeType  *int64    `db:"size_type" ddl:"INTEGER"`
	GUID      string    `db:"guid" ddl:"VARCHAR(100) NOT NULL" gorm:"column:guid"`
	CreatedAt time.Time `db:"created_at" ddl:"TIMESTAMP DEFAULT CURRENT_TIMESTAMP"`
}

// MigrationRecord tracks applied schema evolution passes.
type MigrationRecord struct {
	ID        int64     `db:"id" ddl:"INTEGER PRIMARY KEY AUTOINCREMENT" gorm:"primaryKey"`
	Name      string    `db:"name" ddl:"TEXT NOT NULL UNIQUE"`
	AppliedAt time.Time `db:"applied_at" ddl:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
}
