package schema

import (
	"fmt"
	"reflect"
	"strings"
)

// ColumnDef describes one column of a model: its SQLite name and the
// column DDL fragment from the struct tags.
type ColumnDef struct {
	Name string
	DDL  string
}

// generateDDL creates a CREATE TABLE statement from struct tags.
// Extra lines are table-level constraints (foreign keys) appended
// after the column definitions.
func generateDDL(model interface{}, tableName string, constraints ...string) string {
	var lines []string
	for _, col := range Columns(model) {
		lines = append(lines, fmt.Sprintf("    %s %s", col.Name, col.DDL))
	}
	for _, c := range constraints {
		lines = append(lines, "    "+c)
	}

	ddl := fmt.Sprintf("CREATE TABLE %s (\n%s\n);",
		tableName,
		strings.Join(lines, ",\n"))

	return ddl
}

// Columns returns the column definitions of a model in declaration
// order. Fields without db/ddl tags (computed fields) are skipped.
func Columns(model interface{}) []ColumnDef {
	v := reflect.ValueOf(model)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	t := v.Type()

	var res []ColumnDef
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		dbTag := field.Tag.Get("db")
		ddlTag := field.Tag.Get("ddl")

		if dbTag != "" && dbTag != "-" && ddlTag != "" {
			res = append(res, ColumnDef{Name: dbTag, DDL: ddlTag})
		}
	}
	return res
}

func fk(column, parent string) string {
	return fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s(id)", column, parent)
}

// TableDDLNamed returns the model's CREATE TABLE statement with a
// different table name. Used when rebuilding a table in place: the
// replacement is created under a temporary name, filled, and renamed.
func TableDDLNamed(g DDLGenerator, name string) string {
	return strings.Replace(
		g.TableDDL(),
		"CREATE TABLE "+g.TableName()+" (",
		"CREATE TABLE "+name+" (",
		1,
	)
}

// Family DDL methods
func (f Family) TableDDL() string {
	return generateDDL(f, "plant_family")
}

func (f Family) IndexDDL() []string {
	return []string{}
}

func (f Family) TableName() string {
	return "plant_family"
}

// Genus DDL methods
func (g Genus) TableDDL() string {
	return generateDDL(g, "plant_genus", fk("family_id", "plant_family"))
}

func (g Genus) IndexDDL() []string {
	return []string{
		"CREATE INDEX idx_plant_genus_family_id ON plant_genus(family_id);",
	}
}

func (g Genus) TableName() string {
	return "plant_genus"
}

// Species DDL methods
func (s Species) TableDDL() string {
	return generateDDL(s, "plant_species", fk("genus_id", "plant_genus"))
}

func (s Species) IndexDDL() []string {
	return []string{
		"CREATE INDEX idx_plant_species_genus_id ON plant_species(genus_id);",
	}
}

func (s Species) TableName() string {
	return "plant_species"
}

// Plant DDL methods
func (p Plant) TableDDL() string {
	return generateDDL(p, "plants",
		fk("user_id", "users"),
		fk("species_id", "plant_species"),
		fk("family_id", "plant_family"),
		fk("genus_id", "plant_genus"),
	)
}

func (p Plant) IndexDDL() []string {
	return []string{
		"CREATE INDEX idx_plants_user_id ON plants(user_id);",
		"CREATE INDEX idx_plants_species_id ON plants(species_id);",
		"CREATE INDEX idx_plants_family_id ON plants(family_id);",
		"CREATE INDEX idx_plants_genus_id ON plants(genus_id);",
	}
}

func (p Plant) TableName() string {
	return "plants"
}

// PersonalPlant DDL methods
func (pp PersonalPlant) TableDDL() string {
	return generateDDL(pp, "personal_plants", fk("plant_id", "plants"))
}

func (pp PersonalPlant) IndexDDL() []string {
	return []string{
		"CREATE INDEX idx_personal_plants_plant_id ON personal_plants(plant_id);",
	}
}

func (pp PersonalPlant) TableName() string {
	return "personal_plants"
}

// User DDL methods
func (u User) TableDDL() string {
	return generateDDL(u, "users")
}

func (u User) IndexDDL() []string {
	return []string{}
}

func (u User) TableName() string {
	return "users"
}

// CareSchedule DDL methods
func (cs CareSchedule) TableDDL() string {
	return generateDDL(cs, "care_schedules", fk("plant_id", "plants"))
}

func (cs CareSchedule) IndexDDL() []string {
	return []string{
		"CREATE INDEX idx_care_schedules_plant_id ON care_schedules(plant_id);",
	}
}

func (cs CareSchedule) TableName() string {
	return "care_schedules"
}

// CareLog DDL methods
func (cl CareLog) TableDDL() string {
	return generateDDL(cl, "care_logs", fk("plant_id", "plants"))
}

func (cl CareLog) IndexDDL() []string {
	return []string{
		"CREATE INDEX idx_care_logs_plant_id ON care_logs(plant_id);",
	}
}

func (cl CareLog) TableName() string {
	return "care_logs"
}

// CareTip DDL methods
func (ct CareTip) TableDDL() string {
	return generateDDL(ct, "care_tips")
}

func (ct CareTip) IndexDDL() []string {
	return []string{}
}

func (ct CareTip) TableName() string {
	return "care_tips"
}

// MarketPrice DDL methods
func (mp MarketPrice) TableDDL() string {
	return generateDDL(mp, "market_price", fk("plant_id", "plants"))
}

func (mp MarketPrice) IndexDDL() []string {
	return []string{
		"CREATE INDEX idx_market_price_plant_id ON market_price(plant_id);",
	}
}

func (mp MarketPrice) TableName() string {
	return "market_price"
}

// Propagation DDL methods
func (pr Propagation) TableDDL() string {
	return generateDDL(pr, "plant_propagation", fk("plant_id", "plants"))
}

func (pr Propagation) IndexDDL() []string {
	return []string{
		"CREATE INDEX idx_plant_propagation_plant_id ON plant_propagation(plant_id);",
	}
}

func (pr Propagation) TableName() string {
	return "plant_propagation"
}

// InventoryRecord DDL methods
func (ir InventoryRecord) TableDDL() string {
	return generateDDL(ir, "plant_inventory", fk("plant_id", "plants"))
}

func (ir InventoryRecord) IndexDDL() []string {
	return []string{
		"CREATE INDEX idx_plant_inventory_plant_id ON plant_inventory(plant_id);",
	}
}

func (ir InventoryRecord) TableName() string {
	return "plant_inventory"
}

// PlantPhoto DDL methods
func (ph PlantPhoto) TableDDL() string {
	return generateDDL(ph, "plant_photos", fk("plant_id", "plants"))
}

func (ph PlantPhoto) IndexDDL() []string {
	return []string{
		"CREATE INDEX idx_plant_photos_plant_id ON plant_photos(plant_id);",
	}
}

func (ph PlantPhoto) TableName() string {
	return "plant_photos"
}

// MigrationRecord DDL methods
func (mr MigrationRecord) TableDDL() string {
	return generateDDL(mr, "migrations")
}

func (mr MigrationRecord) IndexDDL() []string {
	return []string{}
}

func (mr MigrationRecord) TableName() string {
	return "migrations"
}

// AllTables returns all models in dependency order: parents before
// children, so generated DDL can be executed front to back.
func AllTables() []DDLGenerator {
	return []DDLGenerator{
		MigrationRecord{},
		User{},
		Family{},
		Genus{},
		Species{},
		Plant{},
		PersonalPlant{},
		CareSchedule{},
		CareLog{},
		CareTip{},
		MarketPrice{},
		Propagation{},
		InventoryRecord{},
		PlantPhoto{},
	}
}
