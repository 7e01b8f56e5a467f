package ioseed

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/gnames/gnfmt"
	"github.com/plantkeeper/pkdb/pkg/errcode"
	"github.com/plantkeeper/pkdb/pkg/parserpool"
	"github.com/plantkeeper/pkdb/pkg/pkdb"
	"golang.org/x/sync/errgroup"
)

type seeder struct {
	taxonomy pkdb.TaxonomyStore
	pool     parserpool.Pool
	jobsNum  int
}

// NewSeeder creates a Seeder that imports taxonomy rows through the
// taxonomy store, so all uniqueness and parent rules apply to seeded
// data exactly as to interactive writes.
func NewSeeder(
	taxonomy pkdb.TaxonomyStore,
	pool parserpool.Pool,
	jobsNum int,
) pkdb.Seeder {
	return &seeder{taxonomy: taxonomy, pool: pool, jobsNum: jobsNum}
}

// seedRow is one CSV data row.
type seedRow struct {
	family     string
	genus      string
	species    string
	commonName string
}

func (s *seeder) Seed(
	ctx context.Context,
	csvPath string,
) (*pkdb.SeedSummary, error) {
	start := time.Now()

	rows, err := readRows(csvPath)
	if err != nil {
		return nil, err
	}
	slog.Info("Read seed file",
		"path", csvPath,
		"rows", humanize.Comma(int64(len(rows))),
	)

	summary := &pkdb.SeedSummary{Rows: len(rows)}

	// Parse stage runs in parallel; it only classifies names, the
	// parser pool is reused serially afterwards by the store.
	unparsed, err := s.countUnparsed(ctx, rows)
	if err != nil {
		return nil, err
	}
	summary.Unparsed = unparsed

	if err := s.insertRows(ctx, rows, summary); err != nil {
		return nil, err
	}

	slog.Info("Seeding done",
		"families", humanize.Comma(int64(summary.Families)),
		"genera", humanize.Comma(int64(summary.Genera)),
		"species", humanize.Comma(int64(summary.Species)),
		"unparsed", humanize.Comma(int64(summary.Unparsed)),
		"time", gnfmt.TimeString(time.Since(start).Seconds()),
	)
	return summary, nil
}

// readRows loads the whole CSV file. The header names the columns;
// their order does not matter.
func readRows(csvPath string) ([]seedRow, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return nil, FileError(csvPath, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, ParseError(csvPath, err)
	}
	idx := map[string]int{}
	for i, col := range header {
		idx[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, required := range []string{"family", "genus", "species"} {
		if _, ok := idx[required]; !ok {
			return nil, MissingColumnError(csvPath, required)
		}
	}

	field := func(rec []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var rows []seedRow
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, ParseError(csvPath, err)
		}
		rows = append(rows, seedRow{
			family:     field(rec, "family"),
			genus:      field(rec, "genus"),
			species:    field(rec, "species"),
			commonName: field(rec, "common_name"),
		})
	}
	return rows, nil
}

// countUnparsed runs species names through gnparser across jobsNum
// workers.
func (s *seeder) countUnparsed(
	ctx context.Context,
	rows []seedRow,
) (int, error) {
	g, gCtx := errgroup.WithContext(ctx)
	names := make(chan string)
	var unparsed atomic.Int64

	g.Go(func() error {
		defer close(names)
		for _, row := range rows {
			if row.species == "" {
				continue
			}
			select {
			case names <- row.species:
			case <-gCtx.Done():
				return gCtx.Err()
			}
		}
		return nil
	})

	for i := 0; i < s.jobsNum; i++ {
		g.Go(func() error {
			for name := range names {
				if parsed := s.pool.Parse(name); !parsed.Parsed {
					unparsed.Add(1)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}
	return int(unparsed.Load()), nil
}

// insertRows walks the rows serially, reusing taxonomy rows that
// already exist. Ids of families and genera created or found earlier
// in the pass are cached by name.
func (s *seeder) insertRows(
	ctx context.Context,
	rows []seedRow,
	summary *pkdb.SeedSummary,
) error {
	bar := pb.Full.Start(len(rows))
	bar.Set("prefix", "Seeding taxonomy: ")
	bar.Set(pb.CleanOnFinish, true)
	defer bar.Finish()

	familyIDs := map[string]int64{}
	genusIDs := map[string]int64{}

	for _, row := range rows {
		bar.Increment()
		if row.family == "" {
			continue
		}

		famID, ok := familyIDs[row.family]
		if !ok {
			id, created, err := s.ensureFamily(ctx, row.family)
			if err != nil {
				return err
			}
			if created {
				summary.Families++
			}
			famID = id
			familyIDs[row.family] = id
		}

		if row.genus == "" {
			continue
		}
		genID, ok := genusIDs[row.genus]
		if !ok {
			id, created, err := s.ensureGenus(ctx, row.genus, famID)
			if err != nil {
				return err
			}
			if created {
				summary.Genera++
			}
			genID = id
			genusIDs[row.genus] = id
		}

		if row.species == "" {
			continue
		}
		created, err := s.ensureSpecies(ctx, row, genID)
		if err != nil {
			return err
		}
		if created {
			summary.Species++
		}
	}
	return nil
}

func (s *seeder) ensureFamily(
	ctx context.Context,
	name string,
) (int64, bool, error) {
	fam, err := s.taxonomy.FamilyByName(ctx, name)
	if err == nil {
		return fam.ID, false, nil
	}
	if errcode.Code(err) != errcode.NotFoundError {
		return 0, false, err
	}
	fam, err = s.taxonomy.CreateFamily(ctx, name)
	if err != nil {
		return 0, false, InsertError(name, err)
	}
	return fam.ID, true, nil
}

func (s *seeder) ensureGenus(
	ctx context.Context,
	name string,
	familyID int64,
) (int64, bool, error) {
	gen, err := s.taxonomy.GenusByName(ctx, name)
	if err == nil {
		return gen.ID, false, nil
	}
	if errcode.Code(err) != errcode.NotFoundError {
		return 0, false, err
	}
	gen, err = s.taxonomy.CreateGenus(ctx, name, familyID)
	if err != nil {
		return 0, false, InsertError(name, err)
	}
	return gen.ID, true, nil
}

func (s *seeder) ensureSpecies(
	ctx context.Context,
	row seedRow,
	genusID int64,
) (bool, error) {
	_, err := s.taxonomy.SpeciesByName(ctx, row.species)
	if err == nil {
		return false, nil
	}
	if errcode.Code(err) != errcode.NotFoundError {
		return false, err
	}

	var commonName *string
	if row.commonName != "" {
		commonName = &row.commonName
	}
	if _, err := s.taxonomy.CreateSpecies(
		ctx, row.species, genusID, commonName,
	); err != nil {
		return false, InsertError(row.species, err)
	}
	return true, nil
}
