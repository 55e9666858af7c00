// Package catalog holds the star catalog in an in-memory SQLite database and answers
// filtered star queries for chart generation.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	"missingstar/internal/models"
)

// Catalog is a loaded, read-only star catalog.
type Catalog struct {
	db     *sql.DB
	source string
}

type options struct {
	starsPath string
	stars     io.Reader
}

// Option configures Load.
type Option func(*options)

// WithStarsFile replaces the embedded bright-star list with a CSV file.
func WithStarsFile(path string) Option {
	return func(o *options) { o.starsPath = path }
}

// WithStars replaces the embedded bright-star list with CSV read from r.
func WithStars(r io.Reader) Option {
	return func(o *options) { o.stars = r }
}

// Load builds a catalog from the embedded data or from the configured star source.
func Load(ctx context.Context, opts ...Option) (*Catalog, error) {
	const op = "catalog.load"
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	source := embeddedStars
	var r io.Reader
	switch {
	case o.stars != nil:
		source = "reader"
		r = o.stars
	case o.starsPath != "":
		f, err := os.Open(o.starsPath)
		if err != nil {
			return nil, &models.OpError{Op: op, Kind: models.KindCatalog, Err: err}
		}
		defer f.Close()
		source = o.starsPath
		r = f
	default:
		f, err := dataFS.Open(embeddedStars)
		if err != nil {
			return nil, &models.OpError{Op: op, Kind: models.KindCatalog, Err: err}
		}
		defer f.Close()
		r = f
	}

	stars, err := ReadStars(r)
	if err != nil {
		return nil, &models.OpError{Op: op, Kind: models.KindCatalog, Err: fmt.Errorf("%s: %w", source, err)}
	}
	lf, err := dataFS.Open(embeddedLines)
	if err != nil {
		return nil, &models.OpError{Op: op, Kind: models.KindCatalog, Err: err}
	}
	defer lf.Close()
	lines, err := ReadLines(lf)
	if err != nil {
		return nil, &models.OpError{Op: op, Kind: models.KindCatalog, Err: fmt.Errorf("%s: %w", embeddedLines, err)}
	}

	db, err := openMemory()
	if err != nil {
		return nil, &models.OpError{Op: op, Kind: models.KindCatalog, Err: err}
	}
	c := &Catalog{db: db, source: source}
	if err := c.fill(ctx, stars, lines); err != nil {
		_ = db.Close()
		return nil, &models.OpError{Op: op, Kind: models.KindCatalog, Err: err}
	}
	return c, nil
}

func (c *Catalog) fill(ctx context.Context, stars []models.Star, lines []models.ConstellationLine) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertStars(ctx, tx, stars); err != nil {
		return err
	}
	if err := insertLines(ctx, tx, lines); err != nil {
		return err
	}
	return tx.Commit()
}

// Source names where the star list came from.
func (c *Catalog) Source() string {
	return c.source
}

// Filter narrows a star query.
type Filter struct {
	clause string
	args   []any
}

// MagnitudeAtMost keeps stars no fainter than mag.
func MagnitudeAtMost(mag float64) Filter {
	return Filter{clause: "magnitude <= ?", args: []any{mag}}
}

// HasHIP keeps stars with a Hipparcos identifier.
func HasHIP() Filter {
	return Filter{clause: "hip IS NOT NULL"}
}

// ExcludeHIP keeps stars without a Hipparcos identifier or whose identifier is not
// in ids.
func ExcludeHIP(ids ...int) Filter {
	if len(ids) == 0 {
		return Filter{}
	}
	return Filter{
		clause: fmt.Sprintf("(hip IS NULL OR hip NOT IN (%s))", placeholders(len(ids))),
		args:   intArgs(ids),
	}
}

// OnlyHIP keeps stars whose identifier is in ids.
func OnlyHIP(ids ...int) Filter {
	if len(ids) == 0 {
		return Filter{clause: "0 = 1"}
	}
	return Filter{
		clause: fmt.Sprintf("hip IN (%s)", placeholders(len(ids))),
		args:   intArgs(ids),
	}
}

// Find returns the stars matching all filters, brightest first.
func (c *Catalog) Find(ctx context.Context, filters ...Filter) ([]models.Star, error) {
	query := "SELECT hip, name, ra_deg, dec_deg, magnitude FROM stars"
	var where []string
	var args []any
	for _, f := range filters {
		if f.clause == "" {
			continue
		}
		where = append(where, f.clause)
		args = append(args, f.args...)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY magnitude ASC, id ASC"

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &models.OpError{Op: "catalog.find", Kind: models.KindCatalog, Err: err}
	}
	defer rows.Close()

	var stars []models.Star
	for rows.Next() {
		var s models.Star
		var hip sql.NullInt64
		if err := rows.Scan(&hip, &s.Name, &s.RA, &s.Dec, &s.Magnitude); err != nil {
			return nil, fmt.Errorf("failed to scan star: %w", err)
		}
		if hip.Valid {
			s.HIP = int(hip.Int64)
		}
		stars = append(stars, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stars: %w", err)
	}
	return stars, nil
}

// Lines returns all constellation figure segments.
func (c *Catalog) Lines(ctx context.Context) ([]models.ConstellationLine, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT constellation, hip_from, hip_to FROM constellation_lines ORDER BY id ASC
	`)
	if err != nil {
		return nil, &models.OpError{Op: "catalog.lines", Kind: models.KindCatalog, Err: err}
	}
	defer rows.Close()

	var lines []models.ConstellationLine
	for rows.Next() {
		var l models.ConstellationLine
		if err := rows.Scan(&l.Constellation, &l.From, &l.To); err != nil {
			return nil, fmt.Errorf("failed to scan line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lines: %w", err)
	}
	return lines, nil
}

// Count returns the number of stars in the catalog.
func (c *Catalog) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM stars").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count stars: %w", err)
	}
	return n, nil
}

// Close releases the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func intArgs(ids []int) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
