package catalog

import (
	"context"
	"database/sql"
	"embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"missingstar/internal/models"
)

//go:embed data/*.csv
var dataFS embed.FS

const (
	embeddedStars = "data/bright_stars.csv"
	embeddedLines = "data/constellation_lines.csv"
)

var starColumns = []string{"hip", "name", "ra", "dec", "magnitude"}

// ReadStars parses a star CSV with the header hip,name,ra,dec,magnitude. A blank hip
// marks a star without a Hipparcos identifier.
func ReadStars(r io.Reader) ([]models.Star, error) {
	rows, err := readRows(r, starColumns)
	if err != nil {
		return nil, err
	}
	stars := make([]models.Star, 0, len(rows))
	for i, row := range rows {
		s, err := parseStar(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+2, err)
		}
		stars = append(stars, s)
	}
	return stars, nil
}

func parseStar(row []string) (models.Star, error) {
	var s models.Star
	if hip := strings.TrimSpace(row[0]); hip != "" {
		v, err := strconv.Atoi(hip)
		if err != nil || v <= 0 {
			return s, fmt.Errorf("invalid hip %q", row[0])
		}
		s.HIP = v
	}
	s.Name = strings.TrimSpace(row[1])
	fields := []struct {
		name string
		dst  *float64
		lo   float64
		hi   float64
	}{
		{"ra", &s.RA, 0, 360},
		{"dec", &s.Dec, -90, 90},
		{"magnitude", &s.Magnitude, -30, 30},
	}
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i+2]), 64)
		if err != nil {
			return s, fmt.Errorf("invalid %s %q", f.name, row[i+2])
		}
		if !(v >= f.lo && v <= f.hi) {
			return s, fmt.Errorf("%s %v out of range [%v, %v]", f.name, v, f.lo, f.hi)
		}
		*f.dst = v
	}
	return s, nil
}

// ReadLines parses a constellation line CSV with the header constellation,from,to.
func ReadLines(r io.Reader) ([]models.ConstellationLine, error) {
	rows, err := readRows(r, []string{"constellation", "from", "to"})
	if err != nil {
		return nil, err
	}
	lines := make([]models.ConstellationLine, 0, len(rows))
	for i, row := range rows {
		from, err1 := strconv.Atoi(strings.TrimSpace(row[1]))
		to, err2 := strconv.Atoi(strings.TrimSpace(row[2]))
		if err := errors.Join(err1, err2); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+2, err)
		}
		lines = append(lines, models.ConstellationLine{
			Constellation: strings.TrimSpace(row[0]),
			From:          from,
			To:            to,
		})
	}
	return lines, nil
}

func readRows(r io.Reader, header []string) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true

	got, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, h := range header {
		if !strings.EqualFold(strings.TrimSpace(got[i]), h) {
			return nil, fmt.Errorf("unexpected header %v, want %v", got, header)
		}
	}
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func insertStars(ctx context.Context, tx *sql.Tx, stars []models.Star) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO stars (hip, name, ra_deg, dec_deg, magnitude) VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare star insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range stars {
		hip := sql.NullInt64{Int64: int64(s.HIP), Valid: s.HasHIP()}
		if _, err := stmt.ExecContext(ctx, hip, s.Name, s.RA, s.Dec, s.Magnitude); err != nil {
			return fmt.Errorf("failed to insert star %q: %w", s.Label(), err)
		}
	}
	return nil
}

func insertLines(ctx context.Context, tx *sql.Tx, lines []models.ConstellationLine) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO constellation_lines (constellation, hip_from, hip_to) VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare line insert: %w", err)
	}
	defer stmt.Close()

	for _, l := range lines {
		if _, err := stmt.ExecContext(ctx, l.Constellation, l.From, l.To); err != nil {
			return fmt.Errorf("failed to insert line %s %d-%d: %w", l.Constellation, l.From, l.To, err)
		}
	}
	return nil
}
