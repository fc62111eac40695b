// Package sqlite exports cleaned accidents and geolocations into a SQLite
// database file for ad-hoc SQL analysis.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/couchcryptid/planecrash-geodata/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS accidents (
	id                TEXT PRIMARY KEY,
	date              TEXT NOT NULL,
	time              TEXT,
	location          TEXT,
	location_country  TEXT NOT NULL,
	operator          TEXT,
	route             TEXT,
	origin            TEXT,
	destination       TEXT,
	aircraft_type     TEXT,
	aboard            INTEGER,
	aboard_passengers INTEGER,
	aboard_crew       INTEGER,
	fatalities        INTEGER,
	fatalities_passengers INTEGER,
	fatalities_crew   INTEGER,
	ground            INTEGER,
	summary           TEXT
);

CREATE TABLE IF NOT EXISTS geolocations (
	place TEXT PRIMARY KEY,
	lat   REAL,
	lon   REAL
);

CREATE INDEX IF NOT EXISTS idx_accidents_date ON accidents(date);
CREATE INDEX IF NOT EXISTS idx_accidents_country ON accidents(location_country);
`

// Store is a SQLite export target.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: exec %s: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ReplaceAccidents deletes all accidents and inserts the given ones in one
// transaction.
func (s *Store) ReplaceAccidents(ctx context.Context, accidents []domain.Accident) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM accidents`); err != nil {
			return fmt.Errorf("sqlite: clear accidents: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO accidents (
			id, date, time, location, location_country, operator, route, origin, destination,
			aircraft_type, aboard, aboard_passengers, aboard_crew,
			fatalities, fatalities_passengers, fatalities_crew, ground, summary
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("sqlite: prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, a := range accidents {
			_, err := stmt.ExecContext(ctx,
				a.ID, a.Date.Format(time.DateOnly), a.Time, a.Location, a.LocationCountry,
				a.Operator, a.Route, a.Origin, a.Destination, a.AircraftType,
				nullInt(a.Aboard.Total), nullInt(a.Aboard.Passengers), nullInt(a.Aboard.Crew),
				nullInt(a.Fatalities.Total), nullInt(a.Fatalities.Passengers), nullInt(a.Fatalities.Crew),
				nullInt(a.Ground), a.Summary,
			)
			if err != nil {
				return fmt.Errorf("sqlite: insert accident %s: %w", a.ID, err)
			}
		}
		return nil
	})
}

// ReplaceGeolocations deletes all geolocations and inserts g. Unlocated
// places are stored with NULL coordinates.
func (s *Store) ReplaceGeolocations(ctx context.Context, g domain.Geolocations) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM geolocations`); err != nil {
			return fmt.Errorf("sqlite: clear geolocations: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO geolocations (place, lat, lon) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("sqlite: prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, place := range g.Places() {
			var lat, lon sql.NullFloat64
			if p := g[place]; p != nil {
				lat = sql.NullFloat64{Float64: p.Lat, Valid: true}
				lon = sql.NullFloat64{Float64: p.Lon, Valid: true}
			}
			if _, err := stmt.ExecContext(ctx, place, lat, lon); err != nil {
				return fmt.Errorf("sqlite: insert geolocation %q: %w", place, err)
			}
		}
		return nil
	})
}

// CountAccidents returns the number of stored accidents.
func (s *Store) CountAccidents(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accidents`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite: count accidents: %w", err)
	}
	return n, nil
}

// FatalitiesByCountry sums known fatalities per location country, largest
// first.
func (s *Store) FatalitiesByCountry(ctx context.Context) ([]CountryTotal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT location_country, COALESCE(SUM(fatalities), 0) AS total
		FROM accidents
		GROUP BY location_country
		ORDER BY total DESC, location_country`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: fatalities by country: %w", err)
	}
	defer rows.Close()

	var out []CountryTotal
	for rows.Next() {
		var ct CountryTotal
		if err := rows.Scan(&ct.Country, &ct.Fatalities); err != nil {
			return nil, fmt.Errorf("sqlite: scan: %w", err)
		}
		out = append(out, ct)
	}
	return out, rows.Err()
}

// CountryTotal is one row of FatalitiesByCountry.
type CountryTotal struct {
	Country    string
	Fatalities int
}

// Geolocations reads the geolocations table back into a map.
func (s *Store) Geolocations(ctx context.Context) (domain.Geolocations, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT place, lat, lon FROM geolocations`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query geolocations: %w", err)
	}
	defer rows.Close()

	g := make(domain.Geolocations)
	for rows.Next() {
		var place string
		var lat, lon sql.NullFloat64
		if err := rows.Scan(&place, &lat, &lon); err != nil {
			return nil, fmt.Errorf("sqlite: scan: %w", err)
		}
		if lat.Valid && lon.Valid {
			g[place] = &domain.LatLon{Lat: lat.Float64, Lon: lon.Float64}
		} else {
			g[place] = nil
		}
	}
	return g, rows.Err()
}

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}
