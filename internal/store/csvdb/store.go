// Package csvdb keeps the local file database: one CSV snapshot per year,
// the concatenated data.csv, and the geolocs.json place lookup.
package csvdb

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jszwec/csvutil"

	"github.com/couchcryptid/planecrash-geodata/internal/domain"
)

const (
	databaseFile     = "data.csv"
	geolocationsFile = "geolocs.json"
)

// Store reads and writes the data directory.
type Store struct {
	dir    string
	logger *slog.Logger
}

// New returns a Store rooted at dir. The directory is created on first write.
func New(dir string, logger *slog.Logger) *Store {
	return &Store{dir: dir, logger: logger}
}

// Dir returns the data directory.
func (s *Store) Dir() string { return s.dir }

// YearPath returns the snapshot path for year, e.g. data/1999_original.csv.
func (s *Store) YearPath(year int) string {
	return filepath.Join(s.dir, fmt.Sprintf("%d_original.csv", year))
}

// DatabasePath returns the path of the concatenated database.
func (s *Store) DatabasePath() string {
	return filepath.Join(s.dir, databaseFile)
}

// GeolocationsPath returns the path of the place lookup file.
func (s *Store) GeolocationsPath() string {
	return filepath.Join(s.dir, geolocationsFile)
}

// HasYear reports whether a snapshot for year exists.
func (s *Store) HasYear(year int) bool {
	_, err := os.Stat(s.YearPath(year))
	return err == nil
}

// WriteYear replaces the snapshot for year.
func (s *Store) WriteYear(year int, recs []domain.RawAccident) error {
	data, err := encode(recs)
	if err != nil {
		return fmt.Errorf("encode %d: %w", year, err)
	}
	return s.writeFile(s.YearPath(year), data)
}

// ReadYear loads the snapshot for year. A missing snapshot returns an error
// wrapping fs.ErrNotExist.
func (s *Store) ReadYear(year int) ([]domain.RawAccident, error) {
	return readFile(s.YearPath(year))
}

// BuildDatabase concatenates the snapshots of years, in the given order,
// into data.csv. Missing years are skipped with a warning. It returns the
// number of records written.
func (s *Store) BuildDatabase(years []int) (int, error) {
	var all []domain.RawAccident
	for _, y := range years {
		recs, err := s.ReadYear(y)
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("year snapshot missing, skipping", "year", y, "path", s.YearPath(y))
			continue
		}
		if err != nil {
			return 0, err
		}
		all = append(all, recs...)
	}

	data, err := encode(all)
	if err != nil {
		return 0, fmt.Errorf("encode database: %w", err)
	}
	if err := s.writeFile(s.DatabasePath(), data); err != nil {
		return 0, err
	}
	s.logger.Info("database built", "path", s.DatabasePath(), "records", len(all))
	return len(all), nil
}

// ReadDatabase loads data.csv.
func (s *Store) ReadDatabase() ([]domain.RawAccident, error) {
	return readFile(s.DatabasePath())
}

// LoadGeolocations reads geolocs.json. A missing file yields an empty map.
func (s *Store) LoadGeolocations() (domain.Geolocations, error) {
	data, err := os.ReadFile(s.GeolocationsPath())
	if errors.Is(err, fs.ErrNotExist) {
		return make(domain.Geolocations), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read geolocations: %w", err)
	}

	g := make(domain.Geolocations)
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.GeolocationsPath(), err)
	}
	return g, nil
}

// SaveGeolocations writes geolocs.json with four-space indentation.
func (s *Store) SaveGeolocations(g domain.Geolocations) error {
	data, err := json.MarshalIndent(g, "", "    ")
	if err != nil {
		return fmt.Errorf("encode geolocations: %w", err)
	}
	return s.writeFile(s.GeolocationsPath(), append(data, '\n'))
}

// writeFile replaces path via a temporary file in the same directory, so
// readers never see a partial file.
func (s *Store) writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

func encode(recs []domain.RawAccident) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	enc := csvutil.NewEncoder(w)
	if err := enc.EncodeHeader(domain.RawAccident{}); err != nil {
		return nil, err
	}
	for i := range recs {
		if err := enc.Encode(recs[i]); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func readFile(path string) ([]domain.RawAccident, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return decode(f, path)
}

func decode(r io.Reader, name string) ([]domain.RawAccident, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", name, err)
	}

	var recs []domain.RawAccident
	for {
		var rec domain.RawAccident
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
