// Package clientdata provides the local cache for data provider responses.
// Every (company, dataset) pair is one CSV file under a per-company directory;
// the file's existence is the cache-hit signal.
package clientdata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/aristath/finlookup/internal/domain"
	"github.com/rs/zerolog"
)

// FileExt is the cache file extension.
const FileExt = ".csv"

// Store reads and writes cached datasets under a root directory.
type Store struct {
	dataDir string
	log     zerolog.Logger
}

// NewStore creates a store rooted at dataDir.
func NewStore(dataDir string, log zerolog.Logger) *Store {
	return &Store{
		dataDir: dataDir,
		log:     log.With().Str("component", "clientdata").Logger(),
	}
}

// DataDir returns the cache root.
func (s *Store) DataDir() string {
	return s.dataDir
}

// CompanyDir returns <root>/<companyID>.
func (s *Store) CompanyDir(companyID string) string {
	return filepath.Join(s.dataDir, companyID)
}

// Path returns <root>/<companyID>/<companyID>_<Label>.csv.
func (s *Store) Path(companyID string, kind domain.DatasetKind) string {
	return filepath.Join(s.CompanyDir(companyID), companyID+"_"+kind.Spec().Label+FileExt)
}

// EnsureCompanyDir creates the company directory on demand.
func (s *Store) EnsureCompanyDir(companyID string) error {
	if err := domain.ValidateCompanyID(companyID); err != nil {
		return err
	}
	if err := os.MkdirAll(s.CompanyDir(companyID), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory for %s: %w", companyID, err)
	}
	return nil
}

// Exists reports whether a cache file is present for the pair.
func (s *Store) Exists(companyID string, kind domain.DatasetKind) (bool, error) {
	if err := domain.ValidateCompanyID(companyID); err != nil {
		return false, err
	}
	info, err := os.Stat(s.Path(companyID, kind))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat cache file: %w", err)
	}
	return !info.IsDir(), nil
}

// Write replaces the cache file for the pair with table. The previous file is
// fully superseded; the new content is written to a temp file and renamed into place.
func (s *Store) Write(companyID string, kind domain.DatasetKind, table *domain.Table) error {
	if err := s.EnsureCompanyDir(companyID); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.CompanyDir(companyID), "."+kind.Spec().Label+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// No-op after a successful rename.
		_ = os.Remove(tmpName)
	}()

	w := csv.NewWriter(tmp)
	if err := w.Write(table.Columns); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := w.WriteAll(table.Rows); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write rows: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close cache file: %w", err)
	}

	path := s.Path(companyID, kind)
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace cache file: %w", err)
	}

	s.log.Debug().
		Str("company_id", companyID).
		Str("kind", kind.String()).
		Int("rows", table.Len()).
		Msg("Cache file written")

	return nil
}

// Read loads the cached table for the pair. A missing file returns an error
// wrapping domain.ErrCacheMiss; an empty file yields a table with no columns.
func (s *Store) Read(companyID string, kind domain.DatasetKind) (*domain.Table, error) {
	if err := domain.ValidateCompanyID(companyID); err != nil {
		return nil, err
	}

	f, err := os.Open(s.Path(companyID, kind))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s %s", domain.ErrCacheMiss, companyID, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open cache file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err == io.EOF {
		return &domain.Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s header: %v", domain.ErrMalformedDataset, companyID, kind, err)
	}

	table := domain.NewTable(header)
	r.FieldsPerRecord = len(header)
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s %s: %v", domain.ErrMalformedDataset, companyID, kind, err)
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}
