package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/Alias1177/fxanalyst/internal/ledger"
	"github.com/Alias1177/fxanalyst/models"
)

type document struct {
	Predictions []models.LedgerRecord `yaml:"predictions"`
}

// File persists the ledger as a YAML document of sheet rows.
// A missing file reads as an empty ledger.
type File struct {
	path   string
	loc    *time.Location
	mu     sync.Mutex
	logger zerolog.Logger
}

func NewFile(path string, loc *time.Location) *File {
	if loc == nil {
		loc = time.UTC
	}
	return &File{
		path:   path,
		loc:    loc,
		logger: log.With().Str("component", "file_store").Str("path", path).Logger(),
	}
}

func (f *File) Read(_ context.Context) (*ledger.Ledger, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

func (f *File) Write(_ context.Context, l *ledger.Ledger) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.save(l)
}

func (f *File) Update(_ context.Context, fn func(l *ledger.Ledger) (bool, error)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	l, err := f.load()
	if err != nil {
		return err
	}
	changed, err := fn(l)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return f.save(l)
}

func (f *File) load() (*ledger.Ledger, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &ledger.Ledger{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading ledger file: %w", err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding ledger file: %w", err)
	}

	l, err := ledger.FromRecords(doc.Predictions, f.loc)
	if err != nil {
		return nil, fmt.Errorf("ledger file %s: %w", f.path, err)
	}
	return l, nil
}

// save writes to a temp file in the same directory and renames it over the target.
func (f *File) save(l *ledger.Ledger) error {
	data, err := yaml.Marshal(document{Predictions: ledger.ToRecords(l)})
	if err != nil {
		return fmt.Errorf("encoding ledger: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".ledger-*.yaml")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replacing ledger file: %w", err)
	}

	f.logger.Debug().Int("entries", l.Len()).Msg("Ledger saved")
	return nil
}
