// Package dataset holds the loaded record collection. A Dataset never
// changes after construction; a new upload replaces it wholesale in the
// Store.
package dataset

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/joseph-ayodele/receipts-insights/constants"
	"github.com/joseph-ayodele/receipts-insights/internal/demographics"
	"github.com/joseph-ayodele/receipts-insights/internal/entity"
)

// Dataset is an immutable record collection together with the survey
// questions discovered in it.
type Dataset struct {
	records   []entity.Record
	questions []entity.QuestionField
	source    string
	hash      string // sha256 of the source file, when loaded from one
	loadedAt  time.Time
}

// New copies records into a Dataset and runs question discovery once.
func New(records []entity.Record, source string) *Dataset {
	cp := entity.CloneRecords(records)
	return &Dataset{
		records:   cp,
		questions: demographics.Discover(cp),
		source:    source,
		loadedAt:  time.Now().UTC(),
	}
}

// Empty returns a dataset with no records.
func Empty() *Dataset {
	return New(nil, "")
}

// Records returns the backing slice. Callers must treat it as read-only.
func (d *Dataset) Records() []entity.Record {
	if d == nil {
		return nil
	}
	return d.records
}

// Questions returns the available survey questions in ascending order.
func (d *Dataset) Questions() []entity.QuestionField {
	if d == nil {
		return nil
	}
	out := make([]entity.QuestionField, len(d.questions))
	copy(out, d.questions)
	return out
}

func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

func (d *Dataset) Source() string {
	if d == nil {
		return ""
	}
	return d.source
}

// Hash is the hex SHA-256 of the file the dataset was read from, or "".
func (d *Dataset) Hash() string {
	if d == nil {
		return ""
	}
	return d.hash
}

func (d *Dataset) LoadedAt() time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.loadedAt
}

// Store publishes the current Dataset to concurrent readers. Only Replace
// and the Load helpers swap it, and always as a whole.
type Store struct {
	current atomic.Pointer[Dataset]
	logger  *slog.Logger
}

func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{logger: logger}
	s.current.Store(Empty())
	return s
}

// Current returns the dataset in effect. It is never nil.
func (s *Store) Current() *Dataset {
	return s.current.Load()
}

func (s *Store) Replace(ds *Dataset) {
	if ds == nil {
		ds = Empty()
	}
	prev := s.current.Swap(ds)
	s.logger.Info("dataset replaced",
		"source", ds.Source(),
		"records", ds.Len(),
		"questions", len(ds.questions),
		"previous_records", prev.Len())
}

// LoadRows validates rows and, only if every row is valid, installs them as
// the new dataset. On error the current dataset stays in place.
func (s *Store) LoadRows(rows []Row, source string) (*Dataset, error) {
	records, err := Load(rows)
	if err != nil {
		s.logger.Warn("dataset load rejected", "source", source, "rows", len(rows), "error", err)
		return nil, err
	}
	ds := New(records, source)
	s.Replace(ds)
	return ds, nil
}

// LoadFile reads a CSV or XLSX file and installs it via LoadRows. A file
// whose content matches the current dataset's source is not reloaded.
func (s *Store) LoadFile(ctx context.Context, path string) (*Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, ok := constants.AllowedExtensions[constants.NormalizeExt(filepath.Ext(path))]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}
	sum, err := hashFile(path)
	if err != nil {
		s.logger.Error("dataset read failed", "path", path, "error", err)
		return nil, err
	}
	if cur := s.Current(); cur.hash != "" && cur.hash == sum {
		s.logger.Info("dataset unchanged, reload skipped", "path", path, "hash", sum)
		return cur, nil
	}
	rows, err := ReadFile(path)
	if err != nil {
		s.logger.Error("dataset read failed", "path", path, "error", err)
		return nil, err
	}
	records, err := Load(rows)
	if err != nil {
		s.logger.Warn("dataset load rejected", "source", path, "rows", len(rows), "error", err)
		return nil, err
	}
	ds := New(records, path)
	ds.hash = sum
	s.Replace(ds)
	return ds, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
