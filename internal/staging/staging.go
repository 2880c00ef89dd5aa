// Package staging persists transform outputs under unique, never reused
// names in a single directory. It records creation time for an external
// cleanup sweep but owns no retention policy.
package staging

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/Epistemic-Technology/pdf-tools/internal/errs"
	"github.com/Epistemic-Technology/pdf-tools/internal/logger"
	"github.com/Epistemic-Technology/pdf-tools/internal/storage"
	"github.com/Epistemic-Technology/pdf-tools/models"
)

// linkAttempts bounds retries when a freshly generated name already exists
const linkAttempts = 3

// Payload is one output to stage
type Payload struct {
	Data  []byte
	Pages int
}

// Stager writes payloads into dir. The catalog is optional.
type Stager struct {
	dir     string
	catalog storage.Catalog
	log     logger.Logger
	clock   *Clock
	suffix  func() string
}

// Option configures a Stager
type Option func(*Stager)

// WithClock replaces the process-wide clock
func WithClock(c *Clock) Option {
	return func(s *Stager) { s.clock = c }
}

// WithSuffix replaces the random name suffix generator
func WithSuffix(fn func() string) Option {
	return func(s *Stager) { s.suffix = fn }
}

// New creates dir if needed and returns a Stager writing into it
func New(dir string, catalog storage.Catalog, log logger.Logger, opts ...Option) (*Stager, error) {
	if dir == "" {
		return nil, errs.Storage("stage", errs.ReasonWrite, errors.New("staging directory is not set"))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errs.Storage("stage", errs.ReasonWrite, fmt.Errorf("failed to create staging directory: %w", err))
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	s := &Stager{
		dir:     dir,
		catalog: catalog,
		log:     log,
		clock:   processClock,
		suffix:  newSuffix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the staging directory
func (s *Stager) Dir() string {
	return s.dir
}

// Stage writes every payload under a new name and returns references in
// the same order. Either all payloads are staged or none are: on failure
// files already written are removed again.
func (s *Stager) Stage(ctx context.Context, op, ext string, payloads ...Payload) ([]models.StagedFile, error) {
	if len(payloads) == 0 {
		return nil, errs.Storage("stage", errs.ReasonWrite, errors.New("nothing to stage"))
	}

	staged := make([]models.StagedFile, 0, len(payloads))
	for i, p := range payloads {
		if err := ctx.Err(); err != nil {
			s.rollback(staged)
			return nil, errs.Storage("stage", errs.ReasonWrite, err)
		}
		f, err := s.write(op, ext, p)
		if err != nil {
			s.rollback(staged)
			return nil, errs.Storage("stage", errs.ReasonWrite, fmt.Errorf("payload %d of %d: %w", i+1, len(payloads), err))
		}
		staged = append(staged, f)
	}

	if s.catalog != nil {
		if err := s.catalog.Record(ctx, staged...); err != nil {
			s.rollback(staged)
			return nil, err
		}
	}

	for _, f := range staged {
		s.log.Debug("Staged %s (%d bytes)", f.Name, f.Size)
	}
	return staged, nil
}

// write stages one payload. Data goes to a hidden temp file first and is
// then hard-linked under its final name; Link fails rather than replace an
// existing file.
func (s *Stager) write(op, ext string, p Payload) (models.StagedFile, error) {
	tmp, err := os.CreateTemp(s.dir, ".staging-*.tmp")
	if err != nil {
		return models.StagedFile{}, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(p.Data); err != nil {
		tmp.Close()
		return models.StagedFile{}, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return models.StagedFile{}, fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return models.StagedFile{}, fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return models.StagedFile{}, fmt.Errorf("failed to set permissions: %w", err)
	}

	for attempt := 1; ; attempt++ {
		ts := s.clock.Next()
		name := FormatName(op, ts, s.suffix(), ext)
		err := os.Link(tmpPath, filepath.Join(s.dir, name))
		if err == nil {
			return models.StagedFile{
				Name:      name,
				Operation: op,
				Size:      int64(len(p.Data)),
				Pages:     p.Pages,
				CreatedAt: ts,
			}, nil
		}
		if !errors.Is(err, fs.ErrExist) || attempt == linkAttempts {
			return models.StagedFile{}, fmt.Errorf("failed to publish %s: %w", name, err)
		}
		s.log.Warn("Staged name %s already exists, retrying", name)
	}
}

func (s *Stager) rollback(staged []models.StagedFile) {
	for _, f := range staged {
		if err := os.Remove(filepath.Join(s.dir, f.Name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.log.Error("Failed to roll back staged file %s: %v", f.Name, err)
		}
	}
}

// resolve maps a client supplied name to a path inside the staging
// directory. Anything that is not a plain visible file name is not found.
func (s *Stager) resolve(name string) (string, error) {
	if !validBase(name) {
		return "", notFound(name)
	}
	return filepath.Join(s.dir, name), nil
}

func notFound(name string) error {
	return &errs.Error{Kind: errs.KindStorage, Reason: errs.ReasonNotFound, Op: "stage", Msg: fmt.Sprintf("staged file not found: %q", name)}
}

// Stat describes a staged file. CreatedAt comes from the name when it
// parses, otherwise from the file's modification time.
func (s *Stager) Stat(name string) (models.StagedFile, error) {
	path, err := s.resolve(name)
	if err != nil {
		return models.StagedFile{}, err
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.Mode().IsRegular()) {
		return models.StagedFile{}, notFound(name)
	}
	if err != nil {
		return models.StagedFile{}, errs.Storage("stage", errs.ReasonRead, err)
	}
	return describe(name, info), nil
}

func describe(name string, info fs.FileInfo) models.StagedFile {
	f := models.StagedFile{Name: name, Size: info.Size(), CreatedAt: info.ModTime().UTC()}
	if n, err := ParseName(name); err == nil {
		f.Operation = n.Operation
		f.CreatedAt = n.Timestamp
	}
	return f
}

// Open opens a staged file for reading
func (s *Stager) Open(name string) (*os.File, models.StagedFile, error) {
	f, err := s.Stat(name)
	if err != nil {
		return nil, models.StagedFile{}, err
	}
	path, _ := s.resolve(name)
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, models.StagedFile{}, notFound(name)
	}
	if err != nil {
		return nil, models.StagedFile{}, errs.Storage("stage", errs.ReasonRead, err)
	}
	return file, f, nil
}

// ReadFile returns the contents of a staged file
func (s *Stager) ReadFile(name string) ([]byte, models.StagedFile, error) {
	f, err := s.Stat(name)
	if err != nil {
		return nil, models.StagedFile{}, err
	}
	path, _ := s.resolve(name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, models.StagedFile{}, errs.Storage("stage", errs.ReasonRead, err)
	}
	return data, f, nil
}

// List returns staged files oldest first. With a catalog the catalog is
// queried; otherwise the directory is scanned and names that do not parse
// are skipped.
func (s *Stager) List(ctx context.Context, opts storage.ListOptions) ([]models.StagedFile, error) {
	if s.catalog != nil {
		return s.catalog.List(ctx, opts)
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errs.Storage("stage", errs.ReasonRead, fmt.Errorf("failed to read staging directory: %w", err))
	}

	var files []models.StagedFile
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		n, err := ParseName(e.Name())
		if err != nil {
			continue
		}
		if opts.Operation != "" && n.Operation != opts.Operation {
			continue
		}
		if !opts.OlderThan.IsZero() && !n.Timestamp.Before(opts.OlderThan) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, describe(e.Name(), info))
	}

	sort.Slice(files, func(i, j int) bool {
		if !files[i].CreatedAt.Equal(files[j].CreatedAt) {
			return files[i].CreatedAt.Before(files[j].CreatedAt)
		}
		return files[i].Name < files[j].Name
	})
	if opts.Limit > 0 && len(files) > opts.Limit {
		files = files[:opts.Limit]
	}
	return files, nil
}
