package operations

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Epistemic-Technology/pdf-tools/internal/config"
	"github.com/Epistemic-Technology/pdf-tools/internal/documents"
	"github.com/Epistemic-Technology/pdf-tools/internal/logger"
	"github.com/Epistemic-Technology/pdf-tools/internal/pdf"
	"github.com/Epistemic-Technology/pdf-tools/internal/staging"
	"github.com/Epistemic-Technology/pdf-tools/internal/storage"
	"github.com/Epistemic-Technology/pdf-tools/internal/validate"
	"github.com/Epistemic-Technology/pdf-tools/internal/workers"
	"github.com/Epistemic-Technology/pdf-tools/models"
)

// DefaultMaxMergeInputs caps the number of documents in one merge
const DefaultMaxMergeInputs = 10

// Engine runs one operation per call: fetch and validate the inputs, load
// them, apply the transform, then stage the outputs. It holds no state
// between calls besides its collaborators, so calls may run concurrently.
type Engine struct {
	validator *validate.Validator
	fetcher   *documents.Fetcher
	stager    *staging.Stager
	catalog   storage.Catalog
	log       logger.Logger

	workers        int
	maxMergeInputs int
	watermark      pdf.WatermarkOptions
	defaultTier    pdf.Tier
}

// Deps are the collaborators of an Engine. Zero numeric fields take defaults.
type Deps struct {
	Validator *validate.Validator
	Fetcher   *documents.Fetcher
	Stager    *staging.Stager
	// Catalog, when set, is closed by Engine.Close
	Catalog storage.Catalog
	Log     logger.Logger

	Workers          int
	MaxMergeInputs   int
	WatermarkDefault pdf.WatermarkOptions
	DefaultTier      pdf.Tier
}

// New creates an Engine. Stager is required.
func New(d Deps) *Engine {
	if d.Log == nil {
		d.Log = logger.NewNoOpLogger()
	}
	if d.Validator == nil {
		d.Validator = validate.New(0)
	}
	if d.Fetcher == nil {
		d.Fetcher = documents.NewFetcher(nil, nil, documents.ZoteroConfig{}, d.Validator.MaxBytes, d.Log)
	}
	if d.Workers <= 0 {
		d.Workers = workers.DefaultMaxWorkers
	}
	if d.MaxMergeInputs <= 0 {
		d.MaxMergeInputs = DefaultMaxMergeInputs
	}
	if d.DefaultTier == "" {
		d.DefaultTier = pdf.DefaultTier
	}
	if d.WatermarkDefault == (pdf.WatermarkOptions{}) {
		d.WatermarkDefault = pdf.DefaultWatermarkOptions()
	}
	return &Engine{
		validator:      d.Validator,
		fetcher:        d.Fetcher,
		stager:         d.Stager,
		catalog:        d.Catalog,
		log:            d.Log,
		workers:        d.Workers,
		maxMergeInputs: d.MaxMergeInputs,
		watermark:      d.WatermarkDefault.WithDefaults(),
		defaultTier:    d.DefaultTier,
	}
}

// NewFromConfig wires an Engine from the effective configuration
func NewFromConfig(cfg *config.Config, log logger.Logger) (*Engine, error) {
	var catalog storage.Catalog
	if cfg.Staging.Catalog != "" {
		store, err := storage.NewSQLiteStore(cfg.Staging.Catalog)
		if err != nil {
			return nil, fmt.Errorf("failed to open staging catalog: %w", err)
		}
		catalog = store
	}

	stager, err := staging.New(cfg.Staging.Dir, catalog, log)
	if err != nil {
		if catalog != nil {
			catalog.Close()
		}
		return nil, err
	}

	tier, err := pdf.ParseTier(cfg.Compress.DefaultTier)
	if err != nil {
		if catalog != nil {
			catalog.Close()
		}
		return nil, err
	}

	timeout := cfg.Fetch.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	limiter := workers.NewLimiter(cfg.Fetch.RatePerSecond, cfg.Fetch.Burst)
	fetcher := documents.NewFetcher(&http.Client{Timeout: timeout}, limiter, cfg.Zotero, cfg.Upload.MaxBytes, log)

	return New(Deps{
		Validator:        validate.New(cfg.Upload.MaxBytes),
		Fetcher:          fetcher,
		Stager:           stager,
		Catalog:          catalog,
		Log:              log,
		Workers:          cfg.Workers,
		MaxMergeInputs:   cfg.Upload.MaxMergeInputs,
		WatermarkDefault: cfg.Watermark,
		DefaultTier:      tier,
	}), nil
}

// Stager returns the stager outputs are written to
func (e *Engine) Stager() *staging.Stager {
	return e.stager
}

// Close releases the catalog, if any
func (e *Engine) Close() error {
	if e.catalog != nil {
		return e.catalog.Close()
	}
	return nil
}

// loadInputs fetches, validates and loads every source, keeping order
func (e *Engine) loadInputs(ctx context.Context, sources []models.SourceInfo) ([]*pdf.Document, error) {
	uploads, err := e.fetcher.FetchAll(ctx, sources, e.workers)
	if err != nil {
		return nil, err
	}
	if err := e.validator.CheckAll(uploads); err != nil {
		return nil, err
	}

	return workers.ParallelProcess(ctx, e.workers, uploads, e.log, func(ctx context.Context, i int, u validate.Upload) (*pdf.Document, error) {
		var doc *pdf.Document
		var err error
		if u.Path != "" {
			doc, err = pdf.LoadFile(u.Path)
		} else {
			doc, err = pdf.Load(u.Data)
		}
		if err != nil {
			return nil, err
		}
		e.log.Debug("Loaded %s: %d pages, %d bytes", sources[i], doc.PageCount(), doc.Size())
		return doc, nil
	})
}

func (e *Engine) loadInput(ctx context.Context, src models.SourceInfo) (*pdf.Document, error) {
	docs, err := e.loadInputs(ctx, []models.SourceInfo{src})
	if err != nil {
		return nil, err
	}
	return docs[0], nil
}

// stage persists docs in order and builds the result
func (e *Engine) stage(ctx context.Context, op string, docs ...*pdf.Document) (*models.TransformResult, error) {
	payloads := make([]staging.Payload, len(docs))
	for i, doc := range docs {
		payloads[i] = staging.Payload{Data: doc.Bytes(), Pages: doc.PageCount()}
	}
	files, err := e.stager.Stage(ctx, op, "pdf", payloads...)
	if err != nil {
		return nil, err
	}
	return &models.TransformResult{Operation: op, Files: files}, nil
}

// run wraps an operation with start, finish and failure logging
func (e *Engine) run(op string, fn func() (*models.TransformResult, error)) (*models.TransformResult, error) {
	start := time.Now()
	e.log.Info("Starting %s", op)

	result, err := fn()
	if err != nil {
		e.log.Error("%s failed after %v: %v", op, time.Since(start), err)
		return nil, err
	}

	e.log.Info("Finished %s in %v: %d file(s) staged", op, time.Since(start), len(result.Files))
	return result, nil
}

// List returns staged outputs oldest first
func (e *Engine) List(ctx context.Context, opts storage.ListOptions) ([]models.StagedFile, error) {
	return e.stager.List(ctx, opts)
}
