package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Epistemic-Technology/zotero/zotero"

	"github.com/Epistemic-Technology/pdf-tools/internal/errs"
	"github.com/Epistemic-Technology/pdf-tools/internal/logger"
	"github.com/Epistemic-Technology/pdf-tools/internal/validate"
	"github.com/Epistemic-Technology/pdf-tools/internal/workers"
	"github.com/Epistemic-Technology/pdf-tools/models"
)

// ZoteroConfig identifies the library attachments are fetched from
type ZoteroConfig struct {
	APIKey    string `mapstructure:"api_key" yaml:"api_key"`
	LibraryID string `mapstructure:"library_id" yaml:"library_id"`
}

// Configured reports whether both credentials are present
func (z ZoteroConfig) Configured() bool {
	return z.APIKey != "" && z.LibraryID != ""
}

// Fetcher turns a SourceInfo into a validate.Upload. Remote sources share
// one rate limiter.
type Fetcher struct {
	client   *http.Client
	limiter  *workers.Limiter
	zotero   ZoteroConfig
	maxBytes int64
	log      logger.Logger

	// zoteroFile is replaceable in tests
	zoteroFile func(ctx context.Context, key string) ([]byte, error)
}

// NewFetcher creates a Fetcher. Remote bodies are read up to maxBytes+1 so
// the validator can still report an oversized download.
func NewFetcher(client *http.Client, limiter *workers.Limiter, zcfg ZoteroConfig, maxBytes int64, log logger.Logger) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if limiter == nil {
		limiter = workers.NewLimiter(0, 1)
	}
	if maxBytes <= 0 {
		maxBytes = validate.DefaultMaxBytes
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	f := &Fetcher{client: client, limiter: limiter, zotero: zcfg, maxBytes: maxBytes, log: log}
	f.zoteroFile = f.getFromZotero
	return f
}

// Fetch resolves src. Local paths are not read here; the validator and
// loader work from the path directly.
func (f *Fetcher) Fetch(ctx context.Context, src models.SourceInfo) (validate.Upload, error) {
	switch {
	case src.Path != "":
		mediaType := src.MediaType
		if mediaType == "" {
			mediaType = MediaTypeForPath(src.Path)
		}
		if mediaType == "" {
			mediaType = sniffFile(src.Path)
		}
		return validate.Upload{Name: filepath.Base(src.Path), MediaType: mediaType, Path: src.Path}, nil

	case len(src.Data) > 0:
		mediaType := src.MediaType
		if mediaType == "" {
			mediaType = DetectMediaType(src.Data)
		}
		return validate.Upload{Name: "upload", MediaType: mediaType, Size: int64(len(src.Data)), Data: src.Data}, nil

	case src.URL != "":
		return f.GetFromURL(ctx, src.URL)

	case src.ZoteroID != "":
		return f.GetFromZotero(ctx, src.ZoteroID)

	default:
		return validate.Upload{}, errs.Validation(errs.ReasonMissing, "no document provided: set a path, url, zotero_id or data")
	}
}

// FetchAll resolves every source concurrently, keeping their order
func (f *Fetcher) FetchAll(ctx context.Context, sources []models.SourceInfo, maxWorkers int) ([]validate.Upload, error) {
	return workers.ParallelProcess(ctx, maxWorkers, sources, f.log, func(ctx context.Context, i int, src models.SourceInfo) (validate.Upload, error) {
		u, err := f.Fetch(ctx, src)
		if err != nil {
			return validate.Upload{}, fmt.Errorf("input %d (%s): %w", i+1, src, err)
		}
		return u, nil
	})
}

// GetFromURL downloads a document. The response Content-Type is the
// declared media type; when absent the body is sniffed.
func (f *Fetcher) GetFromURL(ctx context.Context, rawURL string) (validate.Upload, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return validate.Upload{}, errs.Validation(errs.ReasonInvalidInput, "invalid document URL %q", rawURL)
	}

	type download struct {
		data        []byte
		contentType string
	}

	f.log.Debug("Fetching %s", rawURL)
	dl, err := workers.RateLimitedCall(ctx, f.limiter, f.log, func(ctx context.Context) (download, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return download{}, err
		}
		resp, err := f.client.Do(req)
		if err != nil {
			return download{}, err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			err := fmt.Errorf("unexpected status %s", resp.Status)
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return download{}, &workers.RetryableError{Err: err}
			}
			return download{}, err
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
		if err != nil {
			return download{}, fmt.Errorf("failed to read response body: %w", err)
		}
		return download{data: data, contentType: resp.Header.Get("Content-Type")}, nil
	})
	if err != nil {
		return validate.Upload{}, errs.Storage("fetch", errs.ReasonRead, fmt.Errorf("failed to fetch %s: %w", rawURL, err))
	}
	if len(dl.data) == 0 {
		return validate.Upload{}, errs.Validation(errs.ReasonMissing, "no data retrieved from %s", rawURL)
	}

	mediaType := dl.contentType
	if mediaType == "" {
		mediaType = DetectMediaType(dl.data)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		name = u.Host
	}
	return validate.Upload{Name: name, MediaType: mediaType, Size: int64(len(dl.data)), Data: dl.data}, nil
}

// GetFromZotero downloads an attachment by item key. Zotero serves
// attachments without a reliable type, so the body is sniffed.
func (f *Fetcher) GetFromZotero(ctx context.Context, key string) (validate.Upload, error) {
	if !f.zotero.Configured() {
		return validate.Upload{}, errs.Validation(errs.ReasonInvalidInput, "zotero api key and library id must be configured to fetch %s", key)
	}

	f.log.Debug("Fetching Zotero attachment %s", key)
	data, err := workers.RateLimitedCall(ctx, f.limiter, f.log, func(ctx context.Context) ([]byte, error) {
		return f.zoteroFile(ctx, key)
	})
	if err != nil {
		return validate.Upload{}, errs.Storage("fetch", errs.ReasonRead, fmt.Errorf("failed to fetch zotero item %s: %w", key, err))
	}
	if len(data) == 0 {
		return validate.Upload{}, errs.Validation(errs.ReasonMissing, "no data retrieved for zotero item %s", key)
	}
	return validate.Upload{Name: key, MediaType: DetectMediaType(data), Size: int64(len(data)), Data: data}, nil
}

func (f *Fetcher) getFromZotero(ctx context.Context, key string) ([]byte, error) {
	client := zotero.NewClient(f.zotero.LibraryID, zotero.LibraryTypeUser, zotero.WithAPIKey(f.zotero.APIKey))
	return client.File(ctx, key)
}

// sniffFile reads the head of a local file to guess its type. Unreadable
// files get no type; the validator reports them as missing.
func sniffFile(p string) string {
	file, err := os.Open(p)
	if err != nil {
		return ""
	}
	defer file.Close()

	head := make([]byte, 1024)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return ""
	}
	return DetectMediaType(head[:n])
}

// SourceFromString interprets a command-line argument as a URL, a
// "zotero:KEY" reference, or a local path
func SourceFromString(s string) models.SourceInfo {
	switch {
	case strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://"):
		return models.SourceInfo{URL: s}
	case strings.HasPrefix(s, "zotero:"):
		return models.SourceInfo{ZoteroID: strings.TrimPrefix(s, "zotero:")}
	default:
		return models.SourceInfo{Path: s}
	}
}
