package operations

import (
	"context"
	"fmt"
	"strings"

	"github.com/Epistemic-Technology/zotero/zotero"

	"github.com/Epistemic-Technology/pdf-tools/internal/documents"
	"github.com/Epistemic-Technology/pdf-tools/internal/errs"
	"github.com/Epistemic-Technology/pdf-tools/internal/logger"
	"github.com/Epistemic-Technology/pdf-tools/internal/validate"
)

// ZoteroSearchParams contains parameters for finding PDFs in a Zotero library.
type ZoteroSearchParams struct {
	Query      string   // Quick search text (searches title, creator, year)
	Tags       []string // Filter by tags
	Collection string   // Filter by collection key (optional)
	Limit      int      // Max parent items (default 25)
}

// PDFAttachment is a PDF stored in Zotero. Key can be passed as a zotero_id input.
type PDFAttachment struct {
	Key         string   `json:"key"`
	Filename    string   `json:"filename,omitempty"`
	ParentKey   string   `json:"parent_key"`
	ParentTitle string   `json:"parent_title,omitempty"`
	Creators    []string `json:"creators,omitempty"`
}

// FindPDFAttachments searches a Zotero library and returns the PDF
// attachments of the matching items, in search order. Items whose
// children cannot be listed are logged and skipped.
func FindPDFAttachments(ctx context.Context, cfg documents.ZoteroConfig, params ZoteroSearchParams, log logger.Logger) ([]PDFAttachment, error) {
	if !cfg.Configured() {
		return nil, errs.Validation(errs.ReasonInvalidInput, "zotero api key and library id must be configured")
	}

	client := zotero.NewClient(cfg.LibraryID, zotero.LibraryTypeUser, zotero.WithAPIKey(cfg.APIKey))

	queryParams := &zotero.QueryParams{
		Q:        params.Query,
		QMode:    "titleCreatorYear",
		Tag:      params.Tags,
		ItemType: []string{"-attachment"},
		Limit:    params.Limit,
		Sort:     "dateModified",
	}
	if queryParams.Limit <= 0 {
		queryParams.Limit = 25
	}

	var items []zotero.Item
	var err error
	if params.Collection != "" {
		items, err = client.CollectionItems(ctx, params.Collection, queryParams)
	} else {
		items, err = client.Items(ctx, queryParams)
	}
	if err != nil {
		log.Error("Zotero search failed: %v", err)
		return nil, fmt.Errorf("failed to search Zotero library: %w", err)
	}
	log.Info("Found %d items in Zotero library", len(items))

	var results []PDFAttachment
	for _, item := range items {
		if item.Data.ItemType == "attachment" {
			continue
		}

		children, err := client.Children(ctx, item.Key, nil)
		if err != nil {
			log.Warn("Failed to retrieve children for item %s: %v", item.Key, err)
			continue
		}

		creators := creatorNames(item)
		for _, child := range children {
			if child.Data.ItemType != "attachment" || !validate.IsPDFMediaType(child.Data.ContentType) {
				continue
			}
			results = append(results, PDFAttachment{
				Key:         child.Key,
				Filename:    child.Data.Filename,
				ParentKey:   item.Key,
				ParentTitle: item.Data.Title,
				Creators:    creators,
			})
		}
	}

	log.Info("Returning %d PDF attachments", len(results))
	return results, nil
}

func creatorNames(item zotero.Item) []string {
	var names []string
	for _, c := range item.Data.Creators {
		if c.Name != "" {
			names = append(names, c.Name)
			continue
		}
		if name := strings.TrimSpace(c.FirstName + " " + c.LastName); name != "" {
			names = append(names, name)
		}
	}
	return names
}
