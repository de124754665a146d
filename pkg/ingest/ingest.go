package ingest

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/Adithya-charan/docuExtract/internal/models"
	"github.com/Adithya-charan/docuExtract/internal/types"
	"github.com/gabriel-vasile/mimetype"
)

const (
	// PageBand is the upper bound of the progress band reserved for page extraction.
	PageBand = 30
	// ImageProgress is reported once an image has been encoded.
	ImageProgress = 20

	DefaultImageInstruction = "Analyze this image and extract the document structure."
)

// PageReader gives ordered access to the text of a paginated document.
// Pages are numbered from 1.
type PageReader interface {
	NumPage() int
	PageText(i int) (string, error)
}

type PageOpener func(data []byte) (PageReader, error)

type StageConfig struct {
	OpenPages        PageOpener
	ImageInstruction string
}

// Stage turns a raw document into model-ready content.
type Stage struct {
	config StageConfig
}

func NewWithConfig(config StageConfig) *Stage {
	if config.OpenPages == nil {
		config.OpenPages = OpenPDF
	}
	if config.ImageInstruction == "" {
		config.ImageInstruction = DefaultImageInstruction
	}
	return &Stage{config: config}
}

func New() *Stage {
	return NewWithConfig(StageConfig{})
}

func (s *Stage) Ingest(ctx context.Context, doc models.Document, progress types.ProgressFunc) (*models.Content, error) {
	if progress == nil {
		progress = func(int, string) {}
	}

	mediaType := mediaTypeOf(doc)
	kind, ok := models.KindOf(mediaType)
	if !ok {
		return nil, models.NewIngestionError(fmt.Sprintf("unsupported media type %q for %s", mediaType, doc.Name), nil)
	}

	switch kind {
	case models.MediaPDF:
		return s.ingestPages(ctx, doc, progress)
	default:
		progress(ImageProgress, "Processing Image Data...")
		return &models.Content{
			Kind:        models.MediaImage,
			Pages:       1,
			Instruction: s.config.ImageInstruction,
			Binary:      doc.Data,
			MediaType:   mediaType,
		}, nil
	}
}

func (s *Stage) ingestPages(ctx context.Context, doc models.Document, progress types.ProgressFunc) (*models.Content, error) {
	pages, err := s.config.OpenPages(doc.Data)
	if err != nil {
		return nil, models.NewIngestionError(fmt.Sprintf("cannot read %s", doc.Name), err)
	}

	n := pages.NumPage()
	if n < 1 {
		return nil, models.NewIngestionError(fmt.Sprintf("%s has no pages", doc.Name), nil)
	}

	var text strings.Builder
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		progress(PageProgress(i, n), fmt.Sprintf("Scanning page %d/%d...", i, n))

		pageText, err := pages.PageText(i)
		if err != nil {
			return nil, models.NewIngestionError(fmt.Sprintf("cannot extract page %d of %s", i, doc.Name), err)
		}
		fmt.Fprintf(&text, "\n--- Page %d ---\n%s", i, cleanText(pageText))
	}

	return &models.Content{
		Kind:  models.MediaPDF,
		Pages: n,
		Text:  text.String(),
	}, nil
}

// PageProgress maps page i of n into the page band.
func PageProgress(i, n int) int {
	return int(math.Round(float64(i) / float64(n) * PageBand))
}

func mediaTypeOf(doc models.Document) string {
	mt := strings.TrimSpace(doc.MediaType)
	if mt == "" || mt == "application/octet-stream" {
		return mimetype.Detect(doc.Data).String()
	}
	return mt
}
