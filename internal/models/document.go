package models

import "strings"

type MediaKind string

const (
	MediaPDF   MediaKind = "pdf"
	MediaImage MediaKind = "image"
)

// Document is a raw upload. It is consumed once by ingestion and never persisted.
type Document struct {
	Name      string
	MediaType string
	Data      []byte
	Size      int64
}

// Content is what ingestion hands to the prompt assembler.
type Content struct {
	Kind  MediaKind
	Pages int

	// Text holds the page-delimited extraction for paginated documents.
	Text string

	// Instruction, Binary and MediaType are set for images.
	Instruction string
	Binary      []byte
	MediaType   string
}

// Grounding returns the text a follow-up conversation is anchored to.
func (c *Content) Grounding() string {
	if c.Kind == MediaImage {
		return "Image context loaded."
	}
	return c.Text
}

// KindOf maps a media type to the kind of content it produces, if any.
func KindOf(mediaType string) (MediaKind, bool) {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	switch {
	case mt == "application/pdf":
		return MediaPDF, true
	case strings.HasPrefix(mt, "image/"):
		return MediaImage, true
	}
	return "", false
}
